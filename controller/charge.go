package controller

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pixai-app/pixai-api/common/ctxkey"
	"github.com/pixai-app/pixai-api/common/logger"
	"github.com/pixai-app/pixai-api/model"
)

// maxWebhookBodySize is the largest event body Stripe delivers.
const maxWebhookBodySize = 512 << 10

func GetCreditPlans(c *gin.Context) {
	plans, err := model.GetCreditPlans()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data": gin.H{
			"list": plans,
		},
	})
}

type createCheckoutRequest struct {
	PlanId string `json:"plan_id" binding:"required"`
}

func CreateCheckout(c *gin.Context) {
	var request createCheckoutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Missing details",
		})
		return
	}
	plan, err := model.GetCreditPlanById(request.PlanId)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	chargeURL, sessionId, err := model.CreateCheckoutOrder(c.Request.Context(), c.GetString(ctxkey.Id), plan)
	if err != nil {
		logger.Errorf(c.Request.Context(), "create checkout failed: %s", err.Error())
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data": gin.H{
			"charge_url": chargeURL,
			"session_id": sessionId,
		},
	})
}

func StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodySize+1))
	if err != nil {
		c.String(http.StatusServiceUnavailable, "fail")
		return
	}
	if len(payload) > maxWebhookBodySize {
		logger.Errorf(c.Request.Context(), "stripe webhook body exceeds %d bytes", maxWebhookBodySize)
		c.String(http.StatusRequestEntityTooLarge, "fail")
		return
	}
	if err = model.HandleStripeWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		logger.Errorf(c.Request.Context(), "stripe webhook failed: %+v", err)
		c.String(http.StatusBadRequest, "fail")
		return
	}
	c.String(http.StatusOK, "ok")
}

func GetUserChargeOrders(c *gin.Context) {
	orders, err := model.GetUserChargeOrders(c.Request.Context(), c.GetString(ctxkey.Id), 50)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data": gin.H{
			"list": orders,
		},
	})
}
