package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"

	"github.com/pixai-app/pixai-api/common/ctxkey"
	"github.com/pixai-app/pixai-api/common/logger"
	"github.com/pixai-app/pixai-api/model"
)

// UserProfile is the public view of an account.
type UserProfile struct {
	Id            string `json:"id"`
	Username      string `json:"name"`
	CreditBalance int64  `json:"credit_balance"`
	CreatedAt     int64  `json:"created_at"`
}

func GetUserCredits(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := model.GetUserById(ctx, c.GetString(ctxkey.Id))
	if err != nil {
		message := err.Error()
		if errors.Is(err, model.ErrUserNotFound) {
			message = "User not found"
		} else {
			logger.Errorf(ctx, "get user failed: %s", err.Error())
		}
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": message,
		})
		return
	}
	var profile UserProfile
	if err = copier.Copy(&profile, user); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"credits": user.CreditBalance,
		"user":    profile,
	})
}

func GetUserLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("pagesize"))
	logType, _ := strconv.Atoi(c.Query("type"))
	logs, total, err := model.GetUserLogsAndCount(c.Request.Context(), c.GetString(ctxkey.Id), logType, page, pageSize)
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
			"list":  logs,
			"total": total,
		},
	})
}
