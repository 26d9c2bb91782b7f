package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/pixai-app/pixai-api/controller"
	"github.com/pixai-app/pixai-api/middleware"
)

func SetApiRouter(router *gin.Engine) {
	apiRouter := router.Group("/api")
	apiRouter.Use(gzip.Gzip(gzip.DefaultCompression))
	{
		apiRouter.GET("/status", controller.GetStatus)

		userRoute := apiRouter.Group("/user")
		userRoute.Use(middleware.UserAuth())
		{
			userRoute.GET("/credits", controller.GetUserCredits)
			userRoute.GET("/logs", controller.GetUserLogs)
			userRoute.GET("/orders", controller.GetUserChargeOrders)
		}

		creditRoute := apiRouter.Group("/credit")
		{
			creditRoute.GET("/plans", controller.GetCreditPlans)
			creditRoute.POST("/checkout", middleware.UserAuth(), controller.CreateCheckout)
			creditRoute.POST("/stripe/webhook", controller.StripeWebhook)
		}
	}
}
