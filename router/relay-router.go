package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/controller"
	"github.com/pixai-app/pixai-api/middleware"
	"github.com/pixai-app/pixai-api/relay/constant"
)

func SetRelayRouter(router *gin.Engine) {
	imageRouter := router.Group("/api/image")
	imageRouter.Use(middleware.RelayPanicRecover(), middleware.UserAuth())
	for _, mode := range constant.RelayModes {
		body := middleware.RequestBodyLimit(int64(config.MaxRequestBodyKB) << 10)
		if constant.RequiresImage(mode) {
			body = middleware.ImageUpload()
		}
		imageRouter.POST("/"+constant.RelayModeName(mode), body, controller.RelayImage)
	}
}
