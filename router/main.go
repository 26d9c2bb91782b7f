package router

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/common/logger"
	"github.com/pixai-app/pixai-api/controller"
	"github.com/pixai-app/pixai-api/middleware"
	"github.com/pixai-app/pixai-api/monitor"
)

func SetRouter(router *gin.Engine) {
	// global so that preflight requests for any route get an answer
	router.Use(middleware.CORS())
	SetApiRouter(router)
	SetRelayRouter(router)
	router.GET("/metrics", gin.WrapH(monitor.Handler()))

	if config.SwaggerJSONURL != "" {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(
			swaggerFiles.Handler,
			ginSwagger.URL(config.SwaggerJSONURL),
		))
		logger.SysLog(fmt.Sprintf("Swagger UI enabled at /swagger/index.html (doc: %s)", config.SwaggerJSONURL))
	}

	if config.FrontendDir != "" {
		SetWebRouter(router, config.FrontendDir)
	} else {
		router.NoRoute(controller.RelayNotFound)
	}
}

// SetWebRouter serves the built frontend from dir and falls back to its
// index.html so client side routes survive a reload.
func SetWebRouter(router *gin.Engine, dir string) {
	router.Use(static.Serve("/", static.LocalFile(dir, false)))
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		logger.SysError(fmt.Sprintf("frontend index not found at %s", index))
	}
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") || c.Request.Method != http.MethodGet {
			controller.RelayNotFound(c)
			return
		}
		c.Header("Cache-Control", "no-cache")
		c.File(index)
	})
	logger.SysLog("serving frontend from " + dir)
}
