package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/pixai-app/pixai-api/common/helper"
	"github.com/pixai-app/pixai-api/common/logger"
)

func RelayPanicRecover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), fmt.Sprintf("panic detected: %v", err))
				logger.Error(c.Request.Context(), fmt.Sprintf("stacktrace from panic: %s", string(debug.Stack())))
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": helper.MessageWithRequestId("Internal server error", c.GetString(logger.RequestIdKey)),
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
