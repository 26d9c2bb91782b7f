package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pixai-app/pixai-api/common"
	"github.com/pixai-app/pixai-api/common/config"
)

func GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data": gin.H{
			"version":            common.Version,
			"start_time":         common.StartTime,
			"system_name":        config.SystemName,
			"server_address":     config.ServerAddress,
			"payment_enabled":    config.StripeSecretKey != "",
			"max_upload_size_mb": config.MaxUploadSizeMB,
			"allowed_types":      config.AllowedImageTypes,
		},
	})
}
