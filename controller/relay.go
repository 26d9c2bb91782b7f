package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/model"
	"github.com/pixai-app/pixai-api/relay/channel/clipdrop"
	relayconstant "github.com/pixai-app/pixai-api/relay/constant"
	relaycontroller "github.com/pixai-app/pixai-api/relay/controller"
)

// ImageRelay serves the image endpoints. InitImageRelay sets the
// production wiring; tests may replace it.
var ImageRelay *relaycontroller.ImageRelay

func InitImageRelay() {
	ImageRelay = &relaycontroller.ImageRelay{
		Store:     model.CreditStore{},
		Processor: clipdrop.NewAdaptor(config.ClipdropBaseURL, config.ClipdropAPIKey),
		Recorder:  model.UsageRecorder{},
	}
}

// RelayImage dispatches on the last path segment.
func RelayImage(c *gin.Context) {
	relayMode := relayconstant.Path2RelayMode(c.Request.URL.Path)
	if relayMode == relayconstant.RelayModeUnknown {
		RelayNotFound(c)
		return
	}
	c.JSON(http.StatusOK, ImageRelay.RelayImageHelper(c, relayMode))
}

func RelayNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"message": "Invalid URL (" + c.Request.Method + " " + c.Request.URL.Path + ")",
	})
}
