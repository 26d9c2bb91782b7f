package clipdrop

import (
	"github.com/pixai-app/pixai-api/common/image"
	"github.com/pixai-app/pixai-api/relay/constant"
)

const ChannelName = "clipdrop"

const (
	imageFileField    = "image_file"
	promptField       = "prompt"
	targetWidthField  = "target_width"
	targetHeightField = "target_height"

	remainingCreditsHeader = "x-remaining-credits"

	// maxResponseSize bounds how much of a response body is buffered.
	maxResponseSize = 64 << 20
)

var endpoints = map[int]string{
	constant.RelayModeGenerateImage:     "/text-to-image/v1",
	constant.RelayModeRemoveText:        "/remove-text/v1",
	constant.RelayModeReplaceBackground: "/replace-background/v1",
	constant.RelayModeUpscaleImage:      "/image-upscaling/v1/upscale",
}

// ClipDrop answers in PNG except for upscaling, which is delivered as JPEG.
var resultMimeTypes = map[int]string{
	constant.RelayModeGenerateImage:     image.MimePNG,
	constant.RelayModeRemoveText:        image.MimePNG,
	constant.RelayModeReplaceBackground: image.MimePNG,
	constant.RelayModeUpscaleImage:      image.MimeJPEG,
}
