package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/common/image"
	"github.com/pixai-app/pixai-api/relay/constant"
)

// MessageMissingDetails is the client-facing text for any invalid request.
const MessageMissingDetails = "Missing details"

var (
	ErrMissingDetails    = errors.New("missing details")
	ErrInvalidDimensions = fmt.Errorf("%w: target_width and target_height must be between 1 and %d", ErrMissingDetails, config.MaxUpscaleDimension)
)

// ValidationMessage turns a validation error into the response message,
// keeping any detail wrapped around ErrMissingDetails.
func ValidationMessage(err error) string {
	if !errors.Is(err, ErrMissingDetails) {
		return err.Error()
	}
	return MessageMissingDetails + strings.TrimPrefix(err.Error(), ErrMissingDetails.Error())
}

// ImageFile is an uploaded image held in memory for one request.
type ImageFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

func (f *ImageFile) validate() error {
	if f == nil || len(f.Data) == 0 {
		return ErrMissingDetails
	}
	return nil
}

// ImageRequest is one of the four operations the relay supports.
type ImageRequest interface {
	Mode() int
	Validate() error
}

type GenerateImageRequest struct {
	Prompt string `json:"prompt" form:"prompt"`
}

func (r *GenerateImageRequest) Mode() int { return constant.RelayModeGenerateImage }

func (r *GenerateImageRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrMissingDetails
	}
	return nil
}

type RemoveTextRequest struct {
	Image *ImageFile
}

func (r *RemoveTextRequest) Mode() int { return constant.RelayModeRemoveText }

func (r *RemoveTextRequest) Validate() error {
	return r.Image.validate()
}

// ReplaceBackgroundRequest with an empty Prompt lets the service pick a background.
type ReplaceBackgroundRequest struct {
	Image  *ImageFile
	Prompt string
}

func (r *ReplaceBackgroundRequest) Mode() int { return constant.RelayModeReplaceBackground }

func (r *ReplaceBackgroundRequest) Validate() error {
	return r.Image.validate()
}

type UpscaleImageRequest struct {
	Image        *ImageFile
	TargetWidth  int
	TargetHeight int
}

func (r *UpscaleImageRequest) Mode() int { return constant.RelayModeUpscaleImage }

func (r *UpscaleImageRequest) Validate() error {
	if err := r.Image.validate(); err != nil {
		return err
	}
	if !validDimension(r.TargetWidth) || !validDimension(r.TargetHeight) {
		return ErrInvalidDimensions
	}
	return nil
}

func validDimension(v int) bool {
	return v >= 1 && v <= config.MaxUpscaleDimension
}

// UpscaleForm is the multipart form of an upscale request.
type UpscaleForm struct {
	TargetWidth  *int `form:"target_width" binding:"required,min=1,max=4096"`
	TargetHeight *int `form:"target_height" binding:"required,min=1,max=4096"`
}

type ReplaceBackgroundForm struct {
	Prompt string `form:"prompt"`
}

// ImageResult is the processed image returned by the remote service.
type ImageResult struct {
	Data     []byte
	MimeType string
}

func (r *ImageResult) DataURL() string {
	return image.ToDataURL(r.MimeType, r.Data)
}

// ImageResponse is the JSON body of every image endpoint, success or not.
type ImageResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	CreditBalance *int64 `json:"creditBalance,omitempty"`
	ResultImage   string `json:"resultImage,omitempty"`
}
