package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	file := &ImageFile{Data: []byte{0x89, 0x50}, Filename: "a.png", ContentType: "image/png"}
	tests := []struct {
		name    string
		request ImageRequest
		wantErr error
	}{
		{"prompt", &GenerateImageRequest{Prompt: "a red fox"}, nil},
		{"empty prompt", &GenerateImageRequest{Prompt: "  "}, ErrMissingDetails},
		{"remove text", &RemoveTextRequest{Image: file}, nil},
		{"remove text without file", &RemoveTextRequest{}, ErrMissingDetails},
		{"empty file", &RemoveTextRequest{Image: &ImageFile{}}, ErrMissingDetails},
		{"replace background without prompt", &ReplaceBackgroundRequest{Image: file}, nil},
		{"replace background without file", &ReplaceBackgroundRequest{Prompt: "beach"}, ErrMissingDetails},
		{"upscale", &UpscaleImageRequest{Image: file, TargetWidth: 2048, TargetHeight: 4096}, nil},
		{"upscale lower bound", &UpscaleImageRequest{Image: file, TargetWidth: 1, TargetHeight: 1}, nil},
		{"upscale too wide", &UpscaleImageRequest{Image: file, TargetWidth: 5000, TargetHeight: 100}, ErrInvalidDimensions},
		{"upscale zero height", &UpscaleImageRequest{Image: file, TargetWidth: 100}, ErrInvalidDimensions},
		{"upscale without file", &UpscaleImageRequest{TargetWidth: 100, TargetHeight: 100}, ErrMissingDetails},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.True(t, errors.Is(ErrInvalidDimensions, ErrMissingDetails))
}

func TestValidationMessage(t *testing.T) {
	assert.Equal(t, "Missing details", ValidationMessage(ErrMissingDetails))
	assert.Equal(t, "Missing details: target_width and target_height must be between 1 and 4096", ValidationMessage(ErrInvalidDimensions))
	assert.Equal(t, "boom", ValidationMessage(errors.New("boom")))
	assert.Equal(t, "missing details", ErrMissingDetails.Error())
}

func TestImageResultDataURL(t *testing.T) {
	result := &ImageResult{Data: []byte{0x89, 0x50, 0x4e, 0x47}, MimeType: "image/png"}
	assert.Equal(t, "data:image/png;base64,iVBORw==", result.DataURL())
}
