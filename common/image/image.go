package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"
)

const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeWebP = "image/webp"
)

// ToDataURL wraps raw image bytes in a base64 data URL with the given MIME type.
func ToDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// SniffContentType reports the MIME type detected from the leading bytes.
func SniffContentType(data []byte) string {
	contentType := http.DetectContentType(data)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return contentType
}

func IsImage(data []byte) bool {
	return len(data) > 0 && strings.HasPrefix(SniffContentType(data), "image/")
}

// Info describes an uploaded image after it was sniffed and its header decoded.
type Info struct {
	ContentType string
	Format      string
	Width       int
	Height      int
}

// Inspect checks that data really is an image of one of the allowed types
// and decodes its dimensions without decoding the pixels.
func Inspect(data []byte, allowed []string) (*Info, error) {
	contentType := SniffContentType(data)
	if !contains(allowed, contentType) {
		return nil, fmt.Errorf("unsupported image content %q", contentType)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	return &Info{
		ContentType: contentType,
		Format:      format,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
