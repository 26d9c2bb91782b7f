package channel

import (
	"context"
	"io"
	"net/http"

	"github.com/pixai-app/pixai-api/relay/model"
)

// ImageProcessor turns one validated image request into a processed image.
type ImageProcessor interface {
	Process(ctx context.Context, request model.ImageRequest) (*model.ImageResult, error)
}

// Adaptor is the per-provider part of an image relay. DoRequestHelper
// drives it for a single request.
type Adaptor interface {
	GetRequestURL(relayMode int) (string, error)
	SetupRequestHeader(req *http.Request, contentType string) error
	ConvertRequest(request model.ImageRequest) (body io.Reader, contentType string, err error)
	DoResponse(ctx context.Context, resp *http.Response, relayMode int) (*model.ImageResult, error)
	GetChannelName() string
}
