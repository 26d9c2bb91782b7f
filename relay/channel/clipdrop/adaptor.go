package clipdrop

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/pixai-app/pixai-api/relay/channel"
	"github.com/pixai-app/pixai-api/relay/model"
)

type Adaptor struct {
	BaseURL string
	APIKey  string
	// Client defaults to the shared relay client when nil.
	Client *http.Client
}

func NewAdaptor(baseURL string, apiKey string) *Adaptor {
	return &Adaptor{BaseURL: strings.TrimSuffix(baseURL, "/"), APIKey: apiKey}
}

func (a *Adaptor) Process(ctx context.Context, request model.ImageRequest) (*model.ImageResult, error) {
	return channel.DoRequestHelper(ctx, a, a.Client, request)
}

func (a *Adaptor) GetRequestURL(relayMode int) (string, error) {
	path, ok := endpoints[relayMode]
	if !ok {
		return "", errors.Errorf("unsupported relay mode %d", relayMode)
	}
	return a.BaseURL + path, nil
}

func (a *Adaptor) SetupRequestHeader(req *http.Request, contentType string) error {
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-api-key", a.APIKey)
	return nil
}

func (a *Adaptor) ConvertRequest(request model.ImageRequest) (io.Reader, string, error) {
	if request == nil {
		return nil, "", errors.New("request is nil")
	}
	return buildMultipartBody(request)
}

func (a *Adaptor) DoResponse(ctx context.Context, resp *http.Response, relayMode int) (*model.ImageResult, error) {
	return handleResponse(ctx, resp, relayMode)
}

func (a *Adaptor) GetChannelName() string {
	return ChannelName
}
