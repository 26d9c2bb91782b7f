package channel

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/pkg/errors"

	"github.com/pixai-app/pixai-api/common/logger"
	"github.com/pixai-app/pixai-api/relay/model"
	"github.com/pixai-app/pixai-api/relay/util"
)

// RemoteError is any failure of the remote image service: transport
// errors, timeouts, non-2xx answers and non-image bodies.
type RemoteError struct {
	Channel    string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func NewRemoteError(channel string, statusCode int, message string) error {
	return errors.WithStack(&RemoteError{Channel: channel, StatusCode: statusCode, Message: message})
}

// DoRequestHelper runs request against the adaptor's provider. ctx bounds
// the call together with the client timeout.
func DoRequestHelper(ctx context.Context, a Adaptor, client *http.Client, request model.ImageRequest) (*model.ImageResult, error) {
	if client == nil {
		client = util.HTTPClient
	}
	fullRequestURL, err := a.GetRequestURL(request.Mode())
	if err != nil {
		return nil, errors.Wrap(err, "get request url failed")
	}
	body, contentType, err := a.ConvertRequest(request)
	if err != nil {
		return nil, errors.Wrap(err, "convert request failed")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullRequestURL, body)
	if err != nil {
		return nil, errors.Wrap(err, "new request failed")
	}
	if err = a.SetupRequestHeader(req, contentType); err != nil {
		return nil, errors.Wrap(err, "setup request header failed")
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.Errorf(ctx, "%s request failed: %s", a.GetChannelName(), err.Error())
		if isTimeout(err) {
			return nil, NewRemoteError(a.GetChannelName(), http.StatusGatewayTimeout, "image service timed out")
		}
		return nil, NewRemoteError(a.GetChannelName(), http.StatusBadGateway, fmt.Sprintf("image service request failed: %s", errors.Cause(err).Error()))
	}
	return a.DoResponse(ctx, resp, request.Mode())
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
