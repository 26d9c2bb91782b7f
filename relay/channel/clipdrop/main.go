package clipdrop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/pixai-app/pixai-api/common/image"
	"github.com/pixai-app/pixai-api/common/logger"
	"github.com/pixai-app/pixai-api/relay/channel"
	"github.com/pixai-app/pixai-api/relay/model"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func buildMultipartBody(request model.ImageRequest) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	var err error
	switch r := request.(type) {
	case *model.GenerateImageRequest:
		err = writer.WriteField(promptField, r.Prompt)
	case *model.RemoveTextRequest:
		err = writeImageFile(writer, r.Image)
	case *model.ReplaceBackgroundRequest:
		// an empty prompt asks the service to pick a background
		if err = writeImageFile(writer, r.Image); err == nil {
			err = writer.WriteField(promptField, r.Prompt)
		}
	case *model.UpscaleImageRequest:
		if err = writeImageFile(writer, r.Image); err == nil {
			err = writer.WriteField(targetWidthField, strconv.Itoa(r.TargetWidth))
		}
		if err == nil {
			err = writer.WriteField(targetHeightField, strconv.Itoa(r.TargetHeight))
		}
	default:
		return nil, "", errors.Errorf("unsupported request type %T", request)
	}
	if err != nil {
		return nil, "", err
	}
	if err = writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

// writeImageFile keeps the uploaded content type on the part instead of
// the application/octet-stream that CreateFormFile would set.
func writeImageFile(writer *multipart.Writer, file *model.ImageFile) error {
	if file == nil {
		return errors.New("image file is nil")
	}
	filename := file.Filename
	if filename == "" {
		filename = "image"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = image.SniffContentType(file.Data)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, imageFileField, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(file.Data)
	return err
}

func handleResponse(ctx context.Context, resp *http.Response, relayMode int) (*model.ImageResult, error) {
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, channel.NewRemoteError(ChannelName, resp.StatusCode, fmt.Sprintf("read image service response failed: %s", err.Error()))
	}
	if remaining := resp.Header.Get(remainingCreditsHeader); remaining != "" {
		logger.Debugf(ctx, "clipdrop remaining credits: %s", remaining)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, channel.NewRemoteError(ChannelName, resp.StatusCode, errorMessage(resp.StatusCode, data))
	}
	if !image.IsImage(data) {
		logger.Errorf(ctx, "clipdrop returned %d bytes of %s", len(data), image.SniffContentType(data))
		return nil, channel.NewRemoteError(ChannelName, resp.StatusCode, "image service returned an invalid image")
	}
	return &model.ImageResult{Data: data, MimeType: resultMimeTypes[relayMode]}, nil
}

func errorMessage(statusCode int, body []byte) string {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error != "" {
			return errResp.Error
		}
		if errResp.Message != "" {
			return errResp.Message
		}
	}
	return fmt.Sprintf("image service responded with status %d", statusCode)
}
