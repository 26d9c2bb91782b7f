package controller

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/pixai-app/pixai-api/common"
	"github.com/pixai-app/pixai-api/common/ctxkey"
	"github.com/pixai-app/pixai-api/common/image"
	"github.com/pixai-app/pixai-api/common/logger"
	"github.com/pixai-app/pixai-api/model"
	"github.com/pixai-app/pixai-api/monitor"
	"github.com/pixai-app/pixai-api/relay/channel"
	"github.com/pixai-app/pixai-api/relay/constant"
	relaymodel "github.com/pixai-app/pixai-api/relay/model"
)

const (
	messageUserNotFound  = "User not found"
	messageNoCredit      = "No credit balance"
	messageInternalError = "Something went wrong, please try again later"
)

// CreditStore is the balance store the relay spends from.
type CreditStore interface {
	GetUserCredit(ctx context.Context, userId string) (int64, error)
	DebitUserCredit(ctx context.Context, userId string) (int64, error)
}

type UsageRecorder interface {
	RecordConsume(ctx context.Context, userId string, operation string, creditBalance int64, duration float64)
}

type operation struct {
	successMessage string
	parse          func(c *gin.Context) (relaymodel.ImageRequest, error)
}

var operations = map[int]operation{
	constant.RelayModeGenerateImage:     {successMessage: "Image generated", parse: parseGenerateImageRequest},
	constant.RelayModeRemoveText:        {successMessage: "Text removed", parse: parseRemoveTextRequest},
	constant.RelayModeReplaceBackground: {successMessage: "Background replaced", parse: parseReplaceBackgroundRequest},
	constant.RelayModeUpscaleImage:      {successMessage: "Image upscaled", parse: parseUpscaleImageRequest},
}

type ImageRelay struct {
	Store     CreditStore
	Processor channel.ImageProcessor
	// Recorder is optional.
	Recorder UsageRecorder
}

// RelayImageHelper parses the request for relayMode from c and runs it for
// the user set by the auth middleware.
func (r *ImageRelay) RelayImageHelper(c *gin.Context, relayMode int) *relaymodel.ImageResponse {
	ctx := c.Request.Context()
	op, ok := operations[relayMode]
	if !ok {
		logger.Errorf(ctx, "no image operation for relay mode %d", relayMode)
		return failure(relaymodel.MessageMissingDetails, nil)
	}
	request, err := op.parse(c)
	if err != nil {
		logger.Infof(ctx, "%s rejected: %s", constant.RelayModeName(relayMode), err.Error())
		monitor.RecordOperation(constant.RelayModeName(relayMode), monitor.ResultInvalid)
		return failure(relaymodel.ValidationMessage(err), nil)
	}
	if v, ok := c.Get(ctxkey.ImageInfo); ok {
		if info, ok := v.(*image.Info); ok {
			logger.Debugf(ctx, "%s input: %s %dx%d", constant.RelayModeName(relayMode), info.Format, info.Width, info.Height)
		}
	}
	return r.Execute(ctx, c.GetString(ctxkey.Id), request)
}

// Execute checks the balance, calls the processor and debits one credit
// once the processor succeeded. It never debits on a failed call.
func (r *ImageRelay) Execute(ctx context.Context, userId string, request relaymodel.ImageRequest) *relaymodel.ImageResponse {
	mode := request.Mode()
	name := constant.RelayModeName(mode)
	op, ok := operations[mode]
	if !ok || userId == "" {
		monitor.RecordOperation(name, monitor.ResultInvalid)
		return failure(relaymodel.MessageMissingDetails, nil)
	}
	if err := request.Validate(); err != nil {
		monitor.RecordOperation(name, monitor.ResultInvalid)
		return failure(relaymodel.ValidationMessage(err), nil)
	}

	credit, err := r.Store.GetUserCredit(ctx, userId)
	if err != nil {
		return r.storeFailure(ctx, name, userId, credit, err)
	}
	if credit <= 0 {
		monitor.RecordOperation(name, monitor.ResultNoCredit)
		return failure(messageNoCredit, &credit)
	}

	startTime := time.Now()
	result, err := r.Processor.Process(ctx, request)
	latency := time.Since(startTime)
	monitor.RecordRemoteLatency(name, latency)
	if err != nil {
		logger.Errorf(ctx, "%s failed for user %s after %s: %+v", name, userId, latency, err)
		monitor.RecordOperation(name, monitor.ResultRemoteError)
		return failure(err.Error(), nil)
	}

	credit, err = r.Store.DebitUserCredit(ctx, userId)
	if err != nil {
		return r.storeFailure(ctx, name, userId, credit, err)
	}
	monitor.RecordOperation(name, monitor.ResultSuccess)
	if r.Recorder != nil {
		r.Recorder.RecordConsume(ctx, userId, name, credit, latency.Seconds())
	}
	logger.Infof(ctx, "%s succeeded for user %s, %d credits left", name, userId, credit)
	return &relaymodel.ImageResponse{
		Success:       true,
		Message:       op.successMessage,
		CreditBalance: &credit,
		ResultImage:   result.DataURL(),
	}
}

func (r *ImageRelay) storeFailure(ctx context.Context, name string, userId string, credit int64, err error) *relaymodel.ImageResponse {
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		// the token was valid, so the account should exist
		logger.Warnf(ctx, "%s: authenticated user %s has no account", name, userId)
		monitor.RecordOperation(name, monitor.ResultUserNotFound)
		return failure(messageUserNotFound, nil)
	case errors.Is(err, model.ErrInsufficientCredit):
		logger.Warnf(ctx, "%s: credit of user %s was spent concurrently, result withheld", name, userId)
		monitor.RecordOperation(name, monitor.ResultNoCredit)
		return failure(messageNoCredit, &credit)
	default:
		logger.Errorf(ctx, "%s: balance store failed for user %s: %s", name, userId, err.Error())
		monitor.RecordOperation(name, monitor.ResultStoreError)
		return failure(messageInternalError, nil)
	}
}

func failure(message string, credit *int64) *relaymodel.ImageResponse {
	return &relaymodel.ImageResponse{Success: false, Message: message, CreditBalance: credit}
}

func parseGenerateImageRequest(c *gin.Context) (relaymodel.ImageRequest, error) {
	request := &relaymodel.GenerateImageRequest{}
	if err := common.UnmarshalBodyReusable(c, request); err != nil {
		return nil, relaymodel.ErrMissingDetails
	}
	return request, request.Validate()
}

func parseRemoveTextRequest(c *gin.Context) (relaymodel.ImageRequest, error) {
	request := &relaymodel.RemoveTextRequest{Image: uploadedImage(c)}
	return request, request.Validate()
}

func parseReplaceBackgroundRequest(c *gin.Context) (relaymodel.ImageRequest, error) {
	form := relaymodel.ReplaceBackgroundForm{}
	if err := common.UnmarshalBodyReusable(c, &form); err != nil {
		return nil, relaymodel.ErrMissingDetails
	}
	request := &relaymodel.ReplaceBackgroundRequest{Image: uploadedImage(c), Prompt: form.Prompt}
	return request, request.Validate()
}

func parseUpscaleImageRequest(c *gin.Context) (relaymodel.ImageRequest, error) {
	file := uploadedImage(c)
	if file == nil {
		return nil, relaymodel.ErrMissingDetails
	}
	form := relaymodel.UpscaleForm{}
	if err := common.UnmarshalBodyReusable(c, &form); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && outOfRange(validationErrors) {
			return nil, relaymodel.ErrInvalidDimensions
		}
		return nil, relaymodel.ErrMissingDetails
	}
	request := &relaymodel.UpscaleImageRequest{
		Image:        file,
		TargetWidth:  *form.TargetWidth,
		TargetHeight: *form.TargetHeight,
	}
	return request, request.Validate()
}

func outOfRange(validationErrors validator.ValidationErrors) bool {
	for _, fieldErr := range validationErrors {
		if fieldErr.Tag() == "min" || fieldErr.Tag() == "max" {
			return true
		}
	}
	return false
}

func uploadedImage(c *gin.Context) *relaymodel.ImageFile {
	v, ok := c.Get(ctxkey.ImageFile)
	if !ok {
		return nil
	}
	file, _ := v.(*relaymodel.ImageFile)
	return file
}
