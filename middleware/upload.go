package middleware

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/common/ctxkey"
	"github.com/pixai-app/pixai-api/common/image"
	"github.com/pixai-app/pixai-api/common/logger"
	relaymodel "github.com/pixai-app/pixai-api/relay/model"
)

const (
	uploadField             = "image"
	messageInvalidImageType = "Invalid file type. Only JPEG, PNG, and WebP are allowed."
	// multipartOverhead leaves room for boundaries and text fields around the file.
	multipartOverhead = 1 << 20
)

// ImageUpload reads the optional "image" file into memory. Oversize files
// and anything that is not a real JPEG, PNG or WebP are rejected here. A
// request without a file passes through so the handler can report it.
func ImageUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		maxSize := int64(config.MaxUploadSizeMB) << 20
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

		fileHeader, err := c.FormFile(uploadField)
		if err != nil {
			if isTooLarge(err) {
				rejectUpload(c, tooLargeMessage())
				return
			}
			if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
				logger.Infof(c.Request.Context(), "unreadable upload: %s", err.Error())
			}
			c.Next()
			return
		}
		if fileHeader.Size > maxSize {
			rejectUpload(c, tooLargeMessage())
			return
		}
		declared := fileHeader.Header.Get("Content-Type")
		if !allowedType(declared) {
			logger.Infof(c.Request.Context(), "upload %q rejected, declared type %q", fileHeader.Filename, declared)
			rejectUpload(c, messageInvalidImageType)
			return
		}
		data, err := readFile(fileHeader)
		if err != nil {
			logger.Errorf(c.Request.Context(), "read upload failed: %s", err.Error())
			rejectUpload(c, relaymodel.MessageMissingDetails)
			return
		}
		info, err := image.Inspect(data, config.AllowedImageTypes)
		if err != nil {
			logger.Infof(c.Request.Context(), "upload %q rejected: %s", fileHeader.Filename, err.Error())
			rejectUpload(c, messageInvalidImageType)
			return
		}
		c.Set(ctxkey.ImageFile, &relaymodel.ImageFile{
			Data:        data,
			Filename:    fileHeader.Filename,
			ContentType: info.ContentType,
		})
		c.Set(ctxkey.ImageInfo, info)
		c.Next()
	}
}

func readFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return io.ReadAll(file)
}

func allowedType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	for _, allowed := range config.AllowedImageTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

func isTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large")
}

func tooLargeMessage() string {
	return fmt.Sprintf("File too large. Maximum size is %dMB", config.MaxUploadSizeMB)
}

func rejectUpload(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": false,
		"message": message,
	})
	c.Abort()
}
