package common

import (
	"bytes"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const KeyRequestBody = "key_request_body"

func GetRequestBody(c *gin.Context) ([]byte, error) {
	requestBody, _ := c.Get(KeyRequestBody)
	if requestBody != nil {
		return requestBody.([]byte), nil
	}
	requestBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	_ = c.Request.Body.Close()
	c.Set(KeyRequestBody, requestBody)
	return requestBody.([]byte), nil
}

// UnmarshalBodyReusable binds JSON or form bodies and leaves the body
// readable for later handlers. Multipart bodies are bound from the
// already parsed form.
func UnmarshalBodyReusable(c *gin.Context, v any) error {
	contentType := c.Request.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return c.ShouldBindWith(v, binding.FormMultipart)
	}

	requestBody, err := GetRequestBody(c)
	if err != nil {
		return err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		return c.ShouldBindWith(v, binding.Form)
	}
	if strings.HasPrefix(contentType, "application/json") {
		return c.ShouldBindJSON(v)
	}

	// no usable Content-Type: try JSON first, then form
	if err := c.ShouldBindJSON(v); err == nil {
		return nil
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
	return c.ShouldBindWith(v, binding.Form)
}
