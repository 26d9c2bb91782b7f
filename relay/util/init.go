package util

import (
	"net/http"
	"time"

	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/common/logger"
	"github.com/pixai-app/pixai-api/service"
)

var HTTPClient = &http.Client{Timeout: RelayTimeout()}

func RelayTimeout() time.Duration {
	if config.RelayTimeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(config.RelayTimeout) * time.Second
}

// InitHTTPClient rebuilds HTTPClient from RELAY_TIMEOUT and RELAY_PROXY.
func InitHTTPClient() {
	client, err := service.NewProxyHttpClient(config.RelayProxy, RelayTimeout())
	if err != nil {
		logger.FatalLog("failed to create relay http client: " + err.Error())
	}
	if config.RelayProxy != "" {
		logger.SysLog("relay requests go through proxy")
	}
	HTTPClient = client
}
