package middleware

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/common/ctxkey"
	"github.com/pixai-app/pixai-api/common/logger"
)

// AccessLogEntry is one JSON access log line.
type AccessLogEntry struct {
	Ts        string `json:"ts"`
	Level     string `json:"level"`
	RequestId string `json:"request_id"`
	UserId    string `json:"user_id,omitempty"`
	Status    int    `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	ClientIP  string `json:"client_ip"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Service   string `json:"service"`
	Instance  string `json:"instance"`
}

// SetUpLogger logs every response that is not a plain 200. Image
// endpoints answer failures with 200 too, so those show up in the
// application log instead.
func SetUpLogger(server *gin.Engine) {
	server.Use(gin.LoggerWithFormatter(formatAccessLog))
}

func formatAccessLog(param gin.LogFormatterParams) string {
	if param.StatusCode == 200 {
		return ""
	}

	var requestId, userId string
	if param.Keys != nil {
		requestId, _ = param.Keys[logger.RequestIdKey].(string)
		userId, _ = param.Keys[ctxkey.Id].(string)
	}

	level := "info"
	if param.StatusCode >= 500 {
		level = "error"
	} else if param.StatusCode >= 400 {
		level = "warn"
	}

	entry := AccessLogEntry{
		Ts:        param.TimeStamp.Format(time.RFC3339Nano),
		Level:     level,
		RequestId: requestId,
		UserId:    userId,
		Status:    param.StatusCode,
		LatencyMs: param.Latency.Milliseconds(),
		ClientIP:  param.ClientIP,
		Method:    param.Method,
		Path:      param.Path,
		Service:   config.ServiceName,
		Instance:  config.InstanceId,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return `{"level":"error","msg":"access log marshal error"}` + "\n"
	}
	return string(line) + "\n"
}
