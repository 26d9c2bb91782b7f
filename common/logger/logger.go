package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/common/helper"
)

const (
	levelDebug = "debug"
	levelInfo  = "info"
	levelWarn  = "warn"
	levelError = "error"
	levelFatal = "fatal"
)

// UserIdKey is the context key under which the authenticated user id is kept.
const UserIdKey = "user_id"

// Entry is one JSON log line.
type Entry struct {
	Ts        string `json:"ts"`
	Level     string `json:"level"`
	RequestId string `json:"request_id,omitempty"`
	UserId    string `json:"user_id,omitempty"`
	Msg       string `json:"msg"`
	Service   string `json:"service"`
	Instance  string `json:"instance"`
}

var (
	setupLock   sync.Mutex
	currentDate atomic.Value
	generalFile *os.File
	errorFile   *os.File
)

// SetupLogger points gin's writers at stdout/stderr plus one general and
// one error file per day under LogDir. Without LogDir only stdio is used.
func SetupLogger() {
	if LogDir == "" {
		return
	}
	setupLock.Lock()
	defer setupLock.Unlock()

	date := time.Now().Format("20060102")
	if date == loggedDate() {
		return
	}
	general, err := os.OpenFile(filepath.Join(LogDir, fmt.Sprintf("pixai-%s.log", date)), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatal("failed to open general log file: ", err)
	}
	errs, err := os.OpenFile(filepath.Join(LogDir, fmt.Sprintf("pixai-error-%s.log", date)), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatal("failed to open error log file: ", err)
	}
	if generalFile != nil {
		_ = generalFile.Close()
	}
	if errorFile != nil {
		_ = errorFile.Close()
	}
	generalFile, errorFile = general, errs
	currentDate.Store(date)

	gin.DefaultWriter = io.MultiWriter(os.Stdout, generalFile)
	gin.DefaultErrorWriter = io.MultiWriter(os.Stderr, errorFile)
}

func loggedDate() string {
	date, _ := currentDate.Load().(string)
	return date
}

func write(w io.Writer, level string, requestId string, userId string, msg string) {
	entry := Entry{
		Ts:        time.Now().Format(time.RFC3339Nano),
		Level:     level,
		RequestId: requestId,
		UserId:    userId,
		Msg:       msg,
		Service:   config.ServiceName,
		Instance:  config.InstanceId,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		_, _ = fmt.Fprintf(w, `{"ts":%q,"level":%q,"msg":"log marshal error","service":%q}`+"\n", entry.Ts, level, config.ServiceName)
		return
	}
	_, _ = w.Write(append(line, '\n'))
}

func SysLog(s string) {
	write(gin.DefaultWriter, levelInfo, "", "", s)
}

func SysError(s string) {
	write(gin.DefaultErrorWriter, levelError, "", "", s)
}

func FatalLog(v ...any) {
	write(gin.DefaultErrorWriter, levelFatal, "", "", fmt.Sprint(v...))
	os.Exit(1)
}

func Debug(ctx context.Context, msg string) {
	if config.DebugEnabled {
		logHelper(ctx, levelDebug, msg)
	}
}

func Info(ctx context.Context, msg string) {
	logHelper(ctx, levelInfo, msg)
}

func Warn(ctx context.Context, msg string) {
	logHelper(ctx, levelWarn, msg)
}

func Error(ctx context.Context, msg string) {
	logHelper(ctx, levelError, msg)
}

func Debugf(ctx context.Context, format string, a ...any) {
	Debug(ctx, fmt.Sprintf(format, a...))
}

func Infof(ctx context.Context, format string, a ...any) {
	Info(ctx, fmt.Sprintf(format, a...))
}

func Warnf(ctx context.Context, format string, a ...any) {
	Warn(ctx, fmt.Sprintf(format, a...))
}

func Errorf(ctx context.Context, format string, a ...any) {
	Error(ctx, fmt.Sprintf(format, a...))
}

func logHelper(ctx context.Context, level string, msg string) {
	w := gin.DefaultWriter
	if level == levelError {
		w = gin.DefaultErrorWriter
	}
	requestId, userId := "", ""
	if ctx != nil {
		if v := ctx.Value(RequestIdKey); v != nil {
			requestId = fmt.Sprintf("%v", v)
		}
		if v := ctx.Value(UserIdKey); v != nil {
			userId = fmt.Sprintf("%v", v)
		}
	}
	if requestId == "" {
		requestId = helper.GenRequestID()
	}
	write(w, level, requestId, userId, msg)
	// rotate when the day changes
	if LogDir != "" && time.Now().Format("20060102") != loggedDate() {
		go SetupLogger()
	}
}
