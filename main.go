package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pixai-app/pixai-api/common"
	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/common/logger"
	"github.com/pixai-app/pixai-api/controller"
	"github.com/pixai-app/pixai-api/middleware"
	"github.com/pixai-app/pixai-api/model"
	"github.com/pixai-app/pixai-api/relay/util"
	"github.com/pixai-app/pixai-api/router"
)

// monitorGoroutines logs the goroutine count and memory every 30 seconds.
func monitorGoroutines() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		count := runtime.NumGoroutine()
		if count > 5000 {
			logger.SysError(fmt.Sprintf("high goroutine count detected: %d", count))
		} else if count > 2000 {
			logger.SysLog(fmt.Sprintf("goroutine count elevated: %d", count))
		} else if config.DebugEnabled {
			logger.SysLog(fmt.Sprintf("goroutine count: %d", count))
		}

		if config.DebugEnabled {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			logger.SysLog(fmt.Sprintf("memory: Alloc=%dMB, TotalAlloc=%dMB, Sys=%dMB, NumGC=%d",
				m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024, m.NumGC))
		}
	}
}

func setupMonitoringEndpoints(server *gin.Engine) {
	server.GET("/api/monitor/health", func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		c.JSON(200, gin.H{
			"status":         "ok",
			"uptime_seconds": time.Now().Unix() - common.StartTime,
			"goroutines":     runtime.NumGoroutine(),
			"redis_enabled":  common.RedisEnabled,
			"memory": gin.H{
				"alloc_mb":       m.Alloc / 1024 / 1024,
				"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
				"sys_mb":         m.Sys / 1024 / 1024,
				"num_gc":         m.NumGC,
			},
		})
	})
	logger.SysLog("monitoring endpoints enabled at /api/monitor/health")
}

func main() {
	common.Init()
	logger.SetupLogger()
	logger.SysLog(fmt.Sprintf("%s %s started", config.SystemName, common.Version))
	if os.Getenv("GIN_MODE") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	if config.DebugEnabled {
		logger.SysLog("running in debug mode")
	}
	if config.JwtSecret == "" {
		logger.FatalLog("JWT_SECRET is not set")
	}
	if config.ClipdropAPIKey == "" {
		logger.FatalLog("CLIPDROP_API_KEY is not set")
	}

	var err error
	model.DB, err = model.InitDB("SQL_DSN")
	if err != nil {
		logger.FatalLog("failed to initialize database: " + err.Error())
	}
	defer func() {
		if err := model.CloseDB(); err != nil {
			logger.FatalLog("failed to close database: " + err.Error())
		}
	}()

	if err = common.InitRedisClient(); err != nil {
		logger.FatalLog("failed to initialize Redis: " + err.Error())
	}
	if err = model.SeedUser(config.SeedUserId, config.InitialCredit); err != nil {
		logger.FatalLog("failed to seed user: " + err.Error())
	}
	if config.StripeSecretKey == "" {
		logger.SysLog("STRIPE_SECRET_KEY not set, credit purchases are disabled")
	}

	util.InitHTTPClient()
	controller.InitImageRelay()

	go monitorGoroutines()

	server := gin.New()
	server.Use(gin.Recovery())
	server.Use(middleware.RequestId())
	server.Use(middleware.Metrics())
	middleware.SetUpLogger(server)

	router.SetRouter(server)
	setupMonitoringEndpoints(server)

	var port = os.Getenv("PORT")
	if port == "" {
		port = strconv.Itoa(*common.Port)
	}
	logger.SysLog("server listening on port " + port)
	if err = server.Run(":" + port); err != nil {
		logger.FatalLog("failed to start HTTP server: " + err.Error())
	}
}
