package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"vscode-status-server/internal/handler"
	"vscode-status-server/internal/hub"
	"vscode-status-server/internal/middleware"
	"vscode-status-server/internal/service"
)

type Deps struct {
	Service *service.StatusService
	Hub     *hub.Hub
	// Recorder may be nil to disable telemetry.
	Recorder middleware.EventRecorder
	ClientIP func(*gin.Context) string
	// RateLimiting enables the per-route limits.
	RateLimiting bool
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())

	clientIP := deps.ClientIP
	if clientIP == nil {
		clientIP = middleware.ClientIP(false)
	}
	r.Use(middleware.Telemetry(deps.Recorder, clientIP))

	// Per-route quotas from the original deployment.
	var healthLimiter, updateLimiter, readLimiter, registerLimiter, probeLimiter *middleware.RateLimiter
	if deps.RateLimiting {
		healthLimiter = middleware.NewRateLimiter(60, time.Minute)
		updateLimiter = middleware.NewRateLimiter(30, time.Minute)
		readLimiter = middleware.NewRateLimiter(45, time.Minute)
		registerLimiter = middleware.NewRateLimiter(5, time.Hour)
		probeLimiter = middleware.NewRateLimiter(1, time.Minute)
	}

	statusHandler := &handler.StatusHandler{Service: deps.Service}
	r.GET("/", middleware.RateLimit(healthLimiter, clientIP), statusHandler.Health)
	r.POST("/register-user", middleware.RateLimit(registerLimiter, clientIP), statusHandler.Register)
	r.POST("/update-status", middleware.RateLimit(updateLimiter, clientIP), statusHandler.Update)
	r.GET("/get-status", middleware.RateLimit(readLimiter, clientIP), statusHandler.Get)
	r.GET("/check-if-user-exists", statusHandler.Exists)
	r.DELETE("/delete-user", statusHandler.Delete)
	r.GET("/trigger-rate-limit", middleware.RateLimit(probeLimiter, clientIP), statusHandler.TriggerRateLimit)
	r.GET("/language-icon", statusHandler.LanguageIcon)

	watchHandler := &handler.WatchHandler{Hub: deps.Hub, Service: deps.Service}
	r.GET("/ws", watchHandler.Serve)

	return r
}
