package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"vscode-status-server/internal/model"
)

// EventRecorder accepts telemetry events without blocking the request path.
type EventRecorder interface {
	Record(ev *model.TelemetryEvent)
}

// ClientIP resolves the caller address. Behind the Cloudflare tunnel the
// socket peer is the tunnel, so CF-Connecting-IP is authoritative.
func ClientIP(cloudflareTunnel bool) func(*gin.Context) string {
	return func(c *gin.Context) string {
		if cloudflareTunnel {
			if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
				return ip
			}
			log.Print("middleware: CF-Connecting-IP missing with CLOUDFLARE_TUNNEL enabled; falling back to peer address")
		}
		return c.ClientIP()
	}
}

// Telemetry records (ip, path, method, status) for every completed request.
// A nil recorder disables recording.
func Telemetry(rec EventRecorder, clientIP func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if rec == nil {
			return
		}
		rec.Record(&model.TelemetryEvent{
			IP:        clientIP(c),
			Endpoint:  c.Request.URL.Path,
			Method:    c.Request.Method,
			Status:    c.Writer.Status(),
			Timestamp: time.Now().UTC().Unix(),
		})
	}
}
