package telemetry

import (
	"context"
	"log"
	"time"

	"vscode-status-server/internal/model"
)

// appendTimeout bounds a single async append so a slow database cannot pile
// up goroutines behind the request path.
const appendTimeout = 5 * time.Second

// Recorder appends events to the log without ever blocking or failing the
// request that produced them. Append errors are logged and dropped.
type Recorder struct {
	log Log
}

func NewRecorder(l Log) *Recorder {
	return &Recorder{log: l}
}

// Record appends the event in a goroutine. It uses context.Background so
// request cancellation does not abort an in-flight append.
func (r *Recorder) Record(ev *model.TelemetryEvent) {
	if r == nil || r.log == nil || ev == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		defer cancel()
		if err := r.log.Append(ctx, ev); err != nil {
			log.Printf("telemetry: append failed: %v", err)
		}
	}()
}
