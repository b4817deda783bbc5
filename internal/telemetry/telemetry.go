// Package telemetry stores per-request events and the report tracker used
// for idempotent report scheduling.
package telemetry

import (
	"context"

	"vscode-status-server/internal/model"
)

// Log is the append-only request log with the grouping queries the reports
// are built from. Windows are half-open: [start, end) in epoch seconds.
type Log interface {
	Append(ctx context.Context, ev *model.TelemetryEvent) error
	CountByIP(ctx context.Context, start, end int64) ([]model.IPCount, error)
	CountByEndpoint(ctx context.Context, start, end int64) ([]model.EndpointCount, error)
	CountByIPEndpoint(ctx context.Context, start, end int64) ([]model.IPEndpointCount, error)
}

// Tracker records the last successful send per (report type, period) pair.
type Tracker interface {
	// LastSent returns the last sent timestamp for the pair, 0 if absent.
	LastSent(ctx context.Context, reportType, period string) (int64, error)
	// Seed inserts an entry only if none exists. Used to start debug
	// cadences from "just now" instead of flooding with history.
	Seed(ctx context.Context, reportType, period string, lastSent int64) error
	// Claim advances last_sent from expected to now in one conditional
	// update. Returns false if another process got there first. When
	// expected is 0 and no entry exists, claiming creates the entry.
	Claim(ctx context.Context, reportType, period string, expected, now int64) (bool, error)
}
