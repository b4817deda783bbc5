package model

import "time"

// Limits on caller-supplied identifiers. The editor extension lets users pick
// both values freely, so these are sanity bounds rather than a format.
const (
	MaxUserIDLen    = 32
	MaxAuthTokenLen = 128
)

// StatusRecord is the per-user row backing the status API. StatusData is an
// opaque document: the store never inspects its keys. LastUpdated nil means
// there is no currently valid status, regardless of StatusData contents.
type StatusRecord struct {
	UserID      string
	AuthToken   string
	CreatedAt   time.Time
	LastUpdated *time.Time
	StatusData  map[string]any
}

// StatusView is the read projection returned by /get-status. When the status
// is expired or was never set, only UserID and an empty Status are populated.
type StatusView struct {
	UserID      string         `json:"user_id"`
	Status      map[string]any `json:"status"`
	LastUpdated *time.Time     `json:"last_updated,omitempty"`
	CreatedAt   *time.Time     `json:"created_at,omitempty"`
}

// TelemetryEvent is one observed request. Append-only; Timestamp is epoch
// seconds so range scans line up with the tracker's last_sent values.
type TelemetryEvent struct {
	ID        int64
	IP        string
	Endpoint  string
	Method    string
	Status    int
	Timestamp int64
}

// Count rows returned by the telemetry grouping queries. Ordering is applied
// by the aggregator, not the store.

type IPCount struct {
	IP    string
	Count int64
}

type EndpointCount struct {
	Endpoint string
	Count    int64
}

type IPEndpointCount struct {
	IP       string
	Endpoint string
	Count    int64
}

// StatusEvent is pushed to watch subscribers on update, expiry, and delete.
type StatusEvent struct {
	Type   string         `json:"type"`
	UserID string         `json:"user_id"`
	Status map[string]any `json:"status,omitempty"`
}

const (
	StatusEventUpdated = "updated"
	StatusEventCleared = "cleared"
	StatusEventDeleted = "deleted"
)
