// Package store persists user status records.
package store

import (
	"context"
	"errors"
	"time"

	"vscode-status-server/internal/model"
)

var (
	// ErrNotFound is returned when no record exists for the user id.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned by Create when the user id is already taken.
	ErrConflict = errors.New("user already exists")
)

// Repository defines persistence for status records. Every method is atomic
// per record; no multi-record transactions exist in this service.
type Repository interface {
	// Create persists a new record. Returns ErrConflict if the user id is taken.
	Create(ctx context.Context, rec *model.StatusRecord) error
	// Get returns the record for userID, or nil if not found.
	// It returns an error only for storage failures, not for missing rows.
	Get(ctx context.Context, userID string) (*model.StatusRecord, error)
	// UpdateStatus replaces the status document wholesale and sets
	// last_updated to now. Returns ErrNotFound for unknown users.
	UpdateStatus(ctx context.Context, userID string, data map[string]any, now time.Time) error
	// ClearStatus empties the status document and nulls last_updated.
	// Returns ErrNotFound for unknown users.
	ClearStatus(ctx context.Context, userID string) error
	// Delete removes the record permanently. Returns ErrNotFound for unknown users.
	Delete(ctx context.Context, userID string) error
}
