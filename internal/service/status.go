// Package service implements the status operations on top of the record store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"vscode-status-server/internal/model"
	"vscode-status-server/internal/store"
)

var (
	// ErrNotFound is returned for operations on an unregistered user id.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned when registering an already-taken user id.
	ErrConflict = errors.New("user already exists")
	// ErrUnauthorized is returned when the presented token does not match.
	ErrUnauthorized = errors.New("authentication failed")
	// ErrValidation wraps rejected input (missing or oversized fields).
	ErrValidation = errors.New("invalid input")
)

// Publisher receives status events for watch subscribers. May be nil.
type Publisher interface {
	Publish(event model.StatusEvent)
}

// StatusService orchestrates registration, authenticated updates, reads with
// lazy TTL expiry, existence checks, and deletion.
type StatusService struct {
	store store.Repository
	pub   Publisher
	ttl   time.Duration
	now   func() time.Time
}

func New(repo store.Repository, pub Publisher, ttl time.Duration) *StatusService {
	return NewWithClock(repo, pub, ttl, time.Now)
}

func NewWithClock(repo store.Repository, pub Publisher, ttl time.Duration, now func() time.Time) *StatusService {
	return &StatusService{store: repo, pub: pub, ttl: ttl, now: now}
}

// Register creates a record with an empty status and no last_updated. The
// token is fixed at creation and never rotated.
func (s *StatusService) Register(ctx context.Context, userID, token string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrValidation)
	}
	if len(token) > model.MaxAuthTokenLen {
		return fmt.Errorf("%w: token exceeds %d characters", ErrValidation, model.MaxAuthTokenLen)
	}

	rec := &model.StatusRecord{
		UserID:     userID,
		AuthToken:  token,
		CreatedAt:  s.now().UTC(),
		StatusData: map[string]any{},
	}
	if err := s.store.Create(ctx, rec); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// Update replaces the status document wholesale and stamps last_updated.
// It deliberately does not auto-register unknown users; registration is a
// separate, required step.
func (s *StatusService) Update(ctx context.Context, userID, token string, data map[string]any) error {
	if err := validateUserID(userID); err != nil {
		return err
	}

	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}
	if !authenticate(rec, token) {
		return ErrUnauthorized
	}

	if data == nil {
		data = map[string]any{}
	}
	now := s.now().UTC()
	if err := s.store.UpdateStatus(ctx, userID, data, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	fields := model.ProjectKnownFields(data)
	log.Printf("service: status updated for user %s (language=%q, file=%q, debugging=%t)",
		userID, fields.Language, fields.FileName, fields.IsDebugging)

	s.publish(model.StatusEvent{Type: model.StatusEventUpdated, UserID: userID, Status: data})
	return nil
}

// Read applies lazy TTL expiry, then returns the projection. An expired or
// never-set status yields the minimal shape: user id and an empty status,
// without timestamps.
func (s *StatusService) Read(ctx context.Context, userID string) (*model.StatusView, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	if err := s.expire(ctx, userID); err != nil {
		return nil, err
	}

	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	if rec.LastUpdated == nil || len(rec.StatusData) == 0 {
		return &model.StatusView{UserID: rec.UserID, Status: map[string]any{}}, nil
	}

	created := rec.CreatedAt
	return &model.StatusView{
		UserID:      rec.UserID,
		Status:      rec.StatusData,
		LastUpdated: rec.LastUpdated,
		CreatedAt:   &created,
	}, nil
}

// Exists reports whether a record is present, irrespective of expiry state.
func (s *StatusService) Exists(ctx context.Context, userID string) (bool, error) {
	if err := validateUserID(userID); err != nil {
		return false, err
	}
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// Delete removes the record permanently after checking the token.
func (s *StatusService) Delete(ctx context.Context, userID, token string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}

	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}
	if !authenticate(rec, token) {
		return ErrUnauthorized
	}

	if err := s.store.Delete(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.publish(model.StatusEvent{Type: model.StatusEventDeleted, UserID: userID})
	return nil
}

// expire clears the status when it is older than the TTL window. Expiry is
// checked only here, on read; there is no background sweep, so stale rows
// stay in storage until read or deleted.
func (s *StatusService) expire(ctx context.Context, userID string) error {
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}

	if rec.LastUpdated == nil {
		if len(rec.StatusData) == 0 {
			return nil
		}
		return s.store.ClearStatus(ctx, userID)
	}

	if s.now().UTC().Sub(*rec.LastUpdated) > s.ttl {
		if err := s.store.ClearStatus(ctx, userID); err != nil {
			return err
		}
		log.Printf("service: cleared stale status for user %s (last updated %s)", userID, rec.LastUpdated.Format(time.RFC3339))
		s.publish(model.StatusEvent{Type: model.StatusEventCleared, UserID: userID})
	}
	return nil
}

func (s *StatusService) publish(event model.StatusEvent) {
	if s.pub != nil {
		s.pub.Publish(event)
	}
}

// authenticate fails closed: missing record or token mismatch is false.
// Comparison is exact string equality on the opaque shared token.
func authenticate(rec *model.StatusRecord, token string) bool {
	return rec != nil && token != "" && rec.AuthToken == token
}

func validateUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: userId is required", ErrValidation)
	}
	if len(userID) > model.MaxUserIDLen {
		return fmt.Errorf("%w: userId exceeds %d characters", ErrValidation, model.MaxUserIDLen)
	}
	return nil
}
