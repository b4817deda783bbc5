package store

import (
	"context"
	"sync"
	"time"

	"vscode-status-server/internal/model"
)

// MemoryStore is an in-memory Repository. Used when no DATABASE_URL is
// configured and by tests. The single mutex serializes all operations on a
// record, which is the same per-record discipline the Postgres store gets
// from single-statement transactions.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.StatusRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]model.StatusRecord)}
}

func (s *MemoryStore) Create(_ context.Context, rec *model.StatusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.UserID]; ok {
		return ErrConflict
	}

	stored := *rec
	stored.StatusData = cloneData(rec.StatusData)
	s.records[rec.UserID] = stored
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*model.StatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	out := rec
	out.StatusData = cloneData(rec.StatusData)
	return &out, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, userID string, data map[string]any, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok {
		return ErrNotFound
	}
	rec.StatusData = cloneData(data)
	rec.LastUpdated = &now
	s.records[userID] = rec
	return nil
}

func (s *MemoryStore) ClearStatus(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok {
		return ErrNotFound
	}
	rec.StatusData = map[string]any{}
	rec.LastUpdated = nil
	s.records[userID] = rec
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[userID]; !ok {
		return ErrNotFound
	}
	delete(s.records, userID)
	return nil
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
