package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"vscode-status-server/internal/model"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rec := &model.StatusRecord{UserID: "u1", AuthToken: "t1", CreatedAt: created, StatusData: map[string]any{}}
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatalf("expected record")
	}
	if got.AuthToken != "t1" || !got.CreatedAt.Equal(created) || got.LastUpdated != nil {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestMemoryStore_CreateConflict(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Create(ctx, &model.StatusRecord{UserID: "u1", AuthToken: "t1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := s.Create(ctx, &model.StatusRecord{UserID: "u1", AuthToken: "other"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	got, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing record, got %+v", got)
	}
}

func TestMemoryStore_UpdateAndClearStatus(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if err := s.Create(ctx, &model.StatusRecord{UserID: "u1", AuthToken: "t1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.UpdateStatus(ctx, "u1", map[string]any{"language": "go"}, now); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, _ := s.Get(ctx, "u1")
	if got.LastUpdated == nil || !got.LastUpdated.Equal(now) {
		t.Fatalf("expected last_updated %v, got %v", now, got.LastUpdated)
	}
	if got.StatusData["language"] != "go" {
		t.Fatalf("unexpected status data: %v", got.StatusData)
	}

	if err := s.ClearStatus(ctx, "u1"); err != nil {
		t.Fatalf("ClearStatus: %v", err)
	}
	got, _ = s.Get(ctx, "u1")
	if got.LastUpdated != nil || len(got.StatusData) != 0 {
		t.Fatalf("expected cleared record, got %+v", got)
	}
}

func TestMemoryStore_UpdateMissing(t *testing.T) {
	s := NewMemoryStore()

	err := s.UpdateStatus(context.Background(), "nope", map[string]any{}, time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Create(ctx, &model.StatusRecord{UserID: "u1", AuthToken: "t1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.Get(ctx, "u1"); got != nil {
		t.Fatalf("expected record gone")
	}
	if err := s.Delete(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Create(ctx, &model.StatusRecord{UserID: "u1", AuthToken: "t1", StatusData: map[string]any{"k": "v"}}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, _ := s.Get(ctx, "u1")
	got.StatusData["k"] = "mutated"

	again, _ := s.Get(ctx, "u1")
	if again.StatusData["k"] != "v" {
		t.Fatalf("store leaked internal map")
	}
}
