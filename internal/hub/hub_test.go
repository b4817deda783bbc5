package hub

import (
	"encoding/json"
	"errors"
	"testing"

	"vscode-status-server/internal/model"
)

type fakeWriter struct {
	messages [][]byte
	failWith error
	closed   bool
}

func (w *fakeWriter) Write(message []byte) error {
	if w.failWith != nil {
		return w.failWith
	}
	w.messages = append(w.messages, message)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishReachesOnlyMatchingUser(t *testing.T) {
	h := New()
	w1 := &fakeWriter{}
	w2 := &fakeWriter{}
	h.Register(&Connection{UserID: "u1", Writer: w1})
	h.Register(&Connection{UserID: "u2", Writer: w2})

	h.Publish(model.StatusEvent{Type: model.StatusEventUpdated, UserID: "u1"})

	if len(w1.messages) != 1 {
		t.Fatalf("expected 1 message for u1, got %d", len(w1.messages))
	}
	if len(w2.messages) != 0 {
		t.Fatalf("expected no messages for u2, got %d", len(w2.messages))
	}

	var ev model.StatusEvent
	if err := json.Unmarshal(w1.messages[0], &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Type != model.StatusEventUpdated || ev.UserID != "u1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestPublishDropsFailedWriters(t *testing.T) {
	h := New()
	bad := &fakeWriter{failWith: errors.New("gone")}
	good := &fakeWriter{}
	h.Register(&Connection{UserID: "u1", Writer: bad})
	h.Register(&Connection{UserID: "u1", Writer: good})

	h.Publish(model.StatusEvent{Type: model.StatusEventUpdated, UserID: "u1"})

	if !bad.closed {
		t.Fatalf("expected failed writer to be closed")
	}

	// The dropped writer gets no further events.
	bad.failWith = nil
	h.Publish(model.StatusEvent{Type: model.StatusEventCleared, UserID: "u1"})
	if len(bad.messages) != 0 {
		t.Fatalf("dropped writer still receiving: %d", len(bad.messages))
	}
	if len(good.messages) != 2 {
		t.Fatalf("expected 2 messages for surviving writer, got %d", len(good.messages))
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	h := New()
	w := &fakeWriter{}
	conn := &Connection{UserID: "u1", Writer: w}
	h.Register(conn)
	h.Unregister(conn)

	h.Publish(model.StatusEvent{Type: model.StatusEventDeleted, UserID: "u1"})
	if len(w.messages) != 0 {
		t.Fatalf("expected no delivery after unregister, got %d", len(w.messages))
	}
}
