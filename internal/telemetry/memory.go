package telemetry

import (
	"context"
	"sync"

	"vscode-status-server/internal/model"
)

// MemoryLog is an in-memory Log for development and tests.
type MemoryLog struct {
	mu     sync.RWMutex
	events []model.TelemetryEvent
	nextID int64
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{nextID: 1}
}

func (l *MemoryLog) Append(_ context.Context, ev *model.TelemetryEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored := *ev
	stored.ID = l.nextID
	l.nextID++
	l.events = append(l.events, stored)
	ev.ID = stored.ID
	return nil
}

func (l *MemoryLog) CountByIP(_ context.Context, start, end int64) ([]model.IPCount, error) {
	counts := make(map[string]int64)
	l.eachInWindow(start, end, func(ev *model.TelemetryEvent) {
		counts[ev.IP]++
	})

	out := make([]model.IPCount, 0, len(counts))
	for ip, n := range counts {
		out = append(out, model.IPCount{IP: ip, Count: n})
	}
	return out, nil
}

func (l *MemoryLog) CountByEndpoint(_ context.Context, start, end int64) ([]model.EndpointCount, error) {
	counts := make(map[string]int64)
	l.eachInWindow(start, end, func(ev *model.TelemetryEvent) {
		counts[ev.Endpoint]++
	})

	out := make([]model.EndpointCount, 0, len(counts))
	for endpoint, n := range counts {
		out = append(out, model.EndpointCount{Endpoint: endpoint, Count: n})
	}
	return out, nil
}

func (l *MemoryLog) CountByIPEndpoint(_ context.Context, start, end int64) ([]model.IPEndpointCount, error) {
	type key struct{ ip, endpoint string }
	counts := make(map[key]int64)
	l.eachInWindow(start, end, func(ev *model.TelemetryEvent) {
		counts[key{ev.IP, ev.Endpoint}]++
	})

	out := make([]model.IPEndpointCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.IPEndpointCount{IP: k.ip, Endpoint: k.endpoint, Count: n})
	}
	return out, nil
}

func (l *MemoryLog) eachInWindow(start, end int64, fn func(*model.TelemetryEvent)) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := range l.events {
		if l.events[i].Timestamp >= start && l.events[i].Timestamp < end {
			fn(&l.events[i])
		}
	}
}

// MemoryTracker is an in-memory Tracker for development and tests.
type MemoryTracker struct {
	mu       sync.Mutex
	lastSent map[string]int64
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{lastSent: make(map[string]int64)}
}

func trackerKey(reportType, period string) string {
	return reportType + "|" + period
}

func (t *MemoryTracker) LastSent(_ context.Context, reportType, period string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.lastSent[trackerKey(reportType, period)], nil
}

func (t *MemoryTracker) Seed(_ context.Context, reportType, period string, lastSent int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := trackerKey(reportType, period)
	if _, ok := t.lastSent[key]; !ok {
		t.lastSent[key] = lastSent
	}
	return nil
}

func (t *MemoryTracker) Claim(_ context.Context, reportType, period string, expected, now int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := trackerKey(reportType, period)
	if t.lastSent[key] != expected {
		return false, nil
	}
	t.lastSent[key] = now
	return true, nil
}
