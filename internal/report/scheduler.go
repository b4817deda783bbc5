package report

import (
	"context"
	"log"
	"time"

	"vscode-status-server/internal/telemetry"
)

// sendTimeout bounds one webhook call so a stalled sink never blocks the loop.
const sendTimeout = 10 * time.Second

// Sender delivers one rendered chunk to the notification sink.
type Sender interface {
	Send(ctx context.Context, content string) error
}

// Period is one scheduling cadence. Name doubles as a tracker key.
type Period struct {
	Name  string
	Every time.Duration
	// SeedFromNow starts a fresh tracker entry at now-Every instead of 0,
	// so short debug cadences do not flood the sink with a full-historical
	// report on first boot. Standard cadences keep the historical report.
	SeedFromNow bool
}

// Scheduler is the long-lived control loop. On each tick it checks every
// (type, period) pair, and for due pairs claims the window via the tracker's
// compare-and-swap before dispatching, so two processes sharing one database
// cannot both send the same window.
type Scheduler struct {
	tracker      telemetry.Tracker
	agg          *Aggregator
	sender       Sender
	periods      []Period
	types        []Type
	pollInterval time.Duration
	chunkDelay   time.Duration
	now          func() time.Time
	sleep        func(time.Duration)
}

func NewScheduler(tracker telemetry.Tracker, agg *Aggregator, sender Sender, periods []Period, pollInterval, chunkDelay time.Duration) *Scheduler {
	return &Scheduler{
		tracker:      tracker,
		agg:          agg,
		sender:       sender,
		periods:      periods,
		types:        AllTypes,
		pollInterval: pollInterval,
		chunkDelay:   chunkDelay,
		now:          time.Now,
		sleep:        time.Sleep,
	}
}

// Run ticks until ctx is cancelled. It never returns early: failures inside a
// tick are logged and the next tick proceeds.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("report: scheduler started (poll every %s)", s.pollInterval)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		s.safeTick(ctx)
		select {
		case <-ctx.Done():
			log.Print("report: scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("report: tick panic: %v", r)
		}
	}()
	s.Tick(ctx)
}

// Tick processes every (type, period) pair once, sequentially, so one key's
// chunks are never interleaved with another's in the sink.
func (s *Scheduler) Tick(ctx context.Context) {
	for _, p := range s.periods {
		for _, t := range s.types {
			if err := s.runKey(ctx, t, p); err != nil {
				log.Printf("report: %s %s: %v", p.Name, t, err)
			}
		}
	}
}

func (s *Scheduler) runKey(ctx context.Context, typ Type, p Period) error {
	now := s.now().UTC().Unix()

	last, err := s.tracker.LastSent(ctx, string(typ), p.Name)
	if err != nil {
		return err
	}
	if last == 0 && p.SeedFromNow {
		if err := s.tracker.Seed(ctx, string(typ), p.Name, now-int64(p.Every/time.Second)); err != nil {
			return err
		}
		// A just-seeded entry is never due; the first report covers the
		// first full interval after seeding.
		return nil
	}

	if now-last < int64(p.Every/time.Second) {
		return nil
	}

	chunks, err := s.agg.Build(ctx, typ, p.Name, last, now)
	if err != nil {
		return err
	}

	claimed, err := s.tracker.Claim(ctx, string(typ), p.Name, last, now)
	if err != nil {
		return err
	}
	if !claimed {
		// Another process owns this window.
		return nil
	}

	log.Printf("report: sending %s %s report (%d chunks)", p.Name, typ, len(chunks))
	for i, chunk := range chunks {
		if i > 0 {
			s.sleep(s.chunkDelay)
		}
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		if err := s.sender.Send(sendCtx, chunk); err != nil {
			// Delivery is best-effort: no retry, no rollback.
			log.Printf("report: send failed for %s %s: %v", p.Name, typ, err)
		}
		cancel()
	}
	return nil
}
