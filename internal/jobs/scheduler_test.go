package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCompleter struct {
	calls []time.Time
	n     int
	err   error
}

func (f *fakeCompleter) CompleteDue(_ context.Context, now time.Time) (int, error) {
	f.calls = append(f.calls, now)
	return f.n, f.err
}

func TestRunCompletionPassesClock(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	fc := &fakeCompleter{n: 2}
	s := NewScheduler(fc, "*/5 * * * *", time.UTC)
	s.now = func() time.Time { return fixed }

	s.RunCompletion(context.Background())

	if len(fc.calls) != 1 || !fc.calls[0].Equal(fixed) {
		t.Fatalf("calls = %v, want one call at %v", fc.calls, fixed)
	}
}

func TestRunCompletionSurvivesError(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("db down")}
	s := NewScheduler(fc, "*/5 * * * *", time.UTC)

	s.RunCompletion(context.Background())
	s.RunCompletion(context.Background())

	if len(fc.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(fc.calls))
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&fakeCompleter{}, "not a cron spec", time.UTC)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(&fakeCompleter{}, "@every 1h", time.UTC)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
