package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type memorySink struct {
	name string
	fail bool

	mu     sync.Mutex
	events []Event
}

func (s *memorySink) Name() string { return s.name }

func (s *memorySink) Deliver(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	if s.fail {
		return errors.New("sink unavailable")
	}
	return nil
}

func (s *memorySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestDispatcherFansOutToEverySink(t *testing.T) {
	broken := &memorySink{name: "broken", fail: true}
	healthy := &memorySink{name: "healthy"}

	d := NewDispatcher(8, broken, healthy)
	d.Start(context.Background())

	d.Notify(context.Background(), Event{Kind: KindMeetupConfirmed, MeetupID: "m1"})
	d.Notify(context.Background(), Event{Kind: KindMeetupCancelled, MeetupID: "m1"})
	d.Close()

	if broken.count() != 2 || healthy.count() != 2 {
		t.Fatalf("expected both sinks to see 2 events, got broken=%d healthy=%d", broken.count(), healthy.count())
	}
	if healthy.events[0].At.IsZero() {
		t.Fatalf("expected Notify to stamp the event time")
	}
}

func TestDispatcherDropsAfterClose(t *testing.T) {
	sink := &memorySink{name: "s"}
	d := NewDispatcher(1, sink)
	d.Start(context.Background())
	d.Close()
	d.Close()

	d.Notify(context.Background(), Event{Kind: KindJoinApproved})
	if sink.count() != 0 {
		t.Fatalf("expected no delivery after close, got %d", sink.count())
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	sink := &memorySink{name: "s"}
	d := NewDispatcher(2, sink)

	// Not started: nothing drains the queue.
	for i := 0; i < 5; i++ {
		d.Notify(context.Background(), Event{Kind: KindJoinRequested})
	}
	if len(d.queue) != 2 {
		t.Fatalf("expected queue to hold 2 events, got %d", len(d.queue))
	}

	d.Start(context.Background())
	d.Close()
	if sink.count() != 2 {
		t.Fatalf("expected 2 delivered events, got %d", sink.count())
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Notify(context.Background(), Event{Kind: KindPenaltyApplied})
	r.Notify(context.Background(), Event{Kind: KindPenaltyApplied})
	r.Notify(context.Background(), Event{Kind: KindJoinApproved})

	if r.Count(KindPenaltyApplied) != 2 {
		t.Fatalf("expected 2 penalty events, got %d", r.Count(KindPenaltyApplied))
	}
	if len(r.Events()) != 3 {
		t.Fatalf("expected 3 events, got %d", len(r.Events()))
	}
}

func TestFormatPenalty(t *testing.T) {
	at := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
	text := Format(Event{
		Kind:    KindPenaltyApplied,
		Title:   "Friday dinner",
		UserIDs: []string{"u1"},
		Amount:  50,
		Reason:  "no check-in",
		At:      at,
	}, time.UTC)

	for _, want := range []string{"Friday dinner", "-50 points", "no check-in", "u1", "2026-03-14 19:30"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in %q", want, text)
		}
	}
}
