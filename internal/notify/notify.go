// Package notify delivers state-transition alerts out of band.
//
// Services call Notifier.Notify after a transition is stored. Delivery
// happens later on a background goroutine, so a slow or failing sink never
// rolls back or delays the transition itself.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
)

// Kind names a transition worth telling someone about.
type Kind string

const (
	KindJoinRequested          Kind = "join_requested"
	KindJoinApproved           Kind = "join_approved"
	KindJoinRejected           Kind = "join_rejected"
	KindParticipationCancelled Kind = "participation_cancelled"
	KindMeetupConfirmed        Kind = "meetup_confirmed"
	KindMeetupCancelled        Kind = "meetup_cancelled"
	KindMeetupCompleted        Kind = "meetup_completed"
	KindPenaltyApplied         Kind = "penalty_applied"
)

// Event is one notification.
type Event struct {
	Kind     Kind
	MeetupID string
	Title    string   // meetup title, if known
	UserIDs  []string // recipients
	Amount   int64    // penalties only
	Reason   string
	At       time.Time
}

// Notifier accepts events. Implementations must not block for long and
// must never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Format renders an event as a short human-readable message.
func Format(e Event, loc *time.Location) string {
	name := e.Title
	if name == "" {
		name = e.MeetupID
	}

	var b strings.Builder
	switch e.Kind {
	case KindJoinRequested:
		fmt.Fprintf(&b, "New join request for \"%s\"", name)
	case KindJoinApproved:
		fmt.Fprintf(&b, "Your request to join \"%s\" was approved", name)
	case KindJoinRejected:
		fmt.Fprintf(&b, "Your request to join \"%s\" was declined", name)
	case KindParticipationCancelled:
		fmt.Fprintf(&b, "A participant left \"%s\"", name)
	case KindMeetupConfirmed:
		fmt.Fprintf(&b, "\"%s\" is confirmed", name)
	case KindMeetupCancelled:
		fmt.Fprintf(&b, "\"%s\" was cancelled by the host", name)
	case KindMeetupCompleted:
		fmt.Fprintf(&b, "\"%s\" is completed, you can leave a review now", name)
	case KindPenaltyApplied:
		fmt.Fprintf(&b, "No-show penalty for \"%s\": %s", name, common.FormatPointsAmount(-e.Amount))
		if e.Reason != "" {
			fmt.Fprintf(&b, " (%s)", e.Reason)
		}
	default:
		fmt.Fprintf(&b, "%s: \"%s\"", e.Kind, name)
	}

	if len(e.UserIDs) > 0 {
		fmt.Fprintf(&b, "\nTo: %s", strings.Join(e.UserIDs, ", "))
	}
	if !e.At.IsZero() {
		fmt.Fprintf(&b, "\n%s", common.FormatDateTime(e.At, loc))
	}
	return b.String()
}
