package participation

import (
	"context"
	"time"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/meetups"
)

// Transition describes one conditional participation change.
//
// The store applies it only if the meetup is still at MeetupVersion and the
// participation is still in From; otherwise it returns common.ErrStaleWrite.
// Delta is added to the meetup's participant count, which must stay within
// [0, capacity]. The meetup version is bumped.
type Transition struct {
	ParticipationID string
	MeetupID        string
	MeetupVersion   int64
	From            Status
	To              Status
	Delta           int
	At              time.Time
}

// Repository stores participations.
type Repository interface {
	GetMeetup(ctx context.Context, id string) (*meetups.Meetup, error)
	// CreateParticipation inserts p and bumps the meetup version in one
	// unit. Returns common.ErrAlreadyJoined if an active participation for
	// the same user exists.
	CreateParticipation(ctx context.Context, p *Participation, meetupVersion int64) error
	// FindActiveParticipation returns common.ErrNoSuchParticipation when the
	// user has no pending or approved participation.
	FindActiveParticipation(ctx context.Context, meetupID, userID string) (*Participation, error)
	TransitionParticipation(ctx context.Context, t Transition) error
	ListParticipations(ctx context.Context, meetupID string) ([]*Participation, error)
}
