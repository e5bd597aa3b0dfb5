package attendance

import (
	"context"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/meetups"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/participation"
)

// Repository stores check-in records and penalties.
type Repository interface {
	GetMeetup(ctx context.Context, id string) (*meetups.Meetup, error)
	FindActiveParticipation(ctx context.Context, meetupID, userID string) (*participation.Participation, error)
	// CreateRecord returns common.ErrAlreadyCheckedIn when r is confirmed
	// and a confirmed record for the same user and meetup exists.
	CreateRecord(ctx context.Context, r *Record) error
	HasConfirmedRecord(ctx context.Context, meetupID, userID string) (bool, error)
	ListRecords(ctx context.Context, meetupID string) ([]*Record, error)
	// CreatePenalty reports false when the user was already penalised for
	// this meetup.
	CreatePenalty(ctx context.Context, p *Penalty) (bool, error)
}

// PointsLedger deducts points. Calls with the same key are applied once.
type PointsLedger interface {
	ApplyPenalty(ctx context.Context, userID string, amount int64, reason, key string) (bool, error)
}
