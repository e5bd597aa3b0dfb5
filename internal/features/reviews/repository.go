package reviews

import (
	"context"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/meetups"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/participation"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/reputation"
)

// Repository stores reviews.
type Repository interface {
	GetMeetup(ctx context.Context, id string) (*meetups.Meetup, error)
	FindActiveParticipation(ctx context.Context, meetupID, userID string) (*participation.Participation, error)
	// CreateReview returns common.ErrDuplicateReview if the reviewer
	// already reviewed the meetup.
	CreateReview(ctx context.Context, r *Review) error
	// CreatePeerReview returns common.ErrDuplicateReview for a repeated
	// (reviewer, reviewee, meetup).
	CreatePeerReview(ctx context.Context, r *PeerReview) error
	ListReviews(ctx context.Context, meetupID string) ([]*Review, error)
}

// Scorer recomputes a user's reputation.
type Scorer interface {
	Score(ctx context.Context, userID string) (*reputation.Score, error)
}
