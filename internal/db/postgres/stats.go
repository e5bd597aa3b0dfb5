package postgres

import (
	"context"
	"fmt"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/attendance"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/meetups"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/participation"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/points"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/reputation"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/reviews"
)

// UserStats aggregates a user's history in one round trip.
// A completed meetup counts if the user hosted it or checked in to it.
func (s *Store) UserStats(ctx context.Context, userID string) (reputation.Stats, error) {
	var (
		joined, hosted, completed, written, received, noShows int64
		avg                                                   float64
	)
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM participations WHERE user_id = $1 AND status = 'approved'),
			(SELECT COUNT(*) FROM meetups WHERE host_id = $1 AND status <> 'cancelled'),
			(SELECT COUNT(*) FROM meetups WHERE host_id = $1 AND status = 'completed')
			+ (SELECT COUNT(*)
			   FROM participations p
			   JOIN meetups m ON m.id = p.meetup_id
			   WHERE p.user_id = $1 AND p.status = 'approved' AND m.status = 'completed'
			     AND EXISTS (
			         SELECT 1 FROM attendance_records a
			         WHERE a.meetup_id = p.meetup_id AND a.user_id = $1 AND a.status = 'confirmed'
			     )),
			(SELECT COUNT(*) FROM meetup_reviews WHERE reviewer_id = $1)
			+ (SELECT COUNT(*) FROM peer_reviews WHERE reviewer_id = $1),
			(SELECT COUNT(*) FROM peer_reviews WHERE reviewee_id = $1),
			(SELECT COALESCE(AVG(rating), 0)::float8 FROM peer_reviews WHERE reviewee_id = $1),
			(SELECT COUNT(*) FROM noshow_penalties WHERE user_id = $1)
	`, userID).Scan(&joined, &hosted, &completed, &written, &received, &avg, &noShows)
	if err != nil {
		return reputation.Stats{}, fmt.Errorf("failed to aggregate user stats: %w", err)
	}

	return reputation.Stats{
		JoinedMeetups:    int(joined),
		HostedMeetups:    int(hosted),
		CompletedMeetups: int(completed),
		ReviewsWritten:   int(written),
		AverageRating:    avg,
		RatingsReceived:  int(received),
		NoShowPenalties:  int(noShows),
	}, nil
}

var (
	_ meetups.Repository       = (*Store)(nil)
	_ participation.Repository = (*Store)(nil)
	_ attendance.Repository    = (*Store)(nil)
	_ reviews.Repository       = (*Store)(nil)
	_ points.Repository        = (*Store)(nil)
	_ reputation.StatsSource   = (*Store)(nil)
)
