package reputation

import (
	"context"
	"time"
)

// StatsSource aggregates a user's history.
type StatsSource interface {
	UserStats(ctx context.Context, userID string) (Stats, error)
}

// Service computes scores on read.
type Service struct {
	source StatsSource
	policy Policy
}

func NewService(source StatsSource, policy Policy) *Service {
	return &Service{source: source, policy: policy}
}

// Score reads the user's stats and computes the current score.
func (s *Service) Score(ctx context.Context, userID string) (*Score, error) {
	stats, err := s.source.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Score{
		UserID:     userID,
		Value:      ComputeScore(stats, s.policy),
		Stats:      stats,
		ComputedAt: time.Now().UTC(),
	}, nil
}
