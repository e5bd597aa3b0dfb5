package postgres

import (
	"context"
	"fmt"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/reviews"
)

func (s *Store) CreateReview(ctx context.Context, r *reviews.Review) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO meetup_reviews (id, meetup_id, reviewer_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.ID, r.MeetupID, r.ReviewerID, r.Rating, r.Comment, r.CreatedAt)
	if isUniqueViolation(err) {
		return common.ErrDuplicateReview
	}
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (s *Store) CreatePeerReview(ctx context.Context, r *reviews.PeerReview) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO peer_reviews (id, meetup_id, reviewer_id, reviewee_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.ID, r.MeetupID, r.ReviewerID, r.RevieweeID, r.Rating, r.Comment, r.CreatedAt)
	if isUniqueViolation(err) {
		return common.ErrDuplicateReview
	}
	if err != nil {
		return fmt.Errorf("failed to create peer review: %w", err)
	}
	return nil
}

func (s *Store) ListReviews(ctx context.Context, meetupID string) ([]*reviews.Review, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, meetup_id, reviewer_id, rating, comment, created_at
		FROM meetup_reviews
		WHERE meetup_id = $1
		ORDER BY created_at
	`, meetupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var out []*reviews.Review
	for rows.Next() {
		var r reviews.Review
		if err := rows.Scan(&r.ID, &r.MeetupID, &r.ReviewerID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
