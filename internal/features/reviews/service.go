// Package reviews: service.go checks eligibility and records reviews.
package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/meetups"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/participation"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/reputation"
)

// maxCommentLen caps stored comments, in runes.
const maxCommentLen = 1000

// Service is the review ledger.
type Service struct {
	repo   Repository
	scorer Scorer
}

func NewService(repo Repository, scorer Scorer) *Service {
	return &Service{repo: repo, scorer: scorer}
}

// SubmitMeetupReview records the reviewer's rating of a completed meetup.
// The reviewer must be the host or an approved participant, and now must
// be after the scheduled time. Eligibility is checked before the rating.
func (s *Service) SubmitMeetupReview(ctx context.Context, meetupID, reviewerID string, rating int, comment string, now time.Time) (*Review, error) {
	m, err := s.repo.GetMeetup(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	if m.Status != meetups.StatusCompleted || !now.After(m.ScheduledAt) {
		return nil, common.ErrNotEligible
	}
	member, err := s.isMember(ctx, m, reviewerID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, common.ErrNotEligible
	}
	if !validRating(rating) {
		return nil, common.ErrInvalidRating
	}

	r := &Review{
		ID:         uuid.NewString(),
		MeetupID:   m.ID,
		ReviewerID: reviewerID,
		Rating:     rating,
		Comment:    trimComment(comment),
		CreatedAt:  now.UTC(),
	}
	if err := s.repo.CreateReview(ctx, r); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"meetup_id":   m.ID,
		"reviewer_id": reviewerID,
		"rating":      rating,
	}).Info("Meetup review submitted")
	return r, nil
}

// SubmitPeerReview records a rating of another participant of the same
// completed meetup and returns the reviewee's recomputed reputation.
func (s *Service) SubmitPeerReview(ctx context.Context, meetupID, reviewerID, revieweeID string, rating int, comment string) (*PeerReview, *reputation.Score, error) {
	if reviewerID == revieweeID {
		return nil, nil, common.ErrSelfReview
	}
	if !validRating(rating) {
		return nil, nil, common.ErrInvalidRating
	}

	m, err := s.repo.GetMeetup(ctx, meetupID)
	if err != nil {
		return nil, nil, err
	}
	if m.Status != meetups.StatusCompleted {
		return nil, nil, common.ErrNotEligible
	}
	for _, userID := range []string{reviewerID, revieweeID} {
		member, err := s.isMember(ctx, m, userID)
		if err != nil {
			return nil, nil, err
		}
		if !member {
			return nil, nil, common.ErrNotCoParticipant
		}
	}

	r := &PeerReview{
		ID:         uuid.NewString(),
		MeetupID:   m.ID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     rating,
		Comment:    trimComment(comment),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreatePeerReview(ctx, r); err != nil {
		return nil, nil, err
	}

	log.WithFields(log.Fields{
		"meetup_id":   m.ID,
		"reviewer_id": reviewerID,
		"reviewee_id": revieweeID,
		"rating":      rating,
	}).Info("Peer review submitted")

	score, err := s.scorer.Score(ctx, revieweeID)
	if err != nil {
		return nil, nil, err
	}
	return r, score, nil
}

// List returns the meetup's reviews.
func (s *Service) List(ctx context.Context, meetupID string) ([]*Review, error) {
	if _, err := s.repo.GetMeetup(ctx, meetupID); err != nil {
		return nil, err
	}
	return s.repo.ListReviews(ctx, meetupID)
}

// isMember reports whether userID hosts m or holds an approved seat.
func (s *Service) isMember(ctx context.Context, m *meetups.Meetup, userID string) (bool, error) {
	if m.IsHost(userID) {
		return true, nil
	}
	p, err := s.repo.FindActiveParticipation(ctx, m.ID, userID)
	if errors.Is(err, common.ErrNoSuchParticipation) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.Status == participation.StatusApproved, nil
}

func trimComment(c string) string {
	c = strings.TrimSpace(c)
	if r := []rune(c); len(r) > maxCommentLen {
		return string(r[:maxCommentLen])
	}
	return c
}
