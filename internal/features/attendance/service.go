// Package attendance: service.go validates check-in attempts and applies
// no-show penalties.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/config"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/meetups"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/participation"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/geo"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/notify"
)

// Service is the attendance verifier.
type Service struct {
	repo     Repository
	points   PointsLedger
	notifier notify.Notifier
	signer   *TokenSigner
	cfg      *config.Config
}

// NewService creates the attendance service.
func NewService(repo Repository, points PointsLedger, notifier notify.Notifier, cfg *config.Config) *Service {
	return &Service{
		repo:     repo,
		points:   points,
		notifier: notifier,
		signer:   NewTokenSigner(cfg.CheckInTokenSecret, cfg.CheckInTokenTTL),
		cfg:      cfg,
	}
}

// GenerateCheckInToken issues a QR token for a confirmed meetup. Host only.
func (s *Service) GenerateCheckInToken(ctx context.Context, meetupID, actorID string, now time.Time) (*Token, error) {
	m, err := s.repo.GetMeetup(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	if !m.IsHost(actorID) {
		return nil, common.ErrNotHost
	}
	if m.Status != meetups.StatusConfirmed {
		return nil, common.ErrInvalidTransition
	}

	t := s.signer.Issue(m.ID, now)
	log.WithFields(log.Fields{
		"meetup_id":  m.ID,
		"expires_at": t.ExpiresAt,
	}).Debug("Check-in token issued")
	return &t, nil
}

// CheckInWithToken confirms attendance by a scanned QR token.
// A bad token is stored as a rejected attempt and reported as ErrInvalidToken.
func (s *Service) CheckInWithToken(ctx context.Context, meetupID, userID, token string, now time.Time) (*Record, error) {
	m, err := s.checkInTarget(ctx, meetupID, userID, now)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:        uuid.NewString(),
		MeetupID:  m.ID,
		UserID:    userID,
		Method:    MethodQR,
		Status:    RecordConfirmed,
		CreatedAt: now.UTC(),
	}

	if err := s.signer.Verify(token, m.ID, now); err != nil {
		rec.Status = RecordRejected
		rec.Reason = ReasonInvalidToken
		s.storeRejected(ctx, rec)
		return nil, err
	}

	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"meetup_id": m.ID,
		"user_id":   userID,
		"method":    MethodQR,
	}).Info("Checked in")
	return rec, nil
}

// CheckInWithLocation confirms attendance by a GPS fix. A fix farther than
// the configured radius is stored as a rejected attempt and reported as
// ErrOutOfRange.
func (s *Service) CheckInWithLocation(ctx context.Context, meetupID, userID string, lat, lon float64, now time.Time) (*Record, error) {
	if !geo.ValidCoordinates(lat, lon) {
		return nil, common.ErrInvalidCoordinates
	}

	m, err := s.checkInTarget(ctx, meetupID, userID, now)
	if err != nil {
		return nil, err
	}

	dist := geo.Distance(m.Location.Lat, m.Location.Lon, lat, lon)
	rec := &Record{
		ID:             uuid.NewString(),
		MeetupID:       m.ID,
		UserID:         userID,
		Method:         MethodGPS,
		Lat:            &lat,
		Lon:            &lon,
		DistanceMeters: &dist,
		Status:         RecordConfirmed,
		CreatedAt:      now.UTC(),
	}

	if dist > s.cfg.CheckInRadiusMeters {
		rec.Status = RecordRejected
		rec.Reason = ReasonOutOfRange
		s.storeRejected(ctx, rec)
		return nil, common.ErrOutOfRange
	}

	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"meetup_id": m.ID,
		"user_id":   userID,
		"method":    MethodGPS,
		"distance":  fmt.Sprintf("%.1fm", dist),
	}).Info("Checked in")
	return rec, nil
}

// checkInTarget runs the checks shared by both check-in methods and
// returns the meetup.
//
// Order: approved participation, confirmed meetup, check-in window,
// no earlier confirmed check-in.
func (s *Service) checkInTarget(ctx context.Context, meetupID, userID string, now time.Time) (*meetups.Meetup, error) {
	m, err := s.repo.GetMeetup(ctx, meetupID)
	if err != nil {
		return nil, err
	}

	if err := s.requireApproved(ctx, meetupID, userID); err != nil {
		return nil, err
	}
	if m.Status != meetups.StatusConfirmed {
		return nil, common.ErrInvalidTransition
	}

	opens := m.ScheduledAt.Add(-s.cfg.CheckInWindowBefore)
	closes := m.ScheduledAt.Add(s.cfg.CheckInWindowAfter)
	if now.Before(opens) || now.After(closes) {
		return nil, common.ErrCheckInClosed
	}

	done, err := s.repo.HasConfirmedRecord(ctx, meetupID, userID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, common.ErrAlreadyCheckedIn
	}
	return m, nil
}

func (s *Service) requireApproved(ctx context.Context, meetupID, userID string) error {
	p, err := s.repo.FindActiveParticipation(ctx, meetupID, userID)
	if errors.Is(err, common.ErrNoSuchParticipation) {
		return common.ErrNotApproved
	}
	if err != nil {
		return err
	}
	if p.Status != participation.StatusApproved {
		return common.ErrNotApproved
	}
	return nil
}

// storeRejected keeps a failed attempt for the audit trail. A storage
// failure here is logged; the caller still gets the validation error.
func (s *Service) storeRejected(ctx context.Context, rec *Record) {
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		log.WithError(err).WithField("meetup_id", rec.MeetupID).Error("Failed to store rejected check-in")
		return
	}
	log.WithFields(log.Fields{
		"meetup_id": rec.MeetupID,
		"user_id":   rec.UserID,
		"method":    rec.Method,
		"reason":    rec.Reason,
	}).Info("Check-in rejected")
}

// Records returns every check-in attempt for a meetup, oldest first.
func (s *Service) Records(ctx context.Context, meetupID string) ([]*Record, error) {
	if _, err := s.repo.GetMeetup(ctx, meetupID); err != nil {
		return nil, err
	}
	return s.repo.ListRecords(ctx, meetupID)
}

// ApplyNoShowPenalties penalises listed approved participants who never
// checked in. Host only; the meetup must be confirmed or completed.
//
// Safe to repeat: each (meetup, user) is penalised at most once and the
// points deduction carries the key "noshow:<meetup>:<user>", so a retry
// after a partial failure finishes the job without double-charging.
func (s *Service) ApplyNoShowPenalties(ctx context.Context, meetupID, actorID string, userIDs []string, amount int64, reason string) (*PenaltyResult, error) {
	m, err := s.repo.GetMeetup(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	if !m.IsHost(actorID) {
		return nil, common.ErrNotHost
	}
	if m.Status != meetups.StatusConfirmed && m.Status != meetups.StatusCompleted {
		return nil, common.ErrInvalidTransition
	}
	if amount <= 0 {
		return nil, common.ErrInvalidAmount
	}

	result := &PenaltyResult{Applied: []string{}, Skipped: []SkippedUser{}}
	seen := make(map[string]bool, len(userIDs))
	for _, userID := range userIDs {
		if userID == "" || seen[userID] {
			continue
		}
		seen[userID] = true

		skip, err := s.penaltySkipReason(ctx, meetupID, userID)
		if err != nil {
			return nil, err
		}
		if skip != "" {
			result.Skipped = append(result.Skipped, SkippedUser{UserID: userID, Reason: skip})
			continue
		}

		created, err := s.repo.CreatePenalty(ctx, &Penalty{
			MeetupID:  meetupID,
			UserID:    userID,
			Amount:    amount,
			Reason:    reason,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return nil, err
		}
		key := fmt.Sprintf("noshow:%s:%s", meetupID, userID)
		charged, err := s.points.ApplyPenalty(ctx, userID, amount, reason, key)
		if err != nil {
			return nil, err
		}

		if !created && !charged {
			result.Skipped = append(result.Skipped, SkippedUser{UserID: userID, Reason: SkipAlreadyPenalized})
			continue
		}

		result.Applied = append(result.Applied, userID)
		log.WithFields(log.Fields{
			"meetup_id": meetupID,
			"user_id":   userID,
			"amount":    amount,
		}).Info("No-show penalty applied")
		s.notifier.Notify(ctx, notify.Event{
			Kind:     notify.KindPenaltyApplied,
			MeetupID: meetupID,
			Title:    m.Title,
			UserIDs:  []string{userID},
			Amount:   amount,
			Reason:   reason,
		})
	}
	return result, nil
}

func (s *Service) penaltySkipReason(ctx context.Context, meetupID, userID string) (string, error) {
	attended, err := s.repo.HasConfirmedRecord(ctx, meetupID, userID)
	if err != nil {
		return "", err
	}
	if attended {
		return SkipCheckedIn, nil
	}

	err = s.requireApproved(ctx, meetupID, userID)
	switch {
	case errors.Is(err, common.ErrNotApproved):
		return SkipNotApproved, nil
	case err != nil:
		return "", err
	}
	return "", nil
}
