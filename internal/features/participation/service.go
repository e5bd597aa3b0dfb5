// Package participation: service.go holds the join/decide/cancel rules.
//
// The participant count moves only on transitions into or out of approved:
// approve adds one seat, cancelling an approved participation frees one.
// Pending requests never touch the count.
package participation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/config"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/meetups"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/notify"
)

// Service runs the participation state machine.
type Service struct {
	repo     Repository
	notifier notify.Notifier
	cfg      *config.Config
}

// NewService creates the participation service.
func NewService(repo Repository, notifier notify.Notifier, cfg *config.Config) *Service {
	return &Service{repo: repo, notifier: notifier, cfg: cfg}
}

// Join creates a pending request for userID.
//
// Errors:
//   - ErrNotOpen: the meetup is not open
//   - ErrFull: every seat is taken
//   - ErrAlreadyJoined: the user is the host or already has an active request
func (s *Service) Join(ctx context.Context, meetupID, userID string) (*Participation, error) {
	var (
		out    *Participation
		meetup *meetups.Meetup
	)
	err := common.RetryOnStale(ctx, s.cfg.StoreMaxRetries, func() error {
		m, err := s.repo.GetMeetup(ctx, meetupID)
		if err != nil {
			return err
		}
		if m.Status != meetups.StatusOpen {
			return common.ErrNotOpen
		}
		if m.IsHost(userID) {
			return common.ErrAlreadyJoined
		}
		if m.IsFull() {
			return common.ErrFull
		}

		_, err = s.repo.FindActiveParticipation(ctx, meetupID, userID)
		switch {
		case err == nil:
			return common.ErrAlreadyJoined
		case !errors.Is(err, common.ErrNoSuchParticipation):
			return err
		}

		now := time.Now().UTC()
		p := &Participation{
			ID:        uuid.NewString(),
			MeetupID:  m.ID,
			UserID:    userID,
			Status:    StatusPending,
			JoinedAt:  now,
			UpdatedAt: now,
		}
		if err := s.repo.CreateParticipation(ctx, p, m.Version); err != nil {
			return err
		}
		out, meetup = p, m
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"meetup_id": meetupID,
		"user_id":   userID,
	}).Info("Join requested")
	s.notifier.Notify(ctx, notify.Event{
		Kind:     notify.KindJoinRequested,
		MeetupID: meetupID,
		Title:    meetup.Title,
		UserIDs:  []string{meetup.HostID},
	})
	return out, nil
}

// Decide approves or rejects a pending request. Host only.
// Approving takes a seat and fails with ErrFull when none is left.
func (s *Service) Decide(ctx context.Context, meetupID, userID, actorID string, approve bool) (*Participation, error) {
	var (
		out    *Participation
		meetup *meetups.Meetup
	)
	err := common.RetryOnStale(ctx, s.cfg.StoreMaxRetries, func() error {
		m, err := s.repo.GetMeetup(ctx, meetupID)
		if err != nil {
			return err
		}
		if !m.IsHost(actorID) {
			return common.ErrNotHost
		}
		if m.Status.Terminal() {
			return common.ErrInvalidTransition
		}

		p, err := s.repo.FindActiveParticipation(ctx, meetupID, userID)
		if err != nil {
			return err
		}
		if p.Status != StatusPending {
			return common.ErrNoSuchParticipation
		}

		t := Transition{
			ParticipationID: p.ID,
			MeetupID:        m.ID,
			MeetupVersion:   m.Version,
			From:            StatusPending,
			To:              StatusRejected,
			At:              time.Now().UTC(),
		}
		if approve {
			if m.IsFull() {
				return common.ErrFull
			}
			t.To = StatusApproved
			t.Delta = 1
		}
		if err := s.repo.TransitionParticipation(ctx, t); err != nil {
			return err
		}

		p.Status = t.To
		p.DecidedAt = &t.At
		p.UpdatedAt = t.At
		out, meetup = p, m
		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := notify.KindJoinRejected
	if approve {
		kind = notify.KindJoinApproved
	}
	log.WithFields(log.Fields{
		"meetup_id": meetupID,
		"user_id":   userID,
		"status":    out.Status,
	}).Info("Join request decided")
	s.notifier.Notify(ctx, notify.Event{
		Kind:     kind,
		MeetupID: meetupID,
		Title:    meetup.Title,
		UserIDs:  []string{userID},
	})
	return out, nil
}

// CancelParticipation withdraws the user's active participation.
// An approved participation gives its seat back; a pending one changes
// nothing but its status.
func (s *Service) CancelParticipation(ctx context.Context, meetupID, userID string) (*Participation, error) {
	var (
		out    *Participation
		meetup *meetups.Meetup
	)
	err := common.RetryOnStale(ctx, s.cfg.StoreMaxRetries, func() error {
		m, err := s.repo.GetMeetup(ctx, meetupID)
		if err != nil {
			return err
		}

		p, err := s.repo.FindActiveParticipation(ctx, meetupID, userID)
		if err != nil {
			return err
		}
		if m.Status.Terminal() {
			return common.ErrInvalidTransition
		}

		t := Transition{
			ParticipationID: p.ID,
			MeetupID:        m.ID,
			MeetupVersion:   m.Version,
			From:            p.Status,
			To:              StatusCancelled,
			At:              time.Now().UTC(),
		}
		if p.Status == StatusApproved {
			t.Delta = -1
		}
		if err := s.repo.TransitionParticipation(ctx, t); err != nil {
			return err
		}

		p.Status = StatusCancelled
		p.UpdatedAt = t.At
		out, meetup = p, m
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"meetup_id": meetupID,
		"user_id":   userID,
	}).Info("Participation cancelled")
	s.notifier.Notify(ctx, notify.Event{
		Kind:     notify.KindParticipationCancelled,
		MeetupID: meetupID,
		Title:    meetup.Title,
		UserIDs:  []string{meetup.HostID},
	})
	return out, nil
}

// List returns every participation of a meetup, oldest first.
func (s *Service) List(ctx context.Context, meetupID string) ([]*Participation, error) {
	if _, err := s.repo.GetMeetup(ctx, meetupID); err != nil {
		return nil, err
	}
	return s.repo.ListParticipations(ctx, meetupID)
}
