// Package meetups: service.go holds the lifecycle rules.
//
//	open -> confirmed -> completed
//	open | confirmed -> cancelled
//
// Every transition is a read, a check and one conditional write. A stale
// write means someone else changed the meetup in between, so the whole
// unit is repeated on fresh state.
package meetups

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/config"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/geo"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/notify"
)

// Service manages the meetup lifecycle.
type Service struct {
	repo     Repository
	notifier notify.Notifier
	cfg      *config.Config
}

// NewService creates the lifecycle service.
func NewService(repo Repository, notifier notify.Notifier, cfg *config.Config) *Service {
	return &Service{repo: repo, notifier: notifier, cfg: cfg}
}

// Create stores a new open meetup with the host in the first seat.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Meetup, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, common.ErrInvalidTitle
	}
	if in.Capacity < 1 {
		return nil, common.ErrInvalidCapacity
	}
	if !geo.ValidCoordinates(in.Location.Lat, in.Location.Lon) {
		return nil, common.ErrInvalidCoordinates
	}
	if in.ScheduledAt.IsZero() {
		return nil, common.ErrInvalidSchedule
	}

	now := time.Now().UTC()
	m := &Meetup{
		ID:                  uuid.NewString(),
		HostID:              in.HostID,
		Title:               title,
		Location:            in.Location,
		ScheduledAt:         in.ScheduledAt.UTC(),
		Capacity:            in.Capacity,
		CurrentParticipants: 1,
		Status:              StatusOpen,
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.CreateMeetup(ctx, m); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"meetup_id": m.ID,
		"host_id":   m.HostID,
		"capacity":  m.Capacity,
	}).Info("Meetup created")
	return m, nil
}

// Get returns a meetup by id.
func (s *Service) Get(ctx context.Context, id string) (*Meetup, error) {
	return s.repo.GetMeetup(ctx, id)
}

// Confirm locks the participant list. Host only, open meetups only.
func (s *Service) Confirm(ctx context.Context, meetupID, actorID string) (*Meetup, error) {
	var out *Meetup
	err := common.RetryOnStale(ctx, s.cfg.StoreMaxRetries, func() error {
		m, err := s.repo.GetMeetup(ctx, meetupID)
		if err != nil {
			return err
		}
		if !m.IsHost(actorID) {
			return common.ErrNotHost
		}
		if m.Status != StatusOpen {
			return common.ErrInvalidTransition
		}
		if err := s.repo.UpdateMeetupStatus(ctx, m.ID, m.Version, StatusConfirmed); err != nil {
			return err
		}
		m.Status = StatusConfirmed
		m.Version++
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"meetup_id": out.ID,
		"host_id":   actorID,
	}).Info("Meetup confirmed")
	s.notifier.Notify(ctx, notify.Event{Kind: notify.KindMeetupConfirmed, MeetupID: out.ID, Title: out.Title})
	return out, nil
}

// Cancel cancels a non-terminal meetup. All pending and approved
// participations are cancelled with it in one storage unit.
func (s *Service) Cancel(ctx context.Context, meetupID, actorID string) (*Meetup, error) {
	var affected []string
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
		affected, err = s.repo.CancelMeetup(ctx, m.ID, m.Version)
		return err
	})
	if err != nil {
		return nil, err
	}

	m, err := s.repo.GetMeetup(ctx, meetupID)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"meetup_id": m.ID,
		"host_id":   actorID,
		"cascaded":  len(affected),
	}).Info("Meetup cancelled")
	s.notifier.Notify(ctx, notify.Event{
		Kind:     notify.KindMeetupCancelled,
		MeetupID: m.ID,
		Title:    m.Title,
		UserIDs:  affected,
	})
	return m, nil
}

// HostLeaves is Cancel: a host cannot leave without cancelling.
func (s *Service) HostLeaves(ctx context.Context, meetupID, hostID string) (*Meetup, error) {
	return s.Cancel(ctx, meetupID, hostID)
}

// MarkCompleted moves a confirmed meetup to completed once its scheduled
// time has come.
func (s *Service) MarkCompleted(ctx context.Context, meetupID string, now time.Time) (*Meetup, error) {
	var out *Meetup
	err := common.RetryOnStale(ctx, s.cfg.StoreMaxRetries, func() error {
		m, err := s.repo.GetMeetup(ctx, meetupID)
		if err != nil {
			return err
		}
		if m.Status != StatusConfirmed || now.Before(m.ScheduledAt) {
			return common.ErrInvalidTransition
		}
		if err := s.repo.UpdateMeetupStatus(ctx, m.ID, m.Version, StatusCompleted); err != nil {
			return err
		}
		m.Status = StatusCompleted
		m.Version++
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithField("meetup_id", out.ID).Info("Meetup completed")
	s.notifier.Notify(ctx, notify.Event{Kind: notify.KindMeetupCompleted, MeetupID: out.ID, Title: out.Title})
	return out, nil
}

// CompleteDue completes every confirmed meetup whose check-in window has
// closed. Meetups changed concurrently are skipped and picked up by the
// next run.
func (s *Service) CompleteDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListDueMeetups(ctx, now.Add(-s.cfg.CheckInWindowAfter))
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, m := range due {
		_, err := s.MarkCompleted(ctx, m.ID, now)
		switch {
		case err == nil:
			completed++
		case errors.Is(err, common.ErrInvalidTransition), errors.Is(err, common.ErrConflict):
			log.WithError(err).WithField("meetup_id", m.ID).Debug("Skipping meetup in completion sweep")
		default:
			return completed, err
		}
	}
	return completed, nil
}
