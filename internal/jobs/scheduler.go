// Package jobs runs background tasks on a cron schedule.
// scheduler.go sets up the periodic completion sweep for meetups whose
// check-in window has closed.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Completer completes due meetups and reports how many it moved.
type Completer interface {
	CompleteDue(ctx context.Context, now time.Time) (int, error)
}

// Scheduler runs background tasks.
type Scheduler struct {
	cron      *cron.Cron
	completer Completer
	spec      string
	now       func() time.Time
}

// NewScheduler creates a scheduler in the given time zone.
func NewScheduler(completer Completer, spec string, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		completer: completer,
		spec:      spec,
		now:       time.Now,
	}
}

// Start registers the tasks and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunCompletion(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	log.WithField("spec", s.spec).Info("Job scheduler started")
	return nil
}

// RunCompletion runs one completion sweep.
func (s *Scheduler) RunCompletion(ctx context.Context) {
	n, err := s.completer.CompleteDue(ctx, s.now())
	if err != nil {
		log.WithError(err).Error("[CRON] Completion sweep failed")
		return
	}
	if n > 0 {
		log.WithField("completed", n).Info("[CRON] Meetups completed")
	} else {
		log.Debug("[CRON] No meetups due")
	}
}

// Stop stops the scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Job scheduler stopped")
}
