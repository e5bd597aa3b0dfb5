// Package meetups: repository.go declares the storage contract.
// Implementations live in internal/db/postgres and internal/db/memory.
package meetups

import (
	"context"
	"time"
)

// Repository stores meetups.
//
// Every write is conditional on the version the caller read. A mismatch
// yields common.ErrStaleWrite and leaves the row untouched.
type Repository interface {
	CreateMeetup(ctx context.Context, m *Meetup) error
	// GetMeetup returns common.ErrMeetupNotFound for an unknown id.
	GetMeetup(ctx context.Context, id string) (*Meetup, error)
	// UpdateMeetupStatus sets the status and bumps the version.
	UpdateMeetupStatus(ctx context.Context, id string, expectedVersion int64, status Status) error
	// CancelMeetup sets the meetup to cancelled and, in the same unit,
	// cancels every pending or approved participation and gives their
	// seats back. Returns the ids of the affected participants.
	CancelMeetup(ctx context.Context, id string, expectedVersion int64) ([]string, error)
	// ListDueMeetups returns confirmed meetups scheduled at or before now.
	ListDueMeetups(ctx context.Context, now time.Time) ([]*Meetup, error)
}
