// Package common: helpers.go holds time and retry helpers.
package common

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// LoadLocation resolves a zone name and falls back to a fixed UTC+9
// zone when the tz database is missing from the image.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.WithError(err).WithField("zone", name).Warn("Failed to load time zone, using fixed KST offset")
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// FormatDateTime formats t as "2006-01-02 15:04" in loc.
// Used in notification texts.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02 15:04")
}

// RetryOnStale runs fn until it stops returning ErrStaleWrite.
// After attempts stale results it gives up with ErrConflict.
// Any other error (or success) is returned as is.
//
// Every fn call must re-read the state it validates: a stale write means
// the previous read is no longer current.
func RetryOnStale(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn()
		if !errors.Is(err, ErrStaleWrite) {
			return err
		}
		log.WithField("attempt", i+1).Debug("Stale write, retrying")
	}
	return ErrConflict
}
