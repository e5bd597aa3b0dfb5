// Package common holds errors and helpers shared by every feature.
// errors.go defines the error kinds the core returns. Handlers use
// errors.Is against these values to pick a response code.
package common

import (
	"errors"
	"net/http"
)

// Meetup lifecycle errors
var (
	// ErrMeetupNotFound is returned when no meetup has the requested id.
	ErrMeetupNotFound = errors.New("meetup not found")
	// ErrNotHost means the actor is not the meetup host.
	ErrNotHost = errors.New("only the host can do this")
	// ErrInvalidTransition means the meetup status does not allow the operation.
	ErrInvalidTransition = errors.New("operation not allowed in the current meetup status")
	// ErrInvalidCapacity means capacity is below one seat (the host's).
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
	// ErrInvalidTitle means the meetup title is empty.
	ErrInvalidTitle = errors.New("title is required")
	// ErrInvalidSchedule means the scheduled time is missing.
	ErrInvalidSchedule = errors.New("scheduled time is required")
)

// Participation errors
var (
	ErrNotOpen             = errors.New("meetup is not open for joining")
	ErrFull                = errors.New("meetup is full")
	ErrAlreadyJoined       = errors.New("already joined this meetup")
	ErrNoSuchParticipation = errors.New("no matching participation")
)

// Attendance errors
var (
	// ErrNotApproved means the caller has no approved participation.
	ErrNotApproved = errors.New("participation is not approved")
	// ErrInvalidToken covers a bad signature, a token for another meetup and an expired token.
	ErrInvalidToken = errors.New("invalid or expired check-in token")
	// ErrOutOfRange means the reported position is too far from the meetup.
	ErrOutOfRange = errors.New("too far from the meetup location")
	// ErrInvalidCoordinates means latitude or longitude is outside the valid range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrAlreadyCheckedIn means a confirmed record already exists.
	ErrAlreadyCheckedIn = errors.New("already checked in")
	// ErrCheckInClosed means the attempt is outside the check-in window.
	ErrCheckInClosed = errors.New("check-in window is closed")
	// ErrInvalidAmount means a penalty or ledger amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Review errors
var (
	ErrNotEligible      = errors.New("not eligible to review this meetup")
	ErrDuplicateReview  = errors.New("review already submitted")
	ErrSelfReview       = errors.New("cannot review yourself")
	ErrNotCoParticipant = errors.New("users did not attend the same meetup")
	ErrInvalidRating    = errors.New("rating must be an integer from 1 to 5")
)

// Storage errors
var (
	// ErrStaleWrite is returned by a store when a conditional update finds
	// the row changed since it was read. Services retry on it.
	ErrStaleWrite = errors.New("stale write")
	// ErrConflict is returned once the retry budget for stale writes is spent.
	ErrConflict = errors.New("concurrent update conflict, please retry")
)

// ErrUnauthorized means no authenticated actor is attached to the request.
var ErrUnauthorized = errors.New("authentication required")

// HTTPStatus maps an error returned by the core to a response code.
// Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotHost),
		errors.Is(err, ErrNotApproved),
		errors.Is(err, ErrNotEligible),
		errors.Is(err, ErrNotCoParticipant):
		return http.StatusForbidden
	case errors.Is(err, ErrMeetupNotFound),
		errors.Is(err, ErrNoSuchParticipation):
		return http.StatusNotFound
	case errors.Is(err, ErrFull),
		errors.Is(err, ErrAlreadyJoined),
		errors.Is(err, ErrNotOpen),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrDuplicateReview),
		errors.Is(err, ErrAlreadyCheckedIn),
		errors.Is(err, ErrCheckInClosed),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrStaleWrite):
		return http.StatusConflict
	case errors.Is(err, ErrOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidCoordinates),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrSelfReview),
		errors.Is(err, ErrInvalidCapacity),
		errors.Is(err, ErrInvalidTitle),
		errors.Is(err, ErrInvalidSchedule),
		errors.Is(err, ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
