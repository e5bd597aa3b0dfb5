// Package participation tracks each user's request to join a meetup and
// owns the meetup's participant count.
package participation

import "time"

// Status is the participation status.
//
//	pending -> approved | rejected | cancelled
//	approved -> cancelled
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Active reports whether the participation still holds or requests a seat.
// At most one active participation exists per (meetup, user).
func (s Status) Active() bool {
	switch s {
	case StatusPending, StatusApproved:
		return true
	case StatusRejected, StatusCancelled:
		return false
	}
	return false
}

// Participation is a user's membership record for one meetup.
type Participation struct {
	ID        string     `json:"id"`
	MeetupID  string     `json:"meetup_id"`
	UserID    string     `json:"user_id"`
	Status    Status     `json:"status"`
	JoinedAt  time.Time  `json:"joined_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"` // set on approve or reject
	UpdatedAt time.Time  `json:"updated_at"`
}
