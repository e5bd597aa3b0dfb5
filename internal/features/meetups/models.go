// Package meetups owns the meetup lifecycle: open, confirmed, cancelled
// and completed.
// models.go describes the meetup and its status.
package meetups

import "time"

// Status is the meetup status.
type Status string

const (
	StatusOpen      Status = "open"      // accepting join requests
	StatusConfirmed Status = "confirmed" // host locked the list, check-in possible
	StatusCancelled Status = "cancelled" // terminal
	StatusCompleted Status = "completed" // terminal, reviews possible
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusCancelled, StatusCompleted:
		return true
	case StatusOpen, StatusConfirmed:
		return false
	}
	return false
}

// Location is where the meetup happens.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
}

// Meetup is a hosted gathering with a fixed place, time and capacity.
//
// The host occupies one seat, so CurrentParticipants starts at 1 and
// 0 <= CurrentParticipants <= Capacity holds at all times.
type Meetup struct {
	ID                  string    `json:"id"`
	HostID              string    `json:"host_id"`
	Title               string    `json:"title"`
	Location            Location  `json:"location"`
	ScheduledAt         time.Time `json:"scheduled_at"`
	Capacity            int       `json:"capacity"`
	CurrentParticipants int       `json:"current_participants"`
	Status              Status    `json:"status"`
	Version             int64     `json:"version"` // bumped on every stored change
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// IsHost reports whether userID hosts the meetup.
func (m *Meetup) IsHost(userID string) bool {
	return m.HostID == userID
}

// IsFull reports whether every seat is taken.
func (m *Meetup) IsFull() bool {
	return m.CurrentParticipants >= m.Capacity
}

// CreateInput holds the fields a host supplies for a new meetup.
type CreateInput struct {
	HostID      string    `json:"-"`
	Title       string    `json:"title"`
	Location    Location  `json:"location"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Capacity    int       `json:"capacity"`
}
