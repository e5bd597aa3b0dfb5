// Package attendance verifies that participants showed up, by QR token or
// by GPS fix, and applies no-show penalties to those who did not.
package attendance

import "time"

// Method is how a participant proved presence.
type Method string

const (
	MethodQR  Method = "qr"
	MethodGPS Method = "gps"
)

// RecordStatus is the outcome of a check-in attempt.
type RecordStatus string

const (
	RecordConfirmed RecordStatus = "confirmed"
	RecordRejected  RecordStatus = "rejected"
)

// Rejection reasons stored on rejected records.
const (
	ReasonInvalidToken = "invalid_token"
	ReasonOutOfRange   = "out_of_range"
)

// Record is one check-in attempt. Records are never modified; a rejected
// attempt may be followed by new attempts.
type Record struct {
	ID             string       `json:"id"`
	MeetupID       string       `json:"meetup_id"`
	UserID         string       `json:"user_id"`
	Method         Method       `json:"method"`
	Lat            *float64     `json:"lat,omitempty"`
	Lon            *float64     `json:"lon,omitempty"`
	DistanceMeters *float64     `json:"distance_meters,omitempty"` // gps only
	Status         RecordStatus `json:"status"`
	Reason         string       `json:"reason,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Penalty is a no-show penalty. At most one exists per (meetup, user).
type Penalty struct {
	MeetupID  string    `json:"meetup_id"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Token is a signed check-in token for one meetup.
type Token struct {
	Value     string    `json:"token"`
	MeetupID  string    `json:"meetup_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Skip reasons reported by ApplyNoShowPenalties.
const (
	SkipCheckedIn        = "checked_in"
	SkipNotApproved      = "not_approved"
	SkipAlreadyPenalized = "already_penalized"
)

// SkippedUser is a listed user who was not penalised, and why.
type SkippedUser struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// PenaltyResult lists what ApplyNoShowPenalties did.
type PenaltyResult struct {
	Applied []string      `json:"applied"`
	Skipped []SkippedUser `json:"skipped"`
}
