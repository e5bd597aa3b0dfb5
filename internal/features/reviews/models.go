// Package reviews records meetup reviews and reviews between participants
// once a meetup is completed.
package reviews

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review rates a meetup. One per (reviewer, meetup).
type Review struct {
	ID         string    `json:"id"`
	MeetupID   string    `json:"meetup_id"`
	ReviewerID string    `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// PeerReview rates another participant. One per (reviewer, reviewee, meetup).
type PeerReview struct {
	ID         string    `json:"id"`
	MeetupID   string    `json:"meetup_id"`
	ReviewerID string    `json:"reviewer_id"`
	RevieweeID string    `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

func validRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
