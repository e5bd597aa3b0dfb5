// Package reputation computes the "rice index", a trust score in
// [0, 100] derived from a user's meetup history. The score is never
// stored; it is recomputed from aggregated stats on every read.
package reputation

import (
	"math"
	"time"
)

const (
	MinScore = 0.0
	MaxScore = 100.0
)

// neutralRating is the average rating that neither adds nor subtracts.
const neutralRating = 3.0

// Stats is the aggregated history of one user.
type Stats struct {
	JoinedMeetups    int     `json:"joined_meetups"`    // approved participations
	HostedMeetups    int     `json:"hosted_meetups"`    // non-cancelled meetups hosted
	CompletedMeetups int     `json:"completed_meetups"` // completed meetups hosted or attended
	ReviewsWritten   int     `json:"reviews_written"`
	AverageRating    float64 `json:"average_rating"` // over peer reviews received
	RatingsReceived  int     `json:"ratings_received"`
	NoShowPenalties  int     `json:"no_show_penalties"`
}

// HasActivity reports whether the user joined, hosted or reviewed anything.
func (s Stats) HasActivity() bool {
	return s.JoinedMeetups > 0 || s.HostedMeetups > 0 || s.ReviewsWritten > 0
}

// Score is a computed reputation.
type Score struct {
	UserID     string    `json:"user_id"`
	Value      float64   `json:"score"`
	Stats      Stats     `json:"stats"`
	ComputedAt time.Time `json:"computed_at"`
}

// ComputeScore maps stats to [0, 100].
//
// A user without activity scores 0. Any activity lifts the score to at
// least p.Floor. With non-negative weights the result never decreases as
// completed, hosted, reviews written or average rating grow, and never
// increases as no-show penalties grow.
func ComputeScore(s Stats, p Policy) float64 {
	if !s.HasActivity() {
		return MinScore
	}

	raw := p.Base +
		p.PerCompleted*float64(nonNegative(s.CompletedMeetups)) +
		p.PerHosted*float64(nonNegative(s.HostedMeetups)) +
		p.PerReviewWritten*float64(nonNegative(s.ReviewsWritten)) -
		p.PerNoShow*float64(nonNegative(s.NoShowPenalties))

	if s.RatingsReceived > 0 && !math.IsNaN(s.AverageRating) && !math.IsInf(s.AverageRating, 0) {
		raw += p.RatingWeight * (s.AverageRating - neutralRating)
	}
	if math.IsNaN(raw) {
		raw = p.Floor
	}

	return clamp(math.Max(p.Floor, raw), MinScore, MaxScore)
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
