package reputation

import (
	"fmt"
	"math"
	"os"

	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v3"
)

// Policy holds the score weights. All weights must be finite and
// non-negative.
type Policy struct {
	Base             float64 `yaml:"base"`               // starting point for an active user
	Floor            float64 `yaml:"floor"`              // minimum for an active user
	PerCompleted     float64 `yaml:"per_completed"`      // per completed meetup
	PerHosted        float64 `yaml:"per_hosted"`         // per hosted meetup
	PerReviewWritten float64 `yaml:"per_review_written"` // per review written
	RatingWeight     float64 `yaml:"rating_weight"`      // per rating point above or below 3
	PerNoShow        float64 `yaml:"per_no_show"`        // subtracted per no-show penalty
}

// DefaultPolicy returns the built-in weights.
func DefaultPolicy() Policy {
	return Policy{
		Base:             50,
		Floor:            40,
		PerCompleted:     2,
		PerHosted:        3,
		PerReviewWritten: 1,
		RatingWeight:     5,
		PerNoShow:        5,
	}
}

func (p Policy) Validate() error {
	weights := map[string]float64{
		"base":               p.Base,
		"per_completed":      p.PerCompleted,
		"per_hosted":         p.PerHosted,
		"per_review_written": p.PerReviewWritten,
		"rating_weight":      p.RatingWeight,
		"per_no_show":        p.PerNoShow,
	}
	for name, w := range weights {
		if !finite(w) {
			return fmt.Errorf("reputation policy: %s must be a finite number", name)
		}
		if w < 0 {
			return fmt.Errorf("reputation policy: %s must not be negative", name)
		}
	}
	if !finite(p.Floor) || p.Floor < MinScore || p.Floor > MaxScore {
		return fmt.Errorf("reputation policy: floor must be within [%v, %v]", MinScore, MaxScore)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// LoadPolicy reads weights from a YAML file. Keys missing from the file
// keep their default. An empty path returns DefaultPolicy.
//
// Example file:
//
//	per_completed: 3
//	per_no_show: 8
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read reputation policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("failed to parse reputation policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}

	log.WithField("path", path).Info("Reputation policy loaded")
	return p, nil
}
