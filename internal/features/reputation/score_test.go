package reputation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func randomStats(r *rand.Rand) Stats {
	return Stats{
		JoinedMeetups:    r.Intn(200),
		HostedMeetups:    r.Intn(50),
		CompletedMeetups: r.Intn(200),
		ReviewsWritten:   r.Intn(100),
		AverageRating:    1 + 4*r.Float64(),
		RatingsReceived:  r.Intn(50),
		NoShowPenalties:  r.Intn(40),
	}
}

func TestComputeScoreBounds(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	p := DefaultPolicy()
	for i := 0; i < 5000; i++ {
		s := randomStats(r)
		got := ComputeScore(s, p)
		if got < MinScore || got > MaxScore {
			t.Fatalf("score %v out of bounds for %+v", got, s)
		}
		if s.JoinedMeetups > 0 && got < 40 {
			t.Fatalf("active user scored %v < 40 for %+v", got, s)
		}
	}
}

func TestComputeScoreExtremes(t *testing.T) {
	p := DefaultPolicy()
	cases := map[string]Stats{
		"huge history":     {JoinedMeetups: 1 << 20, CompletedMeetups: 1 << 20, HostedMeetups: 1 << 20, ReviewsWritten: 1 << 20},
		"all no-shows":     {JoinedMeetups: 5, NoShowPenalties: 1 << 20},
		"negative counts":  {JoinedMeetups: 1, CompletedMeetups: -50, NoShowPenalties: -10},
		"nan rating":       {JoinedMeetups: 1, RatingsReceived: 3, AverageRating: math.NaN()},
		"infinite rating":  {JoinedMeetups: 1, RatingsReceived: 3, AverageRating: math.Inf(1)},
		"only reviews":     {ReviewsWritten: 1},
		"only hosted":      {HostedMeetups: 1},
		"terrible ratings": {JoinedMeetups: 1, RatingsReceived: 10, AverageRating: 1},
	}
	for name, s := range cases {
		got := ComputeScore(s, p)
		if math.IsNaN(got) || got < 40 || got > MaxScore {
			t.Fatalf("%s: expected score in [40, 100], got %v", name, got)
		}
	}
}

func TestComputeScoreNoActivity(t *testing.T) {
	if got := ComputeScore(Stats{}, DefaultPolicy()); got != 0 {
		t.Fatalf("expected 0 for no activity, got %v", got)
	}
}

func TestComputeScoreMonotone(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	p := DefaultPolicy()

	for i := 0; i < 2000; i++ {
		base := randomStats(r)
		before := ComputeScore(base, p)

		up := []Stats{base, base, base, base}
		up[0].CompletedMeetups++
		up[1].HostedMeetups++
		up[2].ReviewsWritten++
		up[3].AverageRating = math.Min(5, up[3].AverageRating+0.5)
		for j, s := range up {
			if after := ComputeScore(s, p); after < before {
				t.Fatalf("case %d: score dropped from %v to %v for %+v", j, before, after, s)
			}
		}

		down := base
		down.NoShowPenalties++
		if after := ComputeScore(down, p); after > before {
			t.Fatalf("no-show raised score from %v to %v for %+v", before, after, down)
		}
	}
}

func TestLoadPolicy(t *testing.T) {
	p, err := LoadPolicy("")
	if err != nil || p != DefaultPolicy() {
		t.Fatalf("expected default policy for empty path, got %+v, %v", p, err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte("per_completed: 4\nper_no_show: 10\n"), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	p, err = LoadPolicy(path)
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	if p.PerCompleted != 4 || p.PerNoShow != 10 {
		t.Fatalf("expected overrides to apply, got %+v", p)
	}
	if p.PerHosted != DefaultPolicy().PerHosted {
		t.Fatalf("expected missing keys to keep defaults, got %+v", p)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("rating_weight: -1\n"), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	if _, err := LoadPolicy(bad); err == nil {
		t.Fatalf("expected negative weight to be rejected")
	}

	nonFinite := []string{
		"floor: .nan\n",
		"floor: .inf\n",
		"base: .nan\n",
		"per_completed: .inf\n",
		"rating_weight: .nan\n",
		"per_no_show: -.inf\n",
	}
	for i, content := range nonFinite {
		path := filepath.Join(dir, fmt.Sprintf("nonfinite-%d.yaml", i))
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write policy: %v", err)
		}
		if p, err := LoadPolicy(path); err == nil {
			t.Fatalf("expected %q to be rejected, loaded %+v", content, p)
		}
	}

	if _, err := LoadPolicy(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected missing file to fail")
	}
}

type fixedStats struct {
	stats Stats
	err   error
}

func (f fixedStats) UserStats(context.Context, string) (Stats, error) { return f.stats, f.err }

func TestServiceScore(t *testing.T) {
	svc := NewService(fixedStats{stats: Stats{JoinedMeetups: 3, CompletedMeetups: 2}}, DefaultPolicy())
	score, err := svc.Score(context.Background(), "u1")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score.UserID != "u1" || score.Value < 40 || score.Stats.JoinedMeetups != 3 {
		t.Fatalf("unexpected score %+v", score)
	}

	boom := errors.New("db down")
	if _, err := NewService(fixedStats{err: boom}, DefaultPolicy()).Score(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}
