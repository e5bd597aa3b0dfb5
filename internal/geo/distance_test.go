package geo

import (
	"math"
	"testing"
)

func TestDistanceSamePointIsZero(t *testing.T) {
	points := [][2]float64{{37.5665, 126.9780}, {0, 0}, {-33.8688, 151.2093}, {90, 0}}
	for _, p := range points {
		if d := Distance(p[0], p[1], p[0], p[1]); d != 0 {
			t.Fatalf("distance(%v, %v) = %f, want 0", p, p, d)
		}
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	pairs := [][4]float64{
		{37.5665, 126.9780, 37.5669, 126.9780},
		{37.5665, 126.9780, 35.1796, 129.0756},
		{-10, -170, 10, 170},
	}
	for _, p := range pairs {
		ab := Distance(p[0], p[1], p[2], p[3])
		ba := Distance(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("asymmetric distance for %v: %f vs %f", p, ab, ba)
		}
	}
}

func TestDistanceSeoulFixtures(t *testing.T) {
	near := Distance(37.5665, 126.9780, 37.5669, 126.9780)
	if near < 43 || near > 46 {
		t.Fatalf("expected ~44m, got %f", near)
	}
	if near >= 100 {
		t.Fatalf("near fixture must be inside the 100m radius, got %f", near)
	}

	far := Distance(37.5665, 126.9780, 37.5683, 126.9780)
	if far < 195 || far > 205 {
		t.Fatalf("expected ~200m, got %f", far)
	}
}

func TestDistanceSeoulBusan(t *testing.T) {
	// Seoul City Hall to Busan City Hall is roughly 325 km.
	d := Distance(37.5665, 126.9780, 35.1796, 129.0756)
	if d < 320000 || d > 330000 {
		t.Fatalf("unexpected Seoul-Busan distance %f", d)
	}
}

func TestValidCoordinates(t *testing.T) {
	cases := []struct {
		lat, lon float64
		want     bool
	}{
		{37.5665, 126.9780, true},
		{90, 180, true},
		{-90, -180, true},
		{91, 0, false},
		{-91, 0, false},
		{0, 181, false},
		{0, -181, false},
		{math.NaN(), 0, false},
		{0, math.Inf(1), false},
	}
	for _, c := range cases {
		if got := ValidCoordinates(c.lat, c.lon); got != c.want {
			t.Fatalf("ValidCoordinates(%v, %v) = %v, want %v", c.lat, c.lon, got, c.want)
		}
	}
}
