package attendance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/config"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/db/memory"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/attendance"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/meetups"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/participation"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/points"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/notify"
)

var (
	venue     = meetups.Location{Lat: 37.5665, Lon: 126.9780, Address: "City Hall"}
	startTime = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
)

type fixture struct {
	store  *memory.Store
	svc    *attendance.Service
	points *points.Service
	rec    *notify.Recorder
	meetup *meetups.Meetup
}

// newFixture creates a confirmed meetup hosted by "host" with "alice" and
// "bob" approved and "carol" pending.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	cfg := &config.Config{
		StoreMaxRetries:     3,
		CheckInTokenSecret:  "test-secret",
		CheckInTokenTTL:     10 * time.Minute,
		CheckInRadiusMeters: 100,
		CheckInWindowBefore: 30 * time.Minute,
		CheckInWindowAfter:  2 * time.Hour,
	}
	store := memory.New()
	rec := &notify.Recorder{}
	meetupSvc := meetups.NewService(store, rec, cfg)
	partSvc := participation.NewService(store, rec, cfg)
	pointsSvc := points.NewService(store, time.UTC)

	m, err := meetupSvc.Create(ctx, meetups.CreateInput{
		HostID: "host", Title: "Naengmyeon", Location: venue, ScheduledAt: startTime, Capacity: 5,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, u := range []string{"alice", "bob", "carol"} {
		if _, err := partSvc.Join(ctx, m.ID, u); err != nil {
			t.Fatalf("Join %s: %v", u, err)
		}
	}
	for _, u := range []string{"alice", "bob"} {
		if _, err := partSvc.Decide(ctx, m.ID, u, "host", true); err != nil {
			t.Fatalf("approve %s: %v", u, err)
		}
	}
	if m, err = meetupSvc.Confirm(ctx, m.ID, "host"); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	return &fixture{
		store:  store,
		svc:    attendance.NewService(store, pointsSvc, rec, cfg),
		points: pointsSvc,
		rec:    rec,
		meetup: m,
	}
}

func TestCheckInWithLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// ~44 m north of the venue.
	r, err := f.svc.CheckInWithLocation(ctx, f.meetup.ID, "alice", venue.Lat+0.0004, venue.Lon, startTime)
	if err != nil {
		t.Fatalf("CheckInWithLocation: %v", err)
	}
	if r.Status != attendance.RecordConfirmed || r.Method != attendance.MethodGPS {
		t.Errorf("record = %+v", r)
	}
	if r.DistanceMeters == nil || *r.DistanceMeters < 40 || *r.DistanceMeters > 50 {
		t.Errorf("distance = %v, want ~44m", r.DistanceMeters)
	}

	if _, err := f.svc.CheckInWithLocation(ctx, f.meetup.ID, "alice", venue.Lat, venue.Lon, startTime); !errors.Is(err, common.ErrAlreadyCheckedIn) {
		t.Errorf("second check-in: err = %v, want ErrAlreadyCheckedIn", err)
	}
}

func TestCheckInOutOfRangeIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// ~200 m north.
	_, err := f.svc.CheckInWithLocation(ctx, f.meetup.ID, "alice", venue.Lat+0.0018, venue.Lon, startTime)
	if !errors.Is(err, common.ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}

	records, err := f.svc.Records(ctx, f.meetup.ID)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 1 || records[0].Status != attendance.RecordRejected || records[0].Reason != attendance.ReasonOutOfRange {
		t.Fatalf("records = %+v, want one rejected out_of_range", records)
	}

	// A rejected attempt does not block a later valid one.
	if _, err := f.svc.CheckInWithLocation(ctx, f.meetup.ID, "alice", venue.Lat, venue.Lon, startTime); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestCheckInRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userID   string
		lat, lon float64
		at       time.Time
		want     error
	}{
		{"latitude out of range", "alice", 91, 0, startTime, common.ErrInvalidCoordinates},
		{"longitude out of range", "alice", 0, 181, startTime, common.ErrInvalidCoordinates},
		{"pending participant", "carol", venue.Lat, venue.Lon, startTime, common.ErrNotApproved},
		{"stranger", "dave", venue.Lat, venue.Lon, startTime, common.ErrNotApproved},
		{"too early", "alice", venue.Lat, venue.Lon, startTime.Add(-31 * time.Minute), common.ErrCheckInClosed},
		{"too late", "alice", venue.Lat, venue.Lon, startTime.Add(2*time.Hour + time.Minute), common.ErrCheckInClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CheckInWithLocation(ctx, f.meetup.ID, tt.userID, tt.lat, tt.lon, tt.at)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := f.svc.CheckInWithLocation(ctx, "missing", "alice", venue.Lat, venue.Lon, startTime); !errors.Is(err, common.ErrMeetupNotFound) {
		t.Errorf("unknown meetup: err = %v, want ErrMeetupNotFound", err)
	}
}

func TestCheckInWithToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issuedAt := startTime.Add(-5 * time.Minute)

	if _, err := f.svc.GenerateCheckInToken(ctx, f.meetup.ID, "alice", issuedAt); !errors.Is(err, common.ErrNotHost) {
		t.Fatalf("non-host token: err = %v, want ErrNotHost", err)
	}

	tok, err := f.svc.GenerateCheckInToken(ctx, f.meetup.ID, "host", issuedAt)
	if err != nil {
		t.Fatalf("GenerateCheckInToken: %v", err)
	}

	if _, err := f.svc.CheckInWithToken(ctx, f.meetup.ID, "bob", tok.Value+"x", startTime); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("tampered: err = %v, want ErrInvalidToken", err)
	}
	if _, err := f.svc.CheckInWithToken(ctx, f.meetup.ID, "bob", tok.Value, issuedAt.Add(11*time.Minute)); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expired: err = %v, want ErrInvalidToken", err)
	}

	r, err := f.svc.CheckInWithToken(ctx, f.meetup.ID, "bob", tok.Value, startTime)
	if err != nil {
		t.Fatalf("CheckInWithToken: %v", err)
	}
	if r.Method != attendance.MethodQR || r.Status != attendance.RecordConfirmed {
		t.Errorf("record = %+v", r)
	}

	records, _ := f.svc.Records(ctx, f.meetup.ID)
	rejected := 0
	for _, rec := range records {
		if rec.Status == attendance.RecordRejected && rec.Reason == attendance.ReasonInvalidToken {
			rejected++
		}
	}
	if rejected != 2 {
		t.Errorf("rejected token attempts = %d, want 2", rejected)
	}
}

func TestTokenSigner(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	signer := attendance.NewTokenSigner("secret", 10*time.Minute)
	tok := signer.Issue("meetup-1", now)

	if !tok.ExpiresAt.Equal(now.Add(10 * time.Minute)) {
		t.Errorf("expires = %v", tok.ExpiresAt)
	}

	tests := []struct {
		name    string
		signer  *attendance.TokenSigner
		token   string
		meetup  string
		at      time.Time
		wantErr bool
	}{
		{"valid", signer, tok.Value, "meetup-1", now, false},
		{"valid at expiry", signer, tok.Value, "meetup-1", tok.ExpiresAt, false},
		{"expired", signer, tok.Value, "meetup-1", tok.ExpiresAt.Add(time.Second), true},
		{"other meetup", signer, tok.Value, "meetup-2", now, true},
		{"other secret", attendance.NewTokenSigner("other", 10*time.Minute), tok.Value, "meetup-1", now, true},
		{"garbage", signer, "not-a-token", "meetup-1", now, true},
		{"empty", signer, "", "meetup-1", now, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.signer.Verify(tt.token, tt.meetup, tt.at)
			if tt.wantErr && !errors.Is(err, common.ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	if other := signer.Issue("meetup-1", now); other.Value == tok.Value {
		t.Error("tokens issued at the same instant should differ")
	}
}

func TestRenderQR(t *testing.T) {
	png, err := attendance.RenderQR("payload.mac")
	if err != nil {
		t.Fatalf("RenderQR: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Fatal("expected PNG bytes")
	}
}

func TestApplyNoShowPenalties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CheckInWithLocation(ctx, f.meetup.ID, "alice", venue.Lat, venue.Lon, startTime); err != nil {
		t.Fatalf("check-in: %v", err)
	}

	if _, err := f.svc.ApplyNoShowPenalties(ctx, f.meetup.ID, "alice", []string{"bob"}, 50, "no-show"); !errors.Is(err, common.ErrNotHost) {
		t.Fatalf("non-host: err = %v, want ErrNotHost", err)
	}
	if _, err := f.svc.ApplyNoShowPenalties(ctx, f.meetup.ID, "host", []string{"bob"}, 0, "no-show"); !errors.Is(err, common.ErrInvalidAmount) {
		t.Fatalf("zero amount: err = %v, want ErrInvalidAmount", err)
	}

	res, err := f.svc.ApplyNoShowPenalties(ctx, f.meetup.ID, "host", []string{"alice", "bob", "bob", "carol"}, 50, "no-show")
	if err != nil {
		t.Fatalf("ApplyNoShowPenalties: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0] != "bob" {
		t.Fatalf("applied = %v, want [bob]", res.Applied)
	}
	skipped := map[string]string{}
	for _, s := range res.Skipped {
		skipped[s.UserID] = s.Reason
	}
	if skipped["alice"] != attendance.SkipCheckedIn || skipped["carol"] != attendance.SkipNotApproved {
		t.Errorf("skipped = %v", skipped)
	}

	acct, err := f.points.Account(ctx, "bob")
	if err != nil {
		t.Fatalf("Account: %v", err)
	}
	if acct.Balance != -50 {
		t.Errorf("bob balance = %d, want -50", acct.Balance)
	}
	if acct, _ := f.points.Account(ctx, "alice"); acct.Balance != 0 {
		t.Errorf("alice balance = %d, want 0", acct.Balance)
	}

	// Repeating the call changes nothing.
	res, err = f.svc.ApplyNoShowPenalties(ctx, f.meetup.ID, "host", []string{"bob"}, 50, "no-show")
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if len(res.Applied) != 0 || len(res.Skipped) != 1 || res.Skipped[0].Reason != attendance.SkipAlreadyPenalized {
		t.Errorf("repeat result = %+v", res)
	}
	if acct, _ := f.points.Account(ctx, "bob"); acct.Balance != -50 {
		t.Errorf("bob balance after repeat = %d, want -50", acct.Balance)
	}
	if got := f.rec.Count(notify.KindPenaltyApplied); got != 1 {
		t.Errorf("penalty notifications = %d, want 1", got)
	}
}

func TestPenaltiesRequireConfirmedOrCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.store

	m, _ := store.GetMeetup(ctx, f.meetup.ID)
	if _, err := store.CancelMeetup(ctx, m.ID, m.Version); err != nil {
		t.Fatalf("CancelMeetup: %v", err)
	}
	if _, err := f.svc.ApplyNoShowPenalties(ctx, f.meetup.ID, "host", []string{"bob"}, 50, "no-show"); !errors.Is(err, common.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}
