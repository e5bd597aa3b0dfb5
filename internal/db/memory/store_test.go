package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/attendance"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/meetups"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/participation"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/points"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/reviews"
)

var ctx = context.Background()

func seedMeetup(t *testing.T, s *Store, capacity int) *meetups.Meetup {
	t.Helper()
	m := &meetups.Meetup{
		ID:                  "m1",
		HostID:              "host",
		Title:               "Dinner",
		ScheduledAt:         time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC),
		Capacity:            capacity,
		CurrentParticipants: 1,
		Status:              meetups.StatusOpen,
		Version:             1,
	}
	if err := s.CreateMeetup(ctx, m); err != nil {
		t.Fatalf("create meetup: %v", err)
	}
	return m
}

func TestStaleVersionIsRejected(t *testing.T) {
	s := New()
	seedMeetup(t, s, 4)

	if err := s.UpdateMeetupStatus(ctx, "m1", 1, meetups.StatusConfirmed); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if err := s.UpdateMeetupStatus(ctx, "m1", 1, meetups.StatusCancelled); !errors.Is(err, common.ErrStaleWrite) {
		t.Fatalf("expected ErrStaleWrite, got %v", err)
	}

	m, _ := s.GetMeetup(ctx, "m1")
	if m.Status != meetups.StatusConfirmed || m.Version != 2 {
		t.Fatalf("unexpected meetup state %+v", m)
	}
	if _, err := s.GetMeetup(ctx, "nope"); !errors.Is(err, common.ErrMeetupNotFound) {
		t.Fatalf("expected ErrMeetupNotFound, got %v", err)
	}
}

func TestReturnedMeetupIsACopy(t *testing.T) {
	s := New()
	seedMeetup(t, s, 4)

	m, _ := s.GetMeetup(ctx, "m1")
	m.CurrentParticipants = 99

	again, _ := s.GetMeetup(ctx, "m1")
	if again.CurrentParticipants != 1 {
		t.Fatalf("store state leaked through returned pointer")
	}
}

func TestTransitionRespectsCapacityAndStatus(t *testing.T) {
	s := New()
	seedMeetup(t, s, 2)

	p := &participation.Participation{ID: "p1", MeetupID: "m1", UserID: "u1", Status: participation.StatusPending}
	if err := s.CreateParticipation(ctx, p, 1); err != nil {
		t.Fatalf("create participation: %v", err)
	}
	dup := &participation.Participation{ID: "p2", MeetupID: "m1", UserID: "u1", Status: participation.StatusPending}
	if err := s.CreateParticipation(ctx, dup, 2); !errors.Is(err, common.ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}

	approve := participation.Transition{
		ParticipationID: "p1", MeetupID: "m1", MeetupVersion: 2,
		From: participation.StatusPending, To: participation.StatusApproved, Delta: 1, At: time.Now(),
	}
	if err := s.TransitionParticipation(ctx, approve); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// Replaying the same transition: the version and the status moved on.
	if err := s.TransitionParticipation(ctx, approve); !errors.Is(err, common.ErrStaleWrite) {
		t.Fatalf("expected ErrStaleWrite on replay, got %v", err)
	}

	over := approve
	over.MeetupVersion = 3
	over.From = participation.StatusApproved
	if err := s.TransitionParticipation(ctx, over); !errors.Is(err, common.ErrStaleWrite) {
		t.Fatalf("expected over-capacity write to be refused, got %v", err)
	}

	m, _ := s.GetMeetup(ctx, "m1")
	if m.CurrentParticipants != 2 {
		t.Fatalf("expected 2 participants, got %d", m.CurrentParticipants)
	}
}

func TestCancelMeetupCascades(t *testing.T) {
	s := New()
	seedMeetup(t, s, 4)

	_ = s.CreateParticipation(ctx, &participation.Participation{ID: "p1", MeetupID: "m1", UserID: "u1", Status: participation.StatusPending}, 1)
	_ = s.CreateParticipation(ctx, &participation.Participation{ID: "p2", MeetupID: "m1", UserID: "u2", Status: participation.StatusPending}, 2)
	_ = s.TransitionParticipation(ctx, participation.Transition{
		ParticipationID: "p2", MeetupID: "m1", MeetupVersion: 3,
		From: participation.StatusPending, To: participation.StatusApproved, Delta: 1, At: time.Now(),
	})

	affected, err := s.CancelMeetup(ctx, "m1", 4)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(affected) != 2 {
		t.Fatalf("expected 2 affected users, got %v", affected)
	}

	m, _ := s.GetMeetup(ctx, "m1")
	if m.Status != meetups.StatusCancelled || m.CurrentParticipants != 1 {
		t.Fatalf("unexpected meetup after cancel %+v", m)
	}
	list, _ := s.ListParticipations(ctx, "m1")
	for _, p := range list {
		if p.Status != participation.StatusCancelled {
			t.Fatalf("participation %s still %s", p.ID, p.Status)
		}
	}
}

func TestLedgerIsIdempotentByKey(t *testing.T) {
	s := New()
	tx := &points.Transaction{ID: "t1", UserID: "u1", Amount: -50, IdempotencyKey: "noshow:m1:u1", CreatedAt: time.Now()}

	applied, err := s.ApplyEntry(ctx, tx)
	if err != nil || !applied {
		t.Fatalf("first apply: %v %v", applied, err)
	}
	applied, err = s.ApplyEntry(ctx, tx)
	if err != nil || applied {
		t.Fatalf("second apply must be a no-op: %v %v", applied, err)
	}

	acc, _ := s.GetAccount(ctx, "u1")
	if acc.Balance != -50 || acc.TotalSpent != 50 {
		t.Fatalf("unexpected account %+v", acc)
	}
	txs, _ := s.ListTransactions(ctx, "u1", 10)
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
}

func TestConfirmedRecordIsUnique(t *testing.T) {
	s := New()
	rejected := &attendance.Record{ID: "r1", MeetupID: "m1", UserID: "u1", Status: attendance.RecordRejected}
	confirmed := &attendance.Record{ID: "r2", MeetupID: "m1", UserID: "u1", Status: attendance.RecordConfirmed}

	if err := s.CreateRecord(ctx, rejected); err != nil {
		t.Fatalf("rejected record: %v", err)
	}
	if err := s.CreateRecord(ctx, confirmed); err != nil {
		t.Fatalf("confirmed record: %v", err)
	}
	if err := s.CreateRecord(ctx, confirmed); !errors.Is(err, common.ErrAlreadyCheckedIn) {
		t.Fatalf("expected ErrAlreadyCheckedIn, got %v", err)
	}
}

func TestUserStats(t *testing.T) {
	s := New()
	seedMeetup(t, s, 4)

	_ = s.CreateParticipation(ctx, &participation.Participation{ID: "p1", MeetupID: "m1", UserID: "u1", Status: participation.StatusPending}, 1)
	_ = s.TransitionParticipation(ctx, participation.Transition{
		ParticipationID: "p1", MeetupID: "m1", MeetupVersion: 2,
		From: participation.StatusPending, To: participation.StatusApproved, Delta: 1, At: time.Now(),
	})
	_ = s.UpdateMeetupStatus(ctx, "m1", 3, meetups.StatusCompleted)
	_ = s.CreateRecord(ctx, &attendance.Record{ID: "r1", MeetupID: "m1", UserID: "u1", Status: attendance.RecordConfirmed})
	_ = s.CreateReview(ctx, &reviews.Review{ID: "rv1", MeetupID: "m1", ReviewerID: "u1", Rating: 5})
	_ = s.CreatePeerReview(ctx, &reviews.PeerReview{ID: "pr1", MeetupID: "m1", ReviewerID: "host", RevieweeID: "u1", Rating: 4})
	_, _ = s.CreatePenalty(ctx, &attendance.Penalty{MeetupID: "m2", UserID: "u1", Amount: 10})

	st, err := s.UserStats(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.JoinedMeetups != 1 || st.CompletedMeetups != 1 || st.ReviewsWritten != 1 ||
		st.RatingsReceived != 1 || st.AverageRating != 4 || st.NoShowPenalties != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}

	host, _ := s.UserStats(ctx, "host")
	if host.HostedMeetups != 1 || host.CompletedMeetups != 1 || host.ReviewsWritten != 1 {
		t.Fatalf("unexpected host stats %+v", host)
	}
}
