// Package memory is an in-process store for development and tests.
//
// One mutex serialises every unit of work, so each method is atomic the
// same way a single PostgreSQL transaction is. The conditional-write
// contract (version checks, common.ErrStaleWrite) matches the postgres
// store exactly. Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/attendance"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/meetups"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/participation"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/points"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/reputation"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/reviews"
)

// pairKey identifies one user within one meetup.
type pairKey struct{ meetupID, userID string }

type peerKey struct{ meetupID, reviewerID, revieweeID string }

// Store implements every feature repository.
type Store struct {
	mu sync.Mutex

	meetups        map[string]*meetups.Meetup
	participations map[string][]*participation.Participation // by meetup, in join order
	records        map[string][]*attendance.Record            // by meetup
	penalties      map[pairKey]*attendance.Penalty
	reviews        map[string][]*reviews.Review // by meetup
	reviewKeys     map[pairKey]bool          // (meetup, reviewer)
	peerReviews    []*reviews.PeerReview
	peerKeys       map[peerKey]bool
	accounts       map[string]*points.Account
	transactions   map[string][]*points.Transaction // by user, oldest first
	ledgerKeys     map[string]bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		meetups:        make(map[string]*meetups.Meetup),
		participations: make(map[string][]*participation.Participation),
		records:        make(map[string][]*attendance.Record),
		penalties:      make(map[pairKey]*attendance.Penalty),
		reviews:        make(map[string][]*reviews.Review),
		reviewKeys:     make(map[pairKey]bool),
		peerKeys:       make(map[peerKey]bool),
		accounts:       make(map[string]*points.Account),
		transactions:   make(map[string][]*points.Transaction),
		ledgerKeys:     make(map[string]bool),
	}
}

// --- Meetups ---

func (s *Store) CreateMeetup(_ context.Context, m *meetups.Meetup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.meetups[m.ID] = &cp
	return nil
}

func (s *Store) GetMeetup(_ context.Context, id string) (*meetups.Meetup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetups[id]
	if !ok {
		return nil, common.ErrMeetupNotFound
	}
	cp := *m
	return &cp, nil
}

// lockedMeetup returns the live meetup if it is still at version.
func (s *Store) lockedMeetup(id string, version int64) (*meetups.Meetup, error) {
	m, ok := s.meetups[id]
	if !ok {
		return nil, common.ErrMeetupNotFound
	}
	if m.Version != version {
		return nil, common.ErrStaleWrite
	}
	return m, nil
}

func (s *Store) UpdateMeetupStatus(_ context.Context, id string, expectedVersion int64, status meetups.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.lockedMeetup(id, expectedVersion)
	if err != nil {
		return err
	}
	m.Status = status
	m.Version++
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) CancelMeetup(_ context.Context, id string, expectedVersion int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.lockedMeetup(id, expectedVersion)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var affected []string
	for _, p := range s.participations[id] {
		if !p.Status.Active() {
			continue
		}
		if p.Status == participation.StatusApproved {
			m.CurrentParticipants--
		}
		p.Status = participation.StatusCancelled
		p.UpdatedAt = now
		affected = append(affected, p.UserID)
	}
	m.Status = meetups.StatusCancelled
	m.Version++
	m.UpdatedAt = now
	return affected, nil
}

func (s *Store) ListDueMeetups(_ context.Context, now time.Time) ([]*meetups.Meetup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*meetups.Meetup
	for _, m := range s.meetups {
		if m.Status == meetups.StatusConfirmed && !m.ScheduledAt.After(now) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

// --- Participations ---

func (s *Store) activeParticipation(meetupID, userID string) *participation.Participation {
	for _, p := range s.participations[meetupID] {
		if p.UserID == userID && p.Status.Active() {
			return p
		}
	}
	return nil
}

func (s *Store) CreateParticipation(_ context.Context, p *participation.Participation, meetupVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.lockedMeetup(p.MeetupID, meetupVersion)
	if err != nil {
		return err
	}
	if s.activeParticipation(p.MeetupID, p.UserID) != nil {
		return common.ErrAlreadyJoined
	}
	cp := *p
	s.participations[p.MeetupID] = append(s.participations[p.MeetupID], &cp)
	m.Version++
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) FindActiveParticipation(_ context.Context, meetupID, userID string) (*participation.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.activeParticipation(meetupID, userID)
	if p == nil {
		return nil, common.ErrNoSuchParticipation
	}
	cp := *p
	return &cp, nil
}

func (s *Store) TransitionParticipation(_ context.Context, t participation.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.lockedMeetup(t.MeetupID, t.MeetupVersion)
	if err != nil {
		return err
	}

	var target *participation.Participation
	for _, p := range s.participations[t.MeetupID] {
		if p.ID == t.ParticipationID {
			target = p
			break
		}
	}
	if target == nil || target.Status != t.From {
		return common.ErrStaleWrite
	}
	count := m.CurrentParticipants + t.Delta
	if count < 0 || count > m.Capacity {
		return common.ErrStaleWrite
	}

	target.Status = t.To
	target.UpdatedAt = t.At
	if t.To == participation.StatusApproved || t.To == participation.StatusRejected {
		at := t.At
		target.DecidedAt = &at
	}
	m.CurrentParticipants = count
	m.Version++
	m.UpdatedAt = t.At
	return nil
}

func (s *Store) ListParticipations(_ context.Context, meetupID string) ([]*participation.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*participation.Participation, 0, len(s.participations[meetupID]))
	for _, p := range s.participations[meetupID] {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// --- Attendance ---

func (s *Store) hasConfirmed(meetupID, userID string) bool {
	for _, r := range s.records[meetupID] {
		if r.UserID == userID && r.Status == attendance.RecordConfirmed {
			return true
		}
	}
	return false
}

func (s *Store) CreateRecord(_ context.Context, r *attendance.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Status == attendance.RecordConfirmed && s.hasConfirmed(r.MeetupID, r.UserID) {
		return common.ErrAlreadyCheckedIn
	}
	cp := *r
	s.records[r.MeetupID] = append(s.records[r.MeetupID], &cp)
	return nil
}

func (s *Store) HasConfirmedRecord(_ context.Context, meetupID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasConfirmed(meetupID, userID), nil
}

func (s *Store) ListRecords(_ context.Context, meetupID string) ([]*attendance.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*attendance.Record, 0, len(s.records[meetupID]))
	for _, r := range s.records[meetupID] {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) CreatePenalty(_ context.Context, p *attendance.Penalty) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{p.MeetupID, p.UserID}
	if _, ok := s.penalties[key]; ok {
		return false, nil
	}
	cp := *p
	s.penalties[key] = &cp
	return true, nil
}

// --- Reviews ---

func (s *Store) CreateReview(_ context.Context, r *reviews.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{r.MeetupID, r.ReviewerID}
	if s.reviewKeys[key] {
		return common.ErrDuplicateReview
	}
	s.reviewKeys[key] = true
	cp := *r
	s.reviews[r.MeetupID] = append(s.reviews[r.MeetupID], &cp)
	return nil
}

func (s *Store) CreatePeerReview(_ context.Context, r *reviews.PeerReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := peerKey{r.MeetupID, r.ReviewerID, r.RevieweeID}
	if s.peerKeys[key] {
		return common.ErrDuplicateReview
	}
	s.peerKeys[key] = true
	cp := *r
	s.peerReviews = append(s.peerReviews, &cp)
	return nil
}

func (s *Store) ListReviews(_ context.Context, meetupID string) ([]*reviews.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*reviews.Review, 0, len(s.reviews[meetupID]))
	for _, r := range s.reviews[meetupID] {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

// --- Points ---

func (s *Store) ApplyEntry(_ context.Context, tx *points.Transaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ledgerKeys[tx.IdempotencyKey] {
		return false, nil
	}
	s.ledgerKeys[tx.IdempotencyKey] = true

	acc, ok := s.accounts[tx.UserID]
	if !ok {
		acc = &points.Account{UserID: tx.UserID}
		s.accounts[tx.UserID] = acc
	}
	acc.Balance += tx.Amount
	if tx.Amount >= 0 {
		acc.TotalEarned += tx.Amount
	} else {
		acc.TotalSpent -= tx.Amount
	}
	acc.UpdatedAt = tx.CreatedAt

	cp := *tx
	s.transactions[tx.UserID] = append(s.transactions[tx.UserID], &cp)
	return true, nil
}

func (s *Store) GetAccount(_ context.Context, userID string) (*points.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID]
	if !ok {
		return &points.Account{UserID: userID}, nil
	}
	cp := *acc
	return &cp, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string, limit int) ([]*points.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := s.transactions[userID]
	out := make([]*points.Transaction, 0, len(txs))
	for i := len(txs) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *txs[i]
		out = append(out, &cp)
	}
	return out, nil
}

// --- Reputation ---

func (s *Store) UserStats(_ context.Context, userID string) (reputation.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st reputation.Stats
	for _, m := range s.meetups {
		if m.HostID == userID && m.Status != meetups.StatusCancelled {
			st.HostedMeetups++
			if m.Status == meetups.StatusCompleted {
				st.CompletedMeetups++
			}
		}
	}
	for meetupID, list := range s.participations {
		for _, p := range list {
			if p.UserID != userID || p.Status != participation.StatusApproved {
				continue
			}
			st.JoinedMeetups++
			if m := s.meetups[meetupID]; m != nil && m.Status == meetups.StatusCompleted && s.hasConfirmed(meetupID, userID) {
				st.CompletedMeetups++
			}
		}
	}

	for key := range s.reviewKeys {
		if key.userID == userID {
			st.ReviewsWritten++
		}
	}
	sum := 0
	for _, r := range s.peerReviews {
		if r.ReviewerID == userID {
			st.ReviewsWritten++
		}
		if r.RevieweeID == userID {
			st.RatingsReceived++
			sum += r.Rating
		}
	}
	if st.RatingsReceived > 0 {
		st.AverageRating = float64(sum) / float64(st.RatingsReceived)
	}

	for key := range s.penalties {
		if key.userID == userID {
			st.NoShowPenalties++
		}
	}
	return st, nil
}

var (
	_ meetups.Repository       = (*Store)(nil)
	_ participation.Repository = (*Store)(nil)
	_ attendance.Repository    = (*Store)(nil)
	_ reviews.Repository       = (*Store)(nil)
	_ points.Repository        = (*Store)(nil)
	_ reputation.StatsSource   = (*Store)(nil)
)
