package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/meetups"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/participation"
)

// Store implements every feature repository on a pgx pool.
//
// Conditional writes are plain UPDATE ... WHERE version = $n statements;
// zero affected rows means someone else got there first and is reported
// as common.ErrStaleWrite.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates the store.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const meetupColumns = `id, host_id, title, lat, lon, address, scheduled_at, capacity,
	current_participants, status, version, created_at, updated_at`

func scanMeetup(row pgx.Row) (*meetups.Meetup, error) {
	var m meetups.Meetup
	err := row.Scan(
		&m.ID, &m.HostID, &m.Title, &m.Location.Lat, &m.Location.Lon, &m.Location.Address,
		&m.ScheduledAt, &m.Capacity, &m.CurrentParticipants, &m.Status, &m.Version,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) CreateMeetup(ctx context.Context, m *meetups.Meetup) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO meetups (`+meetupColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, m.ID, m.HostID, m.Title, m.Location.Lat, m.Location.Lon, m.Location.Address,
		m.ScheduledAt, m.Capacity, m.CurrentParticipants, m.Status, m.Version,
		m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create meetup: %w", err)
	}
	return nil
}

func (s *Store) GetMeetup(ctx context.Context, id string) (*meetups.Meetup, error) {
	m, err := scanMeetup(s.db.QueryRow(ctx, `SELECT `+meetupColumns+` FROM meetups WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrMeetupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meetup: %w", err)
	}
	return m, nil
}

func (s *Store) UpdateMeetupStatus(ctx context.Context, id string, expectedVersion int64, status meetups.Status) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE meetups
		SET status = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`, id, expectedVersion, status)
	if err != nil {
		return fmt.Errorf("failed to update meetup status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrStaleWrite
	}
	return nil
}

// CancelMeetup runs the whole cascade in one transaction: the meetup row,
// its active participations and the seat count change together.
func (s *Store) CancelMeetup(ctx context.Context, id string, expectedVersion int64) ([]string, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE meetups
		SET status = 'cancelled', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`, id, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel meetup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, common.ErrStaleWrite
	}

	rows, err := tx.Query(ctx, `
		WITH prev AS (
			SELECT id, user_id, status
			FROM participations
			WHERE meetup_id = $1 AND status IN ('pending', 'approved')
			FOR UPDATE
		)
		UPDATE participations p
		SET status = 'cancelled', updated_at = NOW()
		FROM prev
		WHERE p.id = prev.id
		RETURNING prev.user_id, prev.status
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel participations: %w", err)
	}

	var (
		affected []string
		approved int
	)
	for rows.Next() {
		var (
			userID string
			prev   participation.Status
		)
		if err := rows.Scan(&userID, &prev); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan cancelled participation: %w", err)
		}
		affected = append(affected, userID)
		if prev == participation.StatusApproved {
			approved++
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to cancel participations: %w", err)
	}

	if approved > 0 {
		if _, err := tx.Exec(ctx, `
			UPDATE meetups SET current_participants = current_participants - $2 WHERE id = $1
		`, id, approved); err != nil {
			return nil, fmt.Errorf("failed to release seats: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}
	return affected, nil
}

func (s *Store) ListDueMeetups(ctx context.Context, now time.Time) ([]*meetups.Meetup, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+meetupColumns+`
		FROM meetups
		WHERE status = 'confirmed' AND scheduled_at <= $1
		ORDER BY scheduled_at
	`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due meetups: %w", err)
	}
	defer rows.Close()

	var out []*meetups.Meetup
	for rows.Next() {
		m, err := scanMeetup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meetup: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
