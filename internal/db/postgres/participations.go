package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/participation"
)

const participationColumns = `id, meetup_id, user_id, status, joined_at, decided_at, updated_at`

func scanParticipation(row pgx.Row) (*participation.Participation, error) {
	var p participation.Participation
	if err := row.Scan(&p.ID, &p.MeetupID, &p.UserID, &p.Status, &p.JoinedAt, &p.DecidedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateParticipation bumps the meetup version and inserts the request in
// one transaction. The partial unique index on active participations turns
// a concurrent duplicate into common.ErrAlreadyJoined.
func (s *Store) CreateParticipation(ctx context.Context, p *participation.Participation, meetupVersion int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE meetups SET version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`, p.MeetupID, meetupVersion)
	if err != nil {
		return fmt.Errorf("failed to lock meetup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrStaleWrite
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO participations (`+participationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.MeetupID, p.UserID, p.Status, p.JoinedAt, p.DecidedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return common.ErrAlreadyJoined
	}
	if err != nil {
		return fmt.Errorf("failed to create participation: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Store) FindActiveParticipation(ctx context.Context, meetupID, userID string) (*participation.Participation, error) {
	p, err := scanParticipation(s.db.QueryRow(ctx, `
		SELECT `+participationColumns+`
		FROM participations
		WHERE meetup_id = $1 AND user_id = $2 AND status IN ('pending', 'approved')
	`, meetupID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNoSuchParticipation
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find participation: %w", err)
	}
	return p, nil
}

// TransitionParticipation moves the seat count and the participation
// status in one transaction. The count guard lives in the WHERE clause, so
// capacity can never be exceeded even by a racing writer.
func (s *Store) TransitionParticipation(ctx context.Context, t participation.Transition) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE meetups
		SET current_participants = current_participants + $3,
		    version = version + 1,
		    updated_at = $4
		WHERE id = $1 AND version = $2
		  AND current_participants + $3 BETWEEN 0 AND capacity
	`, t.MeetupID, t.MeetupVersion, t.Delta, t.At)
	if err != nil {
		return fmt.Errorf("failed to update seat count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrStaleWrite
	}

	var decidedAt any
	if t.To == participation.StatusApproved || t.To == participation.StatusRejected {
		decidedAt = t.At
	}
	tag, err = tx.Exec(ctx, `
		UPDATE participations
		SET status = $3, updated_at = $4, decided_at = COALESCE($5::timestamptz, decided_at)
		WHERE id = $1 AND status = $2
	`, t.ParticipationID, t.From, t.To, t.At, decidedAt)
	if err != nil {
		return fmt.Errorf("failed to update participation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrStaleWrite
	}

	return tx.Commit(ctx)
}

func (s *Store) ListParticipations(ctx context.Context, meetupID string) ([]*participation.Participation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+participationColumns+`
		FROM participations
		WHERE meetup_id = $1
		ORDER BY joined_at
	`, meetupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}
	defer rows.Close()

	var out []*participation.Participation
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participation: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
