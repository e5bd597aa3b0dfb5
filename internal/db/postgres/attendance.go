package postgres

import (
	"context"
	"fmt"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/attendance"
)

// CreateRecord inserts a check-in attempt. The partial unique index on
// confirmed records rejects a second confirmed check-in.
func (s *Store) CreateRecord(ctx context.Context, r *attendance.Record) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO attendance_records
			(id, meetup_id, user_id, method, lat, lon, distance_meters, status, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.ID, r.MeetupID, r.UserID, r.Method, r.Lat, r.Lon, r.DistanceMeters, r.Status, r.Reason, r.CreatedAt)
	if isUniqueViolation(err) {
		return common.ErrAlreadyCheckedIn
	}
	if err != nil {
		return fmt.Errorf("failed to create attendance record: %w", err)
	}
	return nil
}

func (s *Store) HasConfirmedRecord(ctx context.Context, meetupID, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM attendance_records
			WHERE meetup_id = $1 AND user_id = $2 AND status = 'confirmed'
		)
	`, meetupID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check attendance: %w", err)
	}
	return exists, nil
}

func (s *Store) ListRecords(ctx context.Context, meetupID string) ([]*attendance.Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, meetup_id, user_id, method, lat, lon, distance_meters, status, reason, created_at
		FROM attendance_records
		WHERE meetup_id = $1
		ORDER BY created_at
	`, meetupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var out []*attendance.Record
	for rows.Next() {
		var r attendance.Record
		if err := rows.Scan(
			&r.ID, &r.MeetupID, &r.UserID, &r.Method, &r.Lat, &r.Lon,
			&r.DistanceMeters, &r.Status, &r.Reason, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *Store) CreatePenalty(ctx context.Context, p *attendance.Penalty) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO noshow_penalties (meetup_id, user_id, amount, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (meetup_id, user_id) DO NOTHING
	`, p.MeetupID, p.UserID, p.Amount, p.Reason, p.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to record penalty: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
