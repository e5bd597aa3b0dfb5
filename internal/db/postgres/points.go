package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/features/points"
)

// ApplyEntry records the ledger entry and moves the balance atomically.
// The unique idempotency key makes a repeated entry a no-op.
func (s *Store) ApplyEntry(ctx context.Context, t *points.Transaction) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO point_transactions (id, user_id, amount, transaction_type, description, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (idempotency_key) DO NOTHING
	`, t.ID, t.UserID, t.Amount, t.Type, t.Description, t.IdempotencyKey, t.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to record transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	var earned, spent int64
	if t.Amount >= 0 {
		earned = t.Amount
	} else {
		spent = -t.Amount
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO point_accounts (user_id, balance, total_earned, total_spent)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = point_accounts.balance + EXCLUDED.balance,
		    total_earned = point_accounts.total_earned + EXCLUDED.total_earned,
		    total_spent = point_accounts.total_spent + EXCLUDED.total_spent,
		    updated_at = NOW()
	`, t.UserID, t.Amount, earned, spent)
	if err != nil {
		return false, fmt.Errorf("failed to update balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit ledger entry: %w", err)
	}
	return true, nil
}

func (s *Store) GetAccount(ctx context.Context, userID string) (*points.Account, error) {
	var a points.Account
	err := s.db.QueryRow(ctx, `
		SELECT user_id, balance, total_earned, total_spent, updated_at
		FROM point_accounts
		WHERE user_id = $1
	`, userID).Scan(&a.UserID, &a.Balance, &a.TotalEarned, &a.TotalSpent, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &points.Account{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string, limit int) ([]*points.Transaction, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, amount, transaction_type, description, idempotency_key, created_at
		FROM point_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []*points.Transaction
	for rows.Next() {
		var t points.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Description, &t.IdempotencyKey, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
