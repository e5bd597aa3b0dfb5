package points

import "context"

// Repository stores accounts and ledger entries.
type Repository interface {
	// ApplyEntry writes tx and moves the account balance in one unit.
	// It reports false, with no change, when tx.IdempotencyKey was used before.
	ApplyEntry(ctx context.Context, tx *Transaction) (bool, error)
	// GetAccount returns a zero account for a user without entries.
	GetAccount(ctx context.Context, userID string) (*Account, error)
	// ListTransactions returns the newest entries first.
	ListTransactions(ctx context.Context, userID string, limit int) ([]*Transaction, error)
}
