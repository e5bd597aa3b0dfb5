// Package points keeps the user points ledger.
// models.go describes accounts and ledger entries.
package points

import "time"

// Account is a user's running balance.
// A user without entries has a zero account; balances may go negative.
type Account struct {
	UserID      string    `json:"user_id"`
	Balance     int64     `json:"balance"`
	TotalEarned int64     `json:"total_earned"`
	TotalSpent  int64     `json:"total_spent"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Transaction is one ledger entry. Amount is signed: deductions are negative.
type Transaction struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Amount         int64     `json:"amount"`
	Type           string    `json:"type"`
	Description    string    `json:"description"`
	IdempotencyKey string    `json:"-"` // unique; a repeated key is a no-op
	CreatedAt      time.Time `json:"created_at"`
}

// Transaction types
const (
	TxTypeNoShowPenalty = "noshow_penalty" // deduction for missing a confirmed meetup
)
