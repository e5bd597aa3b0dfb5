// Package points: service.go validates and applies ledger entries.
package points

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/leegyeongyoon/honbabnono-sub007/internal/common"
)

// historyLimit is how many entries a statement shows.
const historyLimit = 20

// Service manages user points.
type Service struct {
	repo Repository
	loc  *time.Location // for statement timestamps
}

// NewService creates the points service.
func NewService(repo Repository, loc *time.Location) *Service {
	return &Service{repo: repo, loc: loc}
}

// ApplyPenalty deducts amount from userID.
//
// key makes the call idempotent: a second call with the same key changes
// nothing and reports applied=false.
func (s *Service) ApplyPenalty(ctx context.Context, userID string, amount int64, reason, key string) (bool, error) {
	if amount <= 0 {
		return false, common.ErrInvalidAmount
	}
	if strings.TrimSpace(key) == "" {
		return false, errors.New("idempotency key is required")
	}

	tx := &Transaction{
		ID:             uuid.NewString(),
		UserID:         userID,
		Amount:         -amount,
		Type:           TxTypeNoShowPenalty,
		Description:    reason,
		IdempotencyKey: key,
		CreatedAt:      time.Now().UTC(),
	}
	applied, err := s.repo.ApplyEntry(ctx, tx)
	if err != nil {
		return false, fmt.Errorf("failed to apply penalty: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  -amount,
		"key":     key,
		"applied": applied,
	}).Info("Points penalty processed")
	return applied, nil
}

// Account returns the user's balance.
func (s *Service) Account(ctx context.Context, userID string) (*Account, error) {
	return s.repo.GetAccount(ctx, userID)
}

// History returns the latest ledger entries, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, userID, historyLimit)
}

// Statement renders entries as one line each:
//
//	1. 2026-03-14 21:00 | -50 points | no-show
func (s *Service) Statement(txs []*Transaction) []string {
	lines := make([]string, 0, len(txs))
	for i, tx := range txs {
		lines = append(lines, fmt.Sprintf("%d. %s | %s | %s",
			i+1,
			common.FormatDateTime(tx.CreatedAt, s.loc),
			common.FormatPointsAmount(tx.Amount),
			tx.Description,
		))
	}
	return lines
}
