package store

import (
	"context"
	"fmt"
	"group_ledger/internal/domain"
)

// ListTransactions returns transactions newest first, optionally limited to one partition
func (s *Store) ListTransactions(ctx context.Context, p ListParams) ([]domain.Transaction, error) {
	txs := []domain.Transaction{}
	if err := s.page(s.db.WithContext(ctx), p).Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// CreateTransaction inserts t and fills in its ID and CreatedAt.
// There is no idempotency key, so a retried call stores a second row.
func (s *Store) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}
