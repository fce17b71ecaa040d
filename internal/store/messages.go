package store

import (
	"context"
	"fmt"
	"group_ledger/internal/domain"
)

// ListMessages returns messages newest first, optionally limited to one partition
func (s *Store) ListMessages(ctx context.Context, p ListParams) ([]domain.Message, error) {
	msgs := []domain.Message{}
	if err := s.page(s.db.WithContext(ctx), p).Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// CreateMessage inserts m and fills in its ID and CreatedAt
func (s *Store) CreateMessage(ctx context.Context, m *domain.Message) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// DeleteMessage removes the message with the given id. A non-empty groupName
// must also match. Returns ErrNotFound when nothing was deleted.
func (s *Store) DeleteMessage(ctx context.Context, id uint, groupName string) error {
	q := s.db.WithContext(ctx).Where("id = ?", id)
	if groupName != "" {
		q = q.Where("group_name = ?", groupName)
	}
	res := q.Delete(&domain.Message{})
	if res.Error != nil {
		return fmt.Errorf("delete message %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
