package store

import (
	"context"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/model"

	"gorm.io/gorm"
)

// PendingChanges returns unprocessed outbox changes that still have
// attempts left, oldest first.
func (s *Store) PendingChanges(ctx context.Context, limit, maxAttempts int) ([]model.UserChange, error) {
	changes := []model.UserChange{}
	q := s.db.WithContext(ctx).Where("processed_at IS NULL")
	if maxAttempts > 0 {
		q = q.Where("attempts < ?", maxAttempts)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("id ASC").Find(&changes).Error
	return changes, err
}

// PendingChangeCount counts changes the relay will still try.
func (s *Store) PendingChangeCount(ctx context.Context, maxAttempts int) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&model.UserChange{}).Where("processed_at IS NULL")
	if maxAttempts > 0 {
		q = q.Where("attempts < ?", maxAttempts)
	}
	err := q.Count(&n).Error
	return n, err
}

// MarkChangesProcessed stamps the given changes as projected.
func (s *Store) MarkChangesProcessed(ctx context.Context, ids ...uint64) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return s.db.WithContext(ctx).Model(&model.UserChange{}).
		Where("id IN ? AND processed_at IS NULL", ids).
		Updates(map[string]any{"processed_at": now, "last_error": ""}).Error
}

// MarkChangesFailed records a failed attempt on every given change.
func (s *Store) MarkChangesFailed(ctx context.Context, reason string, ids ...uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&model.UserChange{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + ?", 1),
			"last_error": reason,
		}).Error
}
