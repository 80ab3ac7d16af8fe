package store

import (
	"context"

	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
)

func (s *Store) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if _, err := s.GetTask(ctx, txn.TaskID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(txn).Error
}

func (s *Store) GetTransaction(ctx context.Context, id uint) (*model.Transaction, error) {
	var t model.Transaction
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	txns := []model.Transaction{}
	err := s.db.WithContext(ctx).Order("id ASC").Find(&txns).Error
	return txns, err
}

func (s *Store) UpdateTransaction(ctx context.Context, id uint, updates map[string]any) (*model.Transaction, error) {
	var t model.Transaction
	if err := s.updateByID(ctx, &t, id, updates); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uint) (*model.Transaction, error) {
	var t model.Transaction
	if err := s.deleteByID(ctx, &t, id); err != nil {
		return nil, err
	}
	return &t, nil
}
