package store

import (
	"context"

	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
)

// CreateBid inserts a bid against an existing task.
func (s *Store) CreateBid(ctx context.Context, bid *model.Bid) error {
	if _, err := s.GetTask(ctx, bid.TaskID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(bid).Error
}

func (s *Store) GetBid(ctx context.Context, id uint) (*model.Bid, error) {
	var b model.Bid
	if err := s.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (s *Store) ListBids(ctx context.Context) ([]model.Bid, error) {
	bids := []model.Bid{}
	err := s.db.WithContext(ctx).Order("id ASC").Find(&bids).Error
	return bids, err
}

func (s *Store) ListBidsByTask(ctx context.Context, taskID uint) ([]model.Bid, error) {
	bids := []model.Bid{}
	err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Order("id ASC").Find(&bids).Error
	return bids, err
}

func (s *Store) UpdateBid(ctx context.Context, id uint, updates map[string]any) (*model.Bid, error) {
	var b model.Bid
	if err := s.updateByID(ctx, &b, id, updates); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) DeleteBid(ctx context.Context, id uint) (*model.Bid, error) {
	var b model.Bid
	if err := s.deleteByID(ctx, &b, id); err != nil {
		return nil, err
	}
	return &b, nil
}
