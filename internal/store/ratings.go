package store

import (
	"context"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
)

func (s *Store) CreateRating(ctx context.Context, r *model.Rating) error {
	if _, err := s.GetTask(ctx, r.TaskID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *Store) GetRating(ctx context.Context, id uint) (*model.Rating, error) {
	var r model.Rating
	if err := s.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Store) ListRatings(ctx context.Context) ([]model.Rating, error) {
	ratings := []model.Rating{}
	err := s.db.WithContext(ctx).Order("id ASC").Find(&ratings).Error
	return ratings, err
}

func (s *Store) ListRatingsByTask(ctx context.Context, taskID uint) ([]model.Rating, error) {
	ratings := []model.Rating{}
	err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Order("id ASC").Find(&ratings).Error
	return ratings, err
}

func (s *Store) UpdateRating(ctx context.Context, id uint, updates map[string]any) (*model.Rating, error) {
	var r model.Rating
	if err := s.updateByID(ctx, &r, id, updates); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) DeleteRating(ctx context.Context, id uint) (*model.Rating, error) {
	var r model.Rating
	if err := s.deleteByID(ctx, &r, id); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReview inserts a review for an existing task. A non-zero rating id
// must reference an existing rating.
func (s *Store) CreateReview(ctx context.Context, r *model.Review) error {
	if _, err := s.GetTask(ctx, r.TaskID); err != nil {
		return err
	}
	if r.RatingID != 0 {
		if _, err := s.GetRating(ctx, r.RatingID); err != nil {
			return err
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *Store) ListReviewsByTask(ctx context.Context, taskID uint) ([]model.Review, error) {
	reviews := []model.Review{}
	err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Order("created_at ASC, id ASC").Find(&reviews).Error
	return reviews, err
}
