package store

import (
	"context"

	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
)

// ProviderAnalytics summarises a service provider's activity.
type ProviderAnalytics struct {
	ProfileViews   int
	BidsSubmitted  int64
	TasksCompleted int64
}

// SeekerAnalytics summarises a task seeker's spending.
type SeekerAnalytics struct {
	TaskerHired int64
	TotalSpent  float64
	SavedTasks  []model.Task
}

func (s *Store) ProviderAnalytics(ctx context.Context, uid string) (*ProviderAnalytics, error) {
	u, err := s.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := &ProviderAnalytics{ProfileViews: u.ProfileViews}
	db := s.db.WithContext(ctx)
	if err := db.Model(&model.Bid{}).Where("user_uid = ?", uid).Count(&out.BidsSubmitted).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Task{}).
		Where("user_uid = ? AND status = ?", uid, model.TaskStatusCompleted).
		Count(&out.TasksCompleted).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) SeekerAnalytics(ctx context.Context, uid string) (*SeekerAnalytics, error) {
	if _, err := s.GetUser(ctx, uid); err != nil {
		return nil, err
	}
	out := &SeekerAnalytics{}
	db := s.db.WithContext(ctx)
	if err := db.Model(&model.Transaction{}).Where("user_uid = ?", uid).Count(&out.TaskerHired).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Transaction{}).
		Where("user_uid = ?", uid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&out.TotalSpent).Error; err != nil {
		return nil, err
	}
	saved, err := s.SavedTasks(ctx, uid)
	if err != nil {
		return nil, err
	}
	out.SavedTasks = saved
	return out, nil
}
