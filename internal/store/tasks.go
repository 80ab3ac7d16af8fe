package store

import (
	"context"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
)

// TaskFilter holds the optional, AND-combined search filters.
type TaskFilter struct {
	Query         string
	SkillCategory string
	BudgetMin     *float64
	BudgetMax     *float64
	Location      string
	DatePosted    *time.Time
}

func (s *Store) CreateTask(ctx context.Context, task *model.Task) error {
	return s.db.WithContext(ctx).Create(task).Error
}

func (s *Store) GetTask(ctx context.Context, id uint) (*model.Task, error) {
	var t model.Task
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) {
	tasks := []model.Task{}
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&tasks).Error
	return tasks, err
}

func (s *Store) UpdateTask(ctx context.Context, id uint, updates map[string]any) (*model.Task, error) {
	var t model.Task
	if err := s.updateByID(ctx, &t, id, updates); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) DeleteTask(ctx context.Context, id uint) (*model.Task, error) {
	var t model.Task
	if err := s.deleteByID(ctx, &t, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// SearchTasks applies every non-empty filter. The text query is bound as a
// parameter with LIKE wildcards around it.
func (s *Store) SearchTasks(ctx context.Context, f TaskFilter) ([]model.Task, error) {
	q := s.db.WithContext(ctx).Model(&model.Task{})
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("(title LIKE ? OR description LIKE ?)", like, like)
	}
	if f.SkillCategory != "" {
		q = q.Where("skill_category = ?", f.SkillCategory)
	}
	if f.BudgetMin != nil {
		q = q.Where("budget_min >= ?", *f.BudgetMin)
	}
	if f.BudgetMax != nil {
		q = q.Where("budget_max <= ?", *f.BudgetMax)
	}
	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}
	if f.DatePosted != nil {
		q = q.Where("created_at >= ?", *f.DatePosted)
	}
	tasks := []model.Task{}
	err := q.Order("created_at DESC, id DESC").Find(&tasks).Error
	return tasks, err
}

// RecommendTasks returns the newest tasks whose title or skill category
// matches one of skills.
func (s *Store) RecommendTasks(ctx context.Context, skills []string, limit int) ([]model.Task, error) {
	tasks := []model.Task{}
	if len(skills) == 0 {
		return tasks, nil
	}
	if limit <= 0 {
		limit = 10
	}
	err := s.db.WithContext(ctx).
		Where("title IN ? OR skill_category IN ?", skills, skills).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

// SaveTask bookmarks a task for a seeker; saving twice is a no-op.
func (s *Store) SaveTask(ctx context.Context, uid string, taskID uint) error {
	if _, err := s.GetTask(ctx, taskID); err != nil {
		return err
	}
	saved := model.SavedTask{UserUID: uid, TaskID: taskID, CreatedAt: time.Now()}
	return s.db.WithContext(ctx).
		Where("user_uid = ? AND task_id = ?", uid, taskID).
		FirstOrCreate(&saved).Error
}

// SavedTasks joins the seeker's bookmarks with their tasks.
func (s *Store) SavedTasks(ctx context.Context, uid string) ([]model.Task, error) {
	tasks := []model.Task{}
	err := s.db.WithContext(ctx).
		Table("tasks").
		Select("tasks.*").
		Joins("JOIN saved_tasks ON saved_tasks.task_id = tasks.id").
		Where("saved_tasks.user_uid = ?", uid).
		Order("saved_tasks.created_at DESC").
		Scan(&tasks).Error
	return tasks, err
}
