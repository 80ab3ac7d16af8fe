package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/model"

	"gorm.io/gorm"
)

// ProfileData are the fields written by the profile sync route.
type ProfileData struct {
	Profile        string
	Skills         []string
	Ratings        float64
	Reviews        []string
	Portfolio      []string
	ProfilePicture string
}

// withUserChange runs fn and records an outbox change for uid in the same
// transaction.
func (s *Store) withUserChange(ctx context.Context, uid string, op model.ChangeOperation, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Create(&model.UserChange{
			UserUID:   uid,
			Operation: op,
			ChangedAt: time.Now(),
		}).Error
	})
}

// CreateUser inserts the user row and its outbox change, returning the
// change id.
func (s *Store) CreateUser(ctx context.Context, user *model.User) (uint64, error) {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	var changeID uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKey(err) {
				return ErrConflict
			}
			return err
		}
		change := &model.UserChange{UserUID: user.UID, Operation: model.ChangeUpsert, ChangedAt: time.Now()}
		if err := tx.Create(change).Error; err != nil {
			return err
		}
		changeID = change.ID
		return nil
	})
	return changeID, err
}

// GetUser looks a user up by provider uid.
func (s *Store) GetUser(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetUserByPhone looks a user up by E.164 phone number.
func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("phone_number = ?", phone).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}

func (s *Store) ListUsersByRole(ctx context.Context, role string) ([]model.User, error) {
	users := []model.User{}
	err := s.db.WithContext(ctx).Where("role = ?", role).Order("id ASC").Find(&users).Error
	return users, err
}

// EmailTaken reports whether another user already holds email.
func (s *Store) EmailTaken(ctx context.Context, email, exceptUID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND uid <> ?", email, exceptUID).
		Count(&n).Error
	return n > 0, err
}

// updateUser applies updates to the user keyed by uid and records a change.
func (s *Store) updateUser(ctx context.Context, uid string, updates map[string]any) (*model.User, error) {
	var u model.User
	err := s.withUserChange(ctx, uid, model.ChangeUpsert, func(tx *gorm.DB) error {
		if err := tx.Where("uid = ?", uid).First(&u).Error; err != nil {
			return notFound(err)
		}
		res := tx.Model(&model.User{}).Where("uid = ?", uid).Updates(updates)
		if res.Error != nil {
			if isDuplicateKey(res.Error) {
				return ErrConflict
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("uid = ?", uid).First(&u).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser changes contact and name fields.
func (s *Store) UpdateUser(ctx context.Context, uid string, updates map[string]any) (*model.User, error) {
	return s.updateUser(ctx, uid, updates)
}

// SetRole assigns role to the user.
func (s *Store) SetRole(ctx context.Context, uid, role string) (*model.User, error) {
	return s.updateUser(ctx, uid, map[string]any{"role": role})
}

// UpdateProfile writes the profile sync fields.
func (s *Store) UpdateProfile(ctx context.Context, uid string, p ProfileData) (*model.User, error) {
	return s.updateUser(ctx, uid, map[string]any{
		"profile":         p.Profile,
		"skills":          model.StringList(p.Skills),
		"ratings":         p.Ratings,
		"reviews":         model.StringList(p.Reviews),
		"portfolio":       model.StringList(p.Portfolio),
		"profile_picture": p.ProfilePicture,
	})
}

// IncrementProfileViews atomically adds one view and returns the new count.
// A missing user is reported as ErrNotFound and no row is created.
func (s *Store) IncrementProfileViews(ctx context.Context, uid string) (int, error) {
	var views int
	err := s.withUserChange(ctx, uid, model.ChangeUpsert, func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).Where("uid = ?", uid).
			UpdateColumn("profile_views", gorm.Expr("profile_views + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&model.User{}).Where("uid = ?", uid).Select("profile_views").Scan(&views).Error
	})
	return views, err
}

// DeleteUser removes the user row and records a delete change.
func (s *Store) DeleteUser(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	err := s.withUserChange(ctx, uid, model.ChangeDelete, func(tx *gorm.DB) error {
		if err := tx.Where("uid = ?", uid).First(&u).Error; err != nil {
			return notFound(err)
		}
		res := tx.Where("uid = ?", uid).Delete(&model.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func isDuplicateKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "unique constraint")
}
