package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/OkontaEhis/myhitmeup-backend/internal/config"
	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
	"github.com/OkontaEhis/myhitmeup-backend/internal/store"
	"github.com/OkontaEhis/myhitmeup-backend/internal/usersync"
)

const (
	seedAdminUsername = "admin"
	seedAdminEmail    = "admin@myhitmeup.local"
	seedAdminNIN      = "00000000000"
)

// PhoneLookup 按手机号读取用户。
type PhoneLookup interface {
	GetUserByPhone(ctx context.Context, phone string) (*model.User, error)
}

// AdminRegistrar 注册用户并分配角色，由 usersync.Service 实现。
type AdminRegistrar interface {
	Register(ctx context.Context, in usersync.RegisterInput) usersync.Result
	AssignRole(ctx context.Context, uid, role string) (*model.User, error)
}

// SeedAdmin 确保配置的管理员账号存在且角色为 Admin。
//
// 未配置 AdminPhone 时直接返回。账号已存在时不修改密码，只补齐角色。
func SeedAdmin(ctx context.Context, cfg config.SecurityConfig, users PhoneLookup, svc AdminRegistrar, logger *slog.Logger) error {
	if cfg.AdminPhone == "" {
		return nil
	}

	var uid, role string
	user, err := users.GetUserByPhone(ctx, cfg.AdminPhone)
	switch {
	case err == nil:
		uid, role = user.UID, user.Role
	case errors.Is(err, store.ErrNotFound):
		res := svc.Register(ctx, usersync.RegisterInput{
			Username:    seedAdminUsername,
			PhoneNumber: cfg.AdminPhone,
			Password:    cfg.AdminPassword,
			Email:       seedAdminEmail,
			NIN:         seedAdminNIN,
			FirstName:   "Admin",
			LastName:    "Account",
		})
		if !res.Success {
			return fmt.Errorf("seed admin: %s", res.Message)
		}
		uid, role = res.UserID, model.RoleUser
		logger.Info("admin account created", slog.String("uid", uid))
	default:
		return fmt.Errorf("seed admin: %w", err)
	}

	if role == model.RoleAdmin {
		return nil
	}
	if _, err := svc.AssignRole(ctx, uid, model.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin role: %w", err)
	}
	logger.Info("admin role assigned", slog.String("uid", uid))
	return nil
}
