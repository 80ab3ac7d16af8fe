package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/OkontaEhis/myhitmeup-backend/internal/api/auth"
	"github.com/OkontaEhis/myhitmeup-backend/internal/identity"
	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
	"github.com/OkontaEhis/myhitmeup-backend/internal/store"

	"github.com/gin-gonic/gin"
)

// SessionParser 校验本服务签发的会话令牌。
type SessionParser interface {
	Parse(token string) (*auth.Claims, error)
}

// TokenVerifier 校验身份服务签发的令牌。
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*identity.Claims, error)
}

// RoleSource 读取关系库中的用户角色。
type RoleSource interface {
	GetUser(ctx context.Context, uid string) (*model.User, error)
}

// OptionalAuth 解析 Bearer 令牌并把访问者写入请求上下文。
//
// 没有 Authorization 头的请求以匿名身份继续；头存在但令牌无效时返回 401。
// 先尝试本服务的会话令牌，再尝试身份服务令牌。roles 不为空时角色一律取自关系库，
// 令牌中的角色声明只在没有 roles 时使用；查询失败时按普通用户处理。
func OptionalAuth(sessions SessionParser, provider TokenVerifier, roles RoleSource, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			c.Abort()
			return
		}
		tokenStr := strings.TrimSpace(parts[1])
		ctx := c.Request.Context()

		var viewer auth.Viewer
		if claims, err := sessions.Parse(tokenStr); err == nil {
			viewer = auth.Viewer{UID: claims.Subject, Role: claims.Role, Source: "session"}
		} else if provider != nil {
			pc, perr := provider.VerifyToken(ctx, tokenStr)
			if perr != nil {
				if !errors.Is(perr, identity.ErrInvalidToken) {
					logger.Warn("provider token verification failed", slog.String("error", perr.Error()))
				}
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				c.Abort()
				return
			}
			viewer = auth.Viewer{UID: pc.Subject, Role: model.RoleUser, Source: "provider"}
		} else {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		if roles != nil {
			u, err := roles.GetUser(ctx, viewer.UID)
			switch {
			case err == nil:
				viewer.Role = u.Role
			case errors.Is(err, store.ErrNotFound):
				// 会话令牌对应的账号已删除；身份服务账号可能尚未同步到关系库。
				if viewer.Source == "session" {
					c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
					c.Abort()
					return
				}
			default:
				logger.Warn("resolve viewer role failed", slog.String("uid", viewer.UID), slog.String("error", err.Error()))
				viewer.Role = model.RoleUser
			}
		}

		if viewer.Role == "" {
			viewer.Role = model.RoleUser
		}
		c.Set("userID", viewer.UID)
		c.Set("role", viewer.Role)
		c.Request = c.Request.WithContext(auth.WithViewer(ctx, viewer))
		c.Next()
	}
}

// RequireRole 拒绝未登录或角色不符的请求。需放在 OptionalAuth 之后。
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := auth.RequireRole(c.Request.Context(), roles...); err != nil {
			status := http.StatusForbidden
			if _, ok := auth.ViewerFrom(c.Request.Context()); !ok {
				status = http.StatusUnauthorized
			}
			c.JSON(status, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		c.Next()
	}
}
