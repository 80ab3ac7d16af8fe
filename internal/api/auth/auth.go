// Package auth 提供手机号登录、会话令牌签发与请求上下文中的访问者信息。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/apperr"
	"github.com/OkontaEhis/myhitmeup-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken 令牌无法解析、签名不符或已过期。
var ErrInvalidToken = errors.New("invalid token")

const defaultTTL = 24 * time.Hour

// Claims 是会话令牌的载荷，Subject 为用户 uid。
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Issuer 签发并校验 HS256 会话令牌。
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer 创建令牌签发器，ttl 非正时使用 24 小时。
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue 为 uid 签发令牌。
func (i *Issuer) Issue(uid, role string) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse 校验令牌并返回载荷。只接受 HS256。
func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// UserLookup 按手机号查找用户。
type UserLookup interface {
	GetUserByPhone(ctx context.Context, phone string) (*model.User, error)
}

// Handler 提供登录接口。
type Handler struct {
	users  UserLookup
	issuer *Issuer
	logger *slog.Logger
}

// NewHandler 创建 Auth Handler。
func NewHandler(users UserLookup, issuer *Issuer, logger *slog.Logger) *Handler {
	return &Handler{users: users, issuer: issuer, logger: logger}
}

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login 校验手机号与密码并签发令牌。未知手机号与错误密码返回相同错误。
func (h *Handler) Login(ctx context.Context, phone, password string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return "", apperr.Validation("phoneNumber and password are required")
	}
	user, err := h.users.GetUserByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", apperr.Unauthorized("invalid credentials")
		}
		h.logger.Error("login lookup failed", slog.String("error", err.Error()))
		return "", apperr.Internal("login lookup", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperr.Unauthorized("invalid credentials")
	}
	token, err := h.issuer.Issue(user.UID, user.Role)
	if err != nil {
		h.logger.Error("sign token failed", slog.String("uid", user.UID), slog.String("error", err.Error()))
		return "", apperr.Internal("sign token", err)
	}
	h.logger.Info("user logged in", slog.String("uid", user.UID), slog.String("role", user.Role))
	return token, nil
}

// HandleLogin 是 POST /login。
func (h *Handler) HandleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := h.Login(c.Request.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		appErr, _ := apperr.As(err)
		status := http.StatusInternalServerError
		msg := apperr.InternalMessage
		if appErr != nil {
			msg = appErr.Public()
			switch appErr.Kind {
			case apperr.KindValidation:
				status = http.StatusBadRequest
			case apperr.KindUnauthorized:
				status = http.StatusUnauthorized
			}
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// Viewer 是当前请求的访问者。
type Viewer struct {
	UID    string
	Role   string
	Source string // session / provider
}

type viewerKey struct{}

// WithViewer 把访问者写入 ctx。
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

// ViewerFrom 读取访问者，匿名请求返回 false。
func ViewerFrom(ctx context.Context) (Viewer, bool) {
	v, ok := ctx.Value(viewerKey{}).(Viewer)
	return v, ok && v.UID != ""
}

// RequireRole 要求访问者已登录且角色在 roles 中。
func RequireRole(ctx context.Context, roles ...string) (Viewer, error) {
	v, ok := ViewerFrom(ctx)
	if !ok {
		return Viewer{}, apperr.Unauthorized("authentication required")
	}
	if len(roles) > 0 && !slices.Contains(roles, v.Role) {
		return v, apperr.Forbidden(fmt.Sprintf("requires one of roles: %s", strings.Join(roles, ", ")))
	}
	return v, nil
}
