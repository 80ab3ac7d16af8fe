package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/apperr"
	"github.com/OkontaEhis/myhitmeup-backend/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type mockUsers struct {
	getFunc func(ctx context.Context, phone string) (*model.User, error)
	calls   int
}

func (m *mockUsers) GetUserByPhone(ctx context.Context, phone string) (*model.User, error) {
	m.calls++
	return m.getFunc(ctx, phone)
}

func userWithPassword(t *testing.T, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &model.User{UID: "user_1", PhoneNumber: "+15551234567", Role: model.RoleAdmin, PasswordHash: string(hash)}
}

func newHandler(t *testing.T, users UserLookup) *Handler {
	t.Helper()
	return NewHandler(users, NewIssuer("test-secret", time.Hour), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	token, err := iss.Issue("user_1", model.RoleModerator)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := iss.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user_1" || claims.Role != model.RoleModerator {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := NewIssuer("other", time.Hour).Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestIssuer_Expired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	token, err := iss.Issue("user_1", model.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	iss.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := iss.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	u := userWithPassword(t, "s3cret-pass")
	users := &mockUsers{getFunc: func(_ context.Context, phone string) (*model.User, error) {
		if phone == u.PhoneNumber {
			return u, nil
		}
		return nil, store.ErrNotFound
	}}
	h := newHandler(t, users)
	ctx := context.Background()

	token, err := h.Login(ctx, "+15551234567", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := h.issuer.Parse(token)
	if err != nil || claims.Subject != "user_1" || claims.Role != model.RoleAdmin {
		t.Fatalf("unexpected claims %+v err=%v", claims, err)
	}

	if _, err := h.Login(ctx, "+15551234567", "wrong"); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized for wrong password, got %v", err)
	}
	if _, err := h.Login(ctx, "+15550000000", "s3cret-pass"); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized for unknown phone, got %v", err)
	}
	if _, err := h.Login(ctx, "", ""); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandleLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	u := userWithPassword(t, "s3cret-pass")
	users := &mockUsers{getFunc: func(context.Context, string) (*model.User, error) { return u, nil }}
	h := newHandler(t, users)

	r := gin.New()
	r.POST("/login", h.HandleLogin)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"phoneNumber":"+15551234567","password":"s3cret-pass"}`, http.StatusOK},
		{"wrong password", `{"phoneNumber":"+15551234567","password":"nope"}`, http.StatusUnauthorized},
		{"bad body", `{"phoneNumber":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if tc.status == http.StatusOK {
				var resp tokenResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
					t.Fatalf("expected token, got %s", w.Body.String())
				}
			}
		})
	}
}

func TestLogin_StoreFailureIsInternal(t *testing.T) {
	users := &mockUsers{getFunc: func(context.Context, string) (*model.User, error) {
		return nil, errors.New("db down")
	}}
	_, err := newHandler(t, users).Login(context.Background(), "+15551234567", "x")
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindInternal || appErr.Public() != apperr.InternalMessage {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	if _, err := RequireRole(context.Background(), model.RoleAdmin); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized for anonymous, got %v", err)
	}
	ctx := WithViewer(context.Background(), Viewer{UID: "u1", Role: model.RoleUser})
	if _, err := RequireRole(ctx, model.RoleAdmin, model.RoleModerator); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	ctx = WithViewer(context.Background(), Viewer{UID: "u1", Role: model.RoleModerator})
	if v, err := RequireRole(ctx, model.RoleAdmin, model.RoleModerator); err != nil || v.UID != "u1" {
		t.Fatalf("expected moderator allowed, got %v", err)
	}
	if _, err := RequireRole(ctx); err != nil {
		t.Fatalf("any signed-in viewer should pass, got %v", err)
	}
}
