package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Acquirer blocks until an outbound call may proceed.
type Acquirer interface {
	Acquire(ctx context.Context) error
}

// Throttled wraps a Provider so every call first takes a token from a
// shared limiter, keeping the fleet under the provider's API quota.
type Throttled struct {
	next    Provider
	limiter Acquirer
}

func NewThrottled(next Provider, limiter Acquirer) *Throttled {
	return &Throttled{next: next, limiter: limiter}
}

func (t *Throttled) wait(ctx context.Context) error {
	if t.limiter == nil {
		return nil
	}
	if err := t.limiter.Acquire(ctx); err != nil {
		return fmt.Errorf("identity throttle: %w", err)
	}
	return nil
}

func (t *Throttled) CreateUser(ctx context.Context, attrs UserAttributes) (string, error) {
	if err := t.wait(ctx); err != nil {
		return "", err
	}
	return t.next.CreateUser(ctx, attrs)
}

func (t *Throttled) GetUser(ctx context.Context, id string) (*Account, error) {
	if err := t.wait(ctx); err != nil {
		return nil, err
	}
	return t.next.GetUser(ctx, id)
}

func (t *Throttled) DeleteUser(ctx context.Context, id string) error {
	if err := t.wait(ctx); err != nil {
		return err
	}
	return t.next.DeleteUser(ctx, id)
}

// VerifyToken is not throttled; verification uses the cached JWKS.
func (t *Throttled) VerifyToken(ctx context.Context, token string) (*Claims, error) {
	return t.next.VerifyToken(ctx, token)
}

// Local keeps accounts in memory. It backs local runs without provider
// credentials and never accepts provider tokens.
type Local struct {
	mu       sync.Mutex
	accounts map[string]Account
}

func NewLocal() *Local {
	return &Local{accounts: make(map[string]Account)}
}

func (l *Local) CreateUser(_ context.Context, attrs UserAttributes) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := "user_" + uuid.NewString()
	l.accounts[id] = Account{
		ID:          id,
		Username:    attrs.Username,
		Email:       attrs.Email,
		PhoneNumber: attrs.PhoneNumber,
		FirstName:   attrs.FirstName,
		LastName:    attrs.LastName,
		CreatedAt:   time.Now().UnixMilli(),
	}
	return id, nil
}

func (l *Local) GetUser(_ context.Context, id string) (*Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (l *Local) DeleteUser(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(l.accounts, id)
	return nil
}

func (l *Local) VerifyToken(context.Context, string) (*Claims, error) {
	return nil, ErrInvalidToken
}
