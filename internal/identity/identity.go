// Package identity talks to the external identity provider. The provider
// issues the uid that keys a user in every store.
package identity

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the provider has no such account.
var ErrNotFound = errors.New("identity: account not found")

// ErrInvalidToken is returned when a bearer token fails verification.
var ErrInvalidToken = errors.New("identity: invalid token")

// UserAttributes are sent when creating an account.
type UserAttributes struct {
	Username       string
	PhoneNumber    string
	Email          string
	FirstName      string
	LastName       string
	PasswordDigest string // bcrypt
}

// Account is the provider-side view of a user.
type Account struct {
	ID          string
	Username    string
	Email       string
	PhoneNumber string
	FirstName   string
	LastName    string
	ImageURL    string
	CreatedAt   int64 // unix millis
}

// Claims are the verified contents of a provider session token.
type Claims struct {
	Subject   string
	SessionID string
	Role      string
}

// Provider is the subset of the identity service the backend depends on.
type Provider interface {
	CreateUser(ctx context.Context, attrs UserAttributes) (string, error)
	GetUser(ctx context.Context, id string) (*Account, error)
	DeleteUser(ctx context.Context, id string) error
	VerifyToken(ctx context.Context, token string) (*Claims, error)
}
