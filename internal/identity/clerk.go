package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwks"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/clerk/clerk-sdk-go/v2/user"
)

// Clerk is a Provider backed by the Clerk backend API.
type Clerk struct {
	users *user.Client
	jwks  *jwks.Client
}

// NewClerk configures per-instance clients. An empty key is rejected so a
// misconfigured deployment fails at startup.
func NewClerk(secretKey string) (*Clerk, error) {
	if secretKey == "" {
		return nil, errors.New("identity: clerk secret key is required")
	}
	cfg := &clerk.ClientConfig{}
	cfg.Key = clerk.String(secretKey)
	return &Clerk{
		users: user.NewClient(cfg),
		jwks:  jwks.NewClient(cfg),
	}, nil
}

func (c *Clerk) CreateUser(ctx context.Context, attrs UserAttributes) (string, error) {
	params := &user.CreateParams{
		PhoneNumbers: &[]string{attrs.PhoneNumber},
		Username:     optional(attrs.Username),
		FirstName:    optional(attrs.FirstName),
		LastName:     optional(attrs.LastName),
	}
	if attrs.Email != "" {
		params.EmailAddresses = &[]string{attrs.Email}
	}
	if attrs.PasswordDigest != "" {
		params.PasswordDigest = clerk.String(attrs.PasswordDigest)
		params.PasswordHasher = clerk.String("bcrypt")
	}
	u, err := c.users.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("clerk create user: %w", err)
	}
	return u.ID, nil
}

func (c *Clerk) GetUser(ctx context.Context, id string) (*Account, error) {
	u, err := c.users.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("clerk get user: %w", err)
	}
	return toAccount(u), nil
}

func (c *Clerk) DeleteUser(ctx context.Context, id string) error {
	if _, err := c.users.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("clerk delete user: %w", err)
	}
	return nil
}

// VerifyToken checks a session JWT against the instance JWKS.
func (c *Clerk) VerifyToken(ctx context.Context, token string) (*Claims, error) {
	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{
		Token:      token,
		JWKSClient: c.jwks,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &Claims{
		Subject:   claims.Subject,
		SessionID: claims.SessionID,
		Role:      claims.ActiveOrganizationRole,
	}, nil
}

func toAccount(u *clerk.User) *Account {
	a := &Account{
		ID:        u.ID,
		Username:  deref(u.Username),
		FirstName: deref(u.FirstName),
		LastName:  deref(u.LastName),
		ImageURL:  deref(u.ImageURL),
		CreatedAt: u.CreatedAt,
	}
	primaryEmail := deref(u.PrimaryEmailAddressID)
	for _, e := range u.EmailAddresses {
		if e != nil && (a.Email == "" || e.ID == primaryEmail) {
			a.Email = e.EmailAddress
		}
	}
	primaryPhone := deref(u.PrimaryPhoneNumberID)
	for _, p := range u.PhoneNumbers {
		if p != nil && (a.PhoneNumber == "" || p.ID == primaryPhone) {
			a.PhoneNumber = p.PhoneNumber
		}
	}
	return a
}

func isNotFound(err error) bool {
	var apiErr *clerk.APIErrorResponse
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return clerk.String(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
