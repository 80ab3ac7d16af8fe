// Package usersync keeps the three copies of a user consistent. The
// relational row is authoritative; every write to it records an outbox
// change in the same transaction, and the Relay projects changed users into
// the document store.
package usersync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/OkontaEhis/myhitmeup-backend/internal/docstore"
	"github.com/OkontaEhis/myhitmeup-backend/internal/identity"
	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/apperr"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/metrics"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/validation"
	"github.com/OkontaEhis/myhitmeup-backend/internal/store"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	MsgRegistered       = "User registered successfully"
	MsgRegisterFailed   = "Registration failed"
	MsgInvalidPhone     = "Invalid phone number format. It must be a non-empty E.164 standard compliant identifier string."
	MsgInvalidNIN       = "Invalid NIN format. It must be a valid 11-digit number."
	phoneClaimScope     = "phone"
	defaultPasswordCost = bcrypt.DefaultCost
)

// UserStore is the relational surface the routine writes through.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) (uint64, error)
	GetUser(ctx context.Context, uid string) (*model.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*model.User, error)
	EmailTaken(ctx context.Context, email, exceptUID string) (bool, error)
	UpdateUser(ctx context.Context, uid string, updates map[string]any) (*model.User, error)
	SetRole(ctx context.Context, uid, role string) (*model.User, error)
	UpdateProfile(ctx context.Context, uid string, p store.ProfileData) (*model.User, error)
	IncrementProfileViews(ctx context.Context, uid string) (int, error)
	DeleteUser(ctx context.Context, uid string) (*model.User, error)
	MarkChangesProcessed(ctx context.Context, ids ...uint64) error
}

// UserDocs is the document-side user copy.
type UserDocs interface {
	UpsertUser(ctx context.Context, u *docstore.UserDoc) error
	DeleteUser(ctx context.Context, uid string) error
}

// Claimer serializes registrations of the same phone number.
type Claimer interface {
	Claim(ctx context.Context, scope, value string) (bool, error)
	Release(ctx context.Context, scope, value string) error
}

// Kicker wakes the relay early after a write.
type Kicker interface {
	Kick()
}

// RegisterInput carries the registerUser arguments. Phone and NIN are
// checked first with their own messages; the tags cover the rest.
type RegisterInput struct {
	Username    string `json:"username" validate:"required,max=64"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	FirstName   string `json:"first_name" validate:"required,max=64"`
	LastName    string `json:"last_name" validate:"required,max=64"`
	Email       string `json:"email" validate:"required,email"`
	NIN         string `json:"NIN"`
	BirthDate   string `json:"birthDate"`
	Gender      string `json:"gender"`
	UserType    string `json:"user_type"`
}

// Result mirrors the AuthResponse shape.
type Result struct {
	Success bool
	Message string
	UserID  string
}

// UserPatch holds optional updateUser fields; nil means unchanged.
type UserPatch struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=64"`
	LastName    *string `json:"last_name" validate:"omitempty,max=64"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,phone"`
	Email       *string `json:"email" validate:"omitempty,email"`
}

type Service struct {
	users    UserStore
	docs     UserDocs
	idp      identity.Provider
	claims   Claimer
	kicker   Kicker
	validate *validator.Validate
	logger   *slog.Logger
	cost     int
}

// Option customizes a Service.
type Option func(*Service)

// WithKicker wakes the relay after update paths.
func WithKicker(k Kicker) Option { return func(s *Service) { s.kicker = k } }

// WithPasswordCost overrides the bcrypt cost.
func WithPasswordCost(cost int) Option { return func(s *Service) { s.cost = cost } }

func NewService(users UserStore, docs UserDocs, idp identity.Provider, claims Claimer, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:    users,
		docs:     docs,
		idp:      idp,
		claims:   claims,
		validate: validation.New(),
		logger:   logger,
		cost:     defaultPasswordCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates the input, creates the provider account, then writes
// the relational row and its outbox change together. The document copy is
// projected right away when possible and otherwise left to the relay.
func (s *Service) Register(ctx context.Context, in RegisterInput) Result {
	if !validation.ValidPhone(in.PhoneNumber) {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return Result{Message: MsgInvalidPhone}
	}
	if !validation.ValidNIN(in.NIN) {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return Result{Message: MsgInvalidNIN}
	}
	if err := validation.Struct(s.validate, in); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		if appErr, ok := apperr.As(err); ok {
			return Result{Message: appErr.Public()}
		}
		return Result{Message: MsgRegisterFailed}
	}

	uid, err := s.register(ctx, in)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("register user failed",
			slog.String("phone_number", maskPhone(in.PhoneNumber)),
			slog.String("error", err.Error()))
		return Result{Message: MsgRegisterFailed}
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.logger.Info("user registered", slog.String("uid", uid))
	return Result{Success: true, Message: MsgRegistered, UserID: uid}
}

func (s *Service) register(ctx context.Context, in RegisterInput) (string, error) {
	if s.claims != nil {
		won, err := s.claims.Claim(ctx, phoneClaimScope, in.PhoneNumber)
		if err != nil {
			return "", err
		}
		if !won {
			return "", errors.New("registration for this phone number already in progress")
		}
		defer func() {
			if err := s.claims.Release(context.WithoutCancel(ctx), phoneClaimScope, in.PhoneNumber); err != nil {
				s.logger.Warn("release phone claim failed", slog.String("error", err.Error()))
			}
		}()
	}

	if _, err := s.users.GetUserByPhone(ctx, in.PhoneNumber); err == nil {
		return "", errors.New("phone number already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("lookup phone: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	uid, err := s.idp.CreateUser(ctx, identity.UserAttributes{
		Username:       in.Username,
		PhoneNumber:    in.PhoneNumber,
		Email:          in.Email,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		PasswordDigest: string(hash),
	})
	if err != nil {
		return "", fmt.Errorf("create provider account: %w", err)
	}

	u := &model.User{
		UID:          uid,
		Username:     in.Username,
		PhoneNumber:  in.PhoneNumber,
		NIN:          in.NIN,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		BirthDate:    in.BirthDate,
		Gender:       in.Gender,
		UserType:     in.UserType,
		Role:         model.RoleUser,
		PasswordHash: string(hash),
	}
	changeID, err := s.users.CreateUser(ctx, u)
	if err != nil {
		s.compensate(ctx, uid)
		return "", fmt.Errorf("insert user: %w", err)
	}

	if err := s.docs.UpsertUser(ctx, ToDoc(u)); err != nil {
		s.logger.Warn("user document projection deferred to relay",
			slog.String("uid", uid), slog.String("error", err.Error()))
		s.kick()
		return uid, nil
	}
	if err := s.users.MarkChangesProcessed(ctx, changeID); err != nil {
		s.logger.Warn("mark change processed failed", slog.String("uid", uid), slog.String("error", err.Error()))
	}
	return uid, nil
}

// compensate removes a provider account whose relational row never landed.
func (s *Service) compensate(ctx context.Context, uid string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.idp.DeleteUser(ctx, uid); err != nil && !errors.Is(err, identity.ErrNotFound) {
		s.logger.Error("compensating provider delete failed",
			slog.String("uid", uid), slog.String("error", err.Error()))
		return
	}
	s.logger.Info("compensating provider delete done", slog.String("uid", uid))
}

// SyncProfile writes the profile fields of an existing user.
func (s *Service) SyncProfile(ctx context.Context, uid string, p store.ProfileData) (*model.User, error) {
	if uid == "" {
		return nil, apperr.Validation("firebase_uid is required", apperr.FieldError{Field: "firebase_uid", Error: "is required"})
	}
	u, err := s.users.UpdateProfile(ctx, uid, p)
	if err != nil {
		return nil, s.wrap(err, "sync profile", uid)
	}
	s.kick()
	return u, nil
}

// UpdateUser applies a patch. An email held by another user is a conflict.
func (s *Service) UpdateUser(ctx context.Context, uid string, patch UserPatch) (*model.User, error) {
	if err := validation.Struct(s.validate, patch); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if patch.FirstName != nil {
		updates["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		updates["last_name"] = *patch.LastName
	}
	if patch.PhoneNumber != nil {
		updates["phone_number"] = *patch.PhoneNumber
	}
	if patch.Email != nil {
		taken, err := s.users.EmailTaken(ctx, *patch.Email, uid)
		if err != nil {
			return nil, apperr.Internal("check email", err)
		}
		if taken {
			return nil, apperr.Conflict("Email is already in use")
		}
		updates["email"] = *patch.Email
	}
	if len(updates) == 0 {
		u, err := s.users.GetUser(ctx, uid)
		if err != nil {
			return nil, s.wrap(err, "get user", uid)
		}
		return u, nil
	}
	u, err := s.users.UpdateUser(ctx, uid, updates)
	if err != nil {
		return nil, s.wrap(err, "update user", uid)
	}
	s.kick()
	return u, nil
}

// AssignRole sets one of the known roles.
func (s *Service) AssignRole(ctx context.Context, uid, role string) (*model.User, error) {
	switch role {
	case model.RoleUser, model.RoleAdmin, model.RoleModerator:
	default:
		return nil, apperr.Validation("Validation failed: role must be one of: User Admin Moderator",
			apperr.FieldError{Field: "role", Error: "must be one of: User Admin Moderator"})
	}
	u, err := s.users.SetRole(ctx, uid, role)
	if err != nil {
		return nil, s.wrap(err, "assign role", uid)
	}
	s.logger.Info("user role updated", slog.String("uid", uid), slog.String("role", role))
	s.kick()
	return u, nil
}

// IncrementProfileViews adds one view and returns the new count.
func (s *Service) IncrementProfileViews(ctx context.Context, uid string) (int, error) {
	views, err := s.users.IncrementProfileViews(ctx, uid)
	if err != nil {
		return 0, s.wrap(err, "increment profile views", uid)
	}
	s.kick()
	return views, nil
}

// DeleteUser removes the relational row; the relay removes the document
// copy. The provider account is removed best effort.
func (s *Service) DeleteUser(ctx context.Context, uid string) (*model.User, error) {
	u, err := s.users.DeleteUser(ctx, uid)
	if err != nil {
		return nil, s.wrap(err, "delete user", uid)
	}
	if err := s.idp.DeleteUser(ctx, uid); err != nil && !errors.Is(err, identity.ErrNotFound) {
		s.logger.Warn("provider account delete failed", slog.String("uid", uid), slog.String("error", err.Error()))
	}
	s.kick()
	return u, nil
}

func (s *Service) kick() {
	if s.kicker != nil {
		s.kicker.Kick()
	}
}

func (s *Service) wrap(err error, op, uid string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("User not found")
	case errors.Is(err, store.ErrConflict):
		return apperr.Conflict("User data conflicts with an existing user")
	}
	s.logger.Error(op+" failed", slog.String("uid", uid), slog.String("error", err.Error()))
	return apperr.Internal(op, err)
}

// ToDoc maps a relational user to its document copy.
func ToDoc(u *model.User) *docstore.UserDoc {
	return &docstore.UserDoc{
		UID:            u.UID,
		Username:       u.Username,
		PhoneNumber:    u.PhoneNumber,
		NIN:            u.NIN,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		BirthDate:      u.BirthDate,
		Gender:         u.Gender,
		UserType:       u.UserType,
		Role:           u.Role,
		ProfileViews:   u.ProfileViews,
		PasswordHash:   u.PasswordHash,
		Profile:        u.Profile,
		Skills:         []string(u.Skills),
		Ratings:        u.Ratings,
		Reviews:        []string(u.Reviews),
		Portfolio:      []string(u.Portfolio),
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func maskPhone(p string) string {
	if len(p) <= 4 {
		return "****"
	}
	return p[:len(p)-4] + "****"
}
