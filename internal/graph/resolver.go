// Package graph exposes the marketplace over GraphQL. Each root field is an
// independent handler: typed arguments in, at most one cross-store read,
// a shaped object or a classified error out.
package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/docstore"
	"github.com/OkontaEhis/myhitmeup-backend/internal/identity"
	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/apperr"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/metrics"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/notify"
	"github.com/OkontaEhis/myhitmeup-backend/internal/store"
	"github.com/OkontaEhis/myhitmeup-backend/internal/usersync"

	"github.com/go-playground/validator/v10"
	"github.com/graphql-go/graphql"
)

// RelationalStore is the relational surface the resolvers read and write.
type RelationalStore interface {
	GetUser(ctx context.Context, uid string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListUsersByRole(ctx context.Context, role string) ([]model.User, error)

	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id uint) (*model.Task, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	UpdateTask(ctx context.Context, id uint, updates map[string]any) (*model.Task, error)
	DeleteTask(ctx context.Context, id uint) (*model.Task, error)
	SearchTasks(ctx context.Context, f store.TaskFilter) ([]model.Task, error)
	RecommendTasks(ctx context.Context, skills []string, limit int) ([]model.Task, error)
	SaveTask(ctx context.Context, uid string, taskID uint) error

	CreateBid(ctx context.Context, bid *model.Bid) error
	GetBid(ctx context.Context, id uint) (*model.Bid, error)
	ListBids(ctx context.Context) ([]model.Bid, error)
	ListBidsByTask(ctx context.Context, taskID uint) ([]model.Bid, error)
	UpdateBid(ctx context.Context, id uint, updates map[string]any) (*model.Bid, error)
	DeleteBid(ctx context.Context, id uint) (*model.Bid, error)

	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransaction(ctx context.Context, id uint) (*model.Transaction, error)
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, id uint, updates map[string]any) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, id uint) (*model.Transaction, error)

	CreateRating(ctx context.Context, r *model.Rating) error
	GetRating(ctx context.Context, id uint) (*model.Rating, error)
	ListRatings(ctx context.Context) ([]model.Rating, error)
	ListRatingsByTask(ctx context.Context, taskID uint) ([]model.Rating, error)
	UpdateRating(ctx context.Context, id uint, updates map[string]any) (*model.Rating, error)
	DeleteRating(ctx context.Context, id uint) (*model.Rating, error)
	CreateReview(ctx context.Context, r *model.Review) error
	ListReviewsByTask(ctx context.Context, taskID uint) ([]model.Review, error)

	ProviderAnalytics(ctx context.Context, uid string) (*store.ProviderAnalytics, error)
	SeekerAnalytics(ctx context.Context, uid string) (*store.SeekerAnalytics, error)
}

// UserService owns every user write.
type UserService interface {
	Register(ctx context.Context, in usersync.RegisterInput) usersync.Result
	UpdateUser(ctx context.Context, uid string, patch usersync.UserPatch) (*model.User, error)
	AssignRole(ctx context.Context, uid, role string) (*model.User, error)
	IncrementProfileViews(ctx context.Context, uid string) (int, error)
	DeleteUser(ctx context.Context, uid string) (*model.User, error)
}

// Authenticator checks phone and password and returns a session token.
type Authenticator interface {
	Login(ctx context.Context, phone, password string) (string, error)
}

// Notifier queues in-app notifications.
type Notifier interface {
	Notify(kind, message string, data map[string]any, userIDs ...string) int
}

// EmailSender delivers one email.
type EmailSender interface {
	Send(ctx context.Context, e notify.Email) error
}

// Uploader stores bid attachments and returns their URLs in input order.
type Uploader interface {
	UploadAll(ctx context.Context, inputs []string) ([]string, error)
}

// Deps groups the resolver dependencies.
type Deps struct {
	Store    RelationalStore
	Docs     docstore.Store
	Identity identity.Provider
	Users    UserService
	Auth     Authenticator
	Notifier Notifier
	Mailer   EmailSender
	Uploader Uploader
	Logger   *slog.Logger
}

// Resolver is the root resolver holding the store clients.
type Resolver struct {
	store    RelationalStore
	docs     docstore.Store
	idp      identity.Provider
	users    UserService
	auth     Authenticator
	notifier Notifier
	mailer   EmailSender
	uploader Uploader
	validate *validator.Validate
	logger   *slog.Logger
}

func NewResolver(d Deps, validate *validator.Validate) *Resolver {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:    d.Store,
		docs:     d.Docs,
		idp:      d.Identity,
		users:    d.Users,
		auth:     d.Auth,
		notifier: d.Notifier,
		mailer:   d.Mailer,
		uploader: d.Uploader,
		validate: validate,
		logger:   logger,
	}
}

// resolveFunc is a root field body.
type resolveFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// field wraps a root field body with metrics and the error policy.
func (r *Resolver) field(name string, fn resolveFunc) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		start := time.Now()
		out, err := fn(p.Context, p.Args)
		metrics.GraphQLOperationDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			gerr := r.publicError(name, err)
			metrics.GraphQLOperationsTotal.WithLabelValues(name, strings.ToLower(string(gerr.kind))).Inc()
			return nil, gerr
		}
		metrics.GraphQLOperationsTotal.WithLabelValues(name, "ok").Inc()
		return out, nil
	}
}

// gqlError carries the caller-safe message and the extensions code.
type gqlError struct {
	kind    apperr.Kind
	message string
	ext     map[string]interface{}
}

func (e *gqlError) Error() string { return e.message }

func (e *gqlError) Extensions() map[string]interface{} { return e.ext }

func (r *Resolver) publicError(field string, err error) *gqlError {
	appErr, ok := apperr.As(err)
	if !ok {
		switch {
		case errors.Is(err, store.ErrNotFound), errors.Is(err, docstore.ErrNotFound):
			appErr = apperr.NotFound("Not found")
		case errors.Is(err, store.ErrConflict):
			appErr = apperr.Conflict("Conflicts with an existing record")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			appErr = apperr.Internal("request cancelled", err)
		default:
			appErr = apperr.Internal(field, err)
		}
	}
	if appErr.Kind == apperr.KindInternal {
		cause := appErr.Error()
		r.logger.Error("graphql field failed", slog.String("field", field), slog.String("error", cause))
	}
	return &gqlError{kind: appErr.Kind, message: appErr.Public(), ext: appErr.Extensions()}
}

// notFound maps the store sentinels to a NOT_FOUND error naming what.
func notFound(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, docstore.ErrNotFound) {
		return apperr.NotFound("%s not found", what)
	}
	return err
}

func argString(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func optString(args map[string]interface{}, key string) *string {
	v, ok := args[key].(string)
	if !ok {
		return nil
	}
	return &v
}

func requireString(args map[string]interface{}, key string) (string, error) {
	v := argString(args, key)
	if v == "" {
		return "", apperr.Validation(fmt.Sprintf("Validation failed: %s is required", key),
			apperr.FieldError{Field: key, Error: "is required"})
	}
	return v, nil
}

func argID(args map[string]interface{}, key string) (uint, error) {
	raw := argString(args, key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation(fmt.Sprintf("Validation failed: %s must be a positive integer id", key),
			apperr.FieldError{Field: key, Error: "must be a positive integer id"})
	}
	return uint(id), nil
}

func optFloat(args map[string]interface{}, key string) *float64 {
	switch v := args[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func optInt(args map[string]interface{}, key string) *int {
	v, ok := args[key].(int)
	if !ok {
		return nil
	}
	return &v
}

func argStrings(args map[string]interface{}, key string) []string {
	raw, _ := args[key].([]interface{})
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func argInput(args map[string]interface{}) map[string]interface{} {
	in, _ := args["input"].(map[string]interface{})
	if in == nil {
		return map[string]interface{}{}
	}
	return in
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
