package graph

import (
	"context"
	"errors"
	"log/slog"

	"github.com/OkontaEhis/myhitmeup-backend/internal/api/auth"
	"github.com/OkontaEhis/myhitmeup-backend/internal/identity"
	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/apperr"
	"github.com/OkontaEhis/myhitmeup-backend/internal/usersync"

	"github.com/graphql-go/graphql"
)

const (
	msgProfileViewUpdated  = "Profile view count updated successfully."
	msgProfileViewsUpdated = "Profile view count updated"
	msgProfileViewsFailed  = "Error updating profile views"
)

func registerUserQueries(fields graphql.Fields, r *Resolver) {
	fields["getUser"] = &graphql.Field{
		Type:        userType,
		Description: "Look a user up by provider uid. firebase_uid is accepted as an alias of user_id.",
		Args: graphql.FieldConfigArgument{
			"user_id":      optional(graphql.ID),
			"firebase_uid": optional(graphql.ID),
		},
		Resolve: r.field("getUser", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid := argString(args, "user_id")
			if uid == "" {
				uid = argString(args, "firebase_uid")
			}
			if uid == "" {
				return nil, apperr.Validation("Validation failed: user_id is required",
					apperr.FieldError{Field: "user_id", Error: "is required"})
			}
			return r.lookupUser(ctx, uid)
		}),
	}
	fields["getUserbyId"] = &graphql.Field{
		Type: userType,
		Args: idArg("user_id"),
		Resolve: r.field("getUserbyId", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid, err := requireString(args, "user_id")
			if err != nil {
				return nil, err
			}
			return r.lookupUser(ctx, uid)
		}),
	}
	fields["getUsers"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(userType))),
		Resolve: r.field("getUsers", func(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
			users, err := r.store.ListUsers(ctx)
			if err != nil {
				return nil, err
			}
			return toUsers(users), nil
		}),
	}
	fields["getUsersByRole"] = &graphql.Field{
		Type: graphql.NewList(graphql.NewNonNull(userType)),
		Args: graphql.FieldConfigArgument{"role": nonNull(graphql.String)},
		Resolve: r.field("getUsersByRole", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			role, err := requireString(args, "role")
			if err != nil {
				return nil, err
			}
			users, err := r.store.ListUsersByRole(ctx, role)
			if err != nil {
				return nil, err
			}
			return toUsers(users), nil
		}),
	}
	fields["me"] = &graphql.Field{
		Type: userType,
		Resolve: r.field("me", func(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
			v, err := auth.RequireRole(ctx)
			if err != nil {
				return nil, err
			}
			return r.lookupUser(ctx, v.UID)
		}),
	}
}

// lookupUser reads the relational row and enriches it from the provider.
// A provider failure leaves the relational record as it is.
func (r *Resolver) lookupUser(ctx context.Context, uid string) (*userDTO, error) {
	u, err := r.store.GetUser(ctx, uid)
	if err != nil {
		return nil, notFound(err, "User")
	}
	dto := toUser(u)
	if r.idp == nil {
		return dto, nil
	}
	account, err := r.idp.GetUser(ctx, uid)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, identity.ErrNotFound) {
			level = slog.LevelInfo
		}
		r.logger.Log(ctx, level, "user enrichment skipped", slog.String("uid", uid), slog.String("error", err.Error()))
		return dto, nil
	}
	dto.enrich(account)
	return dto, nil
}

func registerUserMutations(fields graphql.Fields, r *Resolver) {
	fields["registerUser"] = &graphql.Field{
		Type: graphql.NewNonNull(authResponseType),
		Args: graphql.FieldConfigArgument{
			"username":    nonNull(graphql.String),
			"phoneNumber": nonNull(graphql.String),
			"password":    nonNull(graphql.String),
			"email":       nonNull(graphql.String),
			"NIN":         nonNull(graphql.String),
			"gender":      optional(graphql.String),
			"user_type":   optional(graphql.String),
			"birthDate":   optional(graphql.String),
			"first_name":  nonNull(graphql.String),
			"last_name":   nonNull(graphql.String),
		},
		Resolve: r.field("registerUser", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			// Passwords are hashed exactly as sent; login compares the raw value.
			password, _ := args["password"].(string)
			res := r.users.Register(ctx, usersync.RegisterInput{
				Username:    argString(args, "username"),
				PhoneNumber: argString(args, "phoneNumber"),
				Password:    password,
				Email:       argString(args, "email"),
				NIN:         argString(args, "NIN"),
				Gender:      argString(args, "gender"),
				UserType:    argString(args, "user_type"),
				BirthDate:   argString(args, "birthDate"),
				FirstName:   argString(args, "first_name"),
				LastName:    argString(args, "last_name"),
			})
			return toAuthResponse(res), nil
		}),
	}
	fields["login"] = &graphql.Field{
		Type: graphql.NewNonNull(loginType),
		Args: graphql.FieldConfigArgument{
			"phoneNumber": nonNull(graphql.String),
			"password":    nonNull(graphql.String),
		},
		Resolve: r.field("login", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			password, _ := args["password"].(string)
			token, err := r.auth.Login(ctx, argString(args, "phoneNumber"), password)
			if err != nil {
				return nil, err
			}
			return &loginDTO{Token: token}, nil
		}),
	}
	fields["updateUser"] = &graphql.Field{
		Type: userType,
		Args: graphql.FieldConfigArgument{
			"user_id":     nonNull(graphql.ID),
			"first_name":  optional(graphql.String),
			"last_name":   optional(graphql.String),
			"phoneNumber": optional(graphql.String),
			"email":       optional(graphql.String),
		},
		Resolve: r.field("updateUser", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid, err := requireString(args, "user_id")
			if err != nil {
				return nil, err
			}
			u, err := r.users.UpdateUser(ctx, uid, usersync.UserPatch{
				FirstName:   optString(args, "first_name"),
				LastName:    optString(args, "last_name"),
				PhoneNumber: optString(args, "phoneNumber"),
				Email:       optString(args, "email"),
			})
			if err != nil {
				return nil, err
			}
			return toUser(u), nil
		}),
	}
	fields["deleteUser"] = &graphql.Field{
		Type: userType,
		Args: idArg("user_id"),
		Resolve: r.field("deleteUser", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid, err := requireString(args, "user_id")
			if err != nil {
				return nil, err
			}
			u, err := r.users.DeleteUser(ctx, uid)
			if err != nil {
				return nil, err
			}
			return toUser(u), nil
		}),
	}
	fields["assignUserRole"] = &graphql.Field{
		Type: userType,
		Args: graphql.FieldConfigArgument{
			"userId": nonNull(graphql.ID),
			"role":   nonNull(graphql.String),
		},
		Resolve: r.field("assignUserRole", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			viewer, err := auth.RequireRole(ctx, model.RoleAdmin, model.RoleModerator)
			if err != nil {
				return nil, err
			}
			uid, err := requireString(args, "userId")
			if err != nil {
				return nil, err
			}
			role := argString(args, "role")
			if viewer.Role != model.RoleAdmin {
				if err := r.guardModeratorAssignment(ctx, uid, role); err != nil {
					return nil, err
				}
			}
			u, err := r.users.AssignRole(ctx, uid, role)
			if err != nil {
				return nil, err
			}
			return toUser(u), nil
		}),
	}
	fields["incrementProfileView"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.String),
		Args: idArg("user_id"),
		Resolve: r.field("incrementProfileView", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid, err := requireString(args, "user_id")
			if err != nil {
				return nil, err
			}
			if _, err := r.users.IncrementProfileViews(ctx, uid); err != nil {
				return nil, err
			}
			return msgProfileViewUpdated, nil
		}),
	}
	fields["incrementProfileViews"] = &graphql.Field{
		Type: graphql.NewNonNull(authResponseType),
		Args: idArg("firebase_uid"),
		Resolve: r.field("incrementProfileViews", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid := argString(args, "firebase_uid")
			if _, err := r.users.IncrementProfileViews(ctx, uid); err != nil {
				if apperr.KindOf(err) == apperr.KindInternal {
					r.logger.Error("increment profile views failed", slog.String("uid", uid), slog.String("error", err.Error()))
				}
				return &authResponseDTO{Success: false, Message: msgProfileViewsFailed}, nil
			}
			return &authResponseDTO{Success: true, Message: msgProfileViewsUpdated}, nil
		}),
	}
}

// guardModeratorAssignment keeps Admin out of a moderator's reach: moderators
// may not grant Admin nor change the role of an existing Admin.
func (r *Resolver) guardModeratorAssignment(ctx context.Context, uid, role string) error {
	if role == model.RoleAdmin {
		return apperr.Forbidden("only an Admin can grant the Admin role")
	}
	target, err := r.store.GetUser(ctx, uid)
	if err != nil {
		return notFound(err, "User")
	}
	if target.Role == model.RoleAdmin {
		return apperr.Forbidden("only an Admin can change an Admin's role")
	}
	return nil
}
