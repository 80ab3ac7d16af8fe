package graph

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/api/auth"
	"github.com/OkontaEhis/myhitmeup-backend/internal/attachment"
	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/apperr"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/notify"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/validation"
	"github.com/OkontaEhis/myhitmeup-backend/internal/store"

	"github.com/graphql-go/graphql"
)

const recommendLimit = 10

// ParseTaskFilter reads the search filters through get. Empty values are
// ignored; malformed numbers or dates are validation errors.
func ParseTaskFilter(get func(key string) string) (store.TaskFilter, error) {
	f := store.TaskFilter{
		Query:         strings.TrimSpace(get("query")),
		SkillCategory: strings.TrimSpace(get("skillCategory")),
		Location:      strings.TrimSpace(get("location")),
	}
	var fields []apperr.FieldError
	for _, key := range []string{"budgetMin", "budgetMax"} {
		raw := strings.TrimSpace(get(key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fields = append(fields, apperr.FieldError{Field: key, Error: "must be a number"})
			continue
		}
		if key == "budgetMin" {
			f.BudgetMin = &v
		} else {
			f.BudgetMax = &v
		}
	}
	if raw := strings.TrimSpace(get("datePosted")); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			fields = append(fields, apperr.FieldError{Field: "datePosted", Error: "must be RFC3339 or YYYY-MM-DD"})
		} else {
			f.DatePosted = &t
		}
	}
	if len(fields) > 0 {
		return store.TaskFilter{}, apperr.Validation(validationSummary(fields), fields...)
	}
	return f, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

func validationSummary(fields []apperr.FieldError) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+" "+f.Error)
	}
	return "Validation failed: " + strings.Join(parts, "; ")
}

// filterFromInput adapts the GraphQL TaskFilter input to ParseTaskFilter.
func filterFromInput(in map[string]interface{}) (store.TaskFilter, error) {
	return ParseTaskFilter(func(key string) string {
		switch v := in[key].(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
		return ""
	})
}

// ownerOr returns explicit, or the signed-in viewer when explicit is empty.
func ownerOr(ctx context.Context, explicit, field string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v, ok := auth.ViewerFrom(ctx); ok {
		return v.UID, nil
	}
	return "", apperr.Validation(fmt.Sprintf("Validation failed: %s is required", field),
		apperr.FieldError{Field: field, Error: "is required"})
}

func registerTaskQueries(fields graphql.Fields, r *Resolver) {
	fields["task"] = &graphql.Field{
		Type: taskType,
		Args: idArg("task_id"),
		Resolve: r.field("task", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "task_id")
			if err != nil {
				return nil, err
			}
			t, err := r.store.GetTask(ctx, id)
			if err != nil {
				return nil, notFound(err, "Task")
			}
			return toTask(t), nil
		}),
	}
	fields["tasks"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(taskType))),
		Resolve: r.field("tasks", func(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
			tasks, err := r.store.ListTasks(ctx)
			if err != nil {
				return nil, err
			}
			return toTasks(tasks), nil
		}),
	}
	fields["searchTasks"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(taskType))),
		Args: graphql.FieldConfigArgument{"filter": optional(taskFilterInput)},
		Resolve: r.field("searchTasks", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			in, _ := args["filter"].(map[string]interface{})
			f, err := filterFromInput(in)
			if err != nil {
				return nil, err
			}
			tasks, err := r.store.SearchTasks(ctx, f)
			if err != nil {
				return nil, err
			}
			return toTasks(tasks), nil
		}),
	}
	fields["recommendTask"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(taskType))),
		Args: idArg("user_id"),
		Resolve: r.field("recommendTask", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid, err := requireString(args, "user_id")
			if err != nil {
				return nil, err
			}
			u, err := r.store.GetUser(ctx, uid)
			if err != nil {
				return nil, notFound(err, "User")
			}
			tasks, err := r.store.RecommendTasks(ctx, []string(u.Skills), recommendLimit)
			if err != nil {
				return nil, err
			}
			return toTasks(tasks), nil
		}),
	}

	fields["bid"] = &graphql.Field{
		Type: bidType,
		Args: idArg("bid_id"),
		Resolve: r.field("bid", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "bid_id")
			if err != nil {
				return nil, err
			}
			b, err := r.store.GetBid(ctx, id)
			if err != nil {
				return nil, notFound(err, "Bid")
			}
			return toBid(b), nil
		}),
	}
	fields["bidsByTask"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(bidType))),
		Args: idArg("task_id"),
		Resolve: r.field("bidsByTask", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "task_id")
			if err != nil {
				return nil, err
			}
			bids, err := r.store.ListBidsByTask(ctx, id)
			if err != nil {
				return nil, err
			}
			return toBids(bids), nil
		}),
	}
	fields["bids"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(bidType))),
		Resolve: r.field("bids", func(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
			bids, err := r.store.ListBids(ctx)
			if err != nil {
				return nil, err
			}
			return toBids(bids), nil
		}),
	}

	fields["transaction"] = &graphql.Field{
		Type: transactionType,
		Args: idArg("transaction_id"),
		Resolve: r.field("transaction", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "transaction_id")
			if err != nil {
				return nil, err
			}
			t, err := r.store.GetTransaction(ctx, id)
			if err != nil {
				return nil, notFound(err, "Transaction")
			}
			return toTransaction(t), nil
		}),
	}
	fields["transactions"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(transactionType))),
		Resolve: r.field("transactions", func(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
			txns, err := r.store.ListTransactions(ctx)
			if err != nil {
				return nil, err
			}
			return toTransactions(txns), nil
		}),
	}

	fields["rating"] = &graphql.Field{
		Type: ratingType,
		Args: idArg("rating_id"),
		Resolve: r.field("rating", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "rating_id")
			if err != nil {
				return nil, err
			}
			rt, err := r.store.GetRating(ctx, id)
			if err != nil {
				return nil, notFound(err, "Rating")
			}
			return toRating(rt), nil
		}),
	}
	fields["ratingsByTask"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(ratingType))),
		Args: idArg("task_id"),
		Resolve: r.field("ratingsByTask", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "task_id")
			if err != nil {
				return nil, err
			}
			rs, err := r.store.ListRatingsByTask(ctx, id)
			if err != nil {
				return nil, err
			}
			return toRatings(rs), nil
		}),
	}
	fields["ratings"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(ratingType))),
		Resolve: r.field("ratings", func(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
			rs, err := r.store.ListRatings(ctx)
			if err != nil {
				return nil, err
			}
			return toRatings(rs), nil
		}),
	}
	fields["getReviews"] = &graphql.Field{
		Type: graphql.NewList(reviewType),
		Args: idArg("task_id"),
		Resolve: r.field("getReviews", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "task_id")
			if err != nil {
				return nil, err
			}
			reviews, err := r.store.ListReviewsByTask(ctx, id)
			if err != nil {
				return nil, err
			}
			out := make([]*reviewDTO, 0, len(reviews))
			for i := range reviews {
				out = append(out, toReview(&reviews[i]))
			}
			return out, nil
		}),
	}

	fields["getProviderAnalytics"] = &graphql.Field{
		Type: providerAnalyticsType,
		Args: idArg("user_id"),
		Resolve: r.field("getProviderAnalytics", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid, err := requireString(args, "user_id")
			if err != nil {
				return nil, err
			}
			a, err := r.store.ProviderAnalytics(ctx, uid)
			if err != nil {
				return nil, notFound(err, "User")
			}
			return toProviderAnalytics(a), nil
		}),
	}
	fields["getSeekerAnalytics"] = &graphql.Field{
		Type: seekerAnalyticsType,
		Args: idArg("user_id"),
		Resolve: r.field("getSeekerAnalytics", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid, err := requireString(args, "user_id")
			if err != nil {
				return nil, err
			}
			a, err := r.store.SeekerAnalytics(ctx, uid)
			if err != nil {
				return nil, notFound(err, "User")
			}
			return toSeekerAnalytics(a), nil
		}),
	}
}

type taskFields struct {
	Title         *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	BudgetMin     *float64 `json:"budgetMin" validate:"omitempty,gte=0"`
	BudgetMax     *float64 `json:"budgetMax" validate:"omitempty,gte=0"`
	SkillCategory *string  `json:"skillCategory" validate:"omitempty,max=64"`
	Location      *string  `json:"location" validate:"omitempty,max=128"`
	Status        *string  `json:"status" validate:"omitempty,max=32"`
}

func readTaskFields(in map[string]interface{}) taskFields {
	return taskFields{
		Title:         optString(in, "title"),
		Price:         optFloat(in, "price"),
		BudgetMin:     optFloat(in, "budgetMin"),
		BudgetMax:     optFloat(in, "budgetMax"),
		SkillCategory: optString(in, "skillCategory"),
		Location:      optString(in, "location"),
		Status:        optString(in, "status"),
	}
}

func (f taskFields) updates(in map[string]interface{}) map[string]any {
	u := map[string]any{}
	if f.Title != nil {
		u["title"] = *f.Title
	}
	if d := optString(in, "description"); d != nil {
		u["description"] = *d
	}
	if f.Price != nil {
		u["price"] = *f.Price
	}
	if f.BudgetMin != nil {
		u["budget_min"] = *f.BudgetMin
	}
	if f.BudgetMax != nil {
		u["budget_max"] = *f.BudgetMax
	}
	if f.SkillCategory != nil {
		u["skill_category"] = *f.SkillCategory
	}
	if f.Location != nil {
		u["location"] = *f.Location
	}
	if f.Status != nil {
		u["status"] = *f.Status
	}
	return u
}

type bidFields struct {
	Amount  float64 `json:"amount" validate:"gte=0"`
	Message string  `json:"message" validate:"required,max=4000"`
}

type ratingFields struct {
	Score   int    `json:"score" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=4000"`
}

func registerTaskMutations(fields graphql.Fields, r *Resolver) {
	fields["addTask"] = &graphql.Field{
		Type: graphql.NewNonNull(taskType),
		Args: graphql.FieldConfigArgument{"input": nonNull(taskInput)},
		Resolve: r.field("addTask", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			in := argInput(args)
			f := readTaskFields(in)
			if f.Title == nil || strings.TrimSpace(*f.Title) == "" {
				return nil, apperr.Validation("Validation failed: title is required",
					apperr.FieldError{Field: "title", Error: "is required"})
			}
			if err := validation.Struct(r.validate, f); err != nil {
				return nil, err
			}
			owner, err := ownerOr(ctx, argString(in, "user_id"), "user_id")
			if err != nil {
				return nil, err
			}
			t := &model.Task{UserUID: owner, Title: strings.TrimSpace(*f.Title), Description: argString(in, "description")}
			if f.Price != nil {
				t.Price = *f.Price
			}
			if f.BudgetMin != nil {
				t.BudgetMin = *f.BudgetMin
			}
			if f.BudgetMax != nil {
				t.BudgetMax = *f.BudgetMax
			}
			if f.SkillCategory != nil {
				t.SkillCategory = *f.SkillCategory
			}
			if f.Location != nil {
				t.Location = *f.Location
			}
			if f.Status != nil && *f.Status != "" {
				t.Status = *f.Status
			}
			if err := r.store.CreateTask(ctx, t); err != nil {
				return nil, err
			}
			return toTask(t), nil
		}),
	}
	fields["updateTask"] = &graphql.Field{
		Type: taskType,
		Args: graphql.FieldConfigArgument{
			"task_id": nonNull(graphql.ID),
			"input":   nonNull(taskInput),
		},
		Resolve: r.field("updateTask", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "task_id")
			if err != nil {
				return nil, err
			}
			in := argInput(args)
			f := readTaskFields(in)
			if err := validation.Struct(r.validate, f); err != nil {
				return nil, err
			}
			t, err := r.store.UpdateTask(ctx, id, f.updates(in))
			if err != nil {
				return nil, notFound(err, "Task")
			}
			return toTask(t), nil
		}),
	}
	fields["deleteTask"] = &graphql.Field{
		Type: taskType,
		Args: idArg("task_id"),
		Resolve: r.field("deleteTask", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "task_id")
			if err != nil {
				return nil, err
			}
			t, err := r.store.DeleteTask(ctx, id)
			if err != nil {
				return nil, notFound(err, "Task")
			}
			return toTask(t), nil
		}),
	}
	fields["saveTask"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.Boolean),
		Args: graphql.FieldConfigArgument{
			"user_id": optional(graphql.ID),
			"task_id": nonNull(graphql.ID),
		},
		Resolve: r.field("saveTask", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "task_id")
			if err != nil {
				return nil, err
			}
			uid, err := ownerOr(ctx, argString(args, "user_id"), "user_id")
			if err != nil {
				return nil, err
			}
			if err := r.store.SaveTask(ctx, uid, id); err != nil {
				return nil, notFound(err, "Task")
			}
			return true, nil
		}),
	}

	fields["createBid"] = &graphql.Field{
		Type: graphql.NewNonNull(bidType),
		Args: graphql.FieldConfigArgument{"input": nonNull(createBidInput)},
		Resolve: r.field("createBid", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			in := argInput(args)
			taskID, err := argID(in, "task_id")
			if err != nil {
				return nil, err
			}
			bf := bidFields{Message: argString(in, "message")}
			if a := optFloat(in, "amount"); a != nil {
				bf.Amount = *a
			}
			if err := validation.Struct(r.validate, bf); err != nil {
				return nil, err
			}
			bidder, err := ownerOr(ctx, argString(in, "user_id"), "user_id")
			if err != nil {
				return nil, err
			}
			task, err := r.store.GetTask(ctx, taskID)
			if err != nil {
				return nil, notFound(err, "Task")
			}

			urls := []string{}
			if raw := argStrings(in, "attachments"); len(raw) > 0 {
				urls, err = r.uploader.UploadAll(ctx, raw)
				if err != nil {
					if errors.Is(err, attachment.ErrInvalid) {
						return nil, apperr.Validation("Validation failed: "+err.Error(),
							apperr.FieldError{Field: "attachments", Error: err.Error()})
					}
					return nil, err
				}
			}

			bid := &model.Bid{
				TaskID:      taskID,
				UserUID:     bidder,
				Amount:      bf.Amount,
				Message:     bf.Message,
				Attachments: model.StringList(urls),
				SubmittedAt: time.Now(),
			}
			if err := r.store.CreateBid(ctx, bid); err != nil {
				return nil, notFound(err, "Task")
			}
			if r.notifier != nil && task.UserUID != bidder {
				r.notifier.Notify(notify.TypeNewBid, "New bid on your task: "+task.Title,
					map[string]any{"taskId": formatID(task.ID), "bidId": formatID(bid.ID), "bidderId": bidder},
					task.UserUID)
			}
			return toBid(bid), nil
		}),
	}
	fields["updateBid"] = &graphql.Field{
		Type: bidType,
		Args: graphql.FieldConfigArgument{
			"bid_id":  nonNull(graphql.ID),
			"amount":  optional(graphql.Float),
			"message": optional(graphql.String),
		},
		Resolve: r.field("updateBid", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "bid_id")
			if err != nil {
				return nil, err
			}
			updates := map[string]any{}
			if a := optFloat(args, "amount"); a != nil {
				if *a < 0 {
					return nil, apperr.Validation("Validation failed: amount must be at least 0",
						apperr.FieldError{Field: "amount", Error: "must be at least 0"})
				}
				updates["amount"] = *a
			}
			if m := optString(args, "message"); m != nil {
				updates["message"] = *m
			}
			b, err := r.store.UpdateBid(ctx, id, updates)
			if err != nil {
				return nil, notFound(err, "Bid")
			}
			return toBid(b), nil
		}),
	}
	fields["deleteBid"] = &graphql.Field{
		Type: bidType,
		Args: idArg("bid_id"),
		Resolve: r.field("deleteBid", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "bid_id")
			if err != nil {
				return nil, err
			}
			b, err := r.store.DeleteBid(ctx, id)
			if err != nil {
				return nil, notFound(err, "Bid")
			}
			return toBid(b), nil
		}),
	}

	fields["createTransaction"] = &graphql.Field{
		Type: graphql.NewNonNull(transactionType),
		Args: graphql.FieldConfigArgument{
			"user_id":          nonNull(graphql.ID),
			"task_id":          nonNull(graphql.ID),
			"amount":           nonNull(graphql.Float),
			"transaction_type": optional(graphql.String),
			"status":           optional(graphql.String),
		},
		Resolve: r.field("createTransaction", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			taskID, err := argID(args, "task_id")
			if err != nil {
				return nil, err
			}
			uid, err := requireString(args, "user_id")
			if err != nil {
				return nil, err
			}
			txn := &model.Transaction{
				UserUID: uid,
				TaskID:  taskID,
				Type:    argString(args, "transaction_type"),
				Status:  argString(args, "status"),
			}
			if a := optFloat(args, "amount"); a != nil {
				txn.Amount = *a
			}
			if err := r.store.CreateTransaction(ctx, txn); err != nil {
				return nil, notFound(err, "Task")
			}
			return toTransaction(txn), nil
		}),
	}
	fields["updateTransaction"] = &graphql.Field{
		Type: transactionType,
		Args: graphql.FieldConfigArgument{
			"transaction_id":   nonNull(graphql.ID),
			"amount":           optional(graphql.Float),
			"transaction_type": optional(graphql.String),
			"status":           optional(graphql.String),
		},
		Resolve: r.field("updateTransaction", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "transaction_id")
			if err != nil {
				return nil, err
			}
			updates := map[string]any{}
			if a := optFloat(args, "amount"); a != nil {
				updates["amount"] = *a
			}
			if v := optString(args, "transaction_type"); v != nil {
				updates["transaction_type"] = *v
			}
			if v := optString(args, "status"); v != nil {
				updates["status"] = *v
			}
			t, err := r.store.UpdateTransaction(ctx, id, updates)
			if err != nil {
				return nil, notFound(err, "Transaction")
			}
			return toTransaction(t), nil
		}),
	}
	fields["deleteTransaction"] = &graphql.Field{
		Type: transactionType,
		Args: idArg("transaction_id"),
		Resolve: r.field("deleteTransaction", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "transaction_id")
			if err != nil {
				return nil, err
			}
			t, err := r.store.DeleteTransaction(ctx, id)
			if err != nil {
				return nil, notFound(err, "Transaction")
			}
			return toTransaction(t), nil
		}),
	}

	fields["createRating"] = &graphql.Field{
		Type: graphql.NewNonNull(ratingType),
		Args: graphql.FieldConfigArgument{
			"task_id": nonNull(graphql.ID),
			"user_id": nonNull(graphql.ID),
			"score":   nonNull(graphql.Int),
			"comment": optional(graphql.String),
		},
		Resolve: r.field("createRating", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			taskID, err := argID(args, "task_id")
			if err != nil {
				return nil, err
			}
			uid, err := requireString(args, "user_id")
			if err != nil {
				return nil, err
			}
			f := ratingFields{Comment: argString(args, "comment")}
			if s := optInt(args, "score"); s != nil {
				f.Score = *s
			}
			if err := validation.Struct(r.validate, f); err != nil {
				return nil, err
			}
			rt := &model.Rating{UserUID: uid, TaskID: taskID, Score: f.Score, Comment: f.Comment}
			if err := r.store.CreateRating(ctx, rt); err != nil {
				return nil, notFound(err, "Task")
			}
			return toRating(rt), nil
		}),
	}
	fields["updateRating"] = &graphql.Field{
		Type: ratingType,
		Args: graphql.FieldConfigArgument{
			"rating_id": nonNull(graphql.ID),
			"score":     optional(graphql.Int),
			"comment":   optional(graphql.String),
		},
		Resolve: r.field("updateRating", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "rating_id")
			if err != nil {
				return nil, err
			}
			updates := map[string]any{}
			if s := optInt(args, "score"); s != nil {
				if *s < 1 || *s > 5 {
					return nil, apperr.Validation("Validation failed: score must be between 1 and 5",
						apperr.FieldError{Field: "score", Error: "must be between 1 and 5"})
				}
				updates["score"] = *s
			}
			if c := optString(args, "comment"); c != nil {
				updates["comment"] = *c
			}
			rt, err := r.store.UpdateRating(ctx, id, updates)
			if err != nil {
				return nil, notFound(err, "Rating")
			}
			return toRating(rt), nil
		}),
	}
	fields["deleteRating"] = &graphql.Field{
		Type: ratingType,
		Args: idArg("rating_id"),
		Resolve: r.field("deleteRating", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := argID(args, "rating_id")
			if err != nil {
				return nil, err
			}
			rt, err := r.store.DeleteRating(ctx, id)
			if err != nil {
				return nil, notFound(err, "Rating")
			}
			return toRating(rt), nil
		}),
	}
	fields["createReview"] = &graphql.Field{
		Type: graphql.NewNonNull(reviewType),
		Args: graphql.FieldConfigArgument{"input": nonNull(createReviewInput)},
		Resolve: r.field("createReview", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			in := argInput(args)
			taskID, err := argID(in, "task_id")
			if err != nil {
				return nil, err
			}
			reviewer, err := requireString(in, "reviewerId")
			if err != nil {
				return nil, err
			}
			rv := &model.Review{TaskID: taskID, ReviewerUID: reviewer, Comment: argString(in, "comment")}
			if argString(in, "rating_id") != "" {
				ratingID, err := argID(in, "rating_id")
				if err != nil {
					return nil, err
				}
				rv.RatingID = ratingID
			}
			if err := r.store.CreateReview(ctx, rv); err != nil {
				return nil, notFound(err, "Task or rating")
			}
			return toReview(rv), nil
		}),
	}
}
