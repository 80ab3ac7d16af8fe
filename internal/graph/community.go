package graph

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/api/auth"
	"github.com/OkontaEhis/myhitmeup-backend/internal/docstore"
	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/apperr"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/notify"

	"github.com/graphql-go/graphql"
)

const (
	emailStatusSent   = "sent"
	emailStatusFailed = "failed"

	msgEmailSent   = "Email sent successfully"
	msgEmailFailed = "Failed to send email"
)

func registerCommunityQueries(fields graphql.Fields, r *Resolver) {
	fields["getPosts"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(postType))),
		Resolve: r.field("getPosts", func(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
			posts, err := r.docs.ListPosts(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]*postDTO, 0, len(posts))
			for i := range posts {
				out = append(out, toPost(&posts[i]))
			}
			return out, nil
		}),
	}
	fields["getPostById"] = &graphql.Field{
		Type: postType,
		Args: idArg("id"),
		Resolve: r.field("getPostById", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			id, err := requireString(args, "id")
			if err != nil {
				return nil, err
			}
			p, err := r.docs.GetPost(ctx, id)
			if err != nil {
				return nil, notFound(err, "Post")
			}
			return toPost(p), nil
		}),
	}
	fields["getComments"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(commentType))),
		Args: idArg("postId"),
		Resolve: r.field("getComments", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			postID, err := requireString(args, "postId")
			if err != nil {
				return nil, err
			}
			comments, err := r.docs.ListComments(ctx, postID)
			if err != nil {
				return nil, notFound(err, "Post")
			}
			out := make([]*commentDTO, 0, len(comments))
			for i := range comments {
				out = append(out, toComment(&comments[i]))
			}
			return out, nil
		}),
	}
	fields["getReports"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(reportType))),
		Args: graphql.FieldConfigArgument{"status": optional(reportStatusEnum)},
		Resolve: r.field("getReports", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			reports, err := r.docs.ListReports(ctx, argString(args, "status"))
			if err != nil {
				return nil, err
			}
			out := make([]*reportDTO, 0, len(reports))
			for i := range reports {
				out = append(out, toReport(&reports[i]))
			}
			return out, nil
		}),
	}
	fields["getNotifications"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(notificationType))),
		Args: idArg("userId"),
		Resolve: r.field("getNotifications", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid, err := requireString(args, "userId")
			if err != nil {
				return nil, err
			}
			ns, err := r.docs.ListNotifications(ctx, uid)
			if err != nil {
				return nil, err
			}
			out := make([]*notificationDTO, 0, len(ns))
			for i := range ns {
				out = append(out, toNotification(&ns[i]))
			}
			return out, nil
		}),
	}
	fields["getNotificationById"] = &graphql.Field{
		Type: notificationType,
		Args: graphql.FieldConfigArgument{
			"userId":         nonNull(graphql.ID),
			"notificationId": nonNull(graphql.ID),
		},
		Resolve: r.field("getNotificationById", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid, err := requireString(args, "userId")
			if err != nil {
				return nil, err
			}
			id, err := requireString(args, "notificationId")
			if err != nil {
				return nil, err
			}
			n, err := r.docs.GetNotification(ctx, uid, id)
			if err != nil {
				return nil, notFound(err, "Notification")
			}
			return toNotification(n), nil
		}),
	}
	fields["getMessages"] = &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(messageType))),
		Args: idArg("conversationId"),
		Resolve: r.field("getMessages", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			convID, err := requireString(args, "conversationId")
			if err != nil {
				return nil, err
			}
			msgs, err := r.docs.ListMessages(ctx, convID)
			if err != nil {
				return nil, err
			}
			out := make([]*messageDTO, 0, len(msgs))
			for i := range msgs {
				out = append(out, toMessage(&msgs[i]))
			}
			return out, nil
		}),
	}
}

func registerCommunityMutations(fields graphql.Fields, r *Resolver) {
	fields["createPost"] = &graphql.Field{
		Type: graphql.NewNonNull(postType),
		Args: graphql.FieldConfigArgument{"input": nonNull(createPostInput)},
		Resolve: r.field("createPost", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			in := argInput(args)
			content, err := requireString(in, "content")
			if err != nil {
				return nil, err
			}
			author, err := ownerOr(ctx, argString(in, "authorId"), "authorId")
			if err != nil {
				return nil, err
			}
			p := &docstore.Post{
				UserID:    author,
				Content:   content,
				Media:     argStrings(in, "mediaUrls"),
				Reactions: []docstore.Reaction{},
				Tags:      []string{},
			}
			if err := r.docs.CreatePost(ctx, p); err != nil {
				return nil, err
			}
			return toPost(p), nil
		}),
	}
	fields["addReaction"] = &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{"input": nonNull(addReactionInput)},
		Resolve: r.field("addReaction", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			in := argInput(args)
			postID, err := requireString(in, "postId")
			if err != nil {
				return nil, err
			}
			reaction, err := requireString(in, "reactionType")
			if err != nil {
				return nil, err
			}
			uid, err := ownerOr(ctx, argString(in, "userId"), "userId")
			if err != nil {
				return nil, err
			}
			p, err := r.docs.AddReaction(ctx, postID, docstore.Reaction{
				UserID:       uid,
				ReactionType: reaction,
				CreatedAt:    time.Now().UTC(),
			})
			if err != nil {
				return nil, notFound(err, "Post")
			}
			return toPost(p), nil
		}),
	}
	fields["tagUsers"] = &graphql.Field{
		Type: postType,
		Args: graphql.FieldConfigArgument{
			"postId":        nonNull(graphql.ID),
			"taggedUserIds": nonNull(graphql.NewList(graphql.NewNonNull(graphql.ID))),
		},
		Resolve: r.field("tagUsers", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			postID, err := requireString(args, "postId")
			if err != nil {
				return nil, err
			}
			tagged := argStrings(args, "taggedUserIds")
			p, err := r.docs.TagUsers(ctx, postID, tagged)
			if err != nil {
				return nil, notFound(err, "Post")
			}
			if r.notifier != nil && len(tagged) > 0 {
				r.notifier.Notify(notify.TypeTagged, "You were tagged in a post",
					map[string]any{"postId": p.ID, "authorId": p.UserID}, tagged...)
			}
			return toPost(p), nil
		}),
	}
	fields["addComment"] = &graphql.Field{
		Type: graphql.NewNonNull(commentType),
		Args: graphql.FieldConfigArgument{
			"postId":  nonNull(graphql.ID),
			"userId":  optional(graphql.ID),
			"content": nonNull(graphql.String),
		},
		Resolve: r.field("addComment", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			postID, err := requireString(args, "postId")
			if err != nil {
				return nil, err
			}
			content, err := requireString(args, "content")
			if err != nil {
				return nil, err
			}
			uid, err := ownerOr(ctx, argString(args, "userId"), "userId")
			if err != nil {
				return nil, err
			}
			c := &docstore.Comment{PostID: postID, UserID: uid, Content: content}
			if err := r.docs.AddComment(ctx, c); err != nil {
				return nil, notFound(err, "Post")
			}
			return toComment(c), nil
		}),
	}

	fields["createReport"] = &graphql.Field{
		Type: graphql.NewNonNull(reportType),
		Args: graphql.FieldConfigArgument{"input": nonNull(createReportInput)},
		Resolve: r.field("createReport", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			in := argInput(args)
			target, err := requireString(in, "reportedContentId")
			if err != nil {
				return nil, err
			}
			kind, err := requireString(in, "contentType")
			if err != nil {
				return nil, err
			}
			reporter, err := ownerOr(ctx, argString(in, "reporterId"), "reporterId")
			if err != nil {
				return nil, err
			}
			rep := &docstore.Report{
				ReporterID:        reporter,
				ReportedContentID: target,
				ContentType:       kind,
				Reason:            argString(in, "reason"),
				Status:            docstore.ReportPending,
			}
			if err := r.docs.CreateReport(ctx, rep); err != nil {
				return nil, err
			}
			return toReport(rep), nil
		}),
	}
	fields["updateReportStatus"] = &graphql.Field{
		Type: reportType,
		Args: graphql.FieldConfigArgument{"input": nonNull(updateReportStatusInput)},
		Resolve: r.field("updateReportStatus", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			viewer, err := auth.RequireRole(ctx, model.RoleAdmin, model.RoleModerator)
			if err != nil {
				return nil, err
			}
			in := argInput(args)
			id, err := requireString(in, "reportId")
			if err != nil {
				return nil, err
			}
			status, err := requireString(in, "status")
			if err != nil {
				return nil, err
			}
			rep, err := r.docs.UpdateReportStatus(ctx, id, status, viewer.UID)
			if err != nil {
				return nil, notFound(err, "Report")
			}
			return toReport(rep), nil
		}),
	}

	fields["createNotification"] = &graphql.Field{
		Type: graphql.NewNonNull(notificationType),
		Args: graphql.FieldConfigArgument{
			"userId":  nonNull(graphql.ID),
			"message": nonNull(graphql.String),
			"type":    nonNull(graphql.String),
			"data":    &graphql.ArgumentConfig{Type: graphql.String, Description: "JSON object"},
		},
		Resolve: r.field("createNotification", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid, err := requireString(args, "userId")
			if err != nil {
				return nil, err
			}
			msg, err := requireString(args, "message")
			if err != nil {
				return nil, err
			}
			kind, err := requireString(args, "type")
			if err != nil {
				return nil, err
			}
			var data map[string]any
			if raw := argString(args, "data"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &data); err != nil {
					return nil, apperr.Validation("Validation failed: data must be a JSON object",
						apperr.FieldError{Field: "data", Error: "must be a JSON object"})
				}
			}
			n := &docstore.Notification{UserID: uid, Message: msg, Type: kind, Data: data}
			if err := r.docs.CreateNotification(ctx, n); err != nil {
				return nil, err
			}
			return toNotification(n), nil
		}),
	}
	fields["markNotificationAsRead"] = &graphql.Field{
		Type: notificationType,
		Args: graphql.FieldConfigArgument{
			"userId":         nonNull(graphql.ID),
			"notificationId": nonNull(graphql.ID),
		},
		Resolve: r.field("markNotificationAsRead", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid, err := requireString(args, "userId")
			if err != nil {
				return nil, err
			}
			id, err := requireString(args, "notificationId")
			if err != nil {
				return nil, err
			}
			n, err := r.docs.MarkNotificationRead(ctx, uid, id)
			if err != nil {
				return nil, notFound(err, "Notification")
			}
			return toNotification(n), nil
		}),
	}
	fields["markAllNotificationsAsRead"] = &graphql.Field{
		Type:        graphql.NewNonNull(graphql.Int),
		Description: "Marks every unread notification of the user as read and returns how many changed.",
		Args:        idArg("userId"),
		Resolve: r.field("markAllNotificationsAsRead", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			uid, err := requireString(args, "userId")
			if err != nil {
				return nil, err
			}
			return r.docs.MarkAllNotificationsRead(ctx, uid)
		}),
	}

	fields["sendMessage"] = &graphql.Field{
		Type: graphql.NewNonNull(messageType),
		Args: graphql.FieldConfigArgument{
			"conversationId": nonNull(graphql.ID),
			"senderId":       optional(graphql.ID),
			"receiverId":     nonNull(graphql.ID),
			"text":           nonNull(graphql.String),
		},
		Resolve: r.field("sendMessage", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			convID, err := requireString(args, "conversationId")
			if err != nil {
				return nil, err
			}
			receiver, err := requireString(args, "receiverId")
			if err != nil {
				return nil, err
			}
			text, err := requireString(args, "text")
			if err != nil {
				return nil, err
			}
			sender, err := ownerOr(ctx, argString(args, "senderId"), "senderId")
			if err != nil {
				return nil, err
			}
			m := &docstore.Message{ConversationID: convID, SenderID: sender, ReceiverID: receiver, Text: text}
			if err := r.docs.AppendMessage(ctx, m); err != nil {
				return nil, err
			}
			if r.notifier != nil && receiver != sender {
				r.notifier.Notify(notify.TypeNewMessage, "You have a new message",
					map[string]any{"conversationId": convID, "messageId": m.ID, "senderId": sender}, receiver)
			}
			return toMessage(m), nil
		}),
	}
	fields["sendEmail"] = &graphql.Field{
		Type: graphql.NewNonNull(authResponseType),
		Args: graphql.FieldConfigArgument{
			"to":      nonNull(graphql.String),
			"subject": nonNull(graphql.String),
			"body":    nonNull(graphql.String),
			"userId":  optional(graphql.ID),
			"html":    optional(graphql.Boolean),
		},
		Resolve: r.field("sendEmail", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			viewer, err := auth.RequireRole(ctx)
			if err != nil {
				return nil, err
			}
			to, err := requireString(args, "to")
			if err != nil {
				return nil, err
			}
			if _, err := mail.ParseAddress(to); err != nil {
				return nil, apperr.Validation("Validation failed: to must be a valid email address",
					apperr.FieldError{Field: "to", Error: "must be a valid email address"})
			}
			subject, err := requireString(args, "subject")
			if err != nil {
				return nil, err
			}
			body, _ := args["body"].(string)
			html, _ := args["html"].(bool)
			uid := argString(args, "userId")
			if uid == "" {
				uid = viewer.UID
			}
			return r.sendEmail(ctx, notify.Email{To: to, Subject: subject, Body: body, HTML: html}, uid), nil
		}),
	}
}

// sendEmail delivers e and records the attempt. Delivery failures are
// reported in the result, not as a GraphQL error.
func (r *Resolver) sendEmail(ctx context.Context, e notify.Email, uid string) *authResponseDTO {
	entry := &docstore.EmailLog{To: e.To, Subject: e.Subject, UserID: uid, Status: emailStatusSent}

	var sendErr error
	if r.mailer == nil {
		sendErr = notify.ErrMailerNotConfigured
	} else {
		sendErr = r.mailer.Send(ctx, e)
	}
	if sendErr != nil {
		entry.Status = emailStatusFailed
		entry.Error = sendErr.Error()
		level := slog.LevelError
		if errors.Is(sendErr, notify.ErrMailerNotConfigured) {
			level = slog.LevelWarn
		}
		r.logger.Log(ctx, level, "send email failed",
			slog.String("to", maskAddress(e.To)), slog.String("error", sendErr.Error()))
	}
	if r.docs != nil {
		if err := r.docs.LogEmail(context.WithoutCancel(ctx), entry); err != nil {
			r.logger.Warn("email log write failed", slog.String("error", err.Error()))
		}
	}

	if sendErr != nil {
		return &authResponseDTO{Success: false, Message: msgEmailFailed}
	}
	return &authResponseDTO{Success: true, Message: msgEmailSent}
}

func maskAddress(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at <= 1 {
		return "***"
	}
	return addr[:1] + "***" + addr[at:]
}
