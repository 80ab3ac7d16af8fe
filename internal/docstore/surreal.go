package docstore

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/config"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

// Tables.
const (
	tableUsers         = "users"
	tablePosts         = "posts"
	tableComments      = "comments"
	tableReports       = "reports"
	tableNotifications = "notifications"
	tableMessages      = "messages"
	tableEmailLogs     = "email_logs"
	tableAttachments   = "attachments"
)

// Surreal stores documents in SurrealDB. Every statement binds its values
// as query variables. Each document keeps its string id in the docId field
// next to the record id.
type Surreal struct {
	db *surrealdb.DB
}

// Open dials SurrealDB over WebSocket with the CBOR codec, signs in when
// credentials are configured and selects the namespace and database.
func Open(ctx context.Context, cfg config.SurrealConfig) (*Surreal, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse surreal url: %w", err)
	}
	conf := connection.NewConfig(u)
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	db, err := surrealdb.FromConnection(ctx, gorillaws.New(conf))
	if err != nil {
		return nil, fmt.Errorf("connect surreal: %w", err)
	}
	if cfg.Username != "" && cfg.Password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": cfg.Username,
			"pass": cfg.Password,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("surreal signin: %w", err)
		}
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("surreal use %s/%s: %w", cfg.Namespace, cfg.Database, err)
	}
	return &Surreal{db: db}, nil
}

// New picks the backend named by cfg.Backend.
func New(ctx context.Context, cfg config.SurrealConfig) (Store, error) {
	if cfg.Backend == "memory" {
		return NewMemory(), nil
	}
	return Open(ctx, cfg)
}

func rid(table, id string) models.RecordID {
	return models.NewRecordID(table, id)
}

// query runs one statement and returns its rows.
func query[T any](ctx context.Context, db *surrealdb.DB, sql string, vars map[string]any) ([]T, error) {
	res, err := surrealdb.Query[[]T](ctx, db, sql, vars)
	if err != nil {
		return nil, err
	}
	if res == nil || len(*res) == 0 {
		return nil, nil
	}
	return (*res)[0].Result, nil
}

// exec runs a statement whose rows are not needed.
func exec(ctx context.Context, db *surrealdb.DB, sql string, vars map[string]any) error {
	_, err := surrealdb.Query[any](ctx, db, sql, vars)
	return err
}

// one returns the first row or ErrNotFound.
func one[T any](rows []T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (s *Surreal) UpsertUser(ctx context.Context, u *UserDoc) error {
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = time.Now().UTC()
	}
	err := exec(ctx, s.db, "UPSERT $rid MERGE $data RETURN NONE", map[string]any{
		"rid":  rid(tableUsers, u.UID),
		"data": u,
	})
	if err != nil {
		return fmt.Errorf("upsert user doc: %w", err)
	}
	return nil
}

func (s *Surreal) GetUser(ctx context.Context, uid string) (*UserDoc, error) {
	return one(query[UserDoc](ctx, s.db, "SELECT * FROM $rid", map[string]any{
		"rid": rid(tableUsers, uid),
	}))
}

func (s *Surreal) DeleteUser(ctx context.Context, uid string) error {
	return exec(ctx, s.db, "DELETE $rid", map[string]any{"rid": rid(tableUsers, uid)})
}

func (s *Surreal) CreatePost(ctx context.Context, p *Post) error {
	stamp(&p.ID, &p.CreatedAt)
	p.UpdatedAt = p.CreatedAt
	if p.Reactions == nil {
		p.Reactions = []Reaction{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return exec(ctx, s.db, "CREATE $rid CONTENT $data RETURN NONE", map[string]any{
		"rid":  rid(tablePosts, p.ID),
		"data": p,
	})
}

func (s *Surreal) GetPost(ctx context.Context, id string) (*Post, error) {
	return one(query[Post](ctx, s.db, "SELECT * FROM $rid", map[string]any{"rid": rid(tablePosts, id)}))
}

func (s *Surreal) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := query[Post](ctx, s.db, "SELECT * FROM type::table($tb) ORDER BY createdAt DESC", map[string]any{
		"tb": tablePosts,
	})
	if rows == nil && err == nil {
		rows = []Post{}
	}
	return rows, err
}

// AddReaction appends to the reactions array. UPDATE on a missing record
// returns no rows and creates nothing.
func (s *Surreal) AddReaction(ctx context.Context, postID string, r Reaction) (*Post, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return one(query[Post](ctx, s.db,
		"UPDATE $rid SET reactions += $reaction, updatedAt = $now RETURN AFTER",
		map[string]any{"rid": rid(tablePosts, postID), "reaction": r, "now": time.Now().UTC()}))
}

func (s *Surreal) TagUsers(ctx context.Context, postID string, userIDs []string) (*Post, error) {
	return one(query[Post](ctx, s.db,
		"UPDATE $rid SET tags = array::union(tags ?? [], $tags), updatedAt = $now RETURN AFTER",
		map[string]any{"rid": rid(tablePosts, postID), "tags": userIDs, "now": time.Now().UTC()}))
}

func (s *Surreal) AddComment(ctx context.Context, c *Comment) error {
	if _, err := s.GetPost(ctx, c.PostID); err != nil {
		return err
	}
	stamp(&c.ID, &c.CreatedAt)
	return exec(ctx, s.db, "CREATE $rid CONTENT $data RETURN NONE", map[string]any{
		"rid":  rid(tableComments, c.ID),
		"data": c,
	})
}

func (s *Surreal) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := query[Comment](ctx, s.db,
		"SELECT * FROM type::table($tb) WHERE postId = $post ORDER BY createdAt ASC",
		map[string]any{"tb": tableComments, "post": postID})
	if rows == nil && err == nil {
		rows = []Comment{}
	}
	return rows, err
}

func (s *Surreal) CreateReport(ctx context.Context, r *Report) error {
	stamp(&r.ID, &r.CreatedAt)
	r.UpdatedAt = r.CreatedAt
	if r.Status == "" {
		r.Status = ReportPending
	}
	return exec(ctx, s.db, "CREATE $rid CONTENT $data RETURN NONE", map[string]any{
		"rid":  rid(tableReports, r.ID),
		"data": r,
	})
}

func (s *Surreal) UpdateReportStatus(ctx context.Context, id, status, reviewedBy string) (*Report, error) {
	return one(query[Report](ctx, s.db,
		"UPDATE $rid SET status = $status, reviewedBy = $by, updatedAt = $now RETURN AFTER",
		map[string]any{"rid": rid(tableReports, id), "status": status, "by": reviewedBy, "now": time.Now().UTC()}))
}

func (s *Surreal) ListReports(ctx context.Context, status string) ([]Report, error) {
	sql := "SELECT * FROM type::table($tb) ORDER BY createdAt DESC"
	vars := map[string]any{"tb": tableReports}
	if status != "" {
		sql = "SELECT * FROM type::table($tb) WHERE status = $status ORDER BY createdAt DESC"
		vars["status"] = status
	}
	rows, err := query[Report](ctx, s.db, sql, vars)
	if rows == nil && err == nil {
		rows = []Report{}
	}
	return rows, err
}

func (s *Surreal) CreateNotification(ctx context.Context, n *Notification) error {
	stamp(&n.ID, &n.CreatedAt)
	return exec(ctx, s.db, "CREATE $rid CONTENT $data RETURN NONE", map[string]any{
		"rid":  rid(tableNotifications, n.ID),
		"data": n,
	})
}

func (s *Surreal) ListNotifications(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := query[Notification](ctx, s.db,
		"SELECT * FROM type::table($tb) WHERE userId = $user ORDER BY createdAt DESC",
		map[string]any{"tb": tableNotifications, "user": userID})
	if rows == nil && err == nil {
		rows = []Notification{}
	}
	return rows, err
}

func (s *Surreal) GetNotification(ctx context.Context, userID, id string) (*Notification, error) {
	return one(query[Notification](ctx, s.db,
		"SELECT * FROM $rid WHERE userId = $user",
		map[string]any{"rid": rid(tableNotifications, id), "user": userID}))
}

func (s *Surreal) MarkNotificationRead(ctx context.Context, userID, id string) (*Notification, error) {
	return one(query[Notification](ctx, s.db,
		"UPDATE $rid SET read = true WHERE userId = $user RETURN AFTER",
		map[string]any{"rid": rid(tableNotifications, id), "user": userID}))
}

// MarkAllNotificationsRead flips every unread notification of the user in a
// single statement.
func (s *Surreal) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	rows, err := query[Notification](ctx, s.db,
		"UPDATE type::table($tb) SET read = true WHERE userId = $user AND read = false RETURN AFTER",
		map[string]any{"tb": tableNotifications, "user": userID})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *Surreal) AppendMessage(ctx context.Context, m *Message) error {
	stamp(&m.ID, &m.Timestamp)
	return exec(ctx, s.db, "CREATE $rid CONTENT $data RETURN NONE", map[string]any{
		"rid":  rid(tableMessages, m.ID),
		"data": m,
	})
}

func (s *Surreal) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := query[Message](ctx, s.db,
		"SELECT * FROM type::table($tb) WHERE conversationId = $conv ORDER BY timestamp ASC",
		map[string]any{"tb": tableMessages, "conv": conversationID})
	if rows == nil && err == nil {
		rows = []Message{}
	}
	return rows, err
}

func (s *Surreal) LogEmail(ctx context.Context, e *EmailLog) error {
	stamp(&e.ID, &e.SentAt)
	return exec(ctx, s.db, "CREATE $rid CONTENT $data RETURN NONE", map[string]any{
		"rid":  rid(tableEmailLogs, e.ID),
		"data": e,
	})
}

func (s *Surreal) PutAttachment(ctx context.Context, a *Attachment) error {
	stamp(&a.ID, &a.CreatedAt)
	return exec(ctx, s.db, "CREATE $rid CONTENT $data RETURN NONE", map[string]any{
		"rid":  rid(tableAttachments, a.ID),
		"data": a,
	})
}

func (s *Surreal) GetAttachment(ctx context.Context, id string) (*Attachment, error) {
	return one(query[Attachment](ctx, s.db, "SELECT * FROM $rid", map[string]any{
		"rid": rid(tableAttachments, id),
	}))
}

func (s *Surreal) Ping(ctx context.Context) error {
	return exec(ctx, s.db, "RETURN true", nil)
}

func (s *Surreal) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}
