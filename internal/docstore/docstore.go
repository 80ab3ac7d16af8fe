// Package docstore holds the document collections: posts and their
// reactions, tags and comments, reports, notifications, messages, email log,
// attachments, and the denormalized copy of each user.
//
// Two backends implement Store: SurrealDB for deployments and an in-memory
// map for local runs and tests.
package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a keyed document does not exist.
var ErrNotFound = errors.New("document not found")

// Report statuses.
const (
	ReportPending  = "PENDING"
	ReportReviewed = "REVIEWED"
	ReportRejected = "REJECTED"
)

// UserDoc is the read copy of a relational user row, keyed by uid.
type UserDoc struct {
	UID            string    `json:"docId"`
	Username       string    `json:"username"`
	PhoneNumber    string    `json:"phoneNumber"`
	NIN            string    `json:"nin"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	BirthDate      string    `json:"birthDate"`
	Gender         string    `json:"gender"`
	UserType       string    `json:"userType"`
	Role           string    `json:"role"`
	ProfileViews   int       `json:"profileViews"`
	PasswordHash   string    `json:"passwordHash"`
	Profile        string    `json:"profile"`
	Skills         []string  `json:"skills"`
	Ratings        float64   `json:"ratings"`
	Reviews        []string  `json:"reviews"`
	Portfolio      []string  `json:"portfolio"`
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Reaction struct {
	UserID       string    `json:"userId"`
	ReactionType string    `json:"reactionType"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Post struct {
	ID        string     `json:"docId"`
	UserID    string     `json:"userId"`
	Content   string     `json:"content"`
	Media     []string   `json:"media"`
	Reactions []Reaction `json:"reactions"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Comment struct {
	ID        string    `json:"docId"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Report struct {
	ID                string    `json:"docId"`
	ReporterID        string    `json:"reporterId"`
	ReportedContentID string    `json:"reportedContentId"`
	ContentType       string    `json:"contentType"`
	Reason            string    `json:"reason"`
	Status            string    `json:"status"`
	ReviewedBy        string    `json:"reviewedBy"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type Notification struct {
	ID        string         `json:"docId"`
	UserID    string         `json:"userId"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"createdAt"`
}

type Message struct {
	ID             string    `json:"docId"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
}

type EmailLog struct {
	ID      string    `json:"docId"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	UserID  string    `json:"userId"`
	Status  string    `json:"status"`
	Error   string    `json:"error"`
	SentAt  time.Time `json:"sentAt"`
}

type Attachment struct {
	ID          string    `json:"docId"`
	ContentType string    `json:"contentType"`
	Data        []byte    `json:"data"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store is implemented by every document backend. Append operations on a
// missing parent document return ErrNotFound and write nothing.
type Store interface {
	UpsertUser(ctx context.Context, u *UserDoc) error
	GetUser(ctx context.Context, uid string) (*UserDoc, error)
	DeleteUser(ctx context.Context, uid string) error

	CreatePost(ctx context.Context, p *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	ListPosts(ctx context.Context) ([]Post, error)
	AddReaction(ctx context.Context, postID string, r Reaction) (*Post, error)
	TagUsers(ctx context.Context, postID string, userIDs []string) (*Post, error)
	AddComment(ctx context.Context, c *Comment) error
	ListComments(ctx context.Context, postID string) ([]Comment, error)

	CreateReport(ctx context.Context, r *Report) error
	UpdateReportStatus(ctx context.Context, id, status, reviewedBy string) (*Report, error)
	ListReports(ctx context.Context, status string) ([]Report, error)

	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, userID string) ([]Notification, error)
	GetNotification(ctx context.Context, userID, id string) (*Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id string) (*Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int, error)

	AppendMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)

	LogEmail(ctx context.Context, e *EmailLog) error

	PutAttachment(ctx context.Context, a *Attachment) error
	GetAttachment(ctx context.Context, id string) (*Attachment, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func newID() string {
	return uuid.NewString()
}

// stamp fills an empty id and zero timestamp.
func stamp(id *string, at *time.Time) {
	if *id == "" {
		*id = newID()
	}
	if at.IsZero() {
		*at = time.Now().UTC()
	}
}

// unionStrings appends the values of add missing from base, keeping order.
func unionStrings(base, add []string) []string {
	seen := make(map[string]struct{}, len(base)+len(add))
	out := make([]string, 0, len(base)+len(add))
	for _, v := range append(append([]string{}, base...), add...) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
