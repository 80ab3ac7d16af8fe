package docstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store. Values are copied on the way in and out so
// callers never share slices with the store.
type Memory struct {
	mu            sync.Mutex
	err           error
	users         map[string]UserDoc
	posts         map[string]Post
	comments      map[string]Comment
	reports       map[string]Report
	notifications map[string]Notification
	messages      map[string]Message
	emails        []EmailLog
	attachments   map[string]Attachment
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]UserDoc),
		posts:         make(map[string]Post),
		comments:      make(map[string]Comment),
		reports:       make(map[string]Report),
		notifications: make(map[string]Notification),
		messages:      make(map[string]Message),
		attachments:   make(map[string]Attachment),
	}
}

// WithError makes every following call fail with err. A nil err restores
// normal behaviour.
func (m *Memory) WithError(err error) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Emails returns the logged email attempts.
func (m *Memory) Emails() []EmailLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EmailLog(nil), m.emails...)
}

func (m *Memory) UpsertUser(_ context.Context, u *UserDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	doc := cloneUser(*u)
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}
	m.users[doc.UID] = doc
	return nil
}

func (m *Memory) GetUser(_ context.Context, uid string) (*UserDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	doc, ok := m.users[uid]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneUser(doc)
	return &out, nil
}

func (m *Memory) DeleteUser(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.users, uid)
	return nil
}

func (m *Memory) CreatePost(_ context.Context, p *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	stamp(&p.ID, &p.CreatedAt)
	p.UpdatedAt = p.CreatedAt
	if p.Reactions == nil {
		p.Reactions = []Reaction{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	m.posts[p.ID] = clonePost(*p)
	return nil
}

func (m *Memory) GetPost(_ context.Context, id string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clonePost(p)
	return &out, nil
}

func (m *Memory) ListPosts(_ context.Context) ([]Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) AddReaction(_ context.Context, postID string, r Reaction) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.posts[postID]
	if !ok {
		return nil, ErrNotFound
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	p = clonePost(p)
	p.Reactions = append(p.Reactions, r)
	p.UpdatedAt = time.Now().UTC()
	m.posts[postID] = p
	out := clonePost(p)
	return &out, nil
}

func (m *Memory) TagUsers(_ context.Context, postID string, userIDs []string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.posts[postID]
	if !ok {
		return nil, ErrNotFound
	}
	p = clonePost(p)
	p.Tags = unionStrings(p.Tags, userIDs)
	p.UpdatedAt = time.Now().UTC()
	m.posts[postID] = p
	out := clonePost(p)
	return &out, nil
}

func (m *Memory) AddComment(_ context.Context, c *Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.posts[c.PostID]; !ok {
		return ErrNotFound
	}
	stamp(&c.ID, &c.CreatedAt)
	m.comments[c.ID] = *c
	return nil
}

func (m *Memory) ListComments(_ context.Context, postID string) ([]Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CreateReport(_ context.Context, r *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	stamp(&r.ID, &r.CreatedAt)
	r.UpdatedAt = r.CreatedAt
	if r.Status == "" {
		r.Status = ReportPending
	}
	m.reports[r.ID] = *r
	return nil
}

func (m *Memory) UpdateReportStatus(_ context.Context, id, status, reviewedBy string) (*Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Status = status
	r.ReviewedBy = reviewedBy
	r.UpdatedAt = time.Now().UTC()
	m.reports[id] = r
	return &r, nil
}

func (m *Memory) ListReports(_ context.Context, status string) ([]Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []Report{}
	for _, r := range m.reports {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CreateNotification(_ context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	stamp(&n.ID, &n.CreatedAt)
	m.notifications[n.ID] = cloneNotification(*n)
	return nil
}

func (m *Memory) ListNotifications(_ context.Context, userID string) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []Notification{}
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, cloneNotification(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) GetNotification(_ context.Context, userID, id string) (*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return nil, ErrNotFound
	}
	out := cloneNotification(n)
	return &out, nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, userID, id string) (*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return nil, ErrNotFound
	}
	n.Read = true
	m.notifications[id] = n
	out := cloneNotification(n)
	return &out, nil
}

func (m *Memory) MarkAllNotificationsRead(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	count := 0
	for id, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			m.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (m *Memory) AppendMessage(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	stamp(&msg.ID, &msg.Timestamp)
	m.messages[msg.ID] = *msg
	return nil
}

func (m *Memory) ListMessages(_ context.Context, conversationID string) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []Message{}
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *Memory) LogEmail(_ context.Context, e *EmailLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	stamp(&e.ID, &e.SentAt)
	m.emails = append(m.emails, *e)
	return nil
}

func (m *Memory) PutAttachment(_ context.Context, a *Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	stamp(&a.ID, &a.CreatedAt)
	stored := *a
	stored.Data = append([]byte(nil), a.Data...)
	m.attachments[a.ID] = stored
	return nil
}

func (m *Memory) GetAttachment(_ context.Context, id string) (*Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.attachments[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Data = append([]byte(nil), a.Data...)
	return &a, nil
}

func (m *Memory) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *Memory) Close(context.Context) error { return nil }

func cloneUser(u UserDoc) UserDoc {
	u.Skills = append([]string(nil), u.Skills...)
	u.Reviews = append([]string(nil), u.Reviews...)
	u.Portfolio = append([]string(nil), u.Portfolio...)
	return u
}

func clonePost(p Post) Post {
	p.Media = append([]string(nil), p.Media...)
	p.Reactions = append([]Reaction{}, p.Reactions...)
	p.Tags = append([]string{}, p.Tags...)
	return p
}

func cloneNotification(n Notification) Notification {
	if n.Data != nil {
		data := make(map[string]any, len(n.Data))
		for k, v := range n.Data {
			data[k] = v
		}
		n.Data = data
	}
	return n
}
