package graph

import (
	"encoding/json"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/api/auth"
	"github.com/OkontaEhis/myhitmeup-backend/internal/docstore"
	"github.com/OkontaEhis/myhitmeup-backend/internal/identity"
	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
	"github.com/OkontaEhis/myhitmeup-backend/internal/store"
	"github.com/OkontaEhis/myhitmeup-backend/internal/usersync"

	"github.com/graphql-go/graphql"
)

// Output shapes. The json tags are the GraphQL field names read by the
// default resolver.

type userDTO struct {
	UserID         string    `json:"user_id"`
	FirebaseUID    string    `json:"firebaseUid"`
	Username       string    `json:"username"`
	PhoneNumber    string    `json:"phoneNumber"`
	NIN            string    `json:"NIN"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	BirthDate      string    `json:"birthDate"`
	Gender         string    `json:"gender"`
	UserType       string    `json:"user_type"`
	Role           string    `json:"role"`
	ProfileViews   int       `json:"profileViews"`
	Profile        string    `json:"profile"`
	Skills         []string  `json:"skills"`
	Ratings        float64   `json:"ratings"`
	Portfolio      []string  `json:"portfolio"`
	ProfilePicture string    `json:"profilePicture"`
	ImageURL       *string   `json:"imageUrl"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toUser(u *model.User) *userDTO {
	return &userDTO{
		UserID:         u.UID,
		FirebaseUID:    u.UID,
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
		Profile:        u.Profile,
		Skills:         []string(u.Skills),
		Ratings:        u.Ratings,
		Portfolio:      []string(u.Portfolio),
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// enrich copies provider-only fields onto the relational record.
func (d *userDTO) enrich(a *identity.Account) {
	if a == nil || a.ID != d.UserID {
		return
	}
	if a.ImageURL != "" {
		img := a.ImageURL
		d.ImageURL = &img
	}
}

func toUsers(users []model.User) []*userDTO {
	out := make([]*userDTO, 0, len(users))
	for i := range users {
		out = append(out, toUser(&users[i]))
	}
	return out
}

type taskDTO struct {
	TaskID        string    `json:"task_id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	BudgetMin     float64   `json:"budgetMin"`
	BudgetMax     float64   `json:"budgetMax"`
	SkillCategory string    `json:"skillCategory"`
	Location      string    `json:"location"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toTask(t *model.Task) *taskDTO {
	return &taskDTO{
		TaskID:        formatID(t.ID),
		UserID:        t.UserUID,
		Title:         t.Title,
		Description:   t.Description,
		Price:         t.Price,
		BudgetMin:     t.BudgetMin,
		BudgetMax:     t.BudgetMax,
		SkillCategory: t.SkillCategory,
		Location:      t.Location,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func toTasks(tasks []model.Task) []*taskDTO {
	out := make([]*taskDTO, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTask(&tasks[i]))
	}
	return out
}

// TaskJSON is the /search response item.
type TaskJSON = taskDTO

// TasksJSON shapes tasks for the REST search route.
func TasksJSON(tasks []model.Task) []*TaskJSON { return toTasks(tasks) }

type bidDTO struct {
	ID          string    `json:"id"`
	BidID       string    `json:"bid_id"`
	TaskID      string    `json:"task_id"`
	UserID      string    `json:"user_id"`
	Amount      float64   `json:"amount"`
	Message     string    `json:"message"`
	Attachments []string  `json:"attachments"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func toBid(b *model.Bid) *bidDTO {
	id := formatID(b.ID)
	return &bidDTO{
		ID:          id,
		BidID:       id,
		TaskID:      formatID(b.TaskID),
		UserID:      b.UserUID,
		Amount:      b.Amount,
		Message:     b.Message,
		Attachments: []string(b.Attachments),
		SubmittedAt: b.SubmittedAt,
	}
}

func toBids(bids []model.Bid) []*bidDTO {
	out := make([]*bidDTO, 0, len(bids))
	for i := range bids {
		out = append(out, toBid(&bids[i]))
	}
	return out
}

type transactionDTO struct {
	TransactionID   string    `json:"transaction_id"`
	UserID          string    `json:"user_id"`
	TaskID          string    `json:"task_id"`
	Amount          float64   `json:"amount"`
	TransactionType string    `json:"transaction_type"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toTransaction(t *model.Transaction) *transactionDTO {
	return &transactionDTO{
		TransactionID:   formatID(t.ID),
		UserID:          t.UserUID,
		TaskID:          formatID(t.TaskID),
		Amount:          t.Amount,
		TransactionType: t.Type,
		Status:          t.Status,
		CreatedAt:       t.CreatedAt,
	}
}

func toTransactions(txns []model.Transaction) []*transactionDTO {
	out := make([]*transactionDTO, 0, len(txns))
	for i := range txns {
		out = append(out, toTransaction(&txns[i]))
	}
	return out
}

type ratingDTO struct {
	RatingID  string    `json:"rating_id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func toRating(r *model.Rating) *ratingDTO {
	return &ratingDTO{
		RatingID:  formatID(r.ID),
		TaskID:    formatID(r.TaskID),
		UserID:    r.UserUID,
		Score:     r.Score,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func toRatings(rs []model.Rating) []*ratingDTO {
	out := make([]*ratingDTO, 0, len(rs))
	for i := range rs {
		out = append(out, toRating(&rs[i]))
	}
	return out
}

type reviewDTO struct {
	ReviewID   string    `json:"review_id"`
	TaskID     string    `json:"task_id"`
	ReviewerID string    `json:"reviewerId"`
	RatingID   *string   `json:"rating_id"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

func toReview(r *model.Review) *reviewDTO {
	dto := &reviewDTO{
		ReviewID:   formatID(r.ID),
		TaskID:     formatID(r.TaskID),
		ReviewerID: r.ReviewerUID,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
	if r.RatingID != 0 {
		id := formatID(r.RatingID)
		dto.RatingID = &id
	}
	return dto
}

type providerAnalyticsDTO struct {
	ProfileViews   int   `json:"profileViews"`
	BidsSubmitted  int64 `json:"bidsSubmitted"`
	TasksCompleted int64 `json:"tasksCompleted"`
}

type seekerAnalyticsDTO struct {
	TaskerHired int64      `json:"taskerHired"`
	TotalSpent  float64    `json:"totalSpent"`
	SavedTasks  []*taskDTO `json:"savedTasks"`
}

func toProviderAnalytics(a *store.ProviderAnalytics) *providerAnalyticsDTO {
	return &providerAnalyticsDTO{ProfileViews: a.ProfileViews, BidsSubmitted: a.BidsSubmitted, TasksCompleted: a.TasksCompleted}
}

func toSeekerAnalytics(a *store.SeekerAnalytics) *seekerAnalyticsDTO {
	return &seekerAnalyticsDTO{TaskerHired: a.TaskerHired, TotalSpent: a.TotalSpent, SavedTasks: toTasks(a.SavedTasks)}
}

type reactionDTO struct {
	UserID       string    `json:"userId"`
	ReactionType string    `json:"reactionType"`
	CreatedAt    time.Time `json:"createdAt"`
}

type postDTO struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Content   string         `json:"content"`
	MediaURLs []string       `json:"mediaUrls"`
	Reactions []*reactionDTO `json:"reactions"`
	Tags      []string       `json:"tags"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func toPost(p *docstore.Post) *postDTO {
	reactions := make([]*reactionDTO, 0, len(p.Reactions))
	for _, r := range p.Reactions {
		reactions = append(reactions, &reactionDTO{UserID: r.UserID, ReactionType: r.ReactionType, CreatedAt: r.CreatedAt})
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &postDTO{
		ID:        p.ID,
		UserID:    p.UserID,
		Content:   p.Content,
		MediaURLs: p.Media,
		Reactions: reactions,
		Tags:      tags,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type commentDTO struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func toComment(c *docstore.Comment) *commentDTO {
	return &commentDTO{ID: c.ID, PostID: c.PostID, UserID: c.UserID, Content: c.Content, CreatedAt: c.CreatedAt}
}

type reportDTO struct {
	ID                string    `json:"id"`
	ReporterID        string    `json:"reporterId"`
	ReportedContentID string    `json:"reportedContentId"`
	ContentType       string    `json:"contentType"`
	Reason            string    `json:"reason"`
	Status            string    `json:"status"`
	ReviewedBy        *string   `json:"reviewedBy"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func toReport(r *docstore.Report) *reportDTO {
	dto := &reportDTO{
		ID:                r.ID,
		ReporterID:        r.ReporterID,
		ReportedContentID: r.ReportedContentID,
		ContentType:       r.ContentType,
		Reason:            r.Reason,
		Status:            r.Status,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.ReviewedBy != "" {
		by := r.ReviewedBy
		dto.ReviewedBy = &by
	}
	return dto
}

type notificationDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Data      *string   `json:"data"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func toNotification(n *docstore.Notification) *notificationDTO {
	dto := &notificationDTO{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Data) > 0 {
		if b, err := json.Marshal(n.Data); err == nil {
			s := string(b)
			dto.Data = &s
		}
	}
	return dto
}

type messageDTO struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
}

func toMessage(m *docstore.Message) *messageDTO {
	return &messageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		Text:           m.Text,
		Timestamp:      m.Timestamp,
	}
}

type authResponseDTO struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	UserID  *string `json:"userId"`
}

func toAuthResponse(res usersync.Result) *authResponseDTO {
	dto := &authResponseDTO{Success: res.Success, Message: res.Message}
	if res.UserID != "" {
		id := res.UserID
		dto.UserID = &id
	}
	return dto
}

type loginDTO struct {
	Token string `json:"token"`
}

// GraphQL object types.

var contentTypeEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "ContentType",
	Values: graphql.EnumValueConfigMap{
		"POST":    &graphql.EnumValueConfig{Value: "POST"},
		"COMMENT": &graphql.EnumValueConfig{Value: "COMMENT"},
	},
})

var reportStatusEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "ReportStatus",
	Values: graphql.EnumValueConfigMap{
		docstore.ReportPending:  &graphql.EnumValueConfig{Value: docstore.ReportPending},
		docstore.ReportReviewed: &graphql.EnumValueConfig{Value: docstore.ReportReviewed},
		docstore.ReportRejected: &graphql.EnumValueConfig{Value: docstore.ReportRejected},
	},
})

// resolveNIN shows the NIN to the user it belongs to and to Admins; everyone
// else reads null.
func resolveNIN(p graphql.ResolveParams) (interface{}, error) {
	u, ok := p.Source.(*userDTO)
	if !ok {
		return nil, nil
	}
	v, ok := auth.ViewerFrom(p.Context)
	if !ok || (v.UID != u.UserID && v.Role != model.RoleAdmin) {
		return nil, nil
	}
	return u.NIN, nil
}

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"user_id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"firebaseUid":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"username":       &graphql.Field{Type: graphql.String},
		"phoneNumber":    &graphql.Field{Type: graphql.String},
		"NIN":            &graphql.Field{Type: graphql.String, Resolve: resolveNIN},
		"email":          &graphql.Field{Type: graphql.String},
		"first_name":     &graphql.Field{Type: graphql.String},
		"last_name":      &graphql.Field{Type: graphql.String},
		"birthDate":      &graphql.Field{Type: graphql.String},
		"gender":         &graphql.Field{Type: graphql.String},
		"user_type":      &graphql.Field{Type: graphql.String},
		"role":           &graphql.Field{Type: graphql.String},
		"profileViews":   &graphql.Field{Type: graphql.Int},
		"profile":        &graphql.Field{Type: graphql.String},
		"skills":         &graphql.Field{Type: graphql.NewList(graphql.String)},
		"ratings":        &graphql.Field{Type: graphql.Float},
		"portfolio":      &graphql.Field{Type: graphql.NewList(graphql.String)},
		"profilePicture": &graphql.Field{Type: graphql.String},
		"imageUrl":       &graphql.Field{Type: graphql.String},
		"createdAt":      &graphql.Field{Type: graphql.DateTime},
		"updatedAt":      &graphql.Field{Type: graphql.DateTime},
	},
})

var taskType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Task",
	Fields: graphql.Fields{
		"task_id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"user_id":       &graphql.Field{Type: graphql.ID},
		"title":         &graphql.Field{Type: graphql.String},
		"description":   &graphql.Field{Type: graphql.String},
		"price":         &graphql.Field{Type: graphql.Float},
		"budgetMin":     &graphql.Field{Type: graphql.Float},
		"budgetMax":     &graphql.Field{Type: graphql.Float},
		"skillCategory": &graphql.Field{Type: graphql.String},
		"location":      &graphql.Field{Type: graphql.String},
		"status":        &graphql.Field{Type: graphql.String},
		"createdAt":     &graphql.Field{Type: graphql.DateTime},
		"updatedAt":     &graphql.Field{Type: graphql.DateTime},
	},
})

var bidType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Bid",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"bid_id":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"task_id":     &graphql.Field{Type: graphql.ID},
		"user_id":     &graphql.Field{Type: graphql.ID},
		"amount":      &graphql.Field{Type: graphql.Float},
		"message":     &graphql.Field{Type: graphql.String},
		"attachments": &graphql.Field{Type: graphql.NewList(graphql.String)},
		"submittedAt": &graphql.Field{Type: graphql.DateTime},
	},
})

var transactionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Transaction",
	Fields: graphql.Fields{
		"transaction_id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"user_id":          &graphql.Field{Type: graphql.ID},
		"task_id":          &graphql.Field{Type: graphql.ID},
		"amount":           &graphql.Field{Type: graphql.Float},
		"transaction_type": &graphql.Field{Type: graphql.String},
		"status":           &graphql.Field{Type: graphql.String},
		"createdAt":        &graphql.Field{Type: graphql.DateTime},
	},
})

var ratingType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Rating",
	Fields: graphql.Fields{
		"rating_id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"task_id":   &graphql.Field{Type: graphql.ID},
		"user_id":   &graphql.Field{Type: graphql.ID},
		"score":     &graphql.Field{Type: graphql.Int},
		"comment":   &graphql.Field{Type: graphql.String},
		"createdAt": &graphql.Field{Type: graphql.DateTime},
	},
})

var reviewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Review",
	Fields: graphql.Fields{
		"review_id":  &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"task_id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"reviewerId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"rating_id":  &graphql.Field{Type: graphql.ID},
		"comment":    &graphql.Field{Type: graphql.String},
		"created_at": &graphql.Field{Type: graphql.DateTime},
	},
})

var providerAnalyticsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AnalyticsProvider",
	Fields: graphql.Fields{
		"profileViews":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"bidsSubmitted":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"tasksCompleted": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var seekerAnalyticsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AnalyticsSeeker",
	Fields: graphql.Fields{
		"taskerHired": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalSpent":  &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"savedTasks":  &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(taskType))},
	},
})

var reactionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Reaction",
	Fields: graphql.Fields{
		"userId":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"reactionType": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt":    &graphql.Field{Type: graphql.DateTime},
	},
})

var postType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Post",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"userId":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"content":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"mediaUrls": &graphql.Field{Type: graphql.NewList(graphql.String)},
		"reactions": &graphql.Field{Type: graphql.NewList(reactionType)},
		"tags":      &graphql.Field{Type: graphql.NewList(graphql.ID)},
		"createdAt": &graphql.Field{Type: graphql.DateTime},
		"updatedAt": &graphql.Field{Type: graphql.DateTime},
	},
})

var commentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Comment",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"postId":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"userId":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"content":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"createdAt": &graphql.Field{Type: graphql.DateTime},
	},
})

var reportType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Report",
	Fields: graphql.Fields{
		"id":                &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"reporterId":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"reportedContentId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"contentType":       &graphql.Field{Type: graphql.NewNonNull(contentTypeEnum)},
		"reason":            &graphql.Field{Type: graphql.String},
		"status":            &graphql.Field{Type: graphql.NewNonNull(reportStatusEnum)},
		"reviewedBy":        &graphql.Field{Type: graphql.ID},
		"createdAt":         &graphql.Field{Type: graphql.DateTime},
		"updatedAt":         &graphql.Field{Type: graphql.DateTime},
	},
})

var notificationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Notification",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"userId":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"message":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"type":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"data":      &graphql.Field{Type: graphql.String, Description: "JSON-encoded payload"},
		"read":      &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"createdAt": &graphql.Field{Type: graphql.DateTime},
	},
})

var messageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Message",
	Fields: graphql.Fields{
		"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"conversationId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"senderId":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"receiverId":     &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"text":           &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"timestamp":      &graphql.Field{Type: graphql.DateTime},
	},
})

var authResponseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuthResponse",
	Fields: graphql.Fields{
		"success": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"message": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"userId":  &graphql.Field{Type: graphql.ID},
	},
})

var loginType = graphql.NewObject(graphql.ObjectConfig{
	Name: "LoginResponse",
	Fields: graphql.Fields{
		"token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

// Input types.

var taskFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "TaskFilter",
	Fields: graphql.InputObjectConfigFieldMap{
		"query":         &graphql.InputObjectFieldConfig{Type: graphql.String},
		"skillCategory": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"budgetMin":     &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"budgetMax":     &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"location":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		"datePosted":    &graphql.InputObjectFieldConfig{Type: graphql.String, Description: "RFC3339 or YYYY-MM-DD"},
	},
})

var taskInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "TaskInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"user_id":       &graphql.InputObjectFieldConfig{Type: graphql.ID},
		"title":         &graphql.InputObjectFieldConfig{Type: graphql.String},
		"description":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		"price":         &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"budgetMin":     &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"budgetMax":     &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"skillCategory": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"location":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		"status":        &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var createBidInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CreateBidInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"task_id":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"user_id":     &graphql.InputObjectFieldConfig{Type: graphql.ID},
		"amount":      &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"message":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"attachments": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String), Description: "data URIs or http(s) URLs"},
	},
})

var createReviewInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CreateReviewInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"task_id":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"reviewerId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"rating_id":  &graphql.InputObjectFieldConfig{Type: graphql.ID},
		"comment":    &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var createPostInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CreatePostInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"authorId":  &graphql.InputObjectFieldConfig{Type: graphql.ID},
		"content":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"mediaUrls": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
	},
})

var addReactionInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "AddReactionInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"postId":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"userId":       &graphql.InputObjectFieldConfig{Type: graphql.ID},
		"reactionType": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var createReportInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CreateReportInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"reporterId":        &graphql.InputObjectFieldConfig{Type: graphql.ID},
		"reportedContentId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"contentType":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(contentTypeEnum)},
		"reason":            &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var updateReportStatusInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UpdateReportStatusInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"reportId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"status":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(reportStatusEnum)},
	},
})
