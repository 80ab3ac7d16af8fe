package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/OkontaEhis/myhitmeup-backend/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "store.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s := New(db)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func seedUser(t *testing.T, s *Store, uid, phone string) *model.User {
	t.Helper()
	u := &model.User{
		UID:          uid,
		Username:     "user-" + uid,
		PhoneNumber:  phone,
		NIN:          "12345678901",
		Email:        uid + "@example.com",
		PasswordHash: "hash",
	}
	if _, err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestCreateUser_WritesOutboxChange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &model.User{UID: "uid-1", Username: "ada", PhoneNumber: "+2348012345678", PasswordHash: "h"}
	changeID, err := s.CreateUser(ctx, u)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if changeID == 0 {
		t.Fatalf("expected change id")
	}
	if u.Role != model.RoleUser {
		t.Fatalf("expected default role, got %q", u.Role)
	}

	pending, err := s.PendingChanges(ctx, 10, 3)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].UserUID != "uid-1" || pending[0].Operation != model.ChangeUpsert {
		t.Fatalf("unexpected pending changes: %+v", pending)
	}
}

func TestCreateUser_DuplicatePhone(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "uid-1", "+2348012345678")

	_, err := s.CreateUser(context.Background(), &model.User{UID: "uid-2", Username: "b", PhoneNumber: "+2348012345678", PasswordHash: "h"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	n, err := s.PendingChangeCount(context.Background(), 0)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("failed insert must not leave an outbox row, got %d", n)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetUser(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestIncrementProfileViews(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "uid-1", "+2348012345678")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.IncrementProfileViews(ctx, "uid-1"); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	u, err := s.GetUser(ctx, "uid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.ProfileViews != 5 {
		t.Fatalf("expected 5 views, got %d", u.ProfileViews)
	}

	views, err := s.IncrementProfileViews(ctx, "uid-1")
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if views != 6 {
		t.Fatalf("expected 6, got %d", views)
	}
}

func TestIncrementProfileViews_MissingUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.IncrementProfileViews(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	users, _ := s.ListUsers(ctx)
	if len(users) != 0 {
		t.Fatalf("increment must not create a user")
	}
	n, _ := s.PendingChangeCount(ctx, 0)
	if n != 0 {
		t.Fatalf("expected no outbox rows, got %d", n)
	}
}

func TestUpdateProfileAndRole(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "uid-1", "+2348012345678")

	u, err := s.UpdateProfile(ctx, "uid-1", ProfileData{
		Profile: "Plumber",
		Skills:  []string{"plumbing", "tiling"},
		Ratings: 4.5,
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if u.Profile != "Plumber" || len(u.Skills) != 2 || u.Ratings != 4.5 {
		t.Fatalf("unexpected user: %+v", u)
	}

	u, err = s.SetRole(ctx, "uid-1", model.RoleAdmin)
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	if u.Role != model.RoleAdmin {
		t.Fatalf("expected admin, got %q", u.Role)
	}

	// create + profile + role
	n, _ := s.PendingChangeCount(ctx, 0)
	if n != 3 {
		t.Fatalf("expected 3 outbox rows, got %d", n)
	}

	if _, err := s.SetRole(ctx, "ghost", model.RoleAdmin); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "uid-1", "+2348012345678")

	u, err := s.DeleteUser(ctx, "uid-1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if u.UID != "uid-1" {
		t.Fatalf("expected deleted record, got %+v", u)
	}
	if _, err := s.GetUser(ctx, "uid-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
	pending, _ := s.PendingChanges(ctx, 10, 0)
	if last := pending[len(pending)-1]; last.Operation != model.ChangeDelete {
		t.Fatalf("expected delete change last, got %+v", last)
	}
	if _, err := s.DeleteUser(ctx, "uid-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}

func TestEmailTaken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "uid-1", "+2348012345678")

	taken, err := s.EmailTaken(ctx, "uid-1@example.com", "uid-2")
	if err != nil || !taken {
		t.Fatalf("expected taken, got %v %v", taken, err)
	}
	taken, err = s.EmailTaken(ctx, "uid-1@example.com", "uid-1")
	if err != nil || taken {
		t.Fatalf("own email should not count, got %v %v", taken, err)
	}
}

func ptr(v float64) *float64 { return &v }

func TestSearchTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tasks := []model.Task{
		{UserUID: "s1", Title: "Fix kitchen sink", SkillCategory: "plumbing", BudgetMin: 5000, BudgetMax: 20000, Location: "Lagos"},
		{UserUID: "s1", Title: "Paint bedroom", SkillCategory: "painting", BudgetMin: 30000, BudgetMax: 80000, Location: "Abuja"},
		{UserUID: "s2", Title: "Replace sink pipes", SkillCategory: "plumbing", BudgetMin: 10000, BudgetMax: 15000, Location: "Abuja"},
	}
	for i := range tasks {
		if err := s.CreateTask(ctx, &tasks[i]); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	cases := []struct {
		name   string
		filter TaskFilter
		want   int
	}{
		{"empty filter returns all", TaskFilter{}, 3},
		{"text query", TaskFilter{Query: "sink"}, 2},
		{"category", TaskFilter{SkillCategory: "plumbing"}, 2},
		{"budget range", TaskFilter{BudgetMin: ptr(5000), BudgetMax: ptr(20000)}, 2},
		{"location equality", TaskFilter{Location: "Abuja"}, 2},
		{"combined", TaskFilter{Query: "sink", Location: "Abuja"}, 1},
		{"injection-looking text is literal", TaskFilter{Query: "' OR 1=1 --"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.SearchTasks(ctx, tc.filter)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("expected %d tasks, got %d", tc.want, len(got))
			}
		})
	}
}

func TestRecommendTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		task := &model.Task{UserUID: "s1", Title: fmt.Sprintf("job %d", i), SkillCategory: "plumbing"}
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := s.CreateTask(ctx, &model.Task{UserUID: "s1", Title: "tiling", SkillCategory: "other"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.RecommendTasks(ctx, []string{"plumbing", "tiling"}, 0)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("expected limit of 10, got %d", len(got))
	}
	if got[0].Title != "tiling" {
		t.Fatalf("expected newest match first, got %q", got[0].Title)
	}

	none, err := s.RecommendTasks(ctx, nil, 10)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected nothing for empty skills, got %d %v", len(none), err)
	}
}

func TestTaskCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := &model.Task{UserUID: "s1", Title: "Mow lawn", Price: 100}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("create: %v", err)
	}
	stored, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != "open" {
		t.Fatalf("expected default status open, got %q", stored.Status)
	}

	updated, err := s.UpdateTask(ctx, task.ID, map[string]any{"price": 150.0})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 150 {
		t.Fatalf("expected price 150, got %v", updated.Price)
	}
	if _, err := s.UpdateTask(ctx, 999, map[string]any{"price": 1.0}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDelete_MissingRowLeavesTableUnchanged(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := &model.Task{UserUID: "s1", Title: "Paint fence"}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	bid := &model.Bid{TaskID: task.ID, UserUID: "p1", Amount: 20}
	if err := s.CreateBid(ctx, bid); err != nil {
		t.Fatalf("create bid: %v", err)
	}
	txn := &model.Transaction{TaskID: task.ID, UserUID: "s1", Amount: 20, Type: "payment", Status: "pending"}
	if err := s.CreateTransaction(ctx, txn); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	rating := &model.Rating{TaskID: task.ID, UserUID: "s1", Score: 5}
	if err := s.CreateRating(ctx, rating); err != nil {
		t.Fatalf("create rating: %v", err)
	}

	tests := []struct {
		name     string
		model    any
		existing uint
		del      func(id uint) error
	}{
		{name: "bid", model: &model.Bid{}, existing: bid.ID, del: func(id uint) error { _, err := s.DeleteBid(ctx, id); return err }},
		{name: "transaction", model: &model.Transaction{}, existing: txn.ID, del: func(id uint) error { _, err := s.DeleteTransaction(ctx, id); return err }},
		{name: "rating", model: &model.Rating{}, existing: rating.ID, del: func(id uint) error { _, err := s.DeleteRating(ctx, id); return err }},
		{name: "task", model: &model.Task{}, existing: task.ID, del: func(id uint) error { _, err := s.DeleteTask(ctx, id); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count := func() int64 {
				var n int64
				if err := s.db.WithContext(ctx).Model(tt.model).Count(&n).Error; err != nil {
					t.Fatalf("count: %v", err)
				}
				return n
			}

			before := count()
			if before != 1 {
				t.Fatalf("expected 1 seeded row, got %d", before)
			}
			if err := tt.del(tt.existing + 1000); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for missing id, got %v", err)
			}
			if after := count(); after != before {
				t.Fatalf("row count changed on missing delete: %d -> %d", before, after)
			}

			if err := tt.del(tt.existing); err != nil {
				t.Fatalf("delete existing: %v", err)
			}
			if after := count(); after != before-1 {
				t.Fatalf("expected %d rows after delete, got %d", before-1, after)
			}
		})
	}
}

func TestBidRequiresTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateBid(ctx, &model.Bid{TaskID: 42, UserUID: "p1", Amount: 10}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for missing task, got %v", err)
	}

	task := &model.Task{UserUID: "s1", Title: "Fix roof"}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	bid := &model.Bid{TaskID: task.ID, UserUID: "p1", Amount: 10, Attachments: model.StringList{"/attachments/a"}}
	if err := s.CreateBid(ctx, bid); err != nil {
		t.Fatalf("create bid: %v", err)
	}
	got, err := s.ListBidsByTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || len(got[0].Attachments) != 1 {
		t.Fatalf("unexpected bids: %+v", got)
	}
}

func TestAnalytics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "p1", "+2348000000001")
	seedUser(t, s, "s1", "+2348000000002")

	done := &model.Task{UserUID: "p1", Title: "Done job", Status: model.TaskStatusCompleted}
	open := &model.Task{UserUID: "s1", Title: "Open job"}
	for _, task := range []*model.Task{done, open} {
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	if err := s.CreateBid(ctx, &model.Bid{TaskID: open.ID, UserUID: "p1", Amount: 50}); err != nil {
		t.Fatalf("bid: %v", err)
	}
	if _, err := s.IncrementProfileViews(ctx, "p1"); err != nil {
		t.Fatalf("views: %v", err)
	}

	pa, err := s.ProviderAnalytics(ctx, "p1")
	if err != nil {
		t.Fatalf("provider analytics: %v", err)
	}
	if pa.ProfileViews != 1 || pa.BidsSubmitted != 1 || pa.TasksCompleted != 1 {
		t.Fatalf("unexpected provider analytics: %+v", pa)
	}

	for _, amt := range []float64{100, 250.5} {
		if err := s.CreateTransaction(ctx, &model.Transaction{UserUID: "s1", TaskID: open.ID, Amount: amt}); err != nil {
			t.Fatalf("transaction: %v", err)
		}
	}
	if err := s.SaveTask(ctx, "s1", open.ID); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveTask(ctx, "s1", open.ID); err != nil {
		t.Fatalf("second save should be a no-op: %v", err)
	}

	sa, err := s.SeekerAnalytics(ctx, "s1")
	if err != nil {
		t.Fatalf("seeker analytics: %v", err)
	}
	if sa.TaskerHired != 2 || sa.TotalSpent != 350.5 || len(sa.SavedTasks) != 1 {
		t.Fatalf("unexpected seeker analytics: %+v", sa)
	}

	if _, err := s.ProviderAnalytics(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestChangeLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "uid-1", "+2348012345678")
	seedUser(t, s, "uid-2", "+2348012345679")

	pending, err := s.PendingChanges(ctx, 10, 2)
	if err != nil || len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d %v", len(pending), err)
	}

	if err := s.MarkChangesProcessed(ctx, pending[0].ID); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.MarkChangesFailed(ctx, "docstore down", pending[1].ID); err != nil {
			t.Fatalf("mark failed: %v", err)
		}
	}

	left, err := s.PendingChanges(ctx, 10, 2)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("processed and exhausted changes should not be pending, got %+v", left)
	}
	parked, _ := s.PendingChanges(ctx, 10, 0)
	if len(parked) != 1 || parked[0].Attempts != 2 || parked[0].LastError != "docstore down" {
		t.Fatalf("unexpected parked change: %+v", parked)
	}
}
