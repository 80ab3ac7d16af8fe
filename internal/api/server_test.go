package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/api/auth"
	"github.com/OkontaEhis/myhitmeup-backend/internal/docstore"
	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/apperr"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/queue"
	"github.com/OkontaEhis/myhitmeup-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
)

type mockTaskSearcher struct {
	searchFunc func(ctx context.Context, f store.TaskFilter) ([]model.Task, error)
	calls      int
	last       store.TaskFilter
}

func (m *mockTaskSearcher) SearchTasks(ctx context.Context, f store.TaskFilter) ([]model.Task, error) {
	m.calls++
	m.last = f
	return m.searchFunc(ctx, f)
}

type mockProfileSyncer struct {
	syncFunc func(ctx context.Context, uid string, p store.ProfileData) (*model.User, error)
	calls    int
}

func (m *mockProfileSyncer) SyncProfile(ctx context.Context, uid string, p store.ProfileData) (*model.User, error) {
	m.calls++
	return m.syncFunc(ctx, uid, p)
}

type mockUserLookup struct{}

func (mockUserLookup) GetUserByPhone(context.Context, string) (*model.User, error) {
	return nil, store.ErrNotFound
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// viewerSchema exposes the request viewer so tests can see what reached the resolvers.
func viewerSchema(t *testing.T) graphql.Schema {
	t.Helper()
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"viewer": &graphql.Field{
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						v, ok := auth.ViewerFrom(p.Context)
						if !ok {
							return nil, nil
						}
						return v.UID + "/" + v.Role, nil
					},
				},
			},
		}),
	})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return schema
}

type testServer struct {
	*Server
	issuer   *auth.Issuer
	tasks    *mockTaskSearcher
	profiles *mockProfileSyncer
	docs     *docstore.Memory
}

func newTestServer(t *testing.T, checks map[string]Pinger) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := testLogger()
	issuer := auth.NewIssuer("test-secret", time.Hour)
	ts := &testServer{
		issuer: issuer,
		tasks: &mockTaskSearcher{searchFunc: func(context.Context, store.TaskFilter) ([]model.Task, error) {
			return []model.Task{}, nil
		}},
		profiles: &mockProfileSyncer{syncFunc: func(context.Context, string, store.ProfileData) (*model.User, error) {
			return &model.User{}, nil
		}},
		docs: docstore.NewMemory(),
	}
	ts.Server = NewServer(Deps{
		Schema:      viewerSchema(t),
		Tasks:       ts.tasks,
		Profiles:    ts.profiles,
		Attachments: ts.docs,
		Auth:        auth.NewHandler(mockUserLookup{}, issuer, logger),
		Sessions:    issuer,
		Checks:      checks,
	}, logger)
	return ts
}

func (ts *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.Router().ServeHTTP(w, req)
	return w
}

func TestSearch_PassesFiltersAndReturnsArray(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.tasks.searchFunc = func(_ context.Context, f store.TaskFilter) ([]model.Task, error) {
		return []model.Task{{ID: 7, UserUID: "s", Title: "mid", BudgetMin: 100, BudgetMax: 300}}, nil
	}

	w := ts.serve(httptest.NewRequest(http.MethodGet, "/search?budgetMin=50&budgetMax=500&skillCategory=plumbing", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ts.tasks.last.BudgetMin == nil || *ts.tasks.last.BudgetMin != 50 || *ts.tasks.last.BudgetMax != 500 {
		t.Fatalf("budget not forwarded: %+v", ts.tasks.last)
	}
	if ts.tasks.last.SkillCategory != "plumbing" {
		t.Fatalf("skill category not forwarded: %+v", ts.tasks.last)
	}

	var got []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0]["task_id"] != "7" || got[0]["title"] != "mid" {
		t.Fatalf("unexpected body: %v", got)
	}
}

func TestSearch_BadParams(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, q := range []string{"budgetMin=abc", "datePosted=tomorrow"} {
		w := ts.serve(httptest.NewRequest(http.MethodGet, "/search?"+q, nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, w.Code)
		}
	}
	if ts.tasks.calls != 0 {
		t.Fatalf("store must not be queried on bad params")
	}
}

func TestSearch_StoreFailure(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.tasks.searchFunc = func(context.Context, store.TaskFilter) ([]model.Task, error) {
		return nil, errors.New("db down")
	}
	w := ts.serve(httptest.NewRequest(http.MethodGet, "/search", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(msgSearchFailed)) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestSyncProfile(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		syncErr    error
		wantStatus int
		wantCalls  int
	}{
		{
			name:       "ok",
			body:       `{"firebase_uid":"u1","profileData":{"profile":"bio","skills":["go"],"ratings":4.5}}`,
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{name: "malformed json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "missing uid", body: `{"profileData":{}}`, wantStatus: http.StatusBadRequest},
		{name: "missing profile", body: `{"firebase_uid":"u1"}`, wantStatus: http.StatusBadRequest},
		{
			name:       "unknown user",
			body:       `{"firebase_uid":"ghost","profileData":{}}`,
			syncErr:    apperr.NotFound("User not found"),
			wantStatus: http.StatusNotFound,
			wantCalls:  1,
		},
		{
			name:       "store failure",
			body:       `{"firebase_uid":"u1","profileData":{}}`,
			syncErr:    apperr.Internal("sync profile", errors.New("deadlock")),
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			var gotProfile store.ProfileData
			ts.profiles.syncFunc = func(_ context.Context, _ string, p store.ProfileData) (*model.User, error) {
				gotProfile = p
				return &model.User{}, tt.syncErr
			}

			req := httptest.NewRequest(http.MethodPost, "/syncProfile", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := ts.serve(req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if ts.profiles.calls != tt.wantCalls {
				t.Fatalf("expected %d sync calls, got %d", tt.wantCalls, ts.profiles.calls)
			}
			if tt.wantStatus == http.StatusOK {
				if gotProfile.Profile != "bio" || len(gotProfile.Skills) != 1 || gotProfile.Ratings != 4.5 {
					t.Fatalf("profile not forwarded: %+v", gotProfile)
				}
				if !bytes.Contains(w.Body.Bytes(), []byte(msgProfileSynced)) {
					t.Fatalf("unexpected body: %s", w.Body.String())
				}
			}
			if tt.wantStatus == http.StatusInternalServerError && bytes.Contains(w.Body.Bytes(), []byte("deadlock")) {
				t.Fatalf("cause leaked: %s", w.Body.String())
			}
		})
	}
}

func TestGraphQL_CarriesViewer(t *testing.T) {
	ts := newTestServer(t, nil)
	token, err := ts.issuer.Issue("u1", model.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	post := func(authz string) map[string]any {
		req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString(`{"query":"{ viewer }"}`))
		req.Header.Set("Content-Type", "application/json")
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		w := ts.serve(req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var body struct {
			Data map[string]any `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return body.Data
	}

	if got := post("Bearer " + token)["viewer"]; got != "u1/Admin" {
		t.Fatalf("expected u1/Admin, got %v", got)
	}
	if got := post("")["viewer"]; got != nil {
		t.Fatalf("expected anonymous viewer, got %v", got)
	}

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString(`{"query":"{ viewer }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer garbage")
	if w := ts.serve(req); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", w.Code)
	}
}

func TestAttachment(t *testing.T) {
	ts := newTestServer(t, nil)
	a := &docstore.Attachment{ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
	if err := ts.docs.PutAttachment(context.Background(), a); err != nil {
		t.Fatalf("put: %v", err)
	}

	w := ts.serve(httptest.NewRequest(http.MethodGet, "/attachments/"+a.ID, nil))
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected response: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.Equal(w.Body.Bytes(), a.Data) {
		t.Fatalf("unexpected body")
	}

	if w := ts.serve(httptest.NewRequest(http.MethodGet, "/attachments/missing", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("refused") })

	ts := newTestServer(t, map[string]Pinger{"mysql": ok, "redis": ok, "docstore": ok})
	if w := ts.serve(httptest.NewRequest(http.MethodGet, "/healthz", nil)); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	ts = newTestServer(t, map[string]Pinger{"mysql": ok, "redis": down})
	w := ts.serve(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var body struct {
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Checks["redis"] != "error" || body.Checks["mysql"] != "ok" {
		t.Fatalf("unexpected checks: %v", body.Checks)
	}
}

func TestClose_RunsClosersInReverse(t *testing.T) {
	var order []string
	s := &Server{closers: []func() error{
		func() error { order = append(order, "db"); return nil },
		func() error { order = append(order, "redis"); return errors.New("already closed") },
	}}
	if err := s.Close(); err == nil {
		t.Fatalf("expected first error to be returned")
	}
	if len(order) != 2 || order[0] != "redis" || order[1] != "db" {
		t.Fatalf("unexpected close order: %v", order)
	}
}

func TestAdminQueue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := testLogger()
	issuer := auth.NewIssuer("test-secret", time.Hour)

	// 未启动的池：提交的任务停留在队列中
	pool := queue.New(logger, 2, 4)
	if !pool.Submit("notify:tagged", func(context.Context) error { return nil }) {
		t.Fatalf("submit rejected")
	}

	srv := NewServer(Deps{
		Schema:   viewerSchema(t),
		Auth:     auth.NewHandler(mockUserLookup{}, issuer, logger),
		Queue:    pool,
		Sessions: issuer,
	}, logger)

	userToken, _ := issuer.Issue("u1", model.RoleUser)
	adminToken, _ := issuer.Issue("u2", model.RoleAdmin)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "anonymous", wantStatus: http.StatusUnauthorized},
		{name: "plain user", token: userToken, wantStatus: http.StatusForbidden},
		{name: "admin", token: adminToken, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/queue", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var body map[string]int
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["workers"] != 2 || body["submitted"] != 1 || body["pending"] != 1 {
				t.Fatalf("unexpected stats: %v", body)
			}
		})
	}
}

func TestAdminQueue_NotRegisteredWithoutPool(t *testing.T) {
	ts := newTestServer(t, nil)
	token, _ := ts.issuer.Issue("u2", model.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/admin/queue", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if w := ts.serve(req); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
