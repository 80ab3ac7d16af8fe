package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/api/auth"
	"github.com/OkontaEhis/myhitmeup-backend/internal/api/middleware"
	"github.com/OkontaEhis/myhitmeup-backend/internal/docstore"
	"github.com/OkontaEhis/myhitmeup-backend/internal/graph"
	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/apperr"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/queue"
	"github.com/OkontaEhis/myhitmeup-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	msgProfileSynced     = "Profile synchronized successfully!"
	msgProfileSyncFailed = "Failed to synchronize profile"
	msgSearchFailed      = "Failed to fetch results"
)

// TaskSearcher 执行 /search 的任务检索。
type TaskSearcher interface {
	SearchTasks(ctx context.Context, f store.TaskFilter) ([]model.Task, error)
}

// ProfileSyncer 写入身份服务推送的资料。
type ProfileSyncer interface {
	SyncProfile(ctx context.Context, uid string, p store.ProfileData) (*model.User, error)
}

// AttachmentReader 读取已上传的附件。
type AttachmentReader interface {
	GetAttachment(ctx context.Context, id string) (*docstore.Attachment, error)
}

// PoolStats 暴露后台 Worker Pool 的运行状态。
type PoolStats interface {
	Stats() queue.Stats
	Workers() int
}

// Pinger 是健康检查的依赖。
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc 把函数适配为 Pinger。
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Deps 是构造 Server 所需的依赖，由 main 组装。
type Deps struct {
	Schema      graphql.Schema
	Tasks       TaskSearcher
	Profiles    ProfileSyncer
	Attachments AttachmentReader
	Auth        *auth.Handler
	Queue       PoolStats // nil 时不注册 /admin/queue

	Sessions middleware.SessionParser
	Provider middleware.TokenVerifier
	Roles    middleware.RoleSource
	Limiter  middleware.Allower // nil 时不限流

	Checks  map[string]Pinger
	Closers []func() error
}

// Server 封装了 API 服务所需的依赖和路由处理。
type Server struct {
	logger      *slog.Logger
	router      *gin.Engine
	graphql     *handler.Handler
	tasks       TaskSearcher
	profiles    ProfileSyncer
	attachments AttachmentReader
	auth        *auth.Handler
	queue       PoolStats
	checks      map[string]Pinger
	closers     []func() error
}

// NewServer 初始化 Gin 路由并注册全部路由。
func NewServer(d Deps, logger *slog.Logger) *Server {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))

	s := &Server{
		logger: logger,
		router: r,
		graphql: handler.New(&handler.Config{
			Schema:   &d.Schema,
			Pretty:   true,
			GraphiQL: true,
		}),
		tasks:       d.Tasks,
		profiles:    d.Profiles,
		attachments: d.Attachments,
		auth:        d.Auth,
		queue:       d.Queue,
		checks:      d.Checks,
		closers:     d.Closers,
	}
	s.registerRoutes(d)
	return s
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Close 按注册的逆序释放连接，返回第一个错误。
func (s *Server) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// registerRoutes 注册所有的 API 路由。
func (s *Server) registerRoutes(d Deps) {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/healthz", s.handleHealthz)
	s.router.GET("/attachments/:id", s.handleAttachment)

	limit := func(route string) gin.HandlerFunc {
		if d.Limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimit(d.Limiter, route, s.logger)
	}

	s.router.POST("/login", limit("login"), s.auth.HandleLogin)

	authed := s.router.Group("/")
	authed.Use(middleware.OptionalAuth(d.Sessions, d.Provider, d.Roles, s.logger))
	authed.GET("/graphql", limit("graphql"), s.handleGraphQL)
	authed.POST("/graphql", limit("graphql"), s.handleGraphQL)
	authed.GET("/search", limit("search"), s.handleSearch)
	authed.POST("/syncProfile", s.handleSyncProfile)

	if s.queue != nil {
		admin := authed.Group("/admin")
		admin.Use(middleware.RequireRole(model.RoleAdmin))
		admin.GET("/queue", s.handleQueueStats)
	}
}

// handleQueueStats 返回 Worker Pool 的统计快照，仅管理员可见。
func (s *Server) handleQueueStats(c *gin.Context) {
	st := s.queue.Stats()
	c.JSON(http.StatusOK, gin.H{
		"workers":   s.queue.Workers(),
		"pending":   st.Pending,
		"submitted": st.Submitted,
		"succeeded": st.Succeeded,
		"failed":    st.Failed,
		"dropped":   st.Dropped,
		"panics":    st.Panics,
	})
}

// handleGraphQL 执行 GraphQL 请求；访问者已由 OptionalAuth 写入请求上下文。
func (s *Server) handleGraphQL(c *gin.Context) {
	s.graphql.ContextHandler(c.Request.Context(), c.Writer, c.Request)
}

func (s *Server) handleSearch(c *gin.Context) {
	f, err := graph.ParseTaskFilter(c.Query)
	if err != nil {
		writeError(c, err)
		return
	}
	tasks, err := s.tasks.SearchTasks(c.Request.Context(), f)
	if err != nil {
		s.logger.Error("search tasks failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgSearchFailed})
		return
	}
	c.JSON(http.StatusOK, graph.TasksJSON(tasks))
}

// syncProfileRequest /syncProfile 的请求体。
type syncProfileRequest struct {
	FirebaseUID string       `json:"firebase_uid" binding:"required"`
	ProfileData *profileData `json:"profileData" binding:"required"`
}

type profileData struct {
	Profile        string   `json:"profile"`
	Skills         []string `json:"skills"`
	Ratings        float64  `json:"ratings"`
	Reviews        []string `json:"reviews"`
	Portfolio      []string `json:"portfolio"`
	ProfilePicture string   `json:"profilePicture"`
}

func (s *Server) handleSyncProfile(c *gin.Context) {
	var req syncProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p := req.ProfileData
	_, err := s.profiles.SyncProfile(c.Request.Context(), req.FirebaseUID, store.ProfileData{
		Profile:        p.Profile,
		Skills:         p.Skills,
		Ratings:        p.Ratings,
		Reviews:        p.Reviews,
		Portfolio:      p.Portfolio,
		ProfilePicture: p.ProfilePicture,
	})
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindValidation, apperr.KindNotFound:
			writeError(c, err)
		default:
			s.logger.Error("sync profile failed", slog.String("uid", req.FirebaseUID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgProfileSyncFailed})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgProfileSynced})
}

func (s *Server) handleAttachment(c *gin.Context) {
	a, err := s.attachments.GetAttachment(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
			return
		}
		s.logger.Error("load attachment failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": apperr.InternalMessage})
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, a.ContentType, a.Data)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{}
	healthy := true
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn("health check failed", slog.String("dependency", name), slog.String("error", err.Error()))
			status[name] = "error"
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "checks": status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": status})
}

// writeError 按错误类型写出状态码，内部错误不暴露原因。
func writeError(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": apperr.InternalMessage})
		return
	}
	body := gin.H{"error": e.Public()}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	c.JSON(statusOf(e.Kind), body)
}

func statusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
