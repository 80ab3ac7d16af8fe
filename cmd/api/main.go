package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/api"
	"github.com/OkontaEhis/myhitmeup-backend/internal/api/auth"
	"github.com/OkontaEhis/myhitmeup-backend/internal/attachment"
	"github.com/OkontaEhis/myhitmeup-backend/internal/config"
	"github.com/OkontaEhis/myhitmeup-backend/internal/docstore"
	"github.com/OkontaEhis/myhitmeup-backend/internal/graph"
	"github.com/OkontaEhis/myhitmeup-backend/internal/identity"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/dedup"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/logger"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/metrics"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/notify"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/queue"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/ratelimit"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/validation"
	"github.com/OkontaEhis/myhitmeup-backend/internal/store"
	"github.com/OkontaEhis/myhitmeup-backend/internal/usersync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// main 是 API 服务的入口函数。
//
// 它负责：
// 1. 加载配置并初始化日志与指标
// 2. 连接 MySQL、Redis 与文档库
// 3. 组装身份服务、用户同步、通知与 GraphQL 层
// 4. 启动 HTTP 服务与后台 relay，收到信号后优雅退出
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger := logger.NewDefault(cfg.App.LogLevel)
	metrics.InitMetrics(cfg.App.WorkerPoolSize)
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error("api server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) error {
	db, err := store.Open(cfg.MySQL)
	if err != nil {
		return err
	}
	st := store.New(db)
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = st.Close()
		return err
	}

	docs, err := docstore.New(ctx, cfg.Surreal)
	if err != nil {
		_ = rdb.Close()
		_ = st.Close()
		return err
	}

	idp, err := newIdentityProvider(cfg, rdb, appLogger)
	if err != nil {
		_ = docs.Close(context.Background())
		_ = rdb.Close()
		_ = st.Close()
		return err
	}

	// 通知与 relay 共用一个 Worker Pool
	pool := queue.New(appLogger, cfg.App.WorkerPoolSize, cfg.App.QueueCapacity)
	pool.OnResult(metrics.ObserveQueueJob)
	pool.Start(ctx)

	relay := usersync.NewRelay(st, docs, pool, cfg.Sync, appLogger)
	claims := dedup.NewClaimer(rdb, time.Duration(cfg.App.RegisterLock)*time.Second)
	users := usersync.NewService(st, docs, idp, claims, appLogger, usersync.WithKicker(relay))

	issuer := auth.NewIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	authHandler := auth.NewHandler(st, issuer, appLogger)

	if err := api.SeedAdmin(ctx, cfg.Security, st, users, appLogger); err != nil {
		appLogger.Error("seed admin failed", slog.String("error", err.Error()))
	}

	resolver := graph.NewResolver(graph.Deps{
		Store:    st,
		Docs:     docs,
		Identity: idp,
		Users:    users,
		Auth:     authHandler,
		Notifier: notify.NewDispatcher(docs, pool, appLogger),
		Mailer:   notify.NewMailer(cfg.Email, appLogger),
		Uploader: attachment.NewUploader(docs, cfg.App.WorkerPoolSize),
		Logger:   appLogger,
	}, validation.New())
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		return err
	}

	srv := api.NewServer(api.Deps{
		Schema:      schema,
		Tasks:       st,
		Profiles:    users,
		Attachments: docs,
		Auth:        authHandler,
		Queue:       pool,
		Sessions:    issuer,
		Provider:    idp,
		Roles:       st,
		Limiter:     ratelimit.New(rdb, appLogger, "hitmeup:ratelimit:http:", cfg.App.RateLimit, cfg.App.RateBurst),
		Checks: map[string]api.Pinger{
			"mysql":    st,
			"redis":    api.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
			"docstore": docs,
		},
		Closers: []func() error{
			st.Close,
			rdb.Close,
			func() error { return docs.Close(context.Background()) },
		},
	}, appLogger)

	go relay.Run(ctx)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("api server listening", slog.String("addr", cfg.App.HTTPAddr), slog.String("env", cfg.App.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			appLogger.Error("server run failed", slog.String("error", err.Error()))
		}
	}
	appLogger.Info("shutting down api server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown failed", slog.String("error", err.Error()))
	}
	if err := pool.Shutdown(5 * time.Second); err != nil {
		appLogger.Error("worker pool shutdown failed", slog.String("error", err.Error()))
	}
	return srv.Close()
}

// newIdentityProvider 返回限流后的身份服务客户端。local/test 环境未配置密钥时使用内存实现。
func newIdentityProvider(cfg *config.Config, rdb *redis.Client, appLogger *slog.Logger) (identity.Provider, error) {
	var next identity.Provider
	if cfg.Identity.ClerkSecretKey == "" {
		appLogger.Warn("identity provider key missing, using in-memory accounts", slog.String("env", cfg.App.Env))
		next = identity.NewLocal()
	} else {
		clerkClient, err := identity.NewClerk(cfg.Identity.ClerkSecretKey)
		if err != nil {
			return nil, err
		}
		next = clerkClient
	}
	limiter := ratelimit.New(rdb, appLogger, "hitmeup:ratelimit:identity:", cfg.Identity.RateLimit, cfg.Identity.RateBurst)
	return identity.NewThrottled(next, limiter), nil
}
