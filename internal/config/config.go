package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 保存应用程序配置。
type Config struct {
	App      AppConfig      `json:"app"`
	MySQL    MySQLConfig    `json:"mysql"`
	Redis    RedisConfig    `json:"redis"`
	Surreal  SurrealConfig  `json:"surreal"`
	Identity IdentityConfig `json:"identity"`
	Email    EmailConfig    `json:"email"`
	Security SecurityConfig `json:"security"`
	Sync     SyncConfig     `json:"sync"`
}

// AppConfig 应用程序基础配置。
type AppConfig struct {
	Env            string  `json:"env" validate:"required,oneof=local dev prod test"` // 运行环境
	LogLevel       string  `json:"log_level"`                                          // 日志级别: debug / info / warn / error
	HTTPAddr       string  `json:"http_addr" validate:"required"`                      // API 服务监听地址
	RateLimit      float64 `json:"rate_limit"`                                         // 每个客户端限流速率（token/s）
	RateBurst      float64 `json:"rate_burst"`                                         // 限流桶容量
	WorkerPoolSize int     `json:"worker_pool_size"`                                   // 通知 Worker Pool 大小
	QueueCapacity  int     `json:"queue_capacity"`                                     // 通知队列容量
	RegisterLock   int     `json:"register_lock"`                                      // 注册手机号锁定窗口（秒）
}

// MySQLConfig MySQL 数据库配置。
type MySQLConfig struct {
	DSN          string `json:"dsn" validate:"required"` // 数据库连接字符串
	MaxOpenConns int    `json:"max_open_conns"`          // 连接池上限
}

// RedisConfig Redis 配置。
type RedisConfig struct {
	Addr     string `json:"addr" validate:"required"` // Redis 地址 (host:port)
	Password string `json:"password"`                 // Redis 密码
}

// SurrealConfig 文档数据库配置。
type SurrealConfig struct {
	Backend   string `json:"backend" validate:"oneof=surreal memory"` // surreal / memory
	URL       string `json:"url" validate:"required_if=Backend surreal"`
	Namespace string `json:"namespace"`
	Database  string `json:"database"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// IdentityConfig 身份服务配置。
type IdentityConfig struct {
	ClerkSecretKey string  `json:"clerk_secret_key"`
	RateLimit      float64 `json:"rate_limit"` // 调用身份服务的全局速率（token/s）
	RateBurst      float64 `json:"rate_burst"`
}

// EmailConfig 邮件配置。
type EmailConfig struct {
	SMTPHost  string `json:"smtp_host"`
	SMTPPort  int    `json:"smtp_port"`
	SMTPUser  string `json:"smtp_user"`
	SMTPPass  string `json:"smtp_pass"`
	FromEmail string `json:"from_email"`
}

// SecurityConfig 安全相关配置。
type SecurityConfig struct {
	JWTSecret     string        `json:"jwt_secret" validate:"required"`                     // JWT 签名密钥
	TokenTTL      time.Duration `json:"-"`                                                  // 登录令牌有效期
	AdminPhone    string        `json:"admin_phone" validate:"omitempty,e164"`              // 启动时确保存在的管理员手机号
	AdminPassword string        `json:"admin_password" validate:"required_with=AdminPhone"` // 管理员初始密码
}

// SyncConfig 用户变更投影配置。
type SyncConfig struct {
	Interval    time.Duration `json:"-"`            // 轮询间隔
	BatchSize   int           `json:"batch_size"`   // 每次轮询最大变更数
	MaxAttempts int           `json:"max_attempts"` // 单条变更最大尝试次数
}

// Load 加载配置：JSON 文件（可选）→ 默认值 → .env / 环境变量覆盖 → 校验。
//
// 缺少必填项时返回错误，调用方应终止进程。
func Load(configPath ...string) (*Config, error) {
	path := "configs/config.json"
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	}

	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验必填配置。
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			missing := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				missing = append(missing, fe.Namespace()+" ("+fe.Tag()+")")
			}
			return fmt.Errorf("invalid config: %s", strings.Join(missing, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.App.Env != "local" && cfg.App.Env != "test" && cfg.Identity.ClerkSecretKey == "" {
		return fmt.Errorf("invalid config: CLERK_SECRET_KEY is required in %s", cfg.App.Env)
	}
	return nil
}

// applyDefaults 对未设置的字段应用默认值。
func applyDefaults(cfg *Config) {
	if cfg.App.Env == "" {
		cfg.App.Env = "local"
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.App.HTTPAddr == "" {
		cfg.App.HTTPAddr = ":4000"
	}
	if cfg.App.RateLimit == 0 {
		cfg.App.RateLimit = 10
	}
	if cfg.App.RateBurst == 0 {
		cfg.App.RateBurst = 20
	}
	if cfg.App.WorkerPoolSize == 0 {
		cfg.App.WorkerPoolSize = 4
	}
	if cfg.App.QueueCapacity == 0 {
		cfg.App.QueueCapacity = 256
	}
	if cfg.App.RegisterLock == 0 {
		cfg.App.RegisterLock = 30
	}
	if cfg.MySQL.MaxOpenConns == 0 {
		cfg.MySQL.MaxOpenConns = 10
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Surreal.Backend == "" {
		if cfg.Surreal.URL != "" {
			cfg.Surreal.Backend = "surreal"
		} else {
			cfg.Surreal.Backend = "memory"
		}
	}
	if cfg.Surreal.Namespace == "" {
		cfg.Surreal.Namespace = "hitmeup"
	}
	if cfg.Surreal.Database == "" {
		cfg.Surreal.Database = "community"
	}
	if cfg.Identity.RateLimit == 0 {
		cfg.Identity.RateLimit = 20
	}
	if cfg.Identity.RateBurst == 0 {
		cfg.Identity.RateBurst = 20
	}
	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	// 仅本地环境允许使用开发密钥
	if cfg.Security.JWTSecret == "" && cfg.App.Env == "local" {
		cfg.Security.JWTSecret = "dev_secret_change_me"
	}
	if cfg.Security.TokenTTL == 0 {
		cfg.Security.TokenTTL = 24 * time.Hour
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = 5 * time.Second
	}
	if cfg.Sync.BatchSize == 0 {
		cfg.Sync.BatchSize = 100
	}
	if cfg.Sync.MaxAttempts == 0 {
		cfg.Sync.MaxAttempts = 8
	}
}

func applyEnvOverrides(cfg *Config) {
	viper.AutomaticEnv()

	_ = viper.BindEnv("db_host", "DB_HOST")
	_ = viper.BindEnv("db_password", "DB_PASSWORD")
	_ = viper.BindEnv("redis_addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis_password", "REDIS_PASSWORD")
	_ = viper.BindEnv("smtp_pass", "SMTP_PASS")
	_ = viper.BindEnv("jwt_secret", "JWT_SECRET")
	_ = viper.BindEnv("clerk_secret_key", "CLERK_SECRET_KEY")
	_ = viper.BindEnv("surreal_pass", "SURREAL_PASS")
	_ = viper.BindEnv("admin_password", "ADMIN_PASSWORD")

	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("APP_LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("APP_HTTP_ADDR"); v != "" {
		cfg.App.HTTPAddr = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.App.HTTPAddr = ":" + v
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.App.RateLimit = f
		}
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.App.RateBurst = f
		}
	}
	if v := os.Getenv("APP_WORKER_POOL_SIZE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.App.WorkerPoolSize = i
		}
	}
	if v := os.Getenv("APP_QUEUE_CAPACITY"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.App.QueueCapacity = i
		}
	}

	if v := viper.GetString("jwt_secret"); v != "" {
		cfg.Security.JWTSecret = v
	}
	if v := os.Getenv("JWT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Security.TokenTTL = d
		}
	}
	if v := os.Getenv("ADMIN_PHONE"); v != "" {
		cfg.Security.AdminPhone = v
	}
	if v := viper.GetString("admin_password"); v != "" {
		cfg.Security.AdminPassword = v
	}
	if v := viper.GetString("clerk_secret_key"); v != "" {
		cfg.Identity.ClerkSecretKey = v
	}
	if v := os.Getenv("IDENTITY_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Identity.RateLimit = f
		}
	}

	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.MySQL.DSN = v
	} else if hasAnyEnv("DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME") {
		parsed := parseMySQLDSN(cfg.MySQL.DSN)
		host, port := splitAddr(parsed.Addr)
		if v := viper.GetString("db_host"); v != "" {
			host = v
		}
		if v := os.Getenv("DB_PORT"); v != "" {
			port = v
		}
		parsed.Addr = host + ":" + port
		if v := os.Getenv("DB_USER"); v != "" {
			parsed.User = v
		}
		if v := viper.GetString("db_password"); v != "" {
			parsed.Passwd = v
		}
		if v := os.Getenv("DB_NAME"); v != "" {
			parsed.DBName = v
		}
		cfg.MySQL.DSN = parsed.FormatDSN()
	}
	if v := os.Getenv("DB_MAX_OPEN_CONNS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.MySQL.MaxOpenConns = i
		}
	}

	if v := viper.GetString("redis_addr"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := viper.GetString("redis_password"); v != "" {
		cfg.Redis.Password = v
	}

	if v := os.Getenv("DOCSTORE_BACKEND"); v != "" {
		cfg.Surreal.Backend = v
	}
	if v := os.Getenv("SURREAL_URL"); v != "" {
		cfg.Surreal.URL = v
	}
	if v := os.Getenv("SURREAL_NS"); v != "" {
		cfg.Surreal.Namespace = v
	}
	if v := os.Getenv("SURREAL_DB"); v != "" {
		cfg.Surreal.Database = v
	}
	if v := os.Getenv("SURREAL_USER"); v != "" {
		cfg.Surreal.Username = v
	}
	if v := viper.GetString("surreal_pass"); v != "" {
		cfg.Surreal.Password = v
	}

	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Email.SMTPPort = i
		}
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Email.SMTPUser = v
	}
	if v := viper.GetString("smtp_pass"); v != "" {
		cfg.Email.SMTPPass = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.Email.FromEmail = v
	}

	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Sync.Interval = d
		}
	}
	if v := os.Getenv("SYNC_BATCH_SIZE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Sync.BatchSize = i
		}
	}
	if v := os.Getenv("SYNC_MAX_ATTEMPTS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Sync.MaxAttempts = i
		}
	}
}

func hasAnyEnv(keys ...string) bool {
	for _, key := range keys {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

func splitAddr(addr string) (string, string) {
	host, port := "localhost", "3306"
	if addr == "" {
		return host, port
	}
	parts := strings.SplitN(addr, ":", 2)
	if parts[0] != "" {
		host = parts[0]
	}
	if len(parts) == 2 && parts[1] != "" {
		port = parts[1]
	}
	return host, port
}

func parseMySQLDSN(dsn string) *mysql.Config {
	fallback := &mysql.Config{
		User:   "root",
		Net:    "tcp",
		Addr:   "localhost:3306",
		DBName: "hitmeup_marketplace_db",
		Params: map[string]string{
			"parseTime": "true",
			"loc":       "Local",
			"charset":   "utf8mb4",
		},
		AllowNativePasswords: true,
	}
	if dsn == "" {
		return fallback
	}
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return fallback
	}
	return parsed
}

// UnmarshalJSON 支持 "5s" 形式的 interval。
func (s *SyncConfig) UnmarshalJSON(data []byte) error {
	type Alias SyncConfig
	aux := &struct {
		Interval string `json:"interval"`
		*Alias
	}{
		Alias: (*Alias)(s),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Interval != "" {
		d, err := time.ParseDuration(aux.Interval)
		if err != nil {
			return fmt.Errorf("invalid sync.interval format: %w", err)
		}
		s.Interval = d
	}
	return nil
}

// UnmarshalJSON 支持 "24h" 形式的 token_ttl。
func (s *SecurityConfig) UnmarshalJSON(data []byte) error {
	type Alias SecurityConfig
	aux := &struct {
		TokenTTL string `json:"token_ttl"`
		*Alias
	}{
		Alias: (*Alias)(s),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.TokenTTL != "" {
		d, err := time.ParseDuration(aux.TokenTTL)
		if err != nil {
			return fmt.Errorf("invalid security.token_ttl format: %w", err)
		}
		s.TokenTTL = d
	}
	return nil
}
