package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("PORT", "8088")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "hitmeup")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("DB_NAME", "marketplace")
	t.Setenv("JWT_SECRET", "jwt-from-env")
	t.Setenv("SYNC_INTERVAL", "2s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.HTTPAddr != ":8088" {
		t.Fatalf("expected PORT override, got %q", cfg.App.HTTPAddr)
	}
	if !strings.Contains(cfg.MySQL.DSN, "hitmeup:s3cret@tcp(db.internal:3306)/marketplace") {
		t.Fatalf("unexpected dsn: %s", cfg.MySQL.DSN)
	}
	if cfg.Security.JWTSecret != "jwt-from-env" {
		t.Fatalf("expected jwt secret from env, got %q", cfg.Security.JWTSecret)
	}
	if cfg.Sync.Interval != 2*time.Second {
		t.Fatalf("expected sync interval 2s, got %v", cfg.Sync.Interval)
	}
	if cfg.MySQL.MaxOpenConns != 10 {
		t.Fatalf("expected pool size 10, got %d", cfg.MySQL.MaxOpenConns)
	}
	if cfg.Surreal.Backend != "memory" {
		t.Fatalf("expected memory document backend without SURREAL_URL, got %q", cfg.Surreal.Backend)
	}
}

func TestLoad_MissingDatabaseIsFatal(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("DB_DSN", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatalf("expected error without database configuration")
	}
	if !strings.Contains(err.Error(), "DSN") {
		t.Fatalf("expected error to name the DSN, got %v", err)
	}
}

func TestLoad_ProdRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DB_DSN", "u:p@tcp(localhost:3306)/db?parseTime=true")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CLERK_SECRET_KEY", "")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected prod config without jwt secret to fail")
	}

	t.Setenv("JWT_SECRET", "prod-secret")
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "CLERK_SECRET_KEY") {
		t.Fatalf("expected missing clerk key error, got %v", err)
	}

	t.Setenv("CLERK_SECRET_KEY", "sk_test_123")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err != nil {
		t.Fatalf("expected complete prod config to load, got %v", err)
	}
}

func TestLoad_JSONFile(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("APP_HTTP_ADDR", "")
	t.Setenv("CLERK_SECRET_KEY", "")

	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
  "app": {"env": "dev", "http_addr": ":9000"},
  "mysql": {"dsn": "root:pw@tcp(mysql:3306)/hitmeup?parseTime=true"},
  "surreal": {"url": "ws://surreal:8000/rpc"},
  "identity": {"clerk_secret_key": "sk_test_file"},
  "security": {"jwt_secret": "file-secret", "token_ttl": "2h"},
  "sync": {"interval": "30s", "batch_size": 10}
}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.HTTPAddr != ":9000" || cfg.Security.TokenTTL != 2*time.Hour {
		t.Fatalf("unexpected app/security config: %+v %+v", cfg.App, cfg.Security)
	}
	if cfg.Sync.Interval != 30*time.Second || cfg.Sync.BatchSize != 10 || cfg.Sync.MaxAttempts != 8 {
		t.Fatalf("unexpected sync config: %+v", cfg.Sync)
	}
	if cfg.Surreal.Backend != "surreal" {
		t.Fatalf("expected surreal backend when url is set, got %q", cfg.Surreal.Backend)
	}
}

func TestLoad_BootstrapAdmin(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("DB_DSN", "u:p@tcp(localhost:3306)/db?parseTime=true")
	t.Setenv("JWT_SECRET", "local-secret")
	t.Setenv("ADMIN_PHONE", "+15550000000")
	t.Setenv("ADMIN_PASSWORD", "")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil || !strings.Contains(err.Error(), "AdminPassword") {
		t.Fatalf("expected admin password to be required with admin phone, got %v", err)
	}

	t.Setenv("ADMIN_PASSWORD", "bootstrap")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Security.AdminPhone != "+15550000000" || cfg.Security.AdminPassword != "bootstrap" {
		t.Fatalf("unexpected admin settings: %+v", cfg.Security)
	}

	t.Setenv("ADMIN_PHONE", "5550000")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected non-E.164 admin phone to fail validation")
	}
}
