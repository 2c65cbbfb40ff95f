package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// DatabaseConfig.GetDSN
// ---------------------------------------------------------------------------

func TestGetDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "standard config",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "directory",
				Password: "secret",
				Name:     "project_directory",
				SSLMode:  "require",
			},
			want: "host=localhost port=5432 user=directory password=secret dbname=project_directory sslmode=require",
		},
		{
			name: "empty password",
			cfg: DatabaseConfig{
				Host:    "db.example.com",
				Port:    5433,
				User:    "user",
				Name:    "dbname",
				SSLMode: "disable",
			},
			want: "host=db.example.com port=5433 user=user password= dbname=dbname sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.GetDSN()
			if got != tt.want {
				t.Errorf("GetDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// ServerConfig.GetAddress / MetricsConfig.GetMetricsAddress
// ---------------------------------------------------------------------------

func TestGetAddress(t *testing.T) {
	tests := []struct {
		name string
		cfg  ServerConfig
		want string
	}{
		{"default", ServerConfig{Host: "0.0.0.0", Port: 8080}, "0.0.0.0:8080"},
		{"localhost", ServerConfig{Host: "localhost", Port: 3000}, "localhost:3000"},
		{"empty host", ServerConfig{Host: "", Port: 8080}, ":8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.GetAddress()
			if got != tt.want {
				t.Errorf("GetAddress() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetMetricsAddress(t *testing.T) {
	m := MetricsConfig{Enabled: true, PrometheusPort: 9090}
	if got := m.GetMetricsAddress(); got != ":9090" {
		t.Errorf("GetMetricsAddress() = %q, want :9090", got)
	}
}

// ---------------------------------------------------------------------------
// Config.Validate
// ---------------------------------------------------------------------------

func minimalValidConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Host: "localhost",
			Name: "project_directory",
			User: "directory",
		},
		GitHub:  GitHubConfig{APIURL: "https://api.github.com"},
		Cache:   CacheConfig{Backend: "memory", Size: 100},
		Auth:    AuthConfig{JWTSecret: "test-secret"},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid minimal config passes", func(t *testing.T) {
		if err := minimalValidConfig().Validate(); err != nil {
			t.Errorf("Validate() unexpected error: %v", err)
		}
	})

	invalid := []struct {
		name   string
		mutate func(*Config)
	}{
		{"server port 0", func(c *Config) { c.Server.Port = 0 }},
		{"server port 70000", func(c *Config) { c.Server.Port = 70000 }},
		{"missing database host", func(c *Config) { c.Database.Host = "" }},
		{"missing database name", func(c *Config) { c.Database.Name = "" }},
		{"missing database user", func(c *Config) { c.Database.User = "" }},
		{"missing github api_url", func(c *Config) { c.GitHub.APIURL = "" }},
		{"negative requests_per_second", func(c *Config) { c.GitHub.RequestsPerSecond = -1 }},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"memory cache without size", func(c *Config) { c.Cache.Size = 0 }},
		{"redis cache without addr", func(c *Config) { c.Cache.Backend = "redis" }},
		{"missing jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"rate limiting without budget", func(c *Config) {
			c.Security.RateLimiting = RateLimitingConfig{Enabled: true}
		}},
		{"bad logging level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad logging format", func(c *Config) { c.Logging.Format = "xml" }},
		{"metrics port out of range", func(c *Config) {
			c.Telemetry.Metrics = MetricsConfig{Enabled: true, PrometheusPort: 0}
		}},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			cfg := minimalValidConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() expected error for %s, got nil", tt.name)
			}
		})
	}

	t.Run("none cache backend needs no settings", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Cache = CacheConfig{Backend: "none"}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() unexpected error: %v", err)
		}
	})

	t.Run("redis cache with addr", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Cache = CacheConfig{Backend: "redis", Redis: RedisCacheConfig{Addr: "localhost:6379"}}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() unexpected error: %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// expandEnv
// ---------------------------------------------------------------------------

func TestExpandEnv(t *testing.T) {
	t.Run("expands ${VAR} syntax", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_SECRET", "super-secret")
		if got := expandEnv("${CONFIG_TEST_SECRET}"); got != "super-secret" {
			t.Errorf("expandEnv() = %q, want %q", got, "super-secret")
		}
	})

	t.Run("plain string passthrough", func(t *testing.T) {
		if got := expandEnv("no-vars-here"); got != "no-vars-here" {
			t.Errorf("expandEnv() = %q, want %q", got, "no-vars-here")
		}
	})

	t.Run("unset variable expands to empty string", func(t *testing.T) {
		os.Unsetenv("CONFIG_TEST_DEFINITELY_UNSET_12345")
		if got := expandEnv("${CONFIG_TEST_DEFINITELY_UNSET_12345}"); got != "" {
			t.Errorf("expandEnv() = %q, want empty string", got)
		}
	})
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

// writeTempConfig writes a YAML file into a per-test directory.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal("WriteFile:", err)
	}
	return path
}

func TestLoad_DefaultsWithNoFile(t *testing.T) {
	t.Setenv("PDIR_AUTH_JWT_SECRET", "env-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("default Database.Host = %q, want localhost", cfg.Database.Host)
	}
	if cfg.GitHub.APIURL != "https://api.github.com" {
		t.Errorf("default GitHub.APIURL = %q", cfg.GitHub.APIURL)
	}
	if cfg.GitHub.Timeout != 15*time.Second {
		t.Errorf("default GitHub.Timeout = %v, want 15s", cfg.GitHub.Timeout)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("default Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("Auth.JWTSecret = %q, want env-secret", cfg.Auth.JWTSecret)
	}
}

func TestLoad_MissingSecretFailsValidation(t *testing.T) {
	t.Setenv("PDIR_AUTH_JWT_SECRET", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("Load() error = %v, want invalid configuration", err)
	}
}

func TestLoad_WithConfigFile(t *testing.T) {
	const content = `
server:
  host: "testhost"
  port: 9999
database:
  host: "dbhost"
  name: "testdb"
  user: "testuser"
github:
  api_url: "https://ghe.example.com/api/v3"
  requests_per_second: 2.5
cache:
  backend: "redis"
  redis:
    addr: "redis:6379"
    db: 3
auth:
  jwt_secret: "file-secret"
logging:
  level: "debug"
  format: "text"
`
	cfg, err := Load(writeTempConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Host != "testhost" || cfg.Server.Port != 9999 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Database.Host != "dbhost" || cfg.Database.Name != "testdb" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.GitHub.APIURL != "https://ghe.example.com/api/v3" {
		t.Errorf("GitHub.APIURL = %q", cfg.GitHub.APIURL)
	}
	if cfg.GitHub.RequestsPerSecond != 2.5 {
		t.Errorf("GitHub.RequestsPerSecond = %v, want 2.5", cfg.GitHub.RequestsPerSecond)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.Redis.Addr != "redis:6379" || cfg.Cache.Redis.DB != 3 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PDIR_SERVER_PORT", "7070")
	t.Setenv("PDIR_GITHUB_TOKEN", "env-token")
	const content = `
auth:
  jwt_secret: "file-secret"
server:
  port: 9999
`
	cfg, err := Load(writeTempConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.GitHub.Token != "env-token" {
		t.Errorf("GitHub.Token = %q, want env-token", cfg.GitHub.Token)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_DB_PASS", "mysecret")
	t.Setenv("TEST_GH_TOKEN", "ghp_expanded")
	const content = `
database:
  password: "${TEST_DB_PASS}"
github:
  token: "${TEST_GH_TOKEN}"
auth:
  jwt_secret: "file-secret"
`
	cfg, err := Load(writeTempConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.Password != "mysecret" {
		t.Errorf("Database.Password = %q, want mysecret", cfg.Database.Password)
	}
	if cfg.GitHub.Token != "ghp_expanded" {
		t.Errorf("GitHub.Token = %q, want ghp_expanded", cfg.GitHub.Token)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeTempConfig(t, "server: [unclosed")); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

// ---------------------------------------------------------------------------
// Loader.Watch
// ---------------------------------------------------------------------------

func TestWatch_NoFile(t *testing.T) {
	l, err := NewLoader(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("NewLoader() error: %v", err)
	}
	if l.Watch(func(*Config) {}) {
		t.Error("Watch() = true without a config file, want false")
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeTempConfig(t, "auth:\n  jwt_secret: s\nlogging:\n  level: info\n")
	l, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader() error: %v", err)
	}
	if l.ConfigFile() != path {
		t.Fatalf("ConfigFile() = %q, want %q", l.ConfigFile(), path)
	}

	changed := make(chan *Config, 4)
	if !l.Watch(func(c *Config) { changed <- c }) {
		t.Fatal("Watch() = false, want true")
	}

	if err := os.WriteFile(path, []byte("auth:\n  jwt_secret: s\nlogging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal("WriteFile:", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changed:
			if c.Logging.Level == "debug" {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for config reload")
		}
	}
}
