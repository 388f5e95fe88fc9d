package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/reqmw/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := Config{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug logging in development, got %q", cfg.Logging.Level)
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := Config{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info logging, got %q", cfg.Logging.Level)
		}
	})

	t.Run("headers stage gets a user agent", func(t *testing.T) {
		cfg := Config{Name: "svc", Version: "1.2.3"}
		cfg.Middlewares.Headers.Enabled = true
		cfg.ApplyDefaults()
		if got := cfg.Middlewares.Headers.Values["User-Agent"]; got != "svc/1.2.3 reqmw" {
			t.Errorf("unexpected user agent %q", got)
		}

		keep := Config{Name: "svc"}
		keep.Middlewares.Headers.Enabled = true
		keep.Middlewares.Headers.Values = map[string]string{"user-agent": "custom"}
		keep.ApplyDefaults()
		if len(keep.Middlewares.Headers.Values) != 1 || keep.Middlewares.Headers.Values["user-agent"] != "custom" {
			t.Errorf("configured user agent was replaced: %v", keep.Middlewares.Headers.Values)
		}
		if keep.Version == "" {
			t.Error("expected a default version")
		}
	})

	t.Run("enabled stages get names", func(t *testing.T) {
		cfg := Config{Name: "svc"}
		cfg.Middlewares.CircuitBreaker.Enabled = true
		cfg.ApplyDefaults()
		if cfg.Middlewares.CircuitBreaker.Name != "circuit_breaker" {
			t.Errorf("unexpected breaker name %q", cfg.Middlewares.CircuitBreaker.Name)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{Name: "svc", Environment: "staging"}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing name", func(c *Config) { c.Name = "" }, "name: is required"},
		{"invalid environment", func(c *Config) { c.Environment = "qa" }, "environment: must be one of"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level: must be one of"},
		{"negative timeout", func(c *Config) { c.Client.Timeout = -time.Second }, "client.timeout"},
		{"auth without token", func(c *Config) {
			c.Middlewares.Auth.Enabled = true
			c.Middlewares.Auth.Type = "bearer"
		}, "middlewares.auth.token: is required"},
		{"reports every field", func(c *Config) {
			c.Environment = "qa"
			c.Logging.Format = "xml"
		}, "environment: must be one of: development, staging, production; logging.format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

const pipelineYAML = `
name: billing-client
environment: staging
client:
  timeout: 5s
  max_idle_conns_per_host: 4
logging:
  level: warn
  format: json
middlewares:
  request_id:
    enabled: true
  headers:
    enabled: true
    values:
      User-Agent: billing/1.0
  auth:
    enabled: true
    type: bearer
    token: from-file
    match:
      hosts: [127.0.0.1]
      methods: [GET]
  rate_limit:
    enabled: true
    rate: 50
    burst: 5
  circuit_breaker:
    enabled: true
    max_failures: 3
    timeout: 1m
`

func TestLoadConfigWithYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", pipelineYAML)

	cfg, err := Load("billing-client", WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Name != "billing-client" || cfg.Environment != "staging" {
		t.Errorf("unexpected identity: %q %q", cfg.Name, cfg.Environment)
	}
	if cfg.Client.Timeout != 5*time.Second || cfg.Client.MaxIdleConnsPerHost != 4 {
		t.Errorf("unexpected client config: %+v", cfg.Client)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}

	mw := cfg.Middlewares
	if !mw.RequestID.Enabled || !mw.Headers.Enabled || mw.Headers.Values["user-agent"] == "" && mw.Headers.Values["User-Agent"] == "" {
		t.Errorf("unexpected stage config: %+v", mw)
	}
	if mw.Auth.Type != "bearer" || mw.Auth.Token != "from-file" {
		t.Errorf("unexpected auth config: %+v", mw.Auth)
	}
	if len(mw.Auth.Match.Hosts) != 1 || mw.Auth.Match.Hosts[0] != "127.0.0.1" || mw.Auth.Match.Methods[0] != "GET" {
		t.Errorf("unexpected auth match: %+v", mw.Auth.Match)
	}
	if mw.RateLimit.Rate != 50 || mw.RateLimit.Burst != 5 {
		t.Errorf("unexpected rate limit: %+v", mw.RateLimit)
	}
	if mw.CircuitBreaker.MaxFailures != 3 || mw.CircuitBreaker.Timeout != time.Minute {
		t.Errorf("unexpected circuit breaker: %+v", mw.CircuitBreaker)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", pipelineYAML)
	t.Setenv("MIDDLEWARES_AUTH_TOKEN", "from-env")

	cfg, err := Load("billing-client", WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Middlewares.Auth.Token != "from-env" {
		t.Errorf("expected env override, got %q", cfg.Middlewares.Auth.Token)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", pipelineYAML)
	envPath := writeFile(t, dir, ".env", "REQMW_TEST_LOGGING_LEVEL=error\n")
	t.Cleanup(func() { _ = os.Unsetenv("REQMW_TEST_LOGGING_LEVEL") })

	type wrapped struct {
		Reqmw struct {
			Test struct {
				Logging logger.Config `mapstructure:"logging"`
			} `mapstructure:"test"`
		} `mapstructure:"reqmw"`
	}
	var cfg wrapped
	if err := LoadConfig("billing-client", &cfg, WithConfigFile(path), WithEnvFile(envPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Reqmw.Test.Logging.Level != "error" {
		t.Errorf("expected level from .env, got %q", cfg.Reqmw.Test.Logging.Level)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg Config
	// With no config file found, LoadConfig should still succeed (just empty config)
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"), WithFileSystem(&mockFS{}))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadConfigBrokenFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "name: [unterminated\n")
	var cfg Config
	if err := LoadConfig("svc", &cfg, WithConfigFile(path)); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadValidationError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "environment: qa\n")
	if _, err := Load("svc", WithConfigFile(path)); err == nil || !strings.Contains(err.Error(), "environment") {
		t.Errorf("expected environment error, got %v", err)
	}
}

func TestNewClientEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Echo-Authorization", r.Header.Get("Authorization"))
		w.Header().Set("Echo-User-Agent", r.Header.Get("User-Agent"))
		w.Header().Set("Echo-Request-Id", r.Header.Get("X-Request-Id"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	path := writeFile(t, t.TempDir(), "config.yml", pipelineYAML)
	cfg, err := Load("billing-client", WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	client, err := cfg.NewClient(logger.NewNop())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Middlewares() != 5 {
		t.Errorf("expected 5 stages, got %d", client.Middlewares())
	}
	if client.Unwrap().Timeout != 5*time.Second {
		t.Errorf("expected the configured timeout, got %v", client.Unwrap().Timeout)
	}

	resp, err := client.Get(context.Background(), srv.URL+"/invoices")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Echo-Authorization"); got != "Bearer from-file" {
		t.Errorf("expected auth on GET to 127.0.0.1, got %q", got)
	}
	if got := resp.Header.Get("Echo-User-Agent"); got != "billing/1.0" {
		t.Errorf("expected default user agent, got %q", got)
	}
	if resp.Header.Get("Echo-Request-Id") == "" {
		t.Error("expected a request id")
	}

	resp, err = client.Post(context.Background(), srv.URL+"/invoices", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Echo-Authorization"); got != "" {
		t.Errorf("expected no auth on POST, got %q", got)
	}
}

func TestConfigResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"config/billing.yml": true,
		"config/config.yml":  true,
		"../.env":            true,
		".env.billing":       true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("billing", LoaderConfig{})
	if files.ConfigFile != "config/billing.yml" {
		t.Errorf("expected the named file to win within a directory, got %q", files.ConfigFile)
	}
	if files.EnvFile != ".env.billing" {
		t.Errorf("expected the nearest env file, got %q", files.EnvFile)
	}
}

func TestResolverSearchDirs(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"config.yml":               true,
		"/etc/billing/config.yaml": true,
	}}
	resolver := &Resolver{FileSystem: fs, Dirs: []string{"/etc/billing"}}
	if got := resolver.ResolveFiles("billing", LoaderConfig{}).ConfigFile; got != "/etc/billing/config.yaml" {
		t.Errorf("expected only the custom directory to be searched, got %q", got)
	}
}

func TestResolverExplicitPaths(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{}}
	files := resolver.ResolveFiles("svc", LoaderConfig{ConfigFile: "a.yml", EnvFile: "b.env"})
	if files.ConfigFile != "a.yml" || files.EnvFile != "b.env" {
		t.Errorf("explicit paths should win, got %+v", files)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool   { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("billing_")(&lc)
	WithSearchDirs("a", "b")(&lc)
	if lc.FileSystem != fs || lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("unexpected loader config: %+v", lc)
	}
	if lc.EnvPrefix != "BILLING" || len(lc.SearchDirs) != 2 {
		t.Errorf("unexpected prefix or dirs: %+v", lc)
	}
}

func TestLoadConfigEnvPrefix(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", pipelineYAML)
	t.Setenv("BILLING_MIDDLEWARES_AUTH_TOKEN", "prefixed")
	t.Setenv("MIDDLEWARES_AUTH_TOKEN", "unprefixed")

	cfg, err := Load("billing-client", WithConfigFile(path), WithEnvPrefix("BILLING"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Middlewares.Auth.Token != "prefixed" {
		t.Errorf("expected the prefixed variable only, got %q", cfg.Middlewares.Auth.Token)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	variants := generateEnvKeyVariants("MIDDLEWARES_RATE_LIMIT_BURST")
	want := []string{"middlewares.rate_limit.burst", "middlewares.rate.limit.burst", "middlewares_rate_limit_burst"}
	for _, w := range want {
		found := false
		for _, v := range variants {
			if v == w {
				found = true
			}
		}
		if !found {
			t.Errorf("expected variant %q in %v", w, variants)
		}
	}
	if len(variants) != 8 {
		t.Errorf("expected 8 variants, got %d", len(variants))
	}
	if got := generateEnvKeyVariants("NAME"); len(got) != 1 || got[0] != "name" {
		t.Errorf("single part key: %v", got)
	}
	if got := generateEnvKeyVariants("_"); len(got) != 1 || got[0] != "_" {
		t.Errorf("empty parts must not be split: %v", got)
	}
}
