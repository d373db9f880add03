package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	// Act
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	// Assert
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "3000" || cfg.Store.Driver != DriverMemory || cfg.Engine.SampleSize != 5 {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_RepositoryConfig(t *testing.T) {
	cfg, err := Load("../../config/app.yaml")

	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Session.TTL != 24*time.Hour || cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("durations = %v / %v", cfg.Session.TTL, cfg.Server.RequestTimeout)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	// Arrange
	path := writeFile(t, "app.yaml", `
server:
  port: "8080"
store:
  driver: sqlite
  dsn: /tmp/tweets.db
engine:
  sample_size: 3
`)
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("AUTH_REQUIRED", "true")
	t.Setenv("JWT_SECRET", "s3cret")

	// Act
	cfg, err := Load(path)

	// Assert
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want env override 9090", cfg.Server.Port)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.DSN != "/tmp/tweets.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Engine.SampleSize != 3 {
		t.Errorf("sample size = %d, want 3", cfg.Engine.SampleSize)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("ttl = %v, want 2h", cfg.Session.TTL)
	}
	if !cfg.Auth.Required || cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.RateLimit.PerMinute != 60 {
		t.Errorf("unset values should keep defaults, rate = %d", cfg.RateLimit.PerMinute)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	for key, value := range map[string]string{
		"SAMPLE_SIZE":     "many",
		"SESSION_TTL":     "forever",
		"REQUEST_TIMEOUT": "soon",
		"AUTH_REQUIRED":   "maybe",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			if _, err := Load(""); err == nil {
				t.Errorf("Load() with %s=%s error = nil", key, value)
			}
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeFile(t, "app.yaml", "server: [unclosed")

	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown store", func(c *Config) { c.Store.Driver = "mongo" }, true},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }, true},
		{"postgres with dsn", func(c *Config) { c.Store.Driver = DriverPostgres; c.Store.DSN = "postgres://x" }, false},
		{"redis without url", func(c *Config) { c.Session.Driver = DriverRedis }, true},
		{"file without dir", func(c *Config) { c.Session.Driver = DriverFile }, true},
		{"file with dir", func(c *Config) { c.Session.Driver = DriverFile; c.Session.Dir = "/tmp/sessions" }, false},
		{"unknown session", func(c *Config) { c.Session.Driver = "disk" }, true},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, true},
		{"zero sample", func(c *Config) { c.Engine.SampleSize = 0 }, true},
		{"auth required without secret", func(c *Config) { c.Auth.Required = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
