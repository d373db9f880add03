// Package config loads the application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tweet-suggester/internal/domain"
)

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LogLevel  string          `yaml:"log_level"`
	Store     StoreConfig     `yaml:"store"`
	Session   SessionConfig   `yaml:"session"`
	Engine    EngineConfig    `yaml:"engine"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	TagsFile  string          `yaml:"tags_file"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	StaticDir      string        `yaml:"static_dir"`
}

// StoreConfig selects the tweet store gateway.
type StoreConfig struct {
	Driver   string `yaml:"driver"` // memory, sqlite or postgres
	DSN      string `yaml:"dsn"`
	Table    string `yaml:"table"`
	SeedFile string `yaml:"seed_file"` // memory and sqlite only
}

// SessionConfig selects where per-session state lives.
type SessionConfig struct {
	Driver   string        `yaml:"driver"` // memory, redis or file
	RedisURL string        `yaml:"redis_url"`
	Dir      string        `yaml:"dir"` // file only
	TTL      time.Duration `yaml:"ttl"`
}

type EngineConfig struct {
	SampleSize int `yaml:"sample_size"`
}

// RateLimitConfig bounds mutating requests per client IP.
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"`
	Burst     int `yaml:"burst"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Required  bool   `yaml:"required"`
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverFile     = "file"
)

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           "3000",
			RequestTimeout: 30 * time.Second,
			StaticDir:      "./static",
		},
		LogLevel: "info",
		Store: StoreConfig{
			Driver:   DriverMemory,
			Table:    "tweets",
			SeedFile: "config/seed.yaml",
		},
		Session: SessionConfig{
			Driver: DriverMemory,
			TTL:    24 * time.Hour,
		},
		Engine:    EngineConfig{SampleSize: domain.DefaultSampleSize},
		RateLimit: RateLimitConfig{PerMinute: 60, Burst: 10},
		TagsFile:  "config/tags.yaml",
	}
}

// Load reads .env (if present), the YAML file at path (if present) and
// environment overrides, in that order of increasing precedence.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// Defaults and environment only
		default:
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.DSN, "DATABASE_URL")
	setString(&c.Store.Table, "TWEETS_TABLE")
	setString(&c.Store.SeedFile, "SEED_FILE")
	setString(&c.Session.Driver, "SESSION_DRIVER")
	setString(&c.Session.RedisURL, "REDIS_URL")
	setString(&c.Session.Dir, "SESSION_DIR")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.TagsFile, "TAGS_FILE")

	if err := setDuration(&c.Session.TTL, "SESSION_TTL"); err != nil {
		return err
	}
	if err := setDuration(&c.Server.RequestTimeout, "REQUEST_TIMEOUT"); err != nil {
		return err
	}
	if err := setInt(&c.Engine.SampleSize, "SAMPLE_SIZE"); err != nil {
		return err
	}
	if err := setInt(&c.RateLimit.PerMinute, "RATE_LIMIT_PER_MINUTE"); err != nil {
		return err
	}
	if v := os.Getenv("AUTH_REQUIRED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AUTH_REQUIRED: %w", err)
		}
		c.Auth.Required = b
	}
	return nil
}

// Validate checks that the selected drivers have what they need.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store driver %q requires a dsn", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Session.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Session.RedisURL == "" {
			return errors.New("session driver \"redis\" requires redis_url")
		}
	case DriverFile:
		if c.Session.Dir == "" {
			return errors.New("session driver \"file\" requires dir")
		}
	default:
		return fmt.Errorf("unknown session driver %q", c.Session.Driver)
	}

	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.Engine.SampleSize <= 0 {
		return errors.New("engine sample_size must be positive")
	}
	if c.Auth.Required && c.Auth.JWTSecret == "" {
		return errors.New("auth.required needs auth.jwt_secret")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
