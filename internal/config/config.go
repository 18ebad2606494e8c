// Package config loads the server and CLI settings.
//
// Sources are applied in order, later ones winning: built-in defaults, an
// optional YAML file, a .env file in the working directory, then the process
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/livingtrust/livingtrust/pkg/advisor"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// DefaultJWTSecret is only suitable for local development.
const DefaultJWTSecret = "secret-key"

type Config struct {
	Port      int             `mapstructure:"port"`
	LogLevel  string          `mapstructure:"log_level"`
	Store     StoreConfig     `mapstructure:"store"`
	Auth      AuthConfig      `mapstructure:"auth"`
	AI        advisor.Config  `mapstructure:"ai"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// DocumentsDir switches document storage to a markdown vault when set.
	DocumentsDir string `mapstructure:"documents_dir"`
}

type StoreConfig struct {
	Kind       string      `mapstructure:"kind"`
	SQLitePath string      `mapstructure:"sqlite_path"`
	SessionDir string      `mapstructure:"session_dir"`
	Redis      RedisConfig `mapstructure:"redis"`
	// EncryptionKey seals wizard sessions at rest (AES-256-GCM).
	EncryptionKey string `mapstructure:"encryption_key"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// RateLimitConfig applies to the AI routes. PerMinute 0 disables it.
type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	Burst     int `mapstructure:"burst"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Port:     3001,
		LogLevel: "info",
		Store: StoreConfig{
			Kind:       StoreMemory,
			SQLitePath: "livingtrust.db",
			SessionDir: ".livingtrust/sessions",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "livingtrust:",
				TTL:    7 * 24 * time.Hour,
			},
		},
		Auth: AuthConfig{
			JWTSecret: DefaultJWTSecret,
			TokenTTL:  7 * 24 * time.Hour,
		},
		AI: advisor.Config{
			BaseURL:    advisor.DefaultBaseURL,
			Model:      advisor.DefaultModel,
			Timeout:    advisor.DefaultTimeout,
			MaxRetries: 2,
		},
		RateLimit: RateLimitConfig{PerMinute: 20, Burst: 5},
	}
}

// envKeys maps environment variables to config keys. Later entries win, so
// the prefixed names override the bare ones.
var envKeys = []struct{ env, key string }{
	{"PORT", "port"},
	{"JWT_SECRET", "auth.jwt_secret"},
	{"OPENAI_API_KEY", "ai.api_key"},
	{"LIVINGTRUST_PORT", "port"},
	{"LIVINGTRUST_LOG_LEVEL", "log_level"},
	{"LIVINGTRUST_STORE", "store.kind"},
	{"LIVINGTRUST_SQLITE_PATH", "store.sqlite_path"},
	{"LIVINGTRUST_SESSION_DIR", "store.session_dir"},
	{"LIVINGTRUST_ENCRYPTION_KEY", "store.encryption_key"},
	{"LIVINGTRUST_REDIS_ADDR", "store.redis.addr"},
	{"LIVINGTRUST_REDIS_PASSWORD", "store.redis.password"},
	{"LIVINGTRUST_REDIS_DB", "store.redis.db"},
	{"LIVINGTRUST_REDIS_PREFIX", "store.redis.prefix"},
	{"LIVINGTRUST_REDIS_TTL", "store.redis.ttl"},
	{"LIVINGTRUST_JWT_SECRET", "auth.jwt_secret"},
	{"LIVINGTRUST_TOKEN_TTL", "auth.token_ttl"},
	{"LIVINGTRUST_AI_API_KEY", "ai.api_key"},
	{"LIVINGTRUST_AI_BASE_URL", "ai.base_url"},
	{"LIVINGTRUST_AI_MODEL", "ai.model"},
	{"LIVINGTRUST_AI_TIMEOUT", "ai.timeout"},
	{"LIVINGTRUST_AI_MAX_RETRIES", "ai.max_retries"},
	{"LIVINGTRUST_RATE_LIMIT", "rate_limit.per_minute"},
	{"LIVINGTRUST_RATE_BURST", "rate_limit.burst"},
	{"LIVINGTRUST_DOCUMENTS_DIR", "documents_dir"},
}

// Load reads path (may be empty), .env and the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := decode(raw, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	env := map[string]any{}
	for _, e := range envKeys {
		if v, ok := lookup(e.env); ok && v != "" {
			setPath(env, strings.Split(e.key, "."), v)
		}
	}
	if err := decode(env, cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode merges raw into cfg. Strings are converted to numbers and durations.
func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func setPath(m map[string]any, path []string, v string) {
	for _, p := range path[:len(path)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Store.Kind {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want memory, sqlite or redis)", c.Store.Kind)
	}
	if c.Store.Kind == StoreSQLite && c.Store.SQLitePath == "" {
		return errors.New("store.sqlite_path is required for the sqlite store")
	}
	if c.Store.Kind == StoreRedis && c.Store.Redis.Addr == "" {
		return errors.New("store.redis.addr is required for the redis store")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must not be empty")
	}
	if c.RateLimit.PerMinute < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate_limit values must not be negative")
	}
	return nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
