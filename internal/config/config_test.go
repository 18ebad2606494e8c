package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Equal(t, DefaultJWTSecret, cfg.Auth.JWTSecret)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Equal(t, ":3001", cfg.Addr())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livingtrust.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8080
store:
  kind: redis
  redis:
    addr: redis:6379
    ttl: 1h
ai:
  model: gpt-4o
  timeout: 10s
`), 0o600))

	cfg, err := load(path, env(map[string]string{
		"PORT":                 "9000",
		"LIVINGTRUST_PORT":     "9100",
		"OPENAI_API_KEY":       "sk-test",
		"JWT_SECRET":           "s3cret",
		"LIVINGTRUST_REDIS_DB": "2",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port, "prefixed variable wins")
	assert.Equal(t, StoreRedis, cfg.Store.Kind)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, "livingtrust:", cfg.Store.Redis.Prefix, "untouched defaults survive")
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.Equal(t, 10*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	tests := []struct {
		name string
		path string
		env  map[string]string
		want string
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), nil, "read config"},
		{"bad yaml", write("bad.yaml", "port: [1"), nil, "parse config"},
		{"unknown key", write("unknown.yaml", "prot: 1"), nil, "decode config"},
		{"bad store", "", map[string]string{"LIVINGTRUST_STORE": "mongo"}, "unknown store"},
		{"bad port", "", map[string]string{"PORT": "0"}, "invalid port"},
		{"bad duration", "", map[string]string{"LIVINGTRUST_AI_TIMEOUT": "soon"}, "decode environment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(tt.path, env(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
