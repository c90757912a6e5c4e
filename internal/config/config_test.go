package config_test

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phdev/briefing/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) config.Option {
	return config.WithLookup(func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", config.WithEnvFiles(), env(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "hard", cfg.Validation.Policy)
	assert.Equal(t, config.DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Store.Redis.TTL)
	assert.Equal(t, 600*time.Millisecond, cfg.Pacing.Typing)
	assert.Equal(t, 5*time.Second, cfg.Pacing.Read)
	assert.Equal(t, config.Default(), cfg)

	target, err := cfg.HandoffTarget()
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me", target.BaseURL)
	assert.Equal(t, "America/Sao_Paulo", target.Location.String())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, "briefing.yaml", `
http:
  addr: 127.0.0.1:9000
pacing:
  read: 2s
store:
  driver: redis
  redis:
    addr: cache:6379
    db: 2
`)
	cfg, err := config.Load(path, config.WithEnvFiles(), env(map[string]string{
		"BRIEFING_REDIS_TTL":         "1h",
		"BRIEFING_REDIS_DB":          "3",
		"BRIEFING_VALIDATION_POLICY": "advisory",
		"BRIEFING_MAX_INPUT_SIZE":    "2048",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.Equal(t, "*", cfg.HTTP.AllowedOrigin, "untouched keys keep their default")
	assert.Equal(t, 2*time.Second, cfg.Pacing.Read)
	assert.Equal(t, 600*time.Millisecond, cfg.Pacing.Typing)
	assert.Equal(t, config.DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 3, cfg.Store.Redis.DB, "environment wins over the file")
	assert.Equal(t, time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, "advisory", cfg.Validation.Policy)
	assert.Equal(t, 2048, cfg.Validation.MaxInputSize)
}

func TestLoad_DotEnv(t *testing.T) {
	const key = "BRIEFING_REDIS_PREFIX"
	_, had := os.LookupEnv(key)
	require.False(t, had)
	t.Cleanup(func() { os.Unsetenv(key) })

	path := writeFile(t, ".env", key+"=test:\n")
	cfg, err := config.Load("", config.WithEnvFiles(path, filepath.Join(t.TempDir(), "missing.env")))
	require.NoError(t, err)
	assert.Equal(t, "test:", cfg.Store.Redis.Prefix)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
		want string
	}{
		{name: "unknown key", file: "http:\n  port: 80\n", want: "port"},
		{name: "bad duration", env: map[string]string{"BRIEFING_PACING_CARD": "soon"}, want: "pacing.card"},
		{name: "negative pacing", env: map[string]string{"BRIEFING_PACING_TYPING": "-1s"}, want: "pacing.typing must not be negative"},
		{name: "policy", env: map[string]string{"BRIEFING_VALIDATION_POLICY": "lenient"}, want: `unknown policy "lenient"`},
		{name: "input size", env: map[string]string{"BRIEFING_MAX_INPUT_SIZE": "0"}, want: "validation.max_input_size"},
		{name: "driver", env: map[string]string{"BRIEFING_STORE_DRIVER": "sqlite"}, want: `unknown driver "sqlite"`},
		{name: "redis addr", env: map[string]string{"BRIEFING_STORE_DRIVER": "redis", "BRIEFING_REDIS_ADDR": ""}, want: "store.redis.addr is required"},
		{name: "recipient", env: map[string]string{"BRIEFING_HANDOFF_RECIPIENT": "+55 11"}, want: "digits only"},
		{name: "timezone", env: map[string]string{"BRIEFING_HANDOFF_TIMEZONE": "Mars/Olympus"}, want: "Mars/Olympus"},
		{name: "log level", env: map[string]string{"BRIEFING_LOG_LEVEL": "loud"}, want: "log.level"},
		{name: "addr", env: map[string]string{"BRIEFING_HTTP_ADDR": "8080"}, want: "http.addr"},
		{name: "short key", env: map[string]string{"BRIEFING_ENCRYPTION_KEY": "c2hvcnQ="}, want: "store.encryption: key"},
		{name: "fallback without key", env: map[string]string{"BRIEFING_ENCRYPTION_FALLBACK": "c2hvcnQ="}, want: "without an active key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.file != "" {
				path = writeFile(t, "briefing.yaml", tt.file)
			}
			_, err := config.Load(path, config.WithEnvFiles(), env(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), config.WithEnvFiles(), env(nil))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Encryption(t *testing.T) {
	cfg := config.Default()
	enc, err := cfg.Encryption()
	require.NoError(t, err)
	assert.Nil(t, enc, "encryption is off by default")

	active := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
	old1 := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{2}, 32))
	old2 := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{3}, 32))

	cfg, err = config.Load("", config.WithEnvFiles(), env(map[string]string{
		"BRIEFING_ENCRYPTION_KEY":      active,
		"BRIEFING_ENCRYPTION_FALLBACK": old1 + "," + old2,
	}))
	require.NoError(t, err)
	enc, err = cfg.Encryption()
	require.NoError(t, err)
	require.NotNil(t, enc)
	assert.Equal(t, bytes.Repeat([]byte{1}, 32), enc.ActiveKey)
	require.Len(t, enc.FallbackKeys, 2)
	assert.Equal(t, bytes.Repeat([]byte{3}, 32), enc.FallbackKeys[1])
}
