package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/phdev/briefing/internal/logging"
	"github.com/phdev/briefing/pkg/handoff"
	"github.com/phdev/briefing/pkg/persistence/middleware"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BRIEFING_"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config is the service configuration.
type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Handoff    HandoffConfig    `mapstructure:"handoff"`
	Pacing     PacingConfig     `mapstructure:"pacing"`
	Validation ValidationConfig `mapstructure:"validation"`
	Store      StoreConfig      `mapstructure:"store"`
	Log        LogConfig        `mapstructure:"log"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
	// AllowedOrigin is echoed in Access-Control-Allow-Origin.
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

type HandoffConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Recipient string `mapstructure:"recipient"`
	Timezone  string `mapstructure:"timezone"`
}

type PacingConfig struct {
	Typing time.Duration `mapstructure:"typing"`
	Card   time.Duration `mapstructure:"card"`
	Read   time.Duration `mapstructure:"read"`
}

type ValidationConfig struct {
	// Policy is "hard" or "advisory".
	Policy string `mapstructure:"policy"`
	// MaxInputSize bounds one text answer in bytes.
	MaxInputSize int `mapstructure:"max_input_size"`
}

type StoreConfig struct {
	Driver     string           `mapstructure:"driver"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Encryption EncryptionConfig `mapstructure:"encryption"`
}

// EncryptionConfig enables at-rest encryption of sessions when Key is set.
// Keys are base64-encoded 32-byte AES keys.
type EncryptionConfig struct {
	Key          string   `mapstructure:"key"`
	FallbackKeys []string `mapstructure:"fallback_keys"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// defaults is the configuration before any file or environment is applied.
func defaults() map[string]any {
	return map[string]any{
		"http": map[string]any{
			"addr":           ":8080",
			"allowed_origin": "*",
		},
		"handoff": map[string]any{
			"base_url":  handoff.DefaultBaseURL,
			"recipient": handoff.DefaultRecipient,
			"timezone":  handoff.DefaultTimezone,
		},
		"pacing": map[string]any{
			"typing": "600ms",
			"card":   "800ms",
			"read":   "5s",
		},
		"validation": map[string]any{
			"policy":         "hard",
			"max_input_size": 4096,
		},
		"store": map[string]any{
			"driver": DriverMemory,
			"redis": map[string]any{
				"addr":   "localhost:6379",
				"db":     0,
				"ttl":    "30m",
				"prefix": "briefing:session:",
			},
			"encryption": map[string]any{
				"key":           "",
				"fallback_keys": []string{},
			},
		},
		"log": map[string]any{
			"level": "info",
		},
	}
}

// envKeys maps environment variables (without prefix) to config paths.
var envKeys = map[string]string{
	"HTTP_ADDR":           "http.addr",
	"HTTP_ALLOWED_ORIGIN": "http.allowed_origin",
	"HANDOFF_BASE_URL":    "handoff.base_url",
	"HANDOFF_RECIPIENT":   "handoff.recipient",
	"HANDOFF_TIMEZONE":    "handoff.timezone",
	"PACING_TYPING":       "pacing.typing",
	"PACING_CARD":         "pacing.card",
	"PACING_READ":         "pacing.read",
	"VALIDATION_POLICY":   "validation.policy",
	"MAX_INPUT_SIZE":      "validation.max_input_size",
	"STORE_DRIVER":        "store.driver",
	"REDIS_ADDR":          "store.redis.addr",
	"REDIS_PASSWORD":      "store.redis.password",
	"REDIS_DB":            "store.redis.db",
	"REDIS_TTL":           "store.redis.ttl",
	"REDIS_PREFIX":        "store.redis.prefix",
	"ENCRYPTION_KEY":      "store.encryption.key",
	"ENCRYPTION_FALLBACK": "store.encryption.fallback_keys",
	"LOG_LEVEL":           "log.level",
}

type loader struct {
	envFiles []string
	lookup   func(string) (string, bool)
}

// Option configures Load.
type Option func(*loader)

// WithEnvFiles sets the dotenv files read before the environment. Missing
// files are skipped.
func WithEnvFiles(files ...string) Option {
	return func(l *loader) {
		l.envFiles = files
	}
}

// WithLookup replaces os.LookupEnv, mainly for tests.
func WithLookup(fn func(string) (string, bool)) Option {
	return func(l *loader) {
		l.lookup = fn
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// not empty), dotenv files and BRIEFING_* environment variables, in that
// order of increasing precedence. The result is validated.
func Load(path string, opts ...Option) (*Config, error) {
	l := &loader{
		envFiles: []string{".env"},
		lookup:   os.LookupEnv,
	}
	for _, opt := range opts {
		opt(l)
	}

	for _, f := range l.envFiles {
		// godotenv never overrides variables already set in the process.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	raw := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		var file map[string]any
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		merge(raw, file)
	}

	for env, key := range envKeys {
		if v, ok := l.lookup(EnvPrefix + env); ok {
			set(raw, key, v)
		}
	}

	cfg, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := decode(defaults())
	if err != nil {
		panic(err)
	}
	return cfg
}

func decode(raw map[string]any) (*Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate fails fast on values the service cannot start with.
func (c *Config) Validate() error {
	var problems []string

	if _, _, err := net.SplitHostPort(c.HTTP.Addr); err != nil {
		problems = append(problems, fmt.Sprintf("http.addr: %v", err))
	}
	if _, err := c.HandoffTarget(); err != nil {
		problems = append(problems, fmt.Sprintf("handoff: %v", err))
	}
	for name, d := range map[string]time.Duration{"typing": c.Pacing.Typing, "card": c.Pacing.Card, "read": c.Pacing.Read} {
		if d < 0 {
			problems = append(problems, fmt.Sprintf("pacing.%s must not be negative", name))
		}
	}
	switch c.Validation.Policy {
	case "hard", "advisory":
	default:
		problems = append(problems, fmt.Sprintf("validation.policy: unknown policy %q", c.Validation.Policy))
	}
	if c.Validation.MaxInputSize <= 0 {
		problems = append(problems, "validation.max_input_size: must be positive")
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Store.Redis.Addr == "" {
			problems = append(problems, "store.redis.addr is required for the redis driver")
		}
		if c.Store.Redis.TTL < 0 {
			problems = append(problems, "store.redis.ttl must not be negative")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver: unknown driver %q", c.Store.Driver))
	}
	if _, err := c.Encryption(); err != nil {
		problems = append(problems, fmt.Sprintf("store.encryption: %v", err))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("log.level: %v", err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// HandoffTarget resolves the messaging target.
func (c *Config) HandoffTarget() (handoff.Target, error) {
	return handoff.NewTarget(c.Handoff.BaseURL, c.Handoff.Recipient, c.Handoff.Timezone)
}

// Encryption parses the session encryption keys. It returns nil when
// encryption is disabled.
func (c *Config) Encryption() (*middleware.EncryptionConfig, error) {
	enc := c.Store.Encryption
	if enc.Key == "" {
		if len(enc.FallbackKeys) > 0 {
			return nil, errors.New("fallback_keys set without an active key")
		}
		return nil, nil
	}
	active, err := middleware.ParseKey(enc.Key)
	if err != nil {
		return nil, fmt.Errorf("key: %w", err)
	}
	out := &middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range enc.FallbackKeys {
		if strings.TrimSpace(k) == "" {
			continue
		}
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
		}
		out.FallbackKeys = append(out.FallbackKeys, key)
	}
	return out, nil
}

// merge copies src into dst, descending into nested maps.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				merge(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

// set writes v at a dotted path, creating intermediate maps.
func set(m map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = v
}
