package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ClientEnvPrefix is the environment prefix read by LoadClient.
// GOTODO_SESSION_REDIS_ADDR maps to session.redis.addr.
const ClientEnvPrefix = "GOTODO_"

// Session backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// ClientConfig holds configuration for the todo CLI.
type ClientConfig struct {
	API     APIClientConfig `koanf:"api"`
	Session SessionConfig   `koanf:"session"`
	Log     LogConfig       `koanf:"log"`
	Output  string          `koanf:"output"`
}

// APIClientConfig locates the API server.
type APIClientConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

// SessionConfig selects where the auth session is persisted.
type SessionConfig struct {
	Backend string             `koanf:"backend"`
	File    string             `koanf:"file"`
	Key     string             `koanf:"key"`
	Redis   SessionRedisConfig `koanf:"redis"`
}

// SessionRedisConfig configures the redis session backend.
type SessionRedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Prefix   string        `koanf:"prefix"`
	TTL      time.Duration `koanf:"ttl"`
}

// LogConfig configures client logging.
type LogConfig struct {
	Level string `koanf:"level"`
}

// Validate checks the loaded values.
func (c ClientConfig) Validate() error {
	errs := validation.Errors{
		"api.url":         validation.Validate(c.API.URL, validation.Required),
		"session.backend": validation.Validate(c.Session.Backend, validation.Required, validation.In(BackendMemory, BackendFile, BackendRedis)),
		"output":          validation.Validate(c.Output, validation.In("table", "json")),
	}
	switch c.Session.Backend {
	case BackendFile:
		errs["session.file"] = validation.Validate(c.Session.File, validation.Required)
	case BackendRedis:
		errs["session.redis.addr"] = validation.Validate(c.Session.Redis.Addr, validation.Required)
	}
	return errs.Filter()
}

// DefaultClientDir returns ~/.gotodo, or .gotodo when the home directory is
// unknown.
func DefaultClientDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gotodo"
	}
	return filepath.Join(home, ".gotodo")
}

// DefaultClientConfigPath returns the config file read when none is given.
func DefaultClientConfigPath() string {
	return filepath.Join(DefaultClientDir(), "config.yaml")
}

func clientDefaults() map[string]any {
	return map[string]any{
		"api.url":              "http://localhost:8080",
		"api.timeout":          "30s",
		"session.backend":      BackendFile,
		"session.file":         filepath.Join(DefaultClientDir(), "session.json"),
		"session.key":          "auth-storage",
		"session.redis.prefix": "gotodo:session:",
		"log.level":            "warn",
		"output":               "table",
	}
}

// LoadClient builds the client configuration from, in increasing priority,
// built-in defaults, the YAML file at path, GOTODO_* environment variables
// and overrides (typically explicitly set CLI flags, keyed like
// "session.backend"). An empty path reads DefaultClientConfigPath if it
// exists; an explicit path must exist.
func LoadClient(path string, overrides map[string]any) (*ClientConfig, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(clientDefaults()), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	filePath := path
	if filePath == "" {
		filePath = DefaultClientConfigPath()
		if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
			filePath = ""
		}
	}
	if filePath != "" {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", filePath, err)
		}
	}

	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, ClientEnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "_", ".")
	}
	if err := k.Load(env.Provider(ClientEnvPrefix, ".", envTransformer), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(mapProvider(overrides), nil); err != nil {
			return nil, fmt.Errorf("load overrides: %w", err)
		}
	}

	var cfg ClientConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	return &cfg, nil
}

// errReadBytesNotSupported is returned by mapProvider.ReadBytes.
var errReadBytesNotSupported = errors.New("map provider does not support ReadBytes")

// mapProvider is a koanf.Provider over a flat map of dotted keys.
// Keys are unflattened so they merge like nested YAML.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errReadBytesNotSupported
}

func (m mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(m, "."), nil
}
