// Package config loads quizforge settings from an optional .env file, an
// optional YAML file and QUIZFORGE_* environment variables, in that order
// of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizforge/internal/llm"
)

// Session record backends.
const (
	SessionFile   = "file"
	SessionMemory = "memory"
	SessionRedis  = "redis"
	SessionCookie = "cookie"
)

// Config is the complete application configuration.
type Config struct {
	// DB is a SQLite file path or a postgres:// DSN. Empty uses the
	// default data directory.
	DB string `yaml:"db"`

	// UserID identifies the terminal user in results and progress.
	UserID string `yaml:"user_id"`

	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Quiz    QuizConfig    `yaml:"quiz"`
	LLM     llm.Config    `yaml:"llm"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type SessionConfig struct {
	// Backend holds session records: file (terminal), redis or cookie
	// (HTTP), memory.
	Backend string `yaml:"backend"`

	// Dir is the FileStore directory. Empty uses <data dir>/sessions.
	Dir string `yaml:"dir"`

	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisPrefix   string        `yaml:"redis_prefix"`
	TTL           time.Duration `yaml:"ttl"`

	// CookieSecret signs session cookies. At least 32 bytes.
	CookieSecret string `yaml:"cookie_secret"`
}

type QuizConfig struct {
	// DisableAITimeBudget always uses the deterministic time formula.
	DisableAITimeBudget bool `yaml:"disable_ai_time_budget"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		UserID: "local",
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    3 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			Backend:     SessionFile,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "quizforge:",
		},
		LLM: llm.DefaultConfig(),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/quizforge/config.yaml.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "quizforge", "config.yaml"), nil
}

// Load builds the configuration. path names a YAML file that must exist;
// when empty, QUIZFORGE_CONFIG or the default path is read if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	required := path != ""
	if path == "" {
		path = os.Getenv("QUIZFORGE_CONFIG")
		required = path != ""
	}
	if path == "" {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if required || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from QUIZFORGE_* variables. When the selected
// provider has no key and no provider was chosen explicitly, the vendors'
// standard key variables are probed.
func (c *Config) ApplyEnv() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, key string) {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString(&c.DB, "QUIZFORGE_DB")
	setString(&c.UserID, "QUIZFORGE_USER")
	setString(&c.Log.Level, "QUIZFORGE_LOG_LEVEL")
	setString(&c.Log.Format, "QUIZFORGE_LOG_FORMAT")
	setString(&c.Server.Addr, "QUIZFORGE_ADDR")
	setString(&c.Session.Backend, "QUIZFORGE_SESSION_BACKEND")
	setString(&c.Session.Dir, "QUIZFORGE_SESSION_DIR")
	setString(&c.Session.RedisAddr, "QUIZFORGE_REDIS_ADDR")
	setString(&c.Session.RedisPassword, "QUIZFORGE_REDIS_PASSWORD")
	setString(&c.Session.CookieSecret, "QUIZFORGE_COOKIE_SECRET")
	setDuration(&c.Session.TTL, "QUIZFORGE_SESSION_TTL")
	if v := os.Getenv("QUIZFORGE_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Session.RedisDB = n
		}
	}
	if v := os.Getenv("QUIZFORGE_DISABLE_AI_TIMER"); v != "" {
		c.Quiz.DisableAITimeBudget, _ = strconv.ParseBool(v)
	}

	c.LLM.ApplyEnv()
	if os.Getenv("QUIZFORGE_LLM_PROVIDER") == "" && c.LLM.Validate() != nil {
		if found, ok := llm.DiscoverConfig(); ok {
			c.LLM.Provider = found.Provider
			c.LLM.Gemini.APIKey = orDefault(c.LLM.Gemini.APIKey, found.Gemini.APIKey)
			c.LLM.OpenAI.APIKey = orDefault(c.LLM.OpenAI.APIKey, found.OpenAI.APIKey)
			c.LLM.Anthropic.APIKey = orDefault(c.LLM.Anthropic.APIKey, found.Anthropic.APIKey)
			c.LLM.OpenRouter.APIKey = orDefault(c.LLM.OpenRouter.APIKey, found.OpenRouter.APIKey)
		}
	}
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// Validate checks settings that do not depend on which command runs. The
// LLM settings are checked when a provider is built.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	if c.UserID == "" {
		return errors.New("user_id must not be empty")
	}
	switch c.Session.Backend {
	case SessionFile, SessionMemory:
	case SessionRedis:
		if c.Session.RedisAddr == "" {
			return errors.New("session.redis_addr is required for the redis backend")
		}
	case SessionCookie:
		if len(c.Session.CookieSecret) < 32 {
			return errors.New("session.cookie_secret must be at least 32 bytes for the cookie backend")
		}
	default:
		return fmt.Errorf("session.backend: unknown backend %q", c.Session.Backend)
	}
	return nil
}
