package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/quizforge/internal/assembly"
	"github.com/abhisek/quizforge/internal/config"
	"github.com/abhisek/quizforge/internal/content"
	"github.com/abhisek/quizforge/internal/grading"
	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/session"
	"github.com/abhisek/quizforge/internal/store"
)

// Services is the dependency graph shared by the CLI, the terminal client
// and the HTTP server. Build it with Open and release it with Close.
type Services struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    *store.Store
	Provider llm.Provider
	Content  *content.Generator
	Assembly *assembly.Service
	Grading  *grading.Service

	// LLMErr is set when no provider could be built. Generation then
	// fails and grading falls back to default feedback.
	LLMErr error

	redis *redis.Client
}

// OpenOptions adjusts Open.
type OpenOptions struct {
	// RequireLLM makes a missing or invalid provider configuration fatal.
	RequireLLM bool

	// LogOutput receives log records. Nil discards them.
	LogOutput io.Writer
}

// NewLogger builds the application logger from cfg.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Open opens the store, builds the provider chain and the services.
func Open(ctx context.Context, cfg *config.Config, opts OpenOptions) (*Services, error) {
	logger := NewLogger(cfg.Log, opts.LogOutput)

	dsn := cfg.DB
	if dsn == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		dsn = p
	}
	st, err := store.OpenContext(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	s := &Services{Config: cfg, Logger: logger, Store: st}

	provider, err := newProvider(ctx, cfg.LLM, st.EventRepo(), logger)
	if err != nil {
		if opts.RequireLLM {
			st.Close()
			return nil, fmt.Errorf("LLM provider not configured: %w", err)
		}
		logger.Warn("LLM provider not configured, AI features unavailable", "error", err)
		s.LLMErr = err
		provider = unavailableProvider{err: err}
	}
	s.Provider = provider

	ccfg := content.DefaultConfig()
	ccfg.DisableAITimeBudget = cfg.Quiz.DisableAITimeBudget
	s.Content = content.New(provider, ccfg, logger.With("component", "content"))
	s.Assembly = assembly.NewService(st.SubjectRepo(), st.QuizRepo(), s.Content, logger.With("component", "assembly"))
	s.Grading = grading.NewService(st.QuizRepo(), st.ResultRepo(), st.ProgressRepo(), s.Content, logger.With("component", "grading"))
	return s, nil
}

func newProvider(ctx context.Context, cfg llm.Config, events store.EventRepo, logger *slog.Logger) (llm.Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return llm.NewProvider(ctx, cfg, events, logger.With("component", "llm"))
}

// unavailableProvider fails every call with the configuration error.
type unavailableProvider struct {
	err error
}

func (p unavailableProvider) Generate(context.Context, llm.Request) (*llm.Response, error) {
	return nil, &llm.ErrProviderUnavailable{Err: p.err}
}

func (unavailableProvider) ModelID() string { return "unavailable" }

// SessionStore returns the configured session record store. The cookie
// backend is bound per HTTP request and is not available here.
func (s *Services) SessionStore() (session.Store, error) {
	c := s.Config.Session
	switch c.Backend {
	case config.SessionMemory:
		return session.NewMemoryStore(), nil
	case config.SessionRedis:
		if s.redis == nil {
			s.redis = redis.NewClient(&redis.Options{
				Addr:     c.RedisAddr,
				Password: c.RedisPassword,
				DB:       c.RedisDB,
			})
		}
		return session.NewRedisStore(s.redis, c.RedisPrefix, c.TTL), nil
	case config.SessionFile:
		dir := c.Dir
		if dir == "" {
			data, err := store.DataDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(data, "sessions")
		}
		return session.NewFileStore(dir)
	}
	return nil, fmt.Errorf("session backend %q is not available outside HTTP requests", c.Backend)
}

// NewSession creates a session controller for the configured user.
func (s *Services) NewSession(records session.Store) *session.Controller {
	return session.New(s.Assembly, records, s.Grading, session.Options{
		UserID: s.Config.UserID,
		Logger: s.Logger.With("component", "session"),
	})
}

// Close releases the store and any Redis connection.
func (s *Services) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	errs = append(errs, s.Store.Close())
	return errors.Join(errs...)
}

// SeedSubjects inserts the default subject catalogue into an empty store.
func (s *Services) SeedSubjects(ctx context.Context) (int, error) {
	n, err := store.Seed(ctx, s.Store.SubjectRepo())
	if err != nil {
		return n, fmt.Errorf("seed subjects: %w", err)
	}
	if n > 0 {
		s.Logger.Info("seeded subject catalogue", "count", n)
	}
	return n, nil
}

// ResolveSubject finds a subject by id or by short name.
func (s *Services) ResolveSubject(ctx context.Context, ref string) (*quiz.Subject, error) {
	repo := s.Store.SubjectRepo()
	subj, err := repo.GetByName(ctx, ref)
	if err == nil || !quiz.IsNotFound(err) {
		return subj, err
	}
	return repo.Get(ctx, ref)
}
