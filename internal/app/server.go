package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/abhisek/quizforge/internal/api"
	"github.com/abhisek/quizforge/internal/config"
	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/session"
)

// MinCookieSecret is the shortest accepted cookie signing secret.
const MinCookieSecret = 32

// APIServer builds the HTTP API on top of the services.
func (s *Services) APIServer() (*api.Server, error) {
	sessions, err := s.httpSessions()
	if err != nil {
		return nil, err
	}
	return api.New(api.Deps{
		Subjects: s.Store.SubjectRepo(),
		Assembly: s.Assembly,
		Grading:  s.Grading,
		Content:  s.Content,
		Sessions: sessions,
		Logger:   s.Logger.With("component", "api"),
	}), nil
}

func (s *Services) httpSessions() (api.SessionStoreFunc, error) {
	if s.Config.Session.Backend != config.SessionCookie {
		records, err := s.SessionStore()
		if err != nil {
			return nil, err
		}
		return api.StaticSessionStore(records), nil
	}

	secret := s.Config.Session.CookieSecret
	if len(secret) < MinCookieSecret {
		return nil, errors.New("cookie session backend needs QUIZFORGE_COOKIE_SECRET of at least 32 bytes")
	}
	backend := session.NewCookieBackend([]byte(secret))
	questions := func(ctx context.Context, quizID string) ([]quiz.Question, error) {
		q, err := s.Assembly.Get(ctx, quizID)
		if err != nil {
			return nil, err
		}
		return q.Questions, nil
	}
	return func(w http.ResponseWriter, r *http.Request) session.Store {
		return session.NewCookieStore(backend, w, r).WithQuestions(questions)
	}, nil
}

// ServeOptions maps the server configuration to api.ServeOptions.
func (s *Services) ServeOptions() api.ServeOptions {
	c := s.Config.Server
	return api.ServeOptions{
		Addr:            c.Addr,
		ReadTimeout:     c.ReadTimeout,
		WriteTimeout:    c.WriteTimeout,
		ShutdownTimeout: c.ShutdownTimeout,
	}
}
