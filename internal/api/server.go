// Package api serves quizforge over HTTP as JSON. Every response is an
// envelope of the form {"message": ..., "payload": ...}.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/abhisek/quizforge/internal/assembly"
	"github.com/abhisek/quizforge/internal/content"
	"github.com/abhisek/quizforge/internal/grading"
	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/session"
	"github.com/abhisek/quizforge/internal/store"
)

// ContentGenerator is the part of the content generator exposed directly.
type ContentGenerator interface {
	GenerateExplanations(ctx context.Context, questions []quiz.Question, answers []*string) ([]content.ExplanationItem, error)
	GenerateFeedback(ctx context.Context, summary content.ResultSummary, subject string) (string, error)
}

// SessionStoreFunc returns the session record store for one request.
type SessionStoreFunc func(w http.ResponseWriter, r *http.Request) session.Store

// StaticSessionStore serves every request from the same store.
func StaticSessionStore(s session.Store) SessionStoreFunc {
	return func(http.ResponseWriter, *http.Request) session.Store { return s }
}

// Deps are the services behind the API.
type Deps struct {
	Subjects store.SubjectRepo
	Assembly *assembly.Service
	Grading  *grading.Service
	Content  ContentGenerator
	Sessions SessionStoreFunc
	Logger   *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	deps   Deps
	logger *slog.Logger
	engine *gin.Engine
}

// New builds the router.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Server{deps: deps, logger: deps.Logger}

	engine := gin.New()
	engine.Use(accessLog(s.logger), recovery(s.logger))
	s.routes(engine)
	s.engine = engine
	return s
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		respond(c, http.StatusOK, "ok", nil)
	})

	v1 := r.Group("/api/v1")

	subjects := v1.Group("/subjects")
	subjects.GET("", s.listSubjects)
	subjects.POST("", s.createSubject)
	subjects.GET("/:id", s.getSubject)

	ai := v1.Group("/ai")
	ai.POST("/generate-quiz", s.generateQuiz)
	ai.POST("/calculate-timer", s.calculateTimer)
	ai.POST("/generate-explanations", s.generateExplanations)
	ai.POST("/generate-feedback", s.generateFeedback)

	quizzes := v1.Group("/quizzes")
	quizzes.GET("/:id", s.getQuiz)
	quizzes.PUT("/:id/complete", s.completeQuiz)
	quizzes.DELETE("/:id", s.deleteQuiz)

	results := v1.Group("/results")
	results.POST("", s.submitResult)
	results.GET("/:id", s.getResult)

	users := v1.Group("/users/:userId")
	users.GET("/quizzes", s.listUserQuizzes)
	users.GET("/results", s.listUserResults)
	users.GET("/dashboard", s.dashboard)

	sessions := v1.Group("/sessions")
	sessions.GET("/:quizId", s.getSession)
	sessions.PUT("/:quizId", s.putSession)
	sessions.DELETE("/:quizId", s.deleteSession)
}

// Handler returns the instrumented HTTP handler.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.engine, "quizforge.api")
}

// ServeOptions configures Serve.
type ServeOptions struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Serve listens on opts.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, opts ServeOptions) error {
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
