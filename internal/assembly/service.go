// Package assembly turns a quiz generation request into a persisted quiz.
package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizforge/internal/content"
	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/store"
)

// Generator is the part of the content generator assembly depends on.
type Generator interface {
	GenerateQuestions(ctx context.Context, subject string, difficulty quiz.Difficulty, count int) ([]quiz.Question, error)
	EstimateTimeBudget(ctx context.Context, difficulty quiz.Difficulty, count int, subject string) content.TimeBudget
}

// Request asks for a new quiz.
type Request struct {
	UserID        string `json:"userId"`
	SubjectID     string `json:"subjectId"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"questionCount"`
}

// Result is a persisted quiz plus how its time limit was chosen.
type Result struct {
	Quiz               *quiz.Quiz         `json:"quiz"`
	TimerInfo          content.TimeBudget `json:"timerInfo"`
	QuestionsGenerated int                `json:"questionsGenerated"`
}

// Service assembles quizzes. It is safe for concurrent use.
type Service struct {
	subjects store.SubjectRepo
	quizzes  store.QuizRepo
	gen      Generator
	logger   *slog.Logger
}

// NewService creates an assembly service. A nil logger uses slog.Default.
func NewService(subjects store.SubjectRepo, quizzes store.QuizRepo, gen Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{subjects: subjects, quizzes: quizzes, gen: gen, logger: logger}
}

// Validate checks a request and returns its parsed difficulty.
func (r Request) Validate() (quiz.Difficulty, error) {
	if strings.TrimSpace(r.UserID) == "" {
		return "", &quiz.ValidationError{Field: "userId", Message: "is required"}
	}
	if strings.TrimSpace(r.SubjectID) == "" {
		return "", &quiz.ValidationError{Field: "subjectId", Message: "is required"}
	}
	d, err := quiz.ParseDifficulty(r.Difficulty)
	if err != nil {
		return "", err
	}
	if r.QuestionCount < quiz.MinQuestions || r.QuestionCount > quiz.MaxQuestions {
		return "", &quiz.ValidationError{
			Field:   "questionCount",
			Message: fmt.Sprintf("must be between %d and %d", quiz.MinQuestions, quiz.MaxQuestions),
		}
	}
	return d, nil
}

// Generate validates req, generates questions and a time budget
// concurrently, and persists the quiz. Nothing is persisted unless exactly
// QuestionCount valid questions were produced.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	difficulty, err := req.Validate()
	if err != nil {
		return nil, err
	}
	subj, err := s.subject(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}

	var (
		questions []quiz.Question
		budget    content.TimeBudget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		qs, err := s.gen.GenerateQuestions(gctx, subj.Name, difficulty, req.QuestionCount)
		if err != nil {
			return err
		}
		questions = qs
		return nil
	})
	g.Go(func() error {
		budget = s.gen.EstimateTimeBudget(gctx, difficulty, req.QuestionCount, subj.Name)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("quiz generation failed",
			"subject", subj.Name, "difficulty", difficulty, "count", req.QuestionCount, "error", err)
		return nil, err
	}

	switch {
	case len(questions) == 0:
		return nil, quiz.ErrGenerationFailed
	case len(questions) < req.QuestionCount:
		return nil, fmt.Errorf("%w: got %d of %d questions", quiz.ErrGenerationFailed, len(questions), req.QuestionCount)
	case len(questions) > req.QuestionCount:
		questions = questions[:req.QuestionCount]
	}

	q := &quiz.Quiz{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		SubjectID:      subj.ID,
		Title:          fmt.Sprintf("%s - %s Quiz", subj.FullName, difficulty),
		SubjectName:    subj.FullName,
		Difficulty:     difficulty,
		TotalQuestions: len(questions),
		TimeLimit:      budget.Total,
		Questions:      questions,
	}
	if err := s.quizzes.Create(ctx, q); err != nil {
		return nil, err
	}

	s.logger.Info("quiz generated",
		"quiz_id", q.ID, "subject", subj.Name, "difficulty", difficulty,
		"questions", q.TotalQuestions, "time_limit", q.TimeLimit, "time_source", budget.Source)
	return &Result{Quiz: q, TimerInfo: budget, QuestionsGenerated: len(questions)}, nil
}

// TimeBudget estimates a time limit for a quiz on the given subject
// without generating it.
func (s *Service) TimeBudget(ctx context.Context, subjectID, difficulty string, count int) (content.TimeBudget, error) {
	d, err := quiz.ParseDifficulty(difficulty)
	if err != nil {
		return content.TimeBudget{}, err
	}
	if count < quiz.MinQuestions || count > quiz.MaxQuestions {
		return content.TimeBudget{}, &quiz.ValidationError{
			Field:   "questionCount",
			Message: fmt.Sprintf("must be between %d and %d", quiz.MinQuestions, quiz.MaxQuestions),
		}
	}
	subj, err := s.subjects.Get(ctx, subjectID)
	if err != nil {
		return content.TimeBudget{}, err
	}
	return s.gen.EstimateTimeBudget(ctx, d, count, subj.Name), nil
}

func (s *Service) subject(ctx context.Context, id string) (*quiz.Subject, error) {
	subj, err := s.subjects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if missing := subj.MissingFields(); len(missing) > 0 {
		return nil, &quiz.IncompleteSubjectError{SubjectID: id, Missing: missing}
	}
	return subj, nil
}

// Get returns a quiz by id.
func (s *Service) Get(ctx context.Context, id string) (*quiz.Quiz, error) {
	return s.quizzes.Get(ctx, id)
}

// ListByUser returns the user's quizzes, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]quiz.Quiz, error) {
	return s.quizzes.ListByUser(ctx, userID)
}

// Complete marks a quiz completed and returns it.
func (s *Service) Complete(ctx context.Context, id string) (*quiz.Quiz, error) {
	if err := s.quizzes.MarkCompleted(ctx, id); err != nil {
		return nil, err
	}
	return s.quizzes.Get(ctx, id)
}

// Delete removes a quiz.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.quizzes.Delete(ctx, id)
}
