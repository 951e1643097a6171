// Package grading scores a submitted session, enriches it with
// explanations and feedback, and folds it into the user's progress.
package grading

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizforge/internal/content"
	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/store"
)

// DefaultFeedback replaces feedback the provider failed to produce.
const DefaultFeedback = "Great effort! Keep practicing to improve your skills."

// RecentResults is the number of results shown on the dashboard.
const RecentResults = 5

// Generator is the part of the content generator grading depends on.
type Generator interface {
	GenerateExplanations(ctx context.Context, questions []quiz.Question, answers []*string) ([]content.ExplanationItem, error)
	GenerateFeedback(ctx context.Context, summary content.ResultSummary, subject string) (string, error)
}

// Service grades submissions. It is safe for concurrent use.
type Service struct {
	quizzes  store.QuizRepo
	results  store.ResultRepo
	progress store.ProgressRepo
	gen      Generator
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a grading service. A nil logger uses slog.Default.
func NewService(quizzes store.QuizRepo, results store.ResultRepo, progress store.ProgressRepo, gen Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		quizzes:  quizzes,
		results:  results,
		progress: progress,
		gen:      gen,
		logger:   logger,
		now:      time.Now,
	}
}

// outcome is the result of one best-effort call.
type outcome[T any] struct {
	value T
	err   error
}

func (o outcome[T]) or(fallback T) T {
	if o.err != nil {
		return fallback
	}
	return o.value
}

// Submit grades sub against the stored quiz and persists the result.
// Explanations, feedback, the progress update and marking the quiz
// completed are best-effort; only validation and the result insert can fail
// the call.
func (s *Service) Submit(ctx context.Context, sub quiz.Submission) (*quiz.Outcome, error) {
	if strings.TrimSpace(sub.UserID) == "" {
		return nil, &quiz.ValidationError{Field: "userId", Message: "is required"}
	}
	if strings.TrimSpace(sub.QuizID) == "" {
		return nil, &quiz.ValidationError{Field: "quizId", Message: "is required"}
	}
	if sub.TimeTaken < 0 {
		return nil, &quiz.ValidationError{Field: "timeTaken", Message: "must not be negative"}
	}

	q, err := s.quizzes.Get(ctx, sub.QuizID)
	if err != nil {
		return nil, err
	}
	if len(sub.Answers) != q.TotalQuestions || len(q.Questions) != q.TotalQuestions {
		return nil, &quiz.ValidationError{
			Field:   "userAnswers",
			Message: fmt.Sprintf("expected %d answers, got %d", q.TotalQuestions, len(sub.Answers)),
		}
	}

	answers := Grade(q.Questions, sub.Answers)
	score := quiz.Score(answers)
	res := &quiz.QuizResult{
		ID:         uuid.NewString(),
		UserID:     sub.UserID,
		QuizID:     q.ID,
		SubjectID:  q.SubjectID,
		Answers:    answers,
		Score:      score,
		Percentage: quiz.Percentage(score, len(answers)),
		TimeTaken:  sub.TimeTaken,
	}

	subject := sub.SubjectName
	if subject == "" {
		subject = q.SubjectName
	}
	explanations, feedback := s.enrich(ctx, q, res, subject)
	res.Explanations = explanations
	res.Feedback = feedback

	if err := s.results.Create(ctx, res); err != nil {
		return nil, err
	}
	s.logger.Info("quiz graded",
		"result_id", res.ID, "quiz_id", q.ID, "user_id", res.UserID,
		"score", res.Score, "percentage", res.Percentage, "time_taken", res.TimeTaken)

	if err := s.recordProgress(ctx, res); err != nil {
		s.logger.Warn("progress update failed", "result_id", res.ID, "user_id", res.UserID, "error", err)
	}
	if err := s.quizzes.MarkCompleted(ctx, q.ID); err != nil {
		s.logger.Warn("mark quiz completed failed", "quiz_id", q.ID, "error", err)
	}

	return &quiz.Outcome{ResultID: res.ID, Feedback: res.Feedback, Result: res}, nil
}

// Grade rebuilds the answer sequence against questions: one record per
// question, in order, with IsCorrect derived from the question's correct
// answer rather than trusted from the caller.
func Grade(questions []quiz.Question, answers []quiz.AnswerRecord) []quiz.AnswerRecord {
	out := make([]quiz.AnswerRecord, len(questions))
	for i, q := range questions {
		var selected *string
		if i < len(answers) && answers[i].SelectedOption != nil {
			v := *answers[i].SelectedOption
			selected = &v
		}
		out[i] = quiz.AnswerRecord{
			QuestionIndex:  i,
			SelectedOption: selected,
			IsCorrect:      q.IsCorrect(selected),
		}
	}
	return out
}

// enrich requests explanations and feedback concurrently and substitutes
// defaults for whichever fails.
func (s *Service) enrich(ctx context.Context, q *quiz.Quiz, res *quiz.QuizResult, subject string) ([]quiz.Explanation, string) {
	selections := make([]*string, len(res.Answers))
	for i, a := range res.Answers {
		selections[i] = a.SelectedOption
	}
	summary := content.ResultSummary{
		Score:          res.Score,
		TotalQuestions: len(res.Answers),
		Percentage:     res.Percentage,
		TimeSpent:      res.TimeTaken,
	}

	// Both calls are best-effort; neither error cancels the other.
	var (
		g        errgroup.Group
		explain  outcome[[]quiz.Explanation]
		feedback outcome[string]
	)
	g.Go(func() error {
		items, err := s.gen.GenerateExplanations(ctx, q.Questions, selections)
		explain = outcome[[]quiz.Explanation]{value: toExplanations(items), err: err}
		return nil
	})
	g.Go(func() error {
		text, err := s.gen.GenerateFeedback(ctx, summary, subject)
		feedback = outcome[string]{value: text, err: err}
		return nil
	})
	_ = g.Wait()

	if explain.err != nil {
		s.logger.Warn("explanations unavailable", "quiz_id", q.ID, "result_id", res.ID, "error", explain.err)
	}
	if feedback.err != nil {
		s.logger.Warn("feedback unavailable", "quiz_id", q.ID, "result_id", res.ID, "error", feedback.err)
	}
	return explain.or([]quiz.Explanation{}), feedback.or(DefaultFeedback)
}

func toExplanations(items []content.ExplanationItem) []quiz.Explanation {
	out := make([]quiz.Explanation, len(items))
	for i, it := range items {
		out[i] = quiz.Explanation{QuestionIndex: it.QuestionIndex, Explanation: it.Explanation}
	}
	return out
}

func (s *Service) recordProgress(ctx context.Context, res *quiz.QuizResult) error {
	at := s.now().UTC()
	_, err := s.progress.Apply(ctx, res.UserID, func(p *quiz.UserProgress) {
		p.Record(res, at)
	})
	return err
}

// Result returns a stored result.
func (s *Service) Result(ctx context.Context, id string) (*quiz.QuizResult, error) {
	return s.results.Get(ctx, id)
}

// Results returns the user's results, newest first.
func (s *Service) Results(ctx context.Context, userID string, limit int) ([]quiz.QuizResult, error) {
	return s.results.ListByUser(ctx, userID, limit)
}

// Dashboard is a user's progress plus their most recent results.
type Dashboard struct {
	Progress      *quiz.UserProgress `json:"progress"`
	RecentResults []quiz.QuizResult  `json:"recentResults"`
}

// Dashboard loads the user's progress and RecentResults latest results.
// Progress is nil for a user with no results.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	p, err := s.progress.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.results.ListByUser(ctx, userID, RecentResults)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []quiz.QuizResult{}
	}
	return &Dashboard{Progress: p, RecentResults: recent}, nil
}
