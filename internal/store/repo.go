package store

import (
	"context"
	"time"

	"github.com/abhisek/quizforge/internal/quiz"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // id > After
	Before  int64     // id < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match when set
}

// SubjectRepo manages the subject catalogue.
type SubjectRepo interface {
	// Create inserts a subject. A duplicate name is a *quiz.ValidationError.
	Create(ctx context.Context, s *quiz.Subject) error

	// Get returns the subject or a *quiz.NotFoundError.
	Get(ctx context.Context, id string) (*quiz.Subject, error)

	// GetByName looks a subject up by its short code, case-insensitively.
	GetByName(ctx context.Context, name string) (*quiz.Subject, error)

	// ListActive returns active subjects ordered by name.
	ListActive(ctx context.Context) ([]quiz.Subject, error)

	// Count returns the number of subjects.
	Count(ctx context.Context) (int, error)
}

// QuizRepo persists generated quizzes.
type QuizRepo interface {
	Create(ctx context.Context, q *quiz.Quiz) error

	// Get returns the quiz or a *quiz.NotFoundError.
	Get(ctx context.Context, id string) (*quiz.Quiz, error)

	// ListByUser returns the user's quizzes, newest first.
	ListByUser(ctx context.Context, userID string) ([]quiz.Quiz, error)

	// MarkCompleted sets is_completed on the quiz.
	MarkCompleted(ctx context.Context, id string) error

	Delete(ctx context.Context, id string) error
}

// ResultRepo persists graded results. Results are immutable.
type ResultRepo interface {
	Create(ctx context.Context, r *quiz.QuizResult) error

	// Get returns the result or a *quiz.NotFoundError.
	Get(ctx context.Context, id string) (*quiz.QuizResult, error)

	// ListByUser returns the user's results, newest first. A positive limit
	// caps the count.
	ListByUser(ctx context.Context, userID string, limit int) ([]quiz.QuizResult, error)
}

// ProgressRepo persists the per-user progress aggregate.
type ProgressRepo interface {
	// FindByUser returns the user's progress, or nil if none exists.
	FindByUser(ctx context.Context, userID string) (*quiz.UserProgress, error)

	// Upsert inserts or replaces the user's progress row.
	Upsert(ctx context.Context, p *quiz.UserProgress) error

	// Apply runs fn on the user's current progress (zero-valued for a new
	// user) and stores the result atomically. Returns the stored progress.
	Apply(ctx context.Context, userID string, fn func(*quiz.UserProgress)) (*quiz.UserProgress, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
