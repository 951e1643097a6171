// Package session drives one user's timed attempt at a quiz: loading and
// resuming, answering, navigation, expiry and a single guarded submission.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizforge/internal/quiz"
)

var (
	ErrInvalidQuizID      = errors.New("invalid quiz id")
	ErrNotActive          = errors.New("session is not active")
	ErrNothingAnswered    = errors.New("answer at least one question before submitting")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrUnknownQuestion    = errors.New("unknown question")
	ErrUnknownOption      = errors.New("option is not one of the question's options")
)

// QuizSource loads quizzes.
type QuizSource interface {
	Get(ctx context.Context, id string) (*quiz.Quiz, error)
}

// Submitter grades a finished session.
type Submitter interface {
	Submit(ctx context.Context, sub quiz.Submission) (*quiz.Outcome, error)
}

// Options configures a Controller.
type Options struct {
	UserID string
	Clock  Clock
	Logger *slog.Logger
}

// Controller is the session state machine. All methods are safe for
// concurrent use; the one-second tick and user actions may arrive from
// different goroutines.
type Controller struct {
	quizzes   QuizSource
	store     Store
	submitter Submitter
	clock     Clock
	logger    *slog.Logger
	userID    string

	mu        sync.Mutex
	state     State
	quiz      *quiz.Quiz
	start     time.Time
	answers   map[string]string
	index     int
	remaining int
	expired   bool
	inFlight  bool
	outcome   *quiz.Outcome
	err       error
}

// New creates an idle Controller.
func New(quizzes QuizSource, store Store, submitter Submitter, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		quizzes:   quizzes,
		store:     store,
		submitter: submitter,
		clock:     opts.Clock,
		logger:    opts.Logger,
		userID:    opts.UserID,
		answers:   map[string]string{},
	}
}

// Load fetches the quiz and either resumes the stored session for it or
// starts and persists a fresh one. A malformed id or a failed fetch leaves
// the controller Failed.
func (c *Controller) Load(ctx context.Context, quizID string) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}
	c.reset()
	c.state = StateLoading
	c.mu.Unlock()

	if _, err := uuid.Parse(quizID); err != nil {
		return c.fail(fmt.Errorf("%w: %q", ErrInvalidQuizID, quizID))
	}
	q, err := c.quizzes.Get(ctx, quizID)
	if err != nil {
		return c.fail(err)
	}

	rec, err := c.store.Get(ctx, Key(quizID))
	if err != nil {
		c.logger.Warn("read session record failed, starting fresh", "quiz_id", quizID, "error", err)
		rec = nil
	}
	if rec != nil && rec.QuizID != quizID {
		rec = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.quiz = q
	if rec != nil {
		c.start = rec.Started()
		for qid, opt := range rec.Answers {
			if i := q.QuestionIndex(qid); i >= 0 && q.Questions[i].HasOption(opt) {
				c.answers[qid] = opt
			}
		}
		c.index = c.clampIndex(rec.CurrentQuestionIndex)
		c.logger.Info("session resumed", "quiz_id", quizID, "answered", len(c.answers))
	} else {
		c.start = c.clock.Now()
		c.persist(ctx)
		c.logger.Info("session started", "quiz_id", quizID, "time_limit", q.TimeLimit)
	}
	c.remaining = c.computeRemaining()
	c.state = StateActive
	return nil
}

func (c *Controller) fail(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateFailed
	c.err = err
	return err
}

func (c *Controller) reset() {
	c.quiz = nil
	c.start = time.Time{}
	c.answers = map[string]string{}
	c.index = 0
	c.remaining = 0
	c.expired = false
	c.outcome = nil
	c.err = nil
}

// SelectAnswer records option for the question. Selecting again overwrites.
// The change is persisted immediately.
func (c *Controller) SelectAnswer(ctx context.Context, questionID, option string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive {
		return ErrNotActive
	}
	i := c.quiz.QuestionIndex(questionID)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}
	if !c.quiz.Questions[i].HasOption(option) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}
	if c.answers[questionID] == option {
		return nil
	}
	c.answers[questionID] = option
	c.persist(ctx)
	return nil
}

// Next moves to the following question and returns the new index.
func (c *Controller) Next(ctx context.Context) int {
	return c.move(ctx, func(i int) int { return i + 1 })
}

// Previous moves to the preceding question and returns the new index.
func (c *Controller) Previous(ctx context.Context) int {
	return c.move(ctx, func(i int) int { return i - 1 })
}

// JumpTo moves to index, clamped to the question range.
func (c *Controller) JumpTo(ctx context.Context, index int) int {
	return c.move(ctx, func(int) int { return index })
}

func (c *Controller) move(ctx context.Context, to func(int) int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive {
		return c.index
	}
	next := c.clampIndex(to(c.index))
	if next != c.index {
		c.index = next
		c.persist(ctx)
	}
	return c.index
}

// Tick advances the timer. When the time runs out the session expires and
// is submitted, whether or not anything was answered. Ticks outside an
// active session are ignored and return nil, nil.
func (c *Controller) Tick(ctx context.Context) (*quiz.Outcome, error) {
	c.mu.Lock()
	if c.expired || (c.state != StateActive && c.state != StateFailed) || c.quiz == nil {
		c.mu.Unlock()
		return nil, nil
	}
	c.remaining = c.computeRemaining()
	if c.remaining > 0 {
		c.mu.Unlock()
		return nil, nil
	}
	c.expired = true
	c.state = StateExpired
	c.logger.Info("session expired", "quiz_id", c.quiz.ID, "answered", len(c.answers))
	return c.submitLocked(ctx)
}

// Submit hands the session to the grader. It needs at least one answer
// unless the session has expired, and is rejected while another
// submission is in flight. On failure the stored record is kept so the
// submission can be retried.
func (c *Controller) Submit(ctx context.Context) (*quiz.Outcome, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if c.state != StateActive && c.state != StateFailed || c.quiz == nil {
		c.mu.Unlock()
		return nil, ErrNotActive
	}
	if !c.expired && len(c.answers) == 0 {
		c.mu.Unlock()
		return nil, ErrNothingAnswered
	}
	return c.submitLocked(ctx)
}

// submitLocked is entered with c.mu held and releases it while the
// submitter runs.
func (c *Controller) submitLocked(ctx context.Context) (*quiz.Outcome, error) {
	c.inFlight = true
	c.state = StateSubmitting
	sub := c.submission()
	c.mu.Unlock()

	out, err := c.submitter.Submit(ctx, sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		c.state = StateFailed
		c.err = err
		c.logger.Warn("session submission failed", "quiz_id", sub.QuizID, "error", err)
		return nil, err
	}
	c.state = StateCompleted
	c.outcome = out
	c.err = nil
	if rerr := c.store.Remove(ctx, Key(sub.QuizID)); rerr != nil {
		c.logger.Warn("remove session record failed", "quiz_id", sub.QuizID, "error", rerr)
	}
	return out, nil
}

// submission builds the full answer sequence; unanswered questions carry a
// nil selection.
func (c *Controller) submission() quiz.Submission {
	answers := make([]quiz.AnswerRecord, len(c.quiz.Questions))
	for i, q := range c.quiz.Questions {
		var selected *string
		if opt, ok := c.answers[q.ID]; ok {
			selected = &opt
		}
		answers[i] = quiz.AnswerRecord{
			QuestionIndex:  i,
			SelectedOption: selected,
			IsCorrect:      q.IsCorrect(selected),
		}
	}
	return quiz.Submission{
		UserID:      c.userID,
		QuizID:      c.quiz.ID,
		SubjectID:   c.quiz.SubjectID,
		SubjectName: c.quiz.SubjectName,
		Questions:   c.quiz.Questions,
		Answers:     answers,
		TimeTaken:   c.elapsed(),
	}
}

// Abandon discards the session and its stored record.
func (c *Controller) Abandon(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return ErrSubmissionInFlight
	}
	if c.quiz != nil {
		if err := c.store.Remove(ctx, Key(c.quiz.ID)); err != nil {
			return err
		}
	}
	c.reset()
	c.state = StateIdle
	return nil
}

// persist writes the session record. Failures are logged; the session
// continues in memory.
func (c *Controller) persist(ctx context.Context) {
	rec := &Record{
		QuizID:               c.quiz.ID,
		StartTime:            c.start.UnixMilli(),
		Answers:              maps.Clone(c.answers),
		CurrentQuestionIndex: c.index,
	}
	if err := c.store.Set(ctx, Key(c.quiz.ID), rec); err != nil {
		c.logger.Warn("write session record failed", "quiz_id", c.quiz.ID, "error", err)
	}
}

func (c *Controller) elapsed() int {
	return max(0, int(c.clock.Now().Sub(c.start)/time.Second))
}

func (c *Controller) computeRemaining() int {
	return max(0, c.quiz.TimeLimit-c.elapsed())
}

func (c *Controller) clampIndex(i int) int {
	return max(0, min(i, len(c.quiz.Questions)-1))
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Quiz returns the loaded quiz, or nil.
func (c *Controller) Quiz() *quiz.Quiz {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quiz
}

// Current returns the question at the current index.
func (c *Controller) Current() (quiz.Question, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.quiz == nil || len(c.quiz.Questions) == 0 {
		return quiz.Question{}, 0, false
	}
	return c.quiz.Questions[c.index], c.index, true
}

// Answer returns the selected option for a question.
func (c *Controller) Answer(questionID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	opt, ok := c.answers[questionID]
	return opt, ok
}

// Remaining returns the seconds left as of the last Load or Tick.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Outcome returns the grading outcome once Completed.
func (c *Controller) Outcome() *quiz.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// Err returns the error that moved the session to Failed.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Progress returns a display snapshot.
func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := Progress{
		State:     c.state,
		Answered:  len(c.answers),
		Current:   c.index,
		Remaining: c.remaining,
		Urgency:   UrgencyFor(c.remaining),
	}
	if c.quiz != nil {
		p.Total = len(c.quiz.Questions)
	}
	return p
}
