package grading

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizforge/internal/content"
	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/store"
)

func strPtr(s string) *string { return &s }

func makeQuestion(i int) quiz.Question {
	opts := []string{"A", "B", "C", "D"}
	q := quiz.Question{
		ID:            fmt.Sprintf("q%d", i),
		Text:          fmt.Sprintf("Question %d?", i),
		CorrectAnswer: "B",
	}
	for _, o := range opts {
		q.Options = append(q.Options, quiz.Option{Text: o, IsCorrect: o == "B"})
	}
	return q
}

type fixture struct {
	store *store.Store
	mock  *llm.MockProvider
	svc   *Service
	quiz  *quiz.Quiz
}

func newFixture(t *testing.T, questions int) *fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "quiz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	q := &quiz.Quiz{
		ID:             "quiz-1",
		UserID:         "u1",
		SubjectID:      "dbms",
		Title:          "Database Management Systems - Easy Quiz",
		SubjectName:    "Database Management Systems",
		Difficulty:     quiz.Easy,
		TotalQuestions: questions,
		TimeLimit:      300,
	}
	for i := range questions {
		q.Questions = append(q.Questions, makeQuestion(i))
	}
	require.NoError(t, s.QuizRepo().Create(t.Context(), q))

	mock := llm.NewMockProvider()
	gen := content.New(mock, content.DefaultConfig(), nil)
	return &fixture{
		store: s,
		mock:  mock,
		svc:   NewService(s.QuizRepo(), s.ResultRepo(), s.ProgressRepo(), gen, nil),
		quiz:  q,
	}
}

func (f *fixture) submission(selected ...*string) quiz.Submission {
	answers := make([]quiz.AnswerRecord, len(selected))
	for i, s := range selected {
		answers[i] = quiz.AnswerRecord{QuestionIndex: i, SelectedOption: s}
	}
	return quiz.Submission{UserID: "u1", QuizID: f.quiz.ID, Answers: answers, TimeTaken: 95}
}

func explanationsJSON(n int) string {
	s := "["
	for i := range n {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf(`{"questionText":"Question %d?","explanation":"Because B is right (%d)."}`, i, i)
	}
	return s + "]"
}

func TestSubmit_PartialAnswers(t *testing.T) {
	f := newFixture(t, 5)
	f.mock.On(llm.PurposeExplanations, llm.MockText(explanationsJSON(5)))
	f.mock.On(llm.PurposeFeedback, llm.MockText("  Solid start on databases, review normalization next.  "))

	out, err := f.svc.Submit(t.Context(), f.submission(strPtr("B"), nil, strPtr("B"), strPtr("C"), nil))
	require.NoError(t, err)

	res := out.Result
	assert.Equal(t, 2, res.Score)
	assert.Equal(t, 40, res.Percentage)
	require.Len(t, res.Answers, 5)
	nulls := 0
	for i, a := range res.Answers {
		assert.Equal(t, i, a.QuestionIndex)
		if a.SelectedOption == nil {
			nulls++
			assert.False(t, a.IsCorrect)
		}
	}
	assert.Equal(t, 2, nulls)
	assert.Equal(t, "Solid start on databases, review normalization next.", out.Feedback)
	assert.Len(t, res.Explanations, 5)

	stored, err := f.store.ResultRepo().Get(t.Context(), out.ResultID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Score)
	assert.Len(t, stored.Answers, 5)
	assert.Equal(t, "Because B is right (4).", stored.Explanations[4].Explanation)

	q, err := f.store.QuizRepo().Get(t.Context(), f.quiz.ID)
	require.NoError(t, err)
	assert.True(t, q.IsCompleted)
}

func TestSubmit_RecomputesCorrectness(t *testing.T) {
	f := newFixture(t, 2)
	sub := f.submission(strPtr("A"), strPtr("B"))
	sub.Answers[0].IsCorrect = true

	out, err := f.svc.Submit(t.Context(), sub)
	require.NoError(t, err)
	assert.False(t, out.Result.Answers[0].IsCorrect)
	assert.True(t, out.Result.Answers[1].IsCorrect)
	assert.Equal(t, 1, out.Result.Score)
}

func TestSubmit_EnrichmentFailuresUseDefaults(t *testing.T) {
	f := newFixture(t, 2)
	f.mock.On(llm.PurposeExplanations, llm.MockText("no json here"))
	f.mock.On(llm.PurposeFeedback, llm.MockError(errors.New("provider down")))

	out, err := f.svc.Submit(t.Context(), f.submission(strPtr("B"), strPtr("B")))
	require.NoError(t, err)
	assert.Equal(t, DefaultFeedback, out.Feedback)
	assert.Empty(t, out.Result.Explanations)

	stored, err := f.store.ResultRepo().Get(t.Context(), out.ResultID)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.Percentage)
	assert.Equal(t, DefaultFeedback, stored.Feedback)
	assert.NotNil(t, stored.Explanations)
}

func TestSubmit_OneEnrichmentFailureKeepsTheOther(t *testing.T) {
	f := newFixture(t, 2)
	f.mock.On(llm.PurposeExplanations, llm.MockError(errors.New("provider down")))
	f.mock.On(llm.PurposeFeedback, llm.MockText("Perfect score, try a harder quiz next."))

	out, err := f.svc.Submit(t.Context(), f.submission(strPtr("B"), strPtr("B")))
	require.NoError(t, err)
	assert.Equal(t, "Perfect score, try a harder quiz next.", out.Feedback)
	assert.Empty(t, out.Result.Explanations)
	assert.Equal(t, 1, f.mock.CallsFor(llm.PurposeFeedback))
}

func TestSubmit_UpdatesProgress(t *testing.T) {
	f := newFixture(t, 2)

	_, err := f.svc.Submit(t.Context(), f.submission(strPtr("B"), strPtr("B")))
	require.NoError(t, err)
	p, err := f.store.ProgressRepo().FindByUser(t.Context(), "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 1, p.TotalQuizzes)
	assert.Equal(t, 2.0, p.AverageScore)

	_, err = f.svc.Submit(t.Context(), f.submission(strPtr("B"), nil))
	require.NoError(t, err)
	p, err = f.store.ProgressRepo().FindByUser(t.Context(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalQuizzes)
	assert.Equal(t, 3, p.TotalScore)
	assert.Equal(t, 1.5, p.AverageScore)

	sp := p.Subject("dbms")
	require.NotNil(t, sp)
	assert.Equal(t, 2, sp.QuizzesTaken)
	assert.Equal(t, 100, sp.BestScore)
	assert.Equal(t, 75.0, sp.AverageScore)
}

func TestSubmit_ConcurrentSubmissionsAllCounted(t *testing.T) {
	f := newFixture(t, 2)

	const n = 6
	var g errgroup.Group
	for i := range n {
		sel := strPtr("B")
		if i%2 == 1 {
			sel = strPtr("A")
		}
		g.Go(func() error {
			_, err := f.svc.Submit(context.Background(), f.submission(sel, strPtr("B")))
			return err
		})
	}
	require.NoError(t, g.Wait())

	results, err := f.store.ResultRepo().ListByUser(t.Context(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, results, n)

	p, err := f.store.ProgressRepo().FindByUser(t.Context(), "u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, n, p.TotalQuizzes)
	assert.Equal(t, 9, p.TotalScore)
	sp := p.Subject("dbms")
	require.NotNil(t, sp)
	assert.Equal(t, n, sp.QuizzesTaken)
	assert.Equal(t, 75.0, sp.AverageScore)
}

type failingProgress struct{}

func (failingProgress) FindByUser(context.Context, string) (*quiz.UserProgress, error) {
	return nil, &quiz.PersistenceError{Op: "find progress", Err: errors.New("disk full")}
}

func (failingProgress) Upsert(context.Context, *quiz.UserProgress) error {
	return errors.New("unreachable")
}

func (failingProgress) Apply(context.Context, string, func(*quiz.UserProgress)) (*quiz.UserProgress, error) {
	return nil, &quiz.PersistenceError{Op: "begin progress update", Err: errors.New("disk full")}
}

func TestSubmit_ProgressFailureIsBestEffort(t *testing.T) {
	f := newFixture(t, 1)
	gen := content.New(f.mock, content.DefaultConfig(), nil)
	svc := NewService(f.store.QuizRepo(), f.store.ResultRepo(), failingProgress{}, gen, nil)

	out, err := svc.Submit(t.Context(), f.submission(strPtr("B")))
	require.NoError(t, err)

	_, err = f.store.ResultRepo().Get(t.Context(), out.ResultID)
	assert.NoError(t, err)
}

type failingResults struct {
	store.ResultRepo
}

func (failingResults) Create(context.Context, *quiz.QuizResult) error {
	return &quiz.PersistenceError{Op: "create result", Err: errors.New("disk full")}
}

func TestSubmit_ResultPersistenceFailureIsFatal(t *testing.T) {
	f := newFixture(t, 1)
	gen := content.New(f.mock, content.DefaultConfig(), nil)
	svc := NewService(f.store.QuizRepo(), failingResults{f.store.ResultRepo()}, f.store.ProgressRepo(), gen, nil)

	_, err := svc.Submit(t.Context(), f.submission(strPtr("B")))
	var pe *quiz.PersistenceError
	require.ErrorAs(t, err, &pe)

	p, err := f.store.ProgressRepo().FindByUser(t.Context(), "u1")
	require.NoError(t, err)
	assert.Nil(t, p, "progress is only updated after the result is saved")
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t, 3)

	_, err := f.svc.Submit(t.Context(), f.submission(strPtr("B")))
	var ve *quiz.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "userAnswers", ve.Field)

	sub := f.submission(strPtr("B"), strPtr("B"), strPtr("B"))
	sub.UserID = ""
	_, err = f.svc.Submit(t.Context(), sub)
	assert.True(t, quiz.IsValidation(err))

	sub = f.submission(strPtr("B"), strPtr("B"), strPtr("B"))
	sub.QuizID = "nope"
	_, err = f.svc.Submit(t.Context(), sub)
	assert.True(t, quiz.IsNotFound(err))

	assert.Zero(t, f.mock.CallCount())
	results, err := f.store.ResultRepo().ListByUser(t.Context(), "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGrade(t *testing.T) {
	questions := []quiz.Question{makeQuestion(0), makeQuestion(1), makeQuestion(2)}
	got := Grade(questions, []quiz.AnswerRecord{
		{QuestionIndex: 7, SelectedOption: strPtr("B"), IsCorrect: false},
		{SelectedOption: strPtr("D"), IsCorrect: true},
	})

	require.Len(t, got, 3)
	assert.Equal(t, quiz.AnswerRecord{QuestionIndex: 0, SelectedOption: strPtr("B"), IsCorrect: true}, got[0])
	assert.False(t, got[1].IsCorrect)
	assert.Nil(t, got[2].SelectedOption)
	assert.False(t, got[2].IsCorrect)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, 1)

	d, err := f.svc.Dashboard(t.Context(), "u1")
	require.NoError(t, err)
	assert.Nil(t, d.Progress)
	assert.Empty(t, d.RecentResults)

	for range RecentResults + 2 {
		_, err := f.svc.Submit(t.Context(), f.submission(strPtr("B")))
		require.NoError(t, err)
	}

	d, err = f.svc.Dashboard(t.Context(), "u1")
	require.NoError(t, err)
	require.NotNil(t, d.Progress)
	assert.Equal(t, RecentResults+2, d.Progress.TotalQuizzes)
	assert.Len(t, d.RecentResults, RecentResults)

	all, err := f.svc.Results(t.Context(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, RecentResults+2)
}
