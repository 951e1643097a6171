package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/router"
	"github.com/abhisek/quizforge/internal/screen"
	sess "github.com/abhisek/quizforge/internal/session"
)

type quizSource struct{ q *quiz.Quiz }

func (s quizSource) Get(_ context.Context, id string) (*quiz.Quiz, error) {
	if s.q == nil || s.q.ID != id {
		return nil, &quiz.NotFoundError{Kind: "quiz", ID: id}
	}
	return s.q, nil
}

type submitter struct {
	subs []quiz.Submission
	err  error
}

func (s *submitter) Submit(_ context.Context, sub quiz.Submission) (*quiz.Outcome, error) {
	s.subs = append(s.subs, sub)
	if s.err != nil {
		return nil, s.err
	}
	return &quiz.Outcome{ResultID: "r1", Feedback: "Nice work on this one!"}, nil
}

type resultScreen struct{ out *quiz.Outcome }

func (r *resultScreen) Init() tea.Cmd                           { return nil }
func (r *resultScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return r, nil }
func (r *resultScreen) View(int, int) string                    { return "result" }
func (r *resultScreen) Title() string                           { return "Results" }

type harness struct {
	screen *SessionScreen
	ctrl   *sess.Controller
	clock  *sess.ManualClock
	store  *sess.MemoryStore
	sub    *submitter
	quiz   *quiz.Quiz
}

func newHarness(t *testing.T, questions, timeLimit int) *harness {
	t.Helper()
	q := &quiz.Quiz{
		ID:             uuid.NewString(),
		Title:          "Operating Systems - Easy Quiz",
		SubjectName:    "Operating Systems",
		Difficulty:     quiz.Easy,
		TotalQuestions: questions,
		TimeLimit:      timeLimit,
	}
	for i := range questions {
		qq := quiz.Question{ID: fmt.Sprintf("q%d", i), Text: fmt.Sprintf("Question %d?", i), CorrectAnswer: "B"}
		for _, o := range []string{"A", "B", "C", "D"} {
			qq.Options = append(qq.Options, quiz.Option{Text: o, IsCorrect: o == "B"})
		}
		q.Questions = append(q.Questions, qq)
	}

	h := &harness{
		clock: sess.NewManualClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
		store: sess.NewMemoryStore(),
		sub:   &submitter{},
		quiz:  q,
	}
	h.ctrl = sess.New(quizSource{q}, h.store, h.sub, sess.Options{UserID: "u1", Clock: h.clock})
	h.screen = New(h.ctrl, q.ID, func(_ *quiz.Quiz, out *quiz.Outcome) screen.Screen {
		return &resultScreen{out: out}
	})
	h.screen.Update(h.screen.Init()())
	require.Equal(t, sess.StateActive, h.ctrl.State())
	return h
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func (h *harness) press(msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, m := range msgs {
		_, cmd = h.screen.Update(m)
	}
	return cmd
}

// run executes cmd and feeds its message back into the screen.
func (h *harness) run(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	_, next := h.screen.Update(cmd())
	return next
}

func TestNumberKeySelectsAnswer(t *testing.T) {
	h := newHarness(t, 3, 300)
	h.press(keyPress('2'))

	ans, ok := h.ctrl.Answer("q0")
	require.True(t, ok)
	assert.Equal(t, "B", ans)
	assert.Equal(t, 1, h.ctrl.Progress().Answered)

	rec, err := h.store.Get(context.Background(), sess.Key(h.quiz.ID))
	require.NoError(t, err)
	assert.Equal(t, "B", rec.Answers["q0"])
}

func TestArrowsAndEnterSelect(t *testing.T) {
	h := newHarness(t, 2, 300)
	h.press(specialKey(tea.KeyDown), specialKey(tea.KeyDown), specialKey(tea.KeyEnter))

	ans, _ := h.ctrl.Answer("q0")
	assert.Equal(t, "C", ans)
}

func TestNavigationKeepsAnswers(t *testing.T) {
	h := newHarness(t, 3, 300)
	h.press(keyPress('1'), specialKey(tea.KeyRight), keyPress('4'))
	_, idx, _ := h.ctrl.Current()
	assert.Equal(t, 1, idx)

	h.press(specialKey(tea.KeyLeft))
	_, idx, _ = h.ctrl.Current()
	assert.Equal(t, 0, idx)
	assert.Equal(t, 0, h.screen.options.Chosen)

	h.press(specialKey(tea.KeyRight))
	assert.Equal(t, 3, h.screen.options.Chosen)
}

func TestSubmitRequiresAnswer(t *testing.T) {
	h := newHarness(t, 2, 300)
	cmd := h.press(keyPress('s'))
	assert.Nil(t, cmd)
	assert.False(t, h.screen.confirmSubmit)
	assert.Contains(t, h.screen.View(100, 30), "Answer at least one question")
}

func TestSubmitConfirmAndShowResult(t *testing.T) {
	h := newHarness(t, 2, 300)
	h.press(keyPress('2'))
	h.clock.Advance(42 * time.Second)

	h.press(keyPress('s'))
	require.True(t, h.screen.confirmSubmit)
	assert.Contains(t, h.screen.View(100, 30), "1 of 2 questions are unanswered")

	cmd := h.press(keyPress('y'))
	require.NotNil(t, cmd)
	next := h.run(cmd)
	require.NotNil(t, next)

	msg, ok := next().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "r1", msg.Screen.(*resultScreen).out.ResultID)

	require.Len(t, h.sub.subs, 1)
	sub := h.sub.subs[0]
	assert.Equal(t, 42, sub.TimeTaken)
	require.Len(t, sub.Answers, 2)
	assert.Nil(t, sub.Answers[1].SelectedOption)
	assert.Equal(t, sess.StateCompleted, h.ctrl.State())
}

func TestExpiryAutoSubmits(t *testing.T) {
	h := newHarness(t, 2, 120)
	h.clock.Advance(121 * time.Second)

	tick := h.press(timerTickMsg(time.Now()))
	require.NotNil(t, tick)
	next := h.run(tick)
	require.NotNil(t, next)
	_, ok := next().(router.ReplaceScreenMsg)
	assert.True(t, ok)
	require.Len(t, h.sub.subs, 1)
}

func TestFailedSubmitCanRetry(t *testing.T) {
	h := newHarness(t, 1, 300)
	h.sub.err = errors.New("grading down")
	h.press(keyPress('1'), keyPress('s'))
	h.run(h.press(keyPress('y')))

	assert.Equal(t, sess.StateFailed, h.ctrl.State())
	assert.Contains(t, h.screen.View(100, 30), "Press R to try again")

	h.sub.err = nil
	next := h.run(h.press(keyPress('r')))
	require.NotNil(t, next)
	_, ok := next().(router.ReplaceScreenMsg)
	assert.True(t, ok)
	assert.Len(t, h.sub.subs, 2)
}

func TestLeaveKeepsSession(t *testing.T) {
	h := newHarness(t, 2, 300)
	h.press(keyPress('3'), specialKey(tea.KeyEscape))
	require.True(t, h.screen.confirmQuit)

	cmd := h.press(keyPress('y'))
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopToRootMsg)
	assert.True(t, ok)
	assert.Equal(t, 1, h.store.Len())
}

func TestTimerShownInStatus(t *testing.T) {
	h := newHarness(t, 2, 300)
	h.clock.Advance(250 * time.Second)
	h.run(h.press(timerTickMsg(time.Now())))
	assert.Contains(t, h.screen.View(120, 30), "0:50")
	assert.Equal(t, sess.UrgencyCritical, h.ctrl.Progress().Urgency)
}

func TestLoadErrorShown(t *testing.T) {
	ctrl := sess.New(quizSource{}, sess.NewMemoryStore(), &submitter{}, sess.Options{})
	s := New(ctrl, "not-a-uuid", nil)
	s.Update(s.Init()())
	assert.Contains(t, s.View(100, 30), "not a valid quiz id")

	_, cmd := s.Update(keyPress('x'))
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}
