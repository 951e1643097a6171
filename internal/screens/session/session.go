// Package session is the terminal screen for taking a timed quiz.
package session

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/router"
	"github.com/abhisek/quizforge/internal/screen"
	sess "github.com/abhisek/quizforge/internal/session"
	"github.com/abhisek/quizforge/internal/ui/components"
	"github.com/abhisek/quizforge/internal/ui/layout"
)

// ResultFunc builds the screen shown once the quiz is graded.
type ResultFunc func(q *quiz.Quiz, out *quiz.Outcome) screen.Screen

// SessionScreen implements screen.Screen for one quiz attempt. All session
// rules live in the controller; the screen maps keys onto it and renders
// its state.
type SessionScreen struct {
	ctrl   *sess.Controller
	quizID string
	result ResultFunc

	options       components.OptionList
	optionsFor    int
	confirmSubmit bool
	confirmQuit   bool
	notice        string
	errMsg        string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)

// New creates a screen that loads quizID into ctrl, resuming a saved
// session when one exists.
func New(ctrl *sess.Controller, quizID string, result ResultFunc) *SessionScreen {
	return &SessionScreen{
		ctrl:       ctrl,
		quizID:     quizID,
		result:     result,
		optionsFor: -1,
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	ctrl, id := s.ctrl, s.quizID
	return func() tea.Msg {
		return loadedMsg{Err: ctrl.Load(context.Background(), id)}
	}
}

func (s *SessionScreen) Title() string {
	if q := s.ctrl.Quiz(); q != nil {
		return q.Title
	}
	return "Quiz"
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirmQuit, s.confirmSubmit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Yes"},
			{Key: "N", Description: "No"},
		}
	case s.ctrl.State() == sess.StateFailed:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry submit"},
			{Key: "Esc", Description: "Leave"},
		}
	case s.ctrl.State() != sess.StateActive:
		return nil
	}
	return []layout.KeyHint{
		{Key: "1-4", Description: "Answer"},
		{Key: "←→", Description: "Question"},
		{Key: "S", Description: "Submit"},
		{Key: "Esc", Description: "Leave"},
	}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = describe(msg.Err)
			return s, nil
		}
		s.syncOptions()
		return s, tickCmd()

	case timerTickMsg:
		return s, s.tick()

	case tickedMsg:
		return s.handleTicked(msg)

	case submittedMsg:
		return s.handleSubmitted(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

// tick advances the controller clock off the update loop; an expiring tick
// submits, which may block on grading.
func (s *SessionScreen) tick() tea.Cmd {
	switch st := s.ctrl.State(); {
	case st.Terminal(), st == sess.StateIdle:
		return nil
	case st != sess.StateActive && st != sess.StateFailed:
		return tickCmd()
	}
	ctrl := s.ctrl
	return func() tea.Msg {
		out, err := ctrl.Tick(context.Background())
		return tickedMsg{Outcome: out, Err: err}
	}
}

func (s *SessionScreen) handleTicked(msg tickedMsg) (screen.Screen, tea.Cmd) {
	if msg.Outcome != nil {
		return s, s.showResult(msg.Outcome)
	}
	if msg.Err != nil {
		s.notice = "Time is up, but submitting failed: " + msg.Err.Error()
	}
	if s.ctrl.State().Terminal() {
		return s, nil
	}
	return s, tickCmd()
}

func (s *SessionScreen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.notice = "Submitting failed: " + msg.Err.Error()
		return s, nil
	}
	return s, s.showResult(msg.Outcome)
}

func (s *SessionScreen) showResult(out *quiz.Outcome) tea.Cmd {
	next := s.result(s.ctrl.Quiz(), out)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *SessionScreen) submit() tea.Cmd {
	ctrl := s.ctrl
	return func() tea.Msg {
		out, err := ctrl.Submit(context.Background())
		return submittedMsg{Outcome: out, Err: err}
	}
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if s.confirmSubmit {
		switch key {
		case "y", "Y", "enter":
			s.confirmSubmit = false
			return s, s.submit()
		case "n", "N", "esc":
			s.confirmSubmit = false
		}
		return s, nil
	}

	ctx := context.Background()
	switch s.ctrl.State() {
	case sess.StateFailed:
		switch key {
		case "r", "R":
			s.notice = ""
			return s, s.submit()
		case "esc":
			s.confirmQuit = true
		}
		return s, nil
	case sess.StateActive:
	default:
		return s, nil
	}

	s.notice = ""
	switch key {
	case "esc":
		s.confirmQuit = true
	case "s", "S":
		if s.ctrl.Progress().Answered == 0 {
			s.notice = "Answer at least one question before submitting."
			return s, nil
		}
		s.confirmSubmit = true
	case "right", "l", "n", "tab":
		s.ctrl.Next(ctx)
		s.syncOptions()
	case "left", "h", "p", "shift+tab":
		s.ctrl.Previous(ctx)
		s.syncOptions()
	case "enter":
		s.choose(ctx, s.options.Cursor)
	default:
		if i, ok := s.options.IndexForKey(key); ok {
			s.choose(ctx, i)
			return s, nil
		}
		s.options, _ = s.options.Update(msg)
	}
	return s, nil
}

func (s *SessionScreen) choose(ctx context.Context, i int) {
	q, _, ok := s.ctrl.Current()
	if !ok || i < 0 || i >= len(q.Options) {
		return
	}
	if err := s.ctrl.SelectAnswer(ctx, q.ID, q.Options[i].Text); err != nil {
		s.notice = err.Error()
		return
	}
	s.options.Chosen = i
	s.options.Cursor = i
}

// syncOptions rebuilds the option list when the current question changed.
func (s *SessionScreen) syncOptions() {
	q, idx, ok := s.ctrl.Current()
	if !ok || idx == s.optionsFor {
		return
	}
	chosen := -1
	if ans, ok := s.ctrl.Answer(q.ID); ok {
		for i, o := range q.Options {
			if o.Text == ans {
				chosen = i
			}
		}
	}
	s.options = components.NewOptionList(q.OptionTexts(), chosen)
	s.optionsFor = idx
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}

// describe maps controller errors to what the user should be told.
func describe(err error) string {
	switch {
	case errors.Is(err, sess.ErrInvalidQuizID):
		return "That is not a valid quiz id."
	case quiz.IsNotFound(err):
		return "This quiz no longer exists."
	}
	return err.Error()
}
