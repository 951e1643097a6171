package setup

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizforge/internal/assembly"
	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/router"
	"github.com/abhisek/quizforge/internal/screen"
)

type subjects struct {
	list []quiz.Subject
	err  error
}

func (s subjects) ListActive(context.Context) ([]quiz.Subject, error) {
	return s.list, s.err
}

type generator struct {
	reqs []assembly.Request
	err  error
}

func (g *generator) Generate(_ context.Context, req assembly.Request) (*assembly.Result, error) {
	g.reqs = append(g.reqs, req)
	if g.err != nil {
		return nil, g.err
	}
	return &assembly.Result{Quiz: &quiz.Quiz{ID: "quiz-1", TotalQuestions: req.QuestionCount}}, nil
}

type playScreen struct{ q *quiz.Quiz }

func (p *playScreen) Init() tea.Cmd                           { return nil }
func (p *playScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return p, nil }
func (p *playScreen) View(int, int) string                    { return "play" }
func (p *playScreen) Title() string                           { return "Quiz" }

var catalogue = []quiz.Subject{
	{ID: "s-dbms", Name: "DBMS", FullName: "Database Management Systems", IsActive: true},
	{ID: "s-os", Name: "OS", FullName: "Operating Systems", IsActive: true},
}

func key(r rune) tea.KeyPressMsg     { return tea.KeyPressMsg{Code: r, Text: string(r)} }
func special(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r} }
func enter() tea.KeyPressMsg         { return special(tea.KeyEnter) }
func down() tea.KeyPressMsg          { return special(tea.KeyDown) }
func escape() tea.KeyPressMsg        { return special(tea.KeyEscape) }

func newScreen(t *testing.T, gen *generator) *SetupScreen {
	t.Helper()
	s := New("u1", subjects{list: catalogue}, gen, func(q *quiz.Quiz) screen.Screen {
		return &playScreen{q: q}
	})
	s.Update(s.Init()())
	return s
}

// generation runs the generate command out of the batch returned when the
// flow reaches StepGenerating.
func generation(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok, "expected a batch")
	require.NotEmpty(t, batch)
	return batch[0]()
}

func TestSetup_FullFlow(t *testing.T) {
	gen := &generator{}
	s := newScreen(t, gen)
	assert.Equal(t, StepSubject, s.Step())
	assert.Contains(t, s.View(100, 30), "Operating Systems")

	s.Update(down())
	s.Update(enter())
	require.Equal(t, StepDifficulty, s.Step())

	s.Update(down())
	s.Update(down())
	s.Update(enter())
	require.Equal(t, StepCount, s.Step())

	s.Update(key('5'))
	_, cmd := s.Update(enter())
	require.Equal(t, StepGenerating, s.Step())
	assert.Equal(t, assembly.Request{UserID: "u1", SubjectID: "s-os", Difficulty: "Hard", QuestionCount: 5}, s.Request())

	_, cmd = s.Update(generation(t, cmd))
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	play, ok := msg.Screen.(*playScreen)
	require.True(t, ok)
	assert.Equal(t, "quiz-1", play.q.ID)
	require.Len(t, gen.reqs, 1)
}

func TestSetup_EmptyCountUsesDefault(t *testing.T) {
	s := newScreen(t, &generator{})
	s.Update(enter())
	s.Update(enter())
	s.Update(enter())

	assert.Equal(t, StepGenerating, s.Step())
	assert.Equal(t, DefaultQuestionCount, s.Request().QuestionCount)
	assert.Equal(t, "Easy", s.Request().Difficulty)
}

func TestSetup_CountOutOfRange(t *testing.T) {
	s := newScreen(t, &generator{})
	s.Update(enter())
	s.Update(enter())
	s.Update(key('3'))
	s.Update(key('0'))
	_, cmd := s.Update(enter())

	assert.Nil(t, cmd)
	assert.Equal(t, StepCount, s.Step())
	assert.Contains(t, s.View(100, 30), "choose between 1 and 24 questions")
}

func TestSetup_FailureAndRetry(t *testing.T) {
	gen := &generator{err: errors.New("provider unavailable")}
	s := newScreen(t, gen)
	s.Update(enter())
	s.Update(enter())
	_, cmd := s.Update(enter())

	s.Update(generation(t, cmd))
	require.Equal(t, StepFailed, s.Step())
	assert.Contains(t, s.View(100, 30), "provider unavailable")

	gen.err = nil
	_, cmd = s.Update(key('r'))
	require.Equal(t, StepGenerating, s.Step())
	_, cmd = s.Update(generation(t, cmd))
	require.NotNil(t, cmd)
	_, ok := cmd().(router.ReplaceScreenMsg)
	assert.True(t, ok)
	assert.Len(t, gen.reqs, 2)
}

func TestSetup_EscStepsBack(t *testing.T) {
	s := newScreen(t, &generator{})
	s.Update(enter())
	s.Update(enter())
	require.Equal(t, StepCount, s.Step())

	s.Update(escape())
	assert.Equal(t, StepDifficulty, s.Step())
	s.Update(escape())
	assert.Equal(t, StepSubject, s.Step())

	_, cmd := s.Update(escape())
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}

func TestSetup_SubjectLoadError(t *testing.T) {
	s := New("u1", subjects{err: errors.New("database is locked")}, &generator{}, nil)
	s.Update(s.Init()())

	assert.Contains(t, s.View(100, 30), "Could not load subjects: database is locked")
	_, cmd := s.Update(enter())
	assert.Nil(t, cmd)
	assert.Equal(t, StepSubject, s.Step())
}
