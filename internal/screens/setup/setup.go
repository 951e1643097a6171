// Package setup walks the user through choosing a subject, difficulty and
// question count, then generates the quiz.
package setup

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizforge/internal/assembly"
	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/router"
	"github.com/abhisek/quizforge/internal/screen"
	"github.com/abhisek/quizforge/internal/ui/components"
	"github.com/abhisek/quizforge/internal/ui/layout"
	"github.com/abhisek/quizforge/internal/ui/theme"
)

// DefaultQuestionCount is prefilled in the count step.
const DefaultQuestionCount = 10

// SubjectLister lists the subjects offered in the first step.
type SubjectLister interface {
	ListActive(ctx context.Context) ([]quiz.Subject, error)
}

// QuizGenerator assembles the quiz once every choice is made.
type QuizGenerator interface {
	Generate(ctx context.Context, req assembly.Request) (*assembly.Result, error)
}

// Step is the current step of the flow.
type Step int

const (
	StepSubject Step = iota
	StepDifficulty
	StepCount
	StepGenerating
	StepFailed
)

type subjectsLoadedMsg struct {
	Subjects []quiz.Subject
	Err      error
}

type generatedMsg struct {
	Result *assembly.Result
	Err    error
}

type spinnerTickMsg time.Time

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SetupScreen implements screen.Screen for the new-quiz flow.
type SetupScreen struct {
	userID   string
	subjects SubjectLister
	gen      QuizGenerator
	play     func(*quiz.Quiz) screen.Screen

	step       Step
	list       []quiz.Subject
	subject    *quiz.Subject
	difficulty quiz.Difficulty
	count      int

	subjectMenu    components.Menu
	difficultyMenu components.Menu
	input          components.TextInput

	frame   int
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// New creates the setup screen. play builds the screen that runs the
// generated quiz; it replaces this one.
func New(userID string, subjects SubjectLister, gen QuizGenerator, play func(*quiz.Quiz) screen.Screen) *SetupScreen {
	s := &SetupScreen{
		userID:   userID,
		subjects: subjects,
		gen:      gen,
		play:     play,
		input:    components.NewTextInput(fmt.Sprint(DefaultQuestionCount), true, 2),
	}
	items := make([]components.MenuItem, len(quiz.Difficulties))
	for i, d := range quiz.Difficulties {
		items[i] = components.MenuItem{Label: d.String(), Action: s.chooseDifficulty(d)}
	}
	s.difficultyMenu = components.NewMenu(items)
	return s
}

func (s *SetupScreen) Init() tea.Cmd {
	subjects := s.subjects
	return func() tea.Msg {
		list, err := subjects.ListActive(context.Background())
		return subjectsLoadedMsg{Subjects: list, Err: err}
	}
}

func (s *SetupScreen) Title() string {
	return "New Quiz"
}

// Step returns the current step.
func (s *SetupScreen) Step() Step {
	return s.step
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	switch s.step {
	case StepCount:
		return []layout.KeyHint{
			{Key: "0-9", Description: "Questions"},
			{Key: "Enter", Description: "Generate"},
			{Key: "Esc", Description: "Back"},
		}
	case StepGenerating:
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	case StepFailed:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case subjectsLoadedMsg:
		return s.handleSubjects(msg)
	case generatedMsg:
		return s.handleGenerated(msg)
	case spinnerTickMsg:
		if s.step != StepGenerating {
			return s, nil
		}
		s.frame++
		return s, spinnerCmd()
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SetupScreen) handleSubjects(msg subjectsLoadedMsg) (screen.Screen, tea.Cmd) {
	s.loaded = true
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.list = msg.Subjects
	items := make([]components.MenuItem, len(s.list))
	for i := range s.list {
		subj := s.list[i]
		items[i] = components.MenuItem{
			Label: fmt.Sprintf("%s  %s", subj.Icon, subj.FullName),
			Action: func() tea.Cmd {
				s.subject = &subj
				s.step = StepDifficulty
				return nil
			},
		}
	}
	s.subjectMenu = components.NewMenu(items)
	return s, nil
}

func (s *SetupScreen) chooseDifficulty(d quiz.Difficulty) func() tea.Cmd {
	return func() tea.Cmd {
		s.difficulty = d
		s.step = StepCount
		return s.input.Init()
	}
}

func (s *SetupScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if key == "esc" {
		return s.back()
	}

	var cmd tea.Cmd
	switch s.step {
	case StepSubject:
		if s.errMsg != "" {
			return s, nil
		}
		s.subjectMenu, cmd = s.subjectMenu.Update(msg)
	case StepDifficulty:
		s.difficultyMenu, cmd = s.difficultyMenu.Update(msg)
	case StepCount:
		if key == "enter" {
			return s.submitCount()
		}
		s.input, cmd = s.input.Update(msg)
	case StepFailed:
		if key == "r" || key == "R" {
			return s, s.generate()
		}
	}
	return s, cmd
}

func (s *SetupScreen) back() (screen.Screen, tea.Cmd) {
	switch s.step {
	case StepDifficulty:
		s.step = StepSubject
	case StepCount, StepFailed:
		s.errMsg = ""
		s.step = StepDifficulty
	case StepGenerating:
	default:
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *SetupScreen) submitCount() (screen.Screen, tea.Cmd) {
	n := DefaultQuestionCount
	if strings.TrimSpace(s.input.Value()) != "" {
		v, err := s.input.NumericValue()
		if err != nil {
			s.input.Err = "enter a number"
			return s, nil
		}
		n = v
	}
	if n < quiz.MinQuestions || n > quiz.MaxQuestions {
		s.input.Err = fmt.Sprintf("choose between %d and %d questions", quiz.MinQuestions, quiz.MaxQuestions)
		return s, nil
	}
	s.count = n
	return s, s.generate()
}

// Request returns the assembly request for the current choices.
func (s *SetupScreen) Request() assembly.Request {
	req := assembly.Request{UserID: s.userID, Difficulty: s.difficulty.String(), QuestionCount: s.count}
	if s.subject != nil {
		req.SubjectID = s.subject.ID
	}
	return req
}

func (s *SetupScreen) generate() tea.Cmd {
	s.step = StepGenerating
	s.errMsg = ""
	gen, req := s.gen, s.Request()
	return tea.Batch(
		func() tea.Msg {
			res, err := gen.Generate(context.Background(), req)
			return generatedMsg{Result: res, Err: err}
		},
		spinnerCmd(),
	)
}

func (s *SetupScreen) handleGenerated(msg generatedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.step = StepFailed
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	next := s.play(msg.Result.Quiz)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func spinnerCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func (s *SetupScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.breadcrumb(width))
	b.WriteString("\n\n")

	switch s.step {
	case StepSubject:
		switch {
		case s.errMsg != "":
			b.WriteString(theme.Centered(width, theme.Error, "Could not load subjects: "+s.errMsg))
		case !s.loaded:
			b.WriteString(theme.Centered(width, theme.TextDim, "Loading subjects..."))
		case len(s.list) == 0:
			b.WriteString(theme.Centered(width, theme.TextDim, "No subjects yet. Add one with `quizforge subjects seed`."))
		default:
			b.WriteString(theme.Centered(width, theme.Text, "Pick a subject"))
			b.WriteString("\n\n")
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.subjectMenu.View()))
		}
	case StepDifficulty:
		b.WriteString(theme.Centered(width, theme.Text, "How hard should it be?"))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.difficultyMenu.View()))
	case StepCount:
		b.WriteString(theme.Centered(width, theme.Text,
			fmt.Sprintf("How many questions? (%d-%d)", quiz.MinQuestions, quiz.MaxQuestions)))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))
	case StepGenerating:
		frame := spinnerFrames[s.frame%len(spinnerFrames)]
		b.WriteString(theme.Centered(width, theme.Secondary,
			fmt.Sprintf("%s Writing %d questions and sizing the timer...", frame, s.count)))
	case StepFailed:
		b.WriteString(theme.Centered(width, theme.Error, "Quiz generation failed"))
		b.WriteString("\n\n")
		b.WriteString(theme.Centered(width, theme.TextDim, s.errMsg))
		b.WriteString("\n\n")
		b.WriteString(theme.Centered(width, theme.Text, "Press R to try again"))
	}
	return b.String()
}

func (s *SetupScreen) breadcrumb(width int) string {
	parts := []string{"Subject"}
	if s.subject != nil && s.step > StepSubject {
		parts[0] = s.subject.Name
	}
	if s.step >= StepDifficulty {
		parts = append(parts, "Difficulty")
	}
	if s.step >= StepCount {
		parts[1] = s.difficulty.String()
		parts = append(parts, "Questions")
	}
	if s.step >= StepGenerating && s.count > 0 {
		parts[2] = fmt.Sprint(s.count)
	}
	return theme.Centered(width, theme.TextDim, strings.Join(parts, "  ›  "))
}
