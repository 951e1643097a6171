// Package history lists the user's quizzes. Unfinished quizzes can be
// resumed and finished ones reviewed.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/router"
	"github.com/abhisek/quizforge/internal/screen"
	"github.com/abhisek/quizforge/internal/ui/layout"
	"github.com/abhisek/quizforge/internal/ui/theme"
)

// Source loads the user's quizzes and results.
type Source interface {
	ListByUser(ctx context.Context, userID string) ([]quiz.Quiz, error)
	Results(ctx context.Context, userID string, limit int) ([]quiz.QuizResult, error)
}

// Options wires the history screen.
type Options struct {
	UserID string
	Source Source

	// Play opens an unfinished quiz; Review shows a finished one.
	Play   func(quizID string) screen.Screen
	Review func(q *quiz.Quiz, res *quiz.QuizResult) screen.Screen
}

type historyLoadedMsg struct {
	Quizzes []quiz.Quiz
	Results map[string]*quiz.QuizResult // quiz id → latest result
	Err     error
}

// HistoryScreen displays past and unfinished quizzes.
type HistoryScreen struct {
	opts     Options
	quizzes  []quiz.Quiz
	results  map[string]*quiz.QuizResult
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(opts Options) *HistoryScreen {
	return &HistoryScreen{opts: opts, results: map[string]*quiz.QuizResult{}}
}

func (s *HistoryScreen) Init() tea.Cmd {
	src, user := s.opts.Source, s.opts.UserID
	return func() tea.Msg {
		ctx := context.Background()
		quizzes, err := src.ListByUser(ctx, user)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		results, err := src.Results(ctx, user, 0)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		byQuiz := make(map[string]*quiz.QuizResult, len(results))
		// Results are newest first; keep the latest per quiz.
		for i := range results {
			if _, ok := byQuiz[results[i].QuizID]; !ok {
				byQuiz[results[i].QuizID] = &results[i]
			}
		}
		return historyLoadedMsg{Quizzes: quizzes, Results: byQuiz}
	}
}

func (s *HistoryScreen) Title() string {
	return "My Quizzes"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Resume / Review"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.quizzes = msg.Quizzes
		s.results = msg.Results
		s.selected = min(s.selected, max(len(s.quizzes)-1, 0))
		return s, nil

	case screen.RefreshMsg:
		return s, s.Init()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.quizzes)-1 {
				s.selected++
			}
		case "enter":
			return s, s.open()
		}
	}
	return s, nil
}

func (s *HistoryScreen) open() tea.Cmd {
	if s.selected >= len(s.quizzes) {
		return nil
	}
	q := &s.quizzes[s.selected]
	var next screen.Screen
	if res, ok := s.results[q.ID]; ok && s.opts.Review != nil {
		next = s.opts.Review(q, res)
	} else if !q.IsCompleted && s.opts.Play != nil {
		next = s.opts.Play(q.ID)
	}
	if next == nil {
		return nil
	}
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (s *HistoryScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return theme.Centered(width, theme.Error, "\n\nError: "+s.errMsg)
	case !s.loaded:
		return theme.Centered(width, theme.TextDim, "\n\nLoading quizzes...")
	case len(s.quizzes) == 0:
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\nNo quizzes yet. Start one from the home screen!")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, q := range s.quizzes {
		status := "in progress"
		statusColor := theme.Accent
		if res, ok := s.results[q.ID]; ok {
			status = fmt.Sprintf("%d/%d  %d%%", res.Score, res.TotalQuestions(), res.Percentage)
			statusColor = theme.Success
		} else if q.IsCompleted {
			status = "completed"
			statusColor = theme.TextDim
		}

		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := style.Render(fmt.Sprintf("%s%s  %-44s", prefix, q.CreatedAt.Local().Format("Jan 02 15:04"), truncate(q.Title, 44))) +
			"  " + lipgloss.NewStyle().Foreground(statusColor).Render(status)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
