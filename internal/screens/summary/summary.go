// Package summary shows a graded quiz: score, feedback and a per-question
// review with explanations.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/router"
	"github.com/abhisek/quizforge/internal/screen"
	"github.com/abhisek/quizforge/internal/ui/components"
	"github.com/abhisek/quizforge/internal/ui/layout"
	"github.com/abhisek/quizforge/internal/ui/theme"
)

// ResultScreen displays one graded quiz.
type ResultScreen struct {
	quiz   *quiz.Quiz
	result *quiz.QuizResult
	fb     string
	offset int
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a result screen for q graded as res. feedback overrides the
// stored feedback when non-empty.
func New(q *quiz.Quiz, res *quiz.QuizResult, feedback string) *ResultScreen {
	if feedback == "" && res != nil {
		feedback = res.Feedback
	}
	return &ResultScreen{quiz: q, result: res, fb: feedback}
}

// FromOutcome creates a result screen from a fresh submission.
func FromOutcome(q *quiz.Quiz, out *quiz.Outcome) screen.Screen {
	return New(q, out.Result, out.Feedback)
}

func (s *ResultScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultScreen) Title() string {
	return "Results"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Home"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		case "up", "k":
			s.offset = max(s.offset-1, 0)
		case "down", "j":
			s.offset++
		case "pgdown", "space":
			s.offset += 10
		case "pgup":
			s.offset = max(s.offset-10, 0)
		}
	}
	return s, nil
}

// Grade returns a one-word verdict for a percentage.
func Grade(percentage int) string {
	switch {
	case percentage >= 90:
		return "Outstanding"
	case percentage >= 75:
		return "Great"
	case percentage >= 50:
		return "Good"
	case percentage >= 25:
		return "Keep going"
	}
	return "Needs practice"
}

func (s *ResultScreen) View(width, height int) string {
	res := s.result
	if res == nil || s.quiz == nil {
		return theme.Centered(width, theme.TextDim, "\n\nNo result to show.")
	}

	var header strings.Builder
	header.WriteString("\n")
	header.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
		Foreground(components.ScoreColor(res.Percentage)).Bold(true).
		Render(fmt.Sprintf("%s! %d/%d correct", Grade(res.Percentage), res.Score, res.TotalQuestions())))
	header.WriteString("\n\n")

	bar := components.NewProgressBar("Score", float64(res.Percentage)/100, true, min(width-8, 60))
	bar.Fill = components.ScoreColor(res.Percentage)
	header.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	header.WriteString("\n")
	header.WriteString(theme.Centered(width, theme.TextDim,
		fmt.Sprintf("Time taken %s of %s", layout.FormatClock(res.TimeTaken), layout.FormatClock(s.quiz.TimeLimit))))
	header.WriteString("\n\n")
	if s.fb != "" {
		header.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.ArcadeCard(s.fb, components.ContentWidth(width))))
		header.WriteString("\n\n")
	}

	lines := s.reviewLines(min(width-8, 76))
	avail := max(height-lipgloss.Height(header.String())-1, 3)
	s.offset = min(s.offset, max(len(lines)-avail, 0))
	end := min(s.offset+avail, len(lines))

	body := lipgloss.NewStyle().Width(min(width-8, 76)).Render(strings.Join(lines[s.offset:end], "\n"))
	return header.String() + lipgloss.PlaceHorizontal(width, lipgloss.Center, body)
}

// reviewLines renders the per-question review, already wrapped to width.
func (s *ResultScreen) reviewLines(width int) []string {
	explanations := make(map[int]string, len(s.result.Explanations))
	for _, e := range s.result.Explanations {
		explanations[e.QuestionIndex] = e.Explanation
	}
	wrap := lipgloss.NewStyle().Width(width)

	var out []string
	for i, q := range s.quiz.Questions {
		var a quiz.AnswerRecord
		if i < len(s.result.Answers) {
			a = s.result.Answers[i]
		}
		mark, style := "✗", theme.Incorrect
		if a.IsCorrect {
			mark, style = "✓", theme.Correct
		}
		out = append(out, strings.Split(wrap.Render(style.Render(fmt.Sprintf("%s %d. %s", mark, i+1, q.Text))), "\n")...)

		yours := "(not answered)"
		if a.SelectedOption != nil {
			yours = *a.SelectedOption
		}
		dim := lipgloss.NewStyle().Foreground(theme.TextDim)
		out = append(out, dim.Render("    Your answer: "+yours))
		if !a.IsCorrect {
			out = append(out, lipgloss.NewStyle().Foreground(theme.Success).Render("    Correct answer: "+q.CorrectAnswer))
		}
		if e := explanations[i]; e != "" {
			out = append(out, strings.Split(wrap.Foreground(theme.Text).PaddingLeft(4).Render(e), "\n")...)
		}
		out = append(out, "")
	}
	return out
}
