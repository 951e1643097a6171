package session

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	sess "github.com/abhisek/quizforge/internal/session"
	"github.com/abhisek/quizforge/internal/ui/components"
	"github.com/abhisek/quizforge/internal/ui/layout"
	"github.com/abhisek/quizforge/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return theme.Centered(width, theme.Error,
			fmt.Sprintf("\n\n\nCould not start the quiz: %s\n\nPress any key to go back.", s.errMsg))
	}
	switch s.ctrl.State() {
	case sess.StateIdle, sess.StateLoading:
		return theme.Centered(width, theme.TextDim, "\n\n\nLoading quiz...")
	case sess.StateSubmitting, sess.StateExpired, sess.StateCompleted:
		return s.renderSubmitting(width)
	}
	if s.confirmQuit {
		return renderConfirm(width, "Leave this quiz?",
			"Your answers and the timer are saved. Resume later with `quizforge play`.",
			"[Y] Leave", "[N] Keep going")
	}
	if s.confirmSubmit {
		p := s.ctrl.Progress()
		detail := "Every question is answered."
		if !p.AllAnswered() {
			detail = fmt.Sprintf("%d of %d questions are unanswered and will be marked wrong.", p.Total-p.Answered, p.Total)
		}
		return renderConfirm(width, "Submit your answers?", detail, "[Y] Submit", "[N] Back to quiz")
	}
	return s.renderQuestion(width)
}

func urgencyColor(u sess.Urgency) color.Color {
	switch u {
	case sess.UrgencyCritical:
		return theme.Error
	case sess.UrgencyWarning:
		return theme.Warning
	}
	return theme.Success
}

func (s *SessionScreen) renderStatus(width int) string {
	p := s.ctrl.Progress()
	q := s.ctrl.Quiz()

	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s · %s", q.SubjectName, q.Difficulty))

	timer := lipgloss.NewStyle().
		Foreground(urgencyColor(p.Urgency)).
		Bold(p.Urgency != sess.UrgencyNormal).
		Render("⏱ " + layout.FormatClock(p.Remaining))
	right := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  answered %d  ", p.Current+1, p.Total, p.Answered)) + timer

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}

	bar := components.NewProgressBar("", float64(p.Answered)/float64(max(p.Total, 1)), false, max(width-4, 4))
	return line + "\n  " + bar.View()
}

func (s *SessionScreen) renderQuestion(width int) string {
	q, idx, ok := s.ctrl.Current()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(s.renderStatus(width))
	b.WriteString("\n\n")

	textWidth := min(width-8, 76)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().
			Width(textWidth).
			Foreground(theme.Text).
			Bold(true).
			Render(fmt.Sprintf("%d. %s", idx+1, q.Text))))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(textWidth).Render(s.options.View())))
	b.WriteString("\n")
	b.WriteString(s.renderDots(width))

	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Centered(width, theme.Accent, s.notice))
	}
	if s.ctrl.State() == sess.StateFailed {
		b.WriteString("\n\n")
		b.WriteString(theme.Centered(width, theme.Error, "Submission failed. Press R to try again."))
	}
	return b.String()
}

// renderDots shows one marker per question: filled when answered, ringed
// for the current one.
func (s *SessionScreen) renderDots(width int) string {
	q := s.ctrl.Quiz()
	_, current, _ := s.ctrl.Current()
	var dots []string
	for i, qq := range q.Questions {
		_, answered := s.ctrl.Answer(qq.ID)
		mark, fg := "○", theme.Border
		if answered {
			mark, fg = "●", theme.Secondary
		}
		if i == current {
			fg = theme.Primary
			if !answered {
				mark = "◉"
			}
		}
		dots = append(dots, lipgloss.NewStyle().Foreground(fg).Render(mark))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(dots, " "))
}

func (s *SessionScreen) renderSubmitting(width int) string {
	msg := "Grading your answers..."
	if s.ctrl.State() == sess.StateExpired {
		msg = "Time is up! Submitting your answers..."
	}
	return theme.Centered(width, theme.Secondary, "\n\n\n"+msg)
}

func renderConfirm(width int, title, detail, yes, no string) string {
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		components.ArcadeButton(yes, true, 18), "  ", components.ArcadeButton(no, false, 18))

	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(theme.Title.Width(width).Render(title))
	b.WriteString("\n")
	b.WriteString(theme.Centered(width, theme.TextDim, detail))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, buttons))
	return b.String()
}
