package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizforge/internal/grading"
	"github.com/abhisek/quizforge/internal/ui/components"
	"github.com/abhisek/quizforge/internal/ui/theme"
)

// Block letters, six rows each.
var glyphs = map[rune][6]string{
	'Q': {" ██████╗ ", "██╔═══██╗", "██║   ██║", "██║▄▄ ██║", "╚██████╔╝", " ╚══▀▀═╝ "},
	'U': {"██╗   ██╗", "██║   ██║", "██║   ██║", "██║   ██║", "╚██████╔╝", " ╚═════╝ "},
	'I': {"██╗", "██║", "██║", "██║", "██║", "╚═╝"},
	'Z': {"███████╗", "╚══███╔╝", "  ███╔╝ ", " ███╔╝  ", "███████╗", "╚══════╝"},
	'F': {"███████╗", "██╔════╝", "█████╗  ", "██╔══╝  ", "██║     ", "╚═╝     "},
	'O': {" ██████╗ ", "██╔═══██╗", "██║   ██║", "██║   ██║", "╚██████╔╝", " ╚═════╝ "},
	'R': {"██████╗ ", "██╔══██╗", "██████╔╝", "██╔══██╗", "██║  ██║", "╚═╝  ╚═╝"},
	'G': {" ██████╗ ", "██╔════╝ ", "██║  ███╗", "██║   ██║", "╚██████╔╝", " ╚═════╝ "},
	'E': {"███████╗", "██╔════╝", "█████╗  ", "██╔══╝  ", "███████╗", "╚══════╝"},
}

const (
	titleWord    = "QUIZFORGE"
	titleCompact = "Q · U · I · Z · F · O · R · G · E"
)

func blockTitle(word string) string {
	var rows [6]strings.Builder
	for _, r := range word {
		g := glyphs[r]
		for i := range rows {
			rows[i].WriteString(g[i])
		}
	}
	lines := make([]string, len(rows))
	for i := range rows {
		lines[i] = rows[i].String()
	}
	return strings.Join(lines, "\n")
}

var titleFull = blockTitle(titleWord)

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	art := titleFull
	if compact || lipgloss.Width(art) > cw {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

// renderStatsBar summarises the user's progress in a double-bordered box.
func renderStatsBar(d *grading.Dashboard, cw int, compact bool) string {
	quizStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	avgStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	lastStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var stats string
	switch {
	case d == nil || d.Progress == nil || d.Progress.TotalQuizzes == 0:
		stats = dim.Render("No quizzes taken yet")
	case compact:
		stats = fmt.Sprintf("%s %s",
			quizStyle.Render(fmt.Sprintf("★%d", d.Progress.TotalQuizzes)),
			avgStyle.Render(fmt.Sprintf("⌀%.1f", d.Progress.AverageScore)),
		)
	default:
		last := dim.Render("")
		if len(d.RecentResults) > 0 {
			last = lastStyle.Render(fmt.Sprintf("LAST %d%%", d.RecentResults[0].Percentage))
		}
		stats = fmt.Sprintf("%s  %s  %s",
			quizStyle.Render(fmt.Sprintf("★ %d QUIZZES", d.Progress.TotalQuizzes)),
			avgStyle.Render(fmt.Sprintf("⌀ %.1f CORRECT", d.Progress.AverageScore)),
			last,
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

const buttonWidth = 22

func renderMenu(items []string, selected int, cw int, disabled map[int]bool) string {
	dimmed := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Foreground(theme.TextDim).
		BorderForeground(theme.Border)

	buttons := make([]string, len(items))
	for i, label := range items {
		if disabled[i] {
			buttons[i] = dimmed.Render(label)
			continue
		}
		buttons[i] = components.ArcadeButton(label, i == selected, buttonWidth)
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

func renderWarning(msg string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ " + msg)
}

func renderMascotBox(v MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(v))
}
