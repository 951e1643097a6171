package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizforge/internal/grading"
	"github.com/abhisek/quizforge/internal/router"
	"github.com/abhisek/quizforge/internal/screen"
	"github.com/abhisek/quizforge/internal/ui/components"
	"github.com/abhisek/quizforge/internal/ui/layout"
)

// DashboardSource loads the progress summary shown on the home screen.
type DashboardSource interface {
	Dashboard(ctx context.Context, userID string) (*grading.Dashboard, error)
}

// Options wires the home screen to the rest of the application.
type Options struct {
	UserID    string
	Dashboard DashboardSource

	// NewQuiz and MyQuizzes build the screens behind the menu entries.
	NewQuiz   func() screen.Screen
	MyQuizzes func() screen.Screen

	// Warning is shown above the menu when set, e.g. when no LLM provider
	// is configured. New quizzes are disabled while it is set.
	Warning string
}

type dashboardLoadedMsg struct {
	Dashboard *grading.Dashboard
	Err       error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	opts      Options
	menu      components.Menu
	labels    []string
	disabled  map[int]bool
	dashboard *grading.Dashboard
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(opts Options) *HomeScreen {
	labels := []string{"NEW QUIZ", "MY QUIZZES", "EXIT"}
	disabled := map[int]bool{0: opts.Warning != "" || opts.NewQuiz == nil, 1: opts.MyQuizzes == nil}

	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
		}
	}
	items := []components.MenuItem{
		{Label: labels[0], Action: push(opts.NewQuiz), Disabled: disabled[0]},
		{Label: labels[1], Action: push(opts.MyQuizzes), Disabled: disabled[1]},
		{Label: labels[2], Action: func() tea.Cmd { return tea.Quit }},
	}

	return &HomeScreen{
		opts:     opts,
		menu:     components.NewMenu(items),
		labels:   labels,
		disabled: disabled,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadDashboard()
}

func (h *HomeScreen) loadDashboard() tea.Cmd {
	if h.opts.Dashboard == nil {
		return nil
	}
	src, user := h.opts.Dashboard, h.opts.UserID
	return func() tea.Msg {
		d, err := src.Dashboard(context.Background(), user)
		return dashboardLoadedMsg{Dashboard: d, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		if msg.Err == nil {
			h.dashboard = msg.Dashboard
		}
		return h, nil
	case screen.RefreshMsg:
		return h, h.loadDashboard()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) mascot() MascotVariant {
	if h.opts.Warning != "" {
		return MascotAlert
	}
	if d := h.dashboard; d != nil && len(d.RecentResults) > 0 && d.RecentResults[0].Percentage >= CelebrateAt {
		return MascotCelebrating
	}
	return MascotIdle
}

func (h *HomeScreen) View(width, height int) string {
	compact := height < 22 || layout.IsCompactWidth(width)
	cw := components.ContentWidth(width)

	sections := []string{renderTitle(cw, compact)}
	if !compact {
		sections = append(sections, renderMascotBox(h.mascot(), cw))
	}
	sections = append(sections, renderStatsBar(h.dashboard, cw, compact))
	if h.opts.Warning != "" {
		sections = append(sections, renderWarning(h.opts.Warning, cw))
	}
	sections = append(sections, renderMenu(h.labels, h.menu.Selected, cw, h.disabled))

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
