package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizforge/internal/config"
	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/router"
	"github.com/abhisek/quizforge/internal/screen"
	"github.com/abhisek/quizforge/internal/screens/history"
	"github.com/abhisek/quizforge/internal/screens/home"
	sessionscreen "github.com/abhisek/quizforge/internal/screens/session"
	"github.com/abhisek/quizforge/internal/screens/setup"
	"github.com/abhisek/quizforge/internal/screens/summary"
	"github.com/abhisek/quizforge/internal/session"
	"github.com/abhisek/quizforge/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	user    string
	startup []tea.Cmd
	width   int
	height  int
}

func newAppModel(initial screen.Screen, user string) AppModel {
	return AppModel{
		router:  router.New(initial),
		user:    user,
		startup: []tea.Cmd{initial.Init()},
	}
}

// push stacks s over the initial screen before the program starts.
func (m *AppModel) push(s screen.Screen) {
	m.startup = append(m.startup, m.router.Push(s))
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.startup...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	var hints []layout.KeyHint
	if active != nil {
		title = active.Title()
		if hp, ok := active.(screen.KeyHintProvider); ok {
			hints = hp.KeyHints()
		}
	}
	if hints == nil {
		hints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	header := layout.RenderHeader(title, m.user+"  ", m.width)
	footer := layout.RenderFooter(hints, m.width)
	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// RunOptions selects where the terminal client starts.
type RunOptions struct {
	// QuizID starts (or resumes) that quiz directly instead of the home
	// screen.
	QuizID string

	// NewQuiz opens the setup flow directly.
	NewQuiz bool
}

// screens builds the screen graph on top of Services.
type screens struct {
	svc     *Services
	records session.Store
}

func (f *screens) home() screen.Screen {
	opts := home.Options{
		UserID:    f.svc.Config.UserID,
		Dashboard: f.svc.Grading,
		NewQuiz:   f.setup,
		MyQuizzes: f.history,
	}
	if f.svc.LLMErr != nil {
		opts.Warning = "No LLM provider configured. Set GEMINI_API_KEY or see `quizforge --help`."
	}
	return home.New(opts)
}

func (f *screens) setup() screen.Screen {
	return setup.New(f.svc.Config.UserID, f.svc.Store.SubjectRepo(), f.svc.Assembly, func(q *quiz.Quiz) screen.Screen {
		return f.play(q.ID)
	})
}

func (f *screens) play(quizID string) screen.Screen {
	return sessionscreen.New(f.svc.NewSession(f.records), quizID, summary.FromOutcome)
}

func (f *screens) history() screen.Screen {
	return history.New(history.Options{
		UserID: f.svc.Config.UserID,
		Source: historySource{f.svc},
		Play:   f.play,
		Review: func(q *quiz.Quiz, res *quiz.QuizResult) screen.Screen {
			return summary.New(q, res, "")
		},
	})
}

// historySource joins the quiz list and the result list.
type historySource struct{ svc *Services }

func (h historySource) ListByUser(ctx context.Context, userID string) ([]quiz.Quiz, error) {
	return h.svc.Assembly.ListByUser(ctx, userID)
}

func (h historySource) Results(ctx context.Context, userID string, limit int) ([]quiz.QuizResult, error) {
	return h.svc.Grading.Results(ctx, userID, limit)
}

// terminalSessionStore is SessionStore with the cookie backend, which only
// exists inside HTTP requests, replaced by the file backend.
func (s *Services) terminalSessionStore() (session.Store, error) {
	if s.Config.Session.Backend != config.SessionCookie {
		return s.SessionStore()
	}
	local := *s
	cfg := *s.Config
	cfg.Session.Backend = config.SessionFile
	local.Config = &cfg
	return local.SessionStore()
}

// Run starts the terminal client.
func Run(ctx context.Context, svc *Services, opts RunOptions) error {
	records, err := svc.terminalSessionStore()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	f := &screens{svc: svc, records: records}

	model := newAppModel(f.home(), svc.Config.UserID)
	switch {
	case opts.QuizID != "":
		model.push(f.play(opts.QuizID))
	case opts.NewQuiz:
		model.push(f.setup())
	}

	p := tea.NewProgram(model)
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal client: %w", err)
	}
	return nil
}
