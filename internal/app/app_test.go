package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizforge/internal/assembly"
	"github.com/abhisek/quizforge/internal/config"
	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/router"
	"github.com/abhisek/quizforge/internal/screen"
	"github.com/abhisek/quizforge/internal/session"
	"github.com/abhisek/quizforge/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DB = filepath.Join(t.TempDir(), "quizforge.db")
	cfg.UserID = "u1"
	cfg.Session.Backend = config.SessionMemory
	cfg.Session.Dir = filepath.Join(t.TempDir(), "sessions")
	cfg.LLM.Provider = "mock"
	return &cfg
}

func openTest(t *testing.T, cfg *config.Config, opts OpenOptions) *Services {
	t.Helper()
	svc, err := Open(context.Background(), cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestOpen_MockProvider(t *testing.T) {
	svc := openTest(t, testConfig(t), OpenOptions{RequireLLM: true})

	assert.NoError(t, svc.LLMErr)
	assert.IsType(t, &llm.MockProvider{}, svc.Provider)
	assert.NotNil(t, svc.Assembly)
	assert.NotNil(t, svc.Grading)
}

func TestOpen_MissingProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = "gemini"
	cfg.LLM.Gemini.APIKey = ""

	_, err := Open(context.Background(), cfg, OpenOptions{RequireLLM: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUIZFORGE_GEMINI_API_KEY")

	svc := openTest(t, cfg, OpenOptions{})
	require.Error(t, svc.LLMErr)

	ctx := context.Background()
	_, err = svc.SeedSubjects(ctx)
	require.NoError(t, err)
	subj, err := svc.ResolveSubject(ctx, "OS")
	require.NoError(t, err)

	_, err = svc.Assembly.Generate(ctx, assembly.Request{
		UserID: "u1", SubjectID: subj.ID, Difficulty: "easy", QuestionCount: 3,
	})
	assert.Error(t, err)

	quizzes, err := svc.Assembly.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, quizzes)
}

func TestSeedAndResolveSubject(t *testing.T) {
	svc := openTest(t, testConfig(t), OpenOptions{})
	ctx := context.Background()

	n, err := svc.SeedSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(store.DefaultSubjects), n)

	n, err = svc.SeedSubjects(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	byName, err := svc.ResolveSubject(ctx, "dbms")
	require.NoError(t, err)
	assert.Equal(t, "DBMS", byName.Name)

	byID, err := svc.ResolveSubject(ctx, byName.ID)
	require.NoError(t, err)
	assert.Equal(t, byName.ID, byID.ID)

	_, err = svc.ResolveSubject(ctx, "astrology")
	assert.Error(t, err)
}

func TestSessionStore_Backends(t *testing.T) {
	svc := openTest(t, testConfig(t), OpenOptions{})

	s, err := svc.SessionStore()
	require.NoError(t, err)
	assert.IsType(t, &session.MemoryStore{}, s)

	svc.Config.Session.Backend = config.SessionFile
	s, err = svc.SessionStore()
	require.NoError(t, err)
	assert.IsType(t, &session.FileStore{}, s)

	svc.Config.Session.Backend = config.SessionCookie
	_, err = svc.SessionStore()
	assert.Error(t, err)

	s, err = svc.terminalSessionStore()
	require.NoError(t, err)
	assert.IsType(t, &session.FileStore{}, s)
	assert.Equal(t, config.SessionCookie, svc.Config.Session.Backend)
}

func TestAPIServer(t *testing.T) {
	svc := openTest(t, testConfig(t), OpenOptions{})
	srv, err := svc.APIServer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	opts := svc.ServeOptions()
	assert.Equal(t, ":8080", opts.Addr)
}

func TestAPIServer_CookieSessions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.Backend = config.SessionCookie
	cfg.Session.CookieSecret = "too-short"
	svc := openTest(t, cfg, OpenOptions{})

	_, err := svc.APIServer()
	require.Error(t, err)

	svc.Config.Session.CookieSecret = strings.Repeat("k", 32)
	srv, err := svc.APIServer()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+strings.Repeat("0", 8), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "quiz_id", "q1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"quiz_id":"q1"`)
}

func TestHomeWarningWithoutProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = "openai"
	svc := openTest(t, cfg, OpenOptions{})
	records, err := svc.terminalSessionStore()
	require.NoError(t, err)

	f := &screens{svc: svc, records: records}
	home := f.home()
	assert.Contains(t, home.View(120, 40), "No LLM provider configured")
}

type stub struct{ title string }

func (s *stub) Init() tea.Cmd                           { return nil }
func (s *stub) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stub) View(int, int) string                    { return s.title }
func (s *stub) Title() string                           { return s.title }

func TestAppModel_Navigation(t *testing.T) {
	m := newAppModel(&stub{title: "Home"}, "u1")
	m.push(&stub{title: "Quiz"})
	assert.Len(t, m.startup, 2)
	assert.Equal(t, 2, m.router.Depth())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(AppModel)
	assert.Equal(t, 100, m.width)

	next, cmd := m.Update(router.PopToRootMsg{})
	m = next.(AppModel)
	assert.Equal(t, 1, m.router.Depth())
	require.NotNil(t, cmd)
	assert.IsType(t, screen.RefreshMsg{}, cmd())

	_, cmd = m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
