package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate clears the variables Load reads and points the default config
// path at an empty directory.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{
		"QUIZFORGE_CONFIG", "QUIZFORGE_DB", "QUIZFORGE_USER", "QUIZFORGE_LOG_LEVEL",
		"QUIZFORGE_LOG_FORMAT", "QUIZFORGE_ADDR", "QUIZFORGE_SESSION_BACKEND",
		"QUIZFORGE_SESSION_DIR", "QUIZFORGE_REDIS_ADDR", "QUIZFORGE_REDIS_PASSWORD",
		"QUIZFORGE_REDIS_DB", "QUIZFORGE_COOKIE_SECRET", "QUIZFORGE_SESSION_TTL",
		"QUIZFORGE_DISABLE_AI_TIMER", "QUIZFORGE_LLM_PROVIDER", "QUIZFORGE_LLM_TIMEOUT",
		"QUIZFORGE_GEMINI_API_KEY", "QUIZFORGE_OPENAI_API_KEY", "QUIZFORGE_ANTHROPIC_API_KEY",
		"QUIZFORGE_OPENROUTER_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
	assert.Equal(t, SessionFile, cfg.Session.Backend)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "local", cfg.UserID)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)
	path := writeFile(t, `
db: /tmp/quiz.db
user_id: asha
log:
  level: debug
  format: json
server:
  addr: ":9000"
  write_timeout: 90s
session:
  backend: redis
  redis_addr: redis:6379
llm:
  provider: openai
  openai:
    api_key: from-file
  timeout: 20s
quiz:
  disable_ai_time_budget: true
`)
	t.Setenv("QUIZFORGE_ADDR", ":7000")
	t.Setenv("QUIZFORGE_REDIS_DB", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/quiz.db", cfg.DB)
	assert.Equal(t, "asha", cfg.UserID)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, ":7000", cfg.Server.Addr, "env beats file")
	assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout, "unset keys keep defaults")
	assert.Equal(t, SessionRedis, cfg.Session.Backend)
	assert.Equal(t, 2, cfg.Session.RedisDB)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "from-file", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, 20*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.Quiz.DisableAITimeBudget)
}

func TestLoad_ConfigEnvVar(t *testing.T) {
	isolate(t)
	t.Setenv("QUIZFORGE_CONFIG", writeFile(t, "user_id: ravi\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ravi", cfg.UserID)
}

func TestLoad_DefaultPathRead(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "quizforge"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quizforge", "config.yaml"), []byte("user_id: meera\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "meera", cfg.UserID)
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")

	_, err = Load(writeFile(t, "no_such_key: 1\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Load(writeFile(t, "log:\n  level: loud\n"))
	assert.ErrorContains(t, err, "log.level")

	_, err = Load(writeFile(t, "session:\n  backend: cookie\n  cookie_secret: short\n"))
	assert.ErrorContains(t, err, "cookie_secret")

	_, err = Load(writeFile(t, "session:\n  backend: carrier-pigeon\n"))
	assert.ErrorContains(t, err, "session.backend")
}

func TestLoad_EmptyFile(t *testing.T) {
	isolate(t)
	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.UserID)
}

func TestApplyEnv_DiscoversVendorKey(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "sk-ant", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, "claude-haiku", cfg.LLM.Anthropic.Model)
}

func TestApplyEnv_ExplicitProviderWins(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("QUIZFORGE_LLM_PROVIDER", "gemini")
	t.Setenv("QUIZFORGE_GEMINI_API_KEY", "g-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "g-key", cfg.LLM.Gemini.APIKey)
}
