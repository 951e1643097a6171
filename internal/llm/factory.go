package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/quizforge/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped as
// caller → retry → timeout → tracing → logging → base.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return Wrap(base, cfg, eventRepo, logger), nil
}

// Wrap applies the standard middleware chain to base.
func Wrap(base Provider, cfg Config, eventRepo store.EventRepo, logger *slog.Logger) Provider {
	p := base
	if eventRepo != nil {
		p = WithLogging(p, eventRepo, logger)
	}
	p = WithTracing(p)
	p = WithTimeout(p, cfg.Timeout)
	return WithRetry(p, cfg.Retry)
}
