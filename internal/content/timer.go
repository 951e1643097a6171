package content

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/quiz"
)

// Time budget sources.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// TimeBudget is the chosen time limit for a quiz.
type TimeBudget struct {
	Total       int    `json:"totalTime"`
	PerQuestion int    `json:"timePerQuestion"`
	Source      string `json:"source"`
}

var baseSeconds = map[string]float64{
	"easy":   45,
	"medium": 60,
	"hard":   90,
}

const defaultBaseSeconds = 60

var subjectMultipliers = map[string]float64{
	"DSA":  1.3,
	"DBMS": 1.1,
	"OS":   1.2,
}

// EstimateTimeBudget asks the provider for a holistic estimate and falls
// back to FallbackTimeBudget when the call fails or returns no positive
// total. It never fails.
func (g *Generator) EstimateTimeBudget(ctx context.Context, difficulty quiz.Difficulty, count int, subject string) TimeBudget {
	if g.config.DisableAITimeBudget {
		return FallbackTimeBudget(difficulty, count, subject)
	}

	ctx, span := g.tracer.Start(ctx, "content.EstimateTimeBudget", trace.WithAttributes(
		attribute.String("quiz.subject", subject),
		attribute.String("quiz.difficulty", string(difficulty)),
		attribute.Int("quiz.count", count),
	))
	defer span.End()

	total, err := g.aiTimeBudget(ctx, difficulty, count, subject)
	if err != nil {
		g.logger.Warn("time budget estimate failed, using fallback",
			"difficulty", difficulty, "count", count, "subject", subject, "error", err)
		span.SetAttributes(attribute.String("quiz.time_source", SourceFallback))
		return FallbackTimeBudget(difficulty, count, subject)
	}
	span.SetAttributes(attribute.String("quiz.time_source", SourceAI))
	return newBudget(total, count, SourceAI)
}

func (g *Generator) aiTimeBudget(ctx context.Context, difficulty quiz.Difficulty, count int, subject string) (float64, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeTimeBudget)
	text, err := llm.Complete(ctx, g.provider, timeBudgetPrompt(subject, difficulty, count), g.config.TimeBudgetTemperature)
	if err != nil {
		return 0, err
	}
	raw, err := ExtractObject(text)
	if err != nil {
		return 0, err
	}
	if err := llm.ValidateJSON(TimeBudgetSchema, raw); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	var out struct {
		TotalTime float64 `json:"totalTime"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out.TotalTime, nil
}

// FallbackTimeBudget is the deterministic budget: base seconds per question
// by difficulty, scaled by the subject multiplier and clamped to the
// allowed time limit range.
func FallbackTimeBudget(difficulty quiz.Difficulty, count int, subject string) TimeBudget {
	base, ok := baseSeconds[strings.ToLower(string(difficulty))]
	if !ok {
		base = defaultBaseSeconds
	}
	mult, ok := subjectMultipliers[subject]
	if !ok {
		mult = 1
	}
	return newBudget(base*float64(count)*mult, count, SourceFallback)
}

func newBudget(total float64, count int, source string) TimeBudget {
	t := quiz.ClampTimeLimitSeconds(total)
	per := t
	if count > 0 {
		per = int(math.Ceil(float64(t) / float64(count)))
	}
	return TimeBudget{Total: t, PerQuestion: per, Source: source}
}
