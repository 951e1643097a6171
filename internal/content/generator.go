// Package content turns untrusted provider text into validated quiz
// artifacts: questions, a time budget, explanations and feedback.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/quiz"
)

const tracerName = "github.com/abhisek/quizforge/internal/content"

// Generator is the only component that talks to the text provider. Every
// method is a single provider call plus parsing, so callers may retry any
// of them independently.
type Generator struct {
	provider llm.Provider
	config   Config
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates a Generator. A nil logger uses slog.Default.
func New(provider llm.Provider, cfg Config, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		provider: provider,
		config:   cfg,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// GenerateQuestions asks for count questions and returns them only if every
// item passes validation. Each question gets a fresh id.
func (g *Generator) GenerateQuestions(ctx context.Context, subject string, difficulty quiz.Difficulty, count int) (_ []quiz.Question, err error) {
	ctx, span := g.tracer.Start(ctx, "content.GenerateQuestions", trace.WithAttributes(
		attribute.String("quiz.subject", subject),
		attribute.String("quiz.difficulty", string(difficulty)),
		attribute.Int("quiz.count", count),
	))
	defer func() { endSpan(span, err) }()

	ctx = llm.WithPurpose(ctx, llm.PurposeQuestions)
	text, err := llm.Complete(ctx, g.provider, questionPrompt(subject, difficulty, count), g.config.QuestionTemperature)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	return g.ParseQuestions(text)
}

// ParseQuestions extracts and validates a question array from raw provider
// text. No partial result is returned on failure.
func (g *Generator) ParseQuestions(text string) ([]quiz.Question, error) {
	raw, err := ExtractArray(text)
	if err != nil {
		return nil, err
	}
	if err := llm.ValidateJSON(QuestionListSchema, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	questions := make([]quiz.Question, 0, len(items))
	for i, item := range items {
		var rq RawQuestion
		if err := json.Unmarshal(item, &rq); err != nil {
			return nil, &InvalidQuestionError{Index: i, Validator: "decode", Message: "has invalid structure: " + err.Error()}
		}
		for _, v := range g.config.Validators {
			if verr := v.Validate(i, &rq); verr != nil {
				return nil, verr
			}
		}
		q := toQuestion(uuid.NewString(), &rq)
		if err := q.Validate(); err != nil {
			return nil, &InvalidQuestionError{Index: i, Validator: "question", Message: "is inconsistent: " + err.Error()}
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
