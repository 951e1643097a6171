package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/quiz"
)

// MinFeedbackLength is the shortest feedback accepted from the provider.
const MinFeedbackLength = 10

// ExplanationItem is one explanation as returned to callers. Everything
// except Explanation is taken from the inputs, not the provider.
type ExplanationItem struct {
	QuestionIndex int     `json:"questionIndex"`
	QuestionText  string  `json:"questionText"`
	UserAnswer    *string `json:"userAnswer"`
	CorrectAnswer string  `json:"correctAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
	Explanation   string  `json:"explanation"`
}

// ResultSummary is the performance summary the feedback prompt describes.
type ResultSummary struct {
	Score          int `json:"score"`
	TotalQuestions int `json:"totalQuestions"`
	Percentage     int `json:"percentage"`
	TimeSpent      int `json:"timeSpent"`
}

// GenerateExplanations asks for one explanation per question. answers[i]
// is the user's selection for questions[i], nil when unanswered.
func (g *Generator) GenerateExplanations(ctx context.Context, questions []quiz.Question, answers []*string) (_ []ExplanationItem, err error) {
	if len(questions) != len(answers) {
		return nil, fmt.Errorf("%w: %d questions, %d answers", ErrInputLengthMismatch, len(questions), len(answers))
	}

	ctx, span := g.tracer.Start(ctx, "content.GenerateExplanations",
		trace.WithAttributes(attribute.Int("quiz.count", len(questions))))
	defer func() { endSpan(span, err) }()

	prompt, err := explanationPrompt(questions, answers)
	if err != nil {
		return nil, err
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeExplanations)
	text, err := llm.Complete(ctx, g.provider, prompt, g.config.ExplanationTemperature)
	if err != nil {
		return nil, fmt.Errorf("generate explanations: %w", err)
	}
	return ParseExplanations(text, questions, answers)
}

// ParseExplanations extracts the explanation array from provider text.
// Each item's questionIndex is its array position; items beyond the
// input questions are dropped.
func ParseExplanations(text string, questions []quiz.Question, answers []*string) ([]ExplanationItem, error) {
	raw, err := ExtractArray(text)
	if err != nil {
		return nil, err
	}
	if err := llm.ValidateJSON(ExplanationsSchema, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	var items []ExplanationItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyExplanations
	}

	if len(items) > len(questions) {
		items = items[:len(questions)]
	}
	for i := range items {
		q := questions[i]
		items[i].QuestionIndex = i
		items[i].QuestionText = q.Text
		items[i].UserAnswer = answers[i]
		items[i].CorrectAnswer = q.CorrectAnswer
		items[i].IsCorrect = q.IsCorrect(answers[i])
	}
	return items, nil
}

// GenerateFeedback asks for a short encouraging paragraph. The trimmed raw
// text is the result.
func (g *Generator) GenerateFeedback(ctx context.Context, summary ResultSummary, subject string) (_ string, err error) {
	ctx, span := g.tracer.Start(ctx, "content.GenerateFeedback", trace.WithAttributes(
		attribute.String("quiz.subject", subject),
		attribute.Int("quiz.percentage", summary.Percentage),
	))
	defer func() { endSpan(span, err) }()

	ctx = llm.WithPurpose(ctx, llm.PurposeFeedback)
	text, err := llm.Complete(ctx, g.provider, feedbackPrompt(summary, subject), g.config.FeedbackTemperature)
	if err != nil {
		return "", fmt.Errorf("generate feedback: %w", err)
	}
	text = strings.TrimSpace(text)
	if len(text) < MinFeedbackLength {
		return "", ErrInsufficientFeedback
	}
	return text, nil
}
