package content

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/quizforge/internal/quiz"
)

// RawQuestion is one item of the provider's question array before
// validation.
type RawQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Validator checks one generated question.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in errors and logs.
	Name() string

	// Validate returns nil if the question at index passes.
	Validate(index int, q *RawQuestion) *InvalidQuestionError
}

// StructuralValidator checks that the question text, exactly four options
// and a correct answer are present.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(index int, q *RawQuestion) *InvalidQuestionError {
	switch {
	case strings.TrimSpace(q.Question) == "":
		return v.fail(index, "has invalid structure: question is empty")
	case len(q.Options) != quiz.OptionsPerQuestion:
		return v.fail(index, fmt.Sprintf("has invalid structure: expected %d options, got %d", quiz.OptionsPerQuestion, len(q.Options)))
	case q.CorrectAnswer == "":
		return v.fail(index, "has invalid structure: correctAnswer is missing")
	}
	return nil
}

func (v *StructuralValidator) fail(index int, msg string) *InvalidQuestionError {
	return &InvalidQuestionError{Index: index, Validator: v.Name(), Message: msg}
}

// AnswerInOptionsValidator checks that the correct answer is one of the
// options, compared exactly as returned.
type AnswerInOptionsValidator struct{}

func (v *AnswerInOptionsValidator) Name() string { return "answer-in-options" }

func (v *AnswerInOptionsValidator) Validate(index int, q *RawQuestion) *InvalidQuestionError {
	if !slices.Contains(q.Options, q.CorrectAnswer) {
		return &InvalidQuestionError{Index: index, Validator: v.Name(), Message: "correct answer not in options"}
	}
	return nil
}

// UniqueOptionsValidator rejects repeated option texts, compared both as
// returned and trimmed, and requires exactly one option equal to the
// correct answer.
type UniqueOptionsValidator struct{}

func (v *UniqueOptionsValidator) Name() string { return "unique-options" }

func (v *UniqueOptionsValidator) Validate(index int, q *RawQuestion) *InvalidQuestionError {
	seen := make(map[string]bool, len(q.Options))
	matches := 0
	for _, opt := range q.Options {
		key := strings.TrimSpace(opt)
		if seen[opt] || seen[key] {
			return &InvalidQuestionError{Index: index, Validator: v.Name(), Message: fmt.Sprintf("has duplicate option %q", key)}
		}
		seen[opt], seen[key] = true, true
		if opt == q.CorrectAnswer {
			matches++
		}
	}
	if matches != 1 {
		return &InvalidQuestionError{Index: index, Validator: v.Name(), Message: fmt.Sprintf("has %d options matching the correct answer", matches)}
	}
	return nil
}

// toQuestion trims the text fields and flags the correct option. The flag
// compares untrimmed values so it agrees with AnswerInOptionsValidator.
func toQuestion(id string, raw *RawQuestion) quiz.Question {
	q := quiz.Question{
		ID:            id,
		Text:          strings.TrimSpace(raw.Question),
		Options:       make([]quiz.Option, len(raw.Options)),
		CorrectAnswer: strings.TrimSpace(raw.CorrectAnswer),
	}
	for i, opt := range raw.Options {
		q.Options[i] = quiz.Option{
			Text:      strings.TrimSpace(opt),
			IsCorrect: opt == raw.CorrectAnswer,
		}
	}
	return q
}
