package content

import "github.com/abhisek/quizforge/internal/llm"

// QuestionListSchema is the loose shape of the question array. Per-item
// checks are left to the validators so failures carry the item index.
var QuestionListSchema = &llm.Schema{
	Name:        "quiz-question-list",
	Description: "Array of generated multiple choice questions",
	Definition: map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "object"},
	},
}

// TimeBudgetSchema is the provider's time estimate.
var TimeBudgetSchema = &llm.Schema{
	Name:        "quiz-time-budget",
	Description: "Total time in seconds for a quiz",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"totalTime": map[string]any{
				"type":             "number",
				"exclusiveMinimum": 0,
			},
		},
		"required": []any{"totalTime"},
	},
}

// ExplanationsSchema is the provider's explanation array.
var ExplanationsSchema = &llm.Schema{
	Name:        "quiz-explanations",
	Description: "Per-question explanations",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questionText":  map[string]any{"type": "string"},
				"userAnswer":    map[string]any{"type": []any{"string", "null"}},
				"correctAnswer": map[string]any{"type": "string"},
				"isCorrect":     map[string]any{"type": "boolean"},
				"explanation":   map[string]any{"type": "string"},
			},
			"required": []any{"explanation"},
		},
	},
}
