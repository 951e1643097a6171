package content

// Config controls prompts and validation of the Generator.
type Config struct {
	// Validators run in order on every generated question; the first
	// failure rejects the whole batch.
	Validators []Validator

	QuestionTemperature    float64
	TimeBudgetTemperature  float64
	ExplanationTemperature float64
	FeedbackTemperature    float64

	// DisableAITimeBudget skips the provider call and always uses the
	// fallback formula.
	DisableAITimeBudget bool
}

// DefaultConfig returns the standard validator chain and temperatures.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&AnswerInOptionsValidator{},
			&UniqueOptionsValidator{},
		},
		QuestionTemperature:    0.7,
		TimeBudgetTemperature:  0.2,
		ExplanationTemperature: 0.4,
		FeedbackTemperature:    0.6,
	}
}
