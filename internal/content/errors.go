package content

import (
	"errors"
	"fmt"
)

// Provider contract violations. Question generation treats them as fatal;
// grading degrades to defaults.
var (
	ErrMalformedResponse    = errors.New("AI did not return valid JSON format")
	ErrInputLengthMismatch  = errors.New("questions and answers must have the same length")
	ErrEmptyExplanations    = errors.New("AI returned invalid explanations format")
	ErrInsufficientFeedback = errors.New("AI returned insufficient feedback")
)

// InvalidQuestionError reports a generated question that failed a
// validator. Index is zero-based; messages use the one-based position.
type InvalidQuestionError struct {
	Index     int
	Validator string
	Message   string
}

func (e *InvalidQuestionError) Error() string {
	return fmt.Sprintf("AI question %d %s", e.Index+1, e.Message)
}

// IsProviderContract reports whether err is a provider contract violation
// raised by this package.
func IsProviderContract(err error) bool {
	var iq *InvalidQuestionError
	return errors.Is(err, ErrMalformedResponse) ||
		errors.Is(err, ErrEmptyExplanations) ||
		errors.Is(err, ErrInsufficientFeedback) ||
		errors.As(err, &iq)
}
