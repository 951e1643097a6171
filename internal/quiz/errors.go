package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// ErrGenerationFailed is returned when generation produced no usable questions.
var ErrGenerationFailed = errors.New("failed to generate questions")

// ValidationError reports bad caller input. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s %s", e.Field, e.Message)
}

// NotFoundError reports a missing subject, quiz, result or progress record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IncompleteSubjectError reports a subject lacking the display fields
// needed to build a prompt.
type IncompleteSubjectError struct {
	SubjectID string
	Missing   []string
}

func (e *IncompleteSubjectError) Error() string {
	return fmt.Sprintf("subject %q is incomplete: missing %s", e.SubjectID, strings.Join(e.Missing, ", "))
}

// MissingFields returns the missing fields as a name → true map.
func (e *IncompleteSubjectError) MissingFields() map[string]bool {
	m := map[string]bool{"name": false, "fullName": false}
	for _, f := range e.Missing {
		m[f] = true
	}
	return m
}

// PersistenceError wraps a storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
