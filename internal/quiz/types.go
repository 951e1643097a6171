// Package quiz holds the domain types shared by quiz assembly, sessions and grading.
package quiz

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinQuestions = 1
	MaxQuestions = 24

	// Time limits are in seconds.
	MinTimeLimit = 120
	MaxTimeLimit = 1200

	// OptionsPerQuestion is the fixed number of choices per question.
	OptionsPerQuestion = 4
)

// Difficulty is the requested difficulty of a quiz.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Difficulties lists the valid difficulties in ascending order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty parses a difficulty name case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return "", &ValidationError{Field: "difficulty", Message: fmt.Sprintf("unknown difficulty %q", s)}
}

func (d Difficulty) String() string { return string(d) }

// Option is one of the four choices of a question.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is a single multiple choice question.
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"questionText"`
	Options       []Option `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// HasOption reports whether text is one of the question's options.
func (q Question) HasOption(text string) bool {
	for _, o := range q.Options {
		if o.Text == text {
			return true
		}
	}
	return false
}

// OptionTexts returns the option texts in order.
func (q Question) OptionTexts() []string {
	out := make([]string, len(q.Options))
	for i, o := range q.Options {
		out[i] = o.Text
	}
	return out
}

// IsCorrect reports whether the selected option is the correct answer.
// A nil selection is never correct.
func (q Question) IsCorrect(selected *string) bool {
	return selected != nil && *selected == q.CorrectAnswer
}

// Validate checks the structural invariants of a question: non-empty text,
// exactly four options, exactly one correct option, and a correct answer
// matching that option.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Field: "questionText", Message: "must not be empty"}
	}
	if len(q.Options) != OptionsPerQuestion {
		return &ValidationError{Field: "options", Message: fmt.Sprintf("expected %d options, got %d", OptionsPerQuestion, len(q.Options))}
	}
	correct := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			correct++
			if o.Text != q.CorrectAnswer {
				return &ValidationError{Field: "correctAnswer", Message: "does not match the correct option"}
			}
		}
	}
	if correct != 1 {
		return &ValidationError{Field: "options", Message: fmt.Sprintf("expected exactly one correct option, got %d", correct)}
	}
	return nil
}

// Subject is a quiz topic. Name is the short code (e.g. "DBMS"), FullName
// the display name.
type Subject struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"fullName"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MissingFields returns the names of display fields required for quiz
// generation that are empty.
func (s Subject) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(s.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(s.FullName) == "" {
		missing = append(missing, "fullName")
	}
	return missing
}

// Quiz is a persisted, generated quiz. Only IsCompleted changes after creation.
type Quiz struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	SubjectID      string     `json:"subjectId"`
	Title          string     `json:"title"`
	SubjectName    string     `json:"subjectName"`
	Difficulty     Difficulty `json:"difficulty"`
	TotalQuestions int        `json:"totalQuestions"`
	TimeLimit      int        `json:"timeLimit"`
	Questions      []Question `json:"questions"`
	IsCompleted    bool       `json:"isCompleted"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// TimeLimitDuration returns the time limit as a duration.
func (q *Quiz) TimeLimitDuration() time.Duration {
	return time.Duration(q.TimeLimit) * time.Second
}

// QuestionIndex returns the position of the question with the given id, or -1.
func (q *Quiz) QuestionIndex(id string) int {
	for i, qq := range q.Questions {
		if qq.ID == id {
			return i
		}
	}
	return -1
}

// ClampTimeLimit clamps seconds into [MinTimeLimit, MaxTimeLimit].
func ClampTimeLimit(seconds int) int {
	return max(MinTimeLimit, min(MaxTimeLimit, seconds))
}

// ClampTimeLimitSeconds clamps a fractional estimate into the allowed range
// before rounding, so estimates beyond the int range still land on
// MaxTimeLimit.
func ClampTimeLimitSeconds(seconds float64) int {
	seconds = max(float64(MinTimeLimit), min(float64(MaxTimeLimit), seconds))
	return ClampTimeLimit(RoundSeconds(seconds))
}
