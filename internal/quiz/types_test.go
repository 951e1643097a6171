package quiz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestion() Question {
	return Question{
		ID:   "q1",
		Text: "What does normalization reduce?",
		Options: []Option{
			{Text: "Redundancy", IsCorrect: true},
			{Text: "Storage devices"},
			{Text: "Query speed"},
			{Text: "Backups"},
		},
		CorrectAnswer: "Redundancy",
	}
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{
		"easy": Easy, "Medium": Medium, " HARD ": Hard,
	} {
		got, err := ParseDifficulty(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseDifficulty("extreme")
	assert.True(t, IsValidation(err))
}

func TestQuestion_Validate(t *testing.T) {
	assert.NoError(t, validQuestion().Validate())

	q := validQuestion()
	q.Text = "  "
	assert.Error(t, q.Validate())

	q = validQuestion()
	q.Options = q.Options[:3]
	assert.Error(t, q.Validate())

	q = validQuestion()
	q.Options[1].IsCorrect = true
	assert.Error(t, q.Validate())

	q = validQuestion()
	q.CorrectAnswer = "Backups"
	assert.Error(t, q.Validate())
}

func TestQuestion_IsCorrect(t *testing.T) {
	q := validQuestion()
	assert.True(t, q.IsCorrect(strPtr("Redundancy")))
	assert.False(t, q.IsCorrect(strPtr("Backups")))
	assert.False(t, q.IsCorrect(nil))
	assert.True(t, q.HasOption("Query speed"))
	assert.False(t, q.HasOption("query speed"))
}

func TestSubject_MissingFields(t *testing.T) {
	assert.Empty(t, Subject{Name: "OS", FullName: "Operating Systems"}.MissingFields())
	assert.Equal(t, []string{"fullName"}, Subject{Name: "OS"}.MissingFields())
}

func TestClampTimeLimit(t *testing.T) {
	assert.Equal(t, 120, ClampTimeLimit(30))
	assert.Equal(t, 900, ClampTimeLimit(900))
	assert.Equal(t, 1200, ClampTimeLimit(5000))

	assert.Equal(t, 1200, ClampTimeLimitSeconds(9.3e18))
	assert.Equal(t, 1200, ClampTimeLimitSeconds(1e20))
	assert.Equal(t, 450, ClampTimeLimitSeconds(450.4))
	assert.Equal(t, 120, ClampTimeLimitSeconds(-5))
}

func TestErrorTaxonomy(t *testing.T) {
	nf := &NotFoundError{Kind: "quiz", ID: "abc"}
	wrapped := errors.Join(errors.New("ctx"), nf)
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))

	inner := errors.New("disk full")
	pe := &PersistenceError{Op: "create quiz", Err: inner}
	assert.ErrorIs(t, pe, inner)

	inc := &IncompleteSubjectError{SubjectID: "s", Missing: []string{"fullName"}}
	assert.Equal(t, map[string]bool{"name": false, "fullName": true}, inc.MissingFields())
}
