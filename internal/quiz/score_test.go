package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPercentage(t *testing.T) {
	tests := []struct {
		name         string
		score, total int
		want         int
	}{
		{"zero total", 0, 0, 0},
		{"two of five", 2, 5, 40},
		{"half rounds up", 1, 8, 13},
		{"two thirds", 2, 3, 67},
		{"one third", 1, 3, 33},
		{"perfect", 24, 24, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentage(tt.score, tt.total))
		})
	}
}

func TestScore_CountsOnlyCorrect(t *testing.T) {
	answers := []AnswerRecord{
		{QuestionIndex: 0, SelectedOption: strPtr("a"), IsCorrect: true},
		{QuestionIndex: 1, SelectedOption: strPtr("b"), IsCorrect: false},
		{QuestionIndex: 2, SelectedOption: nil, IsCorrect: false},
		{QuestionIndex: 3, SelectedOption: strPtr("c"), IsCorrect: true},
	}
	assert.Equal(t, 2, Score(answers))
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 0.0, Average(10, 0))
	assert.Equal(t, 3.33, Average(10, 3))
	assert.Equal(t, 2.5, Average(5, 2))
}

func TestUserProgress_RecordSeedsAndAccumulates(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var p UserProgress

	p.Record(&QuizResult{SubjectID: "s1", Score: 3, Percentage: 60}, now)
	require.Equal(t, 1, p.TotalQuizzes)
	assert.Equal(t, 3, p.TotalScore)
	assert.Equal(t, 3.0, p.AverageScore)
	assert.Equal(t, now, p.LastQuizDate)
	require.Len(t, p.Subjects, 1)
	assert.Equal(t, 60, p.Subjects[0].BestScore)

	later := now.Add(time.Hour)
	p.Record(&QuizResult{SubjectID: "s1", Score: 4, Percentage: 80}, later)
	p.Record(&QuizResult{SubjectID: "s2", Score: 1, Percentage: 10}, later)

	assert.Equal(t, 3, p.TotalQuizzes)
	assert.Equal(t, 8, p.TotalScore)
	assert.Equal(t, 2.67, p.AverageScore)

	s1 := p.Subject("s1")
	require.NotNil(t, s1)
	assert.Equal(t, 2, s1.QuizzesTaken)
	assert.Equal(t, 80, s1.BestScore)
	assert.Equal(t, 70.0, s1.AverageScore)

	s2 := p.Subject("s2")
	require.NotNil(t, s2)
	assert.Equal(t, 1, s2.QuizzesTaken)
}

func TestUserProgress_SubjectAverageDoesNotDrift(t *testing.T) {
	var p UserProgress
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var sum int64
	for i := range 50 {
		pct := (i * 37) % 101
		sum += int64(pct)
		p.Record(&QuizResult{SubjectID: "s1", Score: 1, Percentage: pct}, now)
	}

	sp := p.Subject("s1")
	require.NotNil(t, sp)
	assert.Equal(t, sum, sp.PercentageSum)
	assert.Equal(t, Average(sum, 50), sp.AverageScore)
}

func TestUserProgress_RecordUpgradesStoredAverage(t *testing.T) {
	p := UserProgress{
		TotalQuizzes: 2,
		Subjects:     []SubjectProgress{{SubjectID: "s1", QuizzesTaken: 2, BestScore: 80, AverageScore: 70}},
	}
	p.Record(&QuizResult{SubjectID: "s1", Score: 1, Percentage: 40}, time.Now())

	sp := p.Subject("s1")
	require.NotNil(t, sp)
	assert.Equal(t, int64(180), sp.PercentageSum)
	assert.Equal(t, 60.0, sp.AverageScore)
}

