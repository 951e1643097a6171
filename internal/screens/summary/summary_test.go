package summary

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/router"
)

func strPtr(s string) *string { return &s }

func testResult() (*quiz.Quiz, *quiz.QuizResult) {
	q := &quiz.Quiz{
		Title:     "Operating Systems - Easy Quiz",
		TimeLimit: 300,
		Questions: []quiz.Question{
			{ID: "q1", Text: "What does a scheduler do?", CorrectAnswer: "Picks the next process"},
			{ID: "q2", Text: "What is a page fault?", CorrectAnswer: "A missing page access"},
		},
	}
	res := &quiz.QuizResult{
		Answers: []quiz.AnswerRecord{
			{QuestionIndex: 0, SelectedOption: strPtr("Picks the next process"), IsCorrect: true},
			{QuestionIndex: 1},
		},
		Score:      1,
		Percentage: 50,
		TimeTaken:  125,
		Explanations: []quiz.Explanation{
			{QuestionIndex: 1, Explanation: "The page is not resident in memory."},
		},
		Feedback: "Stored feedback about paging.",
	}
	return q, res
}

func TestView_ShowsScoreAndReview(t *testing.T) {
	q, res := testResult()
	view := New(q, res, "").View(100, 60)

	assert.Contains(t, view, "Good! 1/2 correct")
	assert.Contains(t, view, "2:05")
	assert.Contains(t, view, "Stored feedback about paging.")
	assert.Contains(t, view, "(not answered)")
	assert.Contains(t, view, "Correct answer: A missing page access")
	assert.Contains(t, view, "The page is not resident in memory.")
}

func TestFromOutcome_PrefersOutcomeFeedback(t *testing.T) {
	q, res := testResult()
	s := FromOutcome(q, &quiz.Outcome{ResultID: "r1", Feedback: "Fresh feedback for you.", Result: res})
	view := s.View(100, 60)
	assert.Contains(t, view, "Fresh feedback for you.")
	assert.False(t, strings.Contains(view, "Stored feedback"))
}

func TestEnterReturnsHome(t *testing.T) {
	q, res := testResult()
	_, cmd := New(q, res, "").Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopToRootMsg)
	assert.True(t, ok)
}

func TestScrollClamps(t *testing.T) {
	q, res := testResult()
	s := New(q, res, "")
	for range 50 {
		s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	s.View(100, 60)
	assert.Equal(t, 0, s.offset)
}

func TestGrade(t *testing.T) {
	assert.Equal(t, "Outstanding", Grade(100))
	assert.Equal(t, "Great", Grade(80))
	assert.Equal(t, "Good", Grade(50))
	assert.Equal(t, "Keep going", Grade(30))
	assert.Equal(t, "Needs practice", Grade(0))
}
