package session

import (
	"time"

	"github.com/abhisek/quizforge/internal/quiz"
)

// loadedMsg is sent when the quiz and any saved session have been loaded.
type loadedMsg struct {
	Err error
}

// timerTickMsg is sent every second to update the countdown.
type timerTickMsg time.Time

// tickedMsg carries the result of advancing the session clock. Outcome is
// set when the tick expired the session and auto-submitted it.
type tickedMsg struct {
	Outcome *quiz.Outcome
	Err     error
}

// submittedMsg carries the result of a manual submission.
type submittedMsg struct {
	Outcome *quiz.Outcome
	Err     error
}
