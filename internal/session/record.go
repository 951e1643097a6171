package session

import (
	"context"
	"time"
)

// KeyPrefix namespaces session records in a Store.
const KeyPrefix = "session:"

// Key returns the store key of the session for quizID.
func Key(quizID string) string {
	return KeyPrefix + quizID
}

// Record is the persisted form of an in-progress session. StartTime is in
// unix milliseconds and Answers maps question id to the selected option.
type Record struct {
	QuizID               string            `json:"quizId"`
	StartTime            int64             `json:"startTime"`
	Answers              map[string]string `json:"answers"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
}

// Started returns StartTime as a time.
func (r *Record) Started() time.Time {
	return time.UnixMilli(r.StartTime)
}

// Store persists session records. Get returns nil, nil when no record
// exists for key.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	Set(ctx context.Context, key string, r *Record) error
	Remove(ctx context.Context, key string) error
}
