package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// QuizResult is the graded outcome of one quiz attempt.
type QuizResult struct {
	ent.Schema
}

func (QuizResult) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Immutable(),
		field.String("user_id"),
		field.String("quiz_id"),
		field.String("subject_id"),
		field.JSON("user_answers", []any{}),
		field.Int("score"),
		field.Int("percentage"),
		field.Int("time_taken").
			Comment("Seconds"),
		field.JSON("ai_explanations", []any{}),
		field.Text("feedback").
			Default(""),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

func (QuizResult) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id"),
		index.Fields("quiz_id"),
		index.Fields("created_at"),
	}
}
