package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// UserProgress aggregates a user's results across all subjects.
type UserProgress struct {
	ent.Schema
}

func (UserProgress) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (UserProgress) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Immutable(),
		field.String("user_id").
			Unique(),
		field.Int("total_quizzes").
			Default(0),
		field.Int64("total_score").
			Default(0),
		field.Float("average_score").
			Default(0),
		field.JSON("subject_progress", []any{}),
		field.Time("last_quiz_date").
			Optional().
			Nillable(),
	}
}
