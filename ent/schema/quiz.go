package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Quiz is a generated set of questions for one user, subject and
// difficulty.
type Quiz struct {
	ent.Schema
}

func (Quiz) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (Quiz) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Immutable(),
		field.String("user_id"),
		field.String("subject_id"),
		field.String("title"),
		field.String("subject_name"),
		field.String("difficulty").
			Comment("Easy, Medium or Hard"),
		field.Int("total_questions"),
		field.Int("time_limit").
			Comment("Seconds"),
		field.JSON("questions", []any{}).
			Comment("Ordered questions with options"),
		field.Bool("is_completed").
			Default(false),
	}
}

func (Quiz) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id"),
		index.Fields("subject_id"),
	}
}
