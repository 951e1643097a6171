package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Subject is a quiz topic area such as "DSA" or "OS".
type Subject struct {
	ent.Schema
}

func (Subject) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (Subject) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Immutable().
			Comment("UUID"),
		field.String("name").
			Unique().
			Comment("Short code, e.g. DSA"),
		field.String("full_name").
			Default(""),
		field.Text("description").
			Default(""),
		field.String("icon").
			Default(""),
		field.Bool("is_active").
			Default(true),
	}
}

func (Subject) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("is_active"),
	}
}
