package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent"
	entsql "entgo.io/ent/dialect/sql"
	entschema "entgo.io/ent/dialect/sql/schema"

	"github.com/abhisek/quizforge/ent/schema"
)

// Table names.
const (
	tableSubjects  = "subjects"
	tableQuizzes   = "quizzes"
	tableResults   = "quiz_results"
	tableProgress  = "user_progress"
	tableLLMEvents = "llm_request_events"
)

// entities maps every ent schema declaration to its table.
var entities = []struct {
	table  string
	schema ent.Interface
}{
	{tableSubjects, schema.Subject{}},
	{tableQuizzes, schema.Quiz{}},
	{tableResults, schema.QuizResult{}},
	{tableProgress, schema.UserProgress{}},
	{tableLLMEvents, schema.LLMRequestEvent{}},
}

// migrate creates or extends every table in append-only mode.
func (s *Store) migrate(ctx context.Context) error {
	tables, err := Tables()
	if err != nil {
		return err
	}
	m, err := entschema.NewMigrate(entsql.OpenDB(s.dialect, s.db))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables...)
}

// Tables builds the migration tables from the ent schema declarations.
func Tables() ([]*entschema.Table, error) {
	tables := make([]*entschema.Table, 0, len(entities))
	for _, e := range entities {
		t, err := buildTable(e.table, e.schema)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func buildTable(name string, s ent.Interface) (*entschema.Table, error) {
	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	t := entschema.NewTable(name)
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, d.Name, d.Err)
		}
		col := &entschema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Size:     int64(d.Size),
			Unique:   d.Unique,
			Nullable: d.Optional,
			Default:  columnDefault(d.Default),
			Comment:  d.Comment,
		}
		if d.StorageKey != "" {
			col.Name = d.StorageKey
		}
		if col.Name == "id" {
			col.Increment = d.Info.Type.Integer()
			t.AddPrimary(col)
			continue
		}
		t.AddColumn(col)
	}

	for _, idx := range indexes {
		d := idx.Descriptor()
		key := d.StorageKey
		if key == "" {
			key = name + "_" + strings.Join(d.Fields, "_")
		}
		t.AddIndex(key, d.Unique, d.Fields)
	}
	return t, nil
}

// columnDefault keeps literal defaults. Function defaults such as time.Now
// are applied by the repositories at insert time.
func columnDefault(v any) any {
	switch v.(type) {
	case string, bool, int, int64, float64:
		return v
	}
	return nil
}

