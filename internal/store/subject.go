package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/quizforge/internal/quiz"
)

var subjectColumns = []string{
	"id", "name", "full_name", "description", "icon", "is_active", "created_at",
}

type subjectRepo struct {
	s *Store
}

func (r *subjectRepo) Create(ctx context.Context, subj *quiz.Subject) error {
	if missing := subj.MissingFields(); len(missing) > 0 {
		return &quiz.ValidationError{Field: strings.Join(missing, ", "), Message: "is required"}
	}
	if existing, err := r.GetByName(ctx, subj.Name); err == nil && existing != nil {
		return &quiz.ValidationError{Field: "name", Message: fmt.Sprintf("%q already exists", subj.Name)}
	} else if err != nil && !quiz.IsNotFound(err) {
		return err
	}

	if subj.ID == "" {
		subj.ID = uuid.NewString()
	}
	if subj.CreatedAt.IsZero() {
		subj.CreatedAt = time.Now().UTC()
	}

	query, args := r.s.builder().Insert(tableSubjects).
		Columns(append(subjectColumns, "updated_at")...).
		Values(subj.ID, subj.Name, subj.FullName, subj.Description, subj.Icon, subj.IsActive, subj.CreatedAt, subj.CreatedAt).
		Query()
	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return &quiz.PersistenceError{Op: "create subject", Err: err}
	}
	return nil
}

func (r *subjectRepo) Get(ctx context.Context, id string) (*quiz.Subject, error) {
	b := r.s.builder()
	query, args := b.Select(subjectColumns...).
		From(b.Table(tableSubjects)).
		Where(entsql.EQ("id", id)).
		Query()
	subj, err := scanSubject(r.s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &quiz.NotFoundError{Kind: "subject", ID: id}
	}
	if err != nil {
		return nil, &quiz.PersistenceError{Op: "get subject", Err: err}
	}
	return subj, nil
}

func (r *subjectRepo) GetByName(ctx context.Context, name string) (*quiz.Subject, error) {
	b := r.s.builder()
	query, args := b.Select(subjectColumns...).
		From(b.Table(tableSubjects)).
		Where(entsql.EQ(entsql.Lower("name"), strings.ToLower(name))).
		Query()
	subj, err := scanSubject(r.s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &quiz.NotFoundError{Kind: "subject", ID: name}
	}
	if err != nil {
		return nil, &quiz.PersistenceError{Op: "get subject by name", Err: err}
	}
	return subj, nil
}

func (r *subjectRepo) ListActive(ctx context.Context) ([]quiz.Subject, error) {
	b := r.s.builder()
	query, args := b.Select(subjectColumns...).
		From(b.Table(tableSubjects)).
		Where(entsql.EQ("is_active", true)).
		OrderBy("name").
		Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &quiz.PersistenceError{Op: "list subjects", Err: err}
	}
	defer rows.Close()

	var out []quiz.Subject
	for rows.Next() {
		subj, err := scanSubject(rows)
		if err != nil {
			return nil, &quiz.PersistenceError{Op: "scan subject", Err: err}
		}
		out = append(out, *subj)
	}
	return out, rows.Err()
}

func (r *subjectRepo) Count(ctx context.Context) (int, error) {
	return r.s.count(ctx, tableSubjects, nil)
}

func scanSubject(row scanner) (*quiz.Subject, error) {
	var subj quiz.Subject
	err := row.Scan(&subj.ID, &subj.Name, &subj.FullName, &subj.Description,
		&subj.Icon, &subj.IsActive, &subj.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &subj, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// count returns the number of rows in table matching where (nil = all).
func (s *Store) count(ctx context.Context, table string, where *entsql.Predicate) (int, error) {
	b := s.builder()
	sel := b.Select(entsql.Count("*")).From(b.Table(table))
	if where != nil {
		sel.Where(where)
	}
	query, args := sel.Query()
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, &quiz.PersistenceError{Op: "count " + table, Err: err}
	}
	return n, nil
}

// DefaultSubjects is the catalogue inserted by Seed.
var DefaultSubjects = []quiz.Subject{
	{Name: "DSA", FullName: "Data Structures and Algorithms", Description: "Arrays, trees, graphs, sorting and complexity analysis", Icon: "🧮", IsActive: true},
	{Name: "DBMS", FullName: "Database Management Systems", Description: "Relational model, SQL, normalization and transactions", Icon: "🗄", IsActive: true},
	{Name: "OS", FullName: "Operating Systems", Description: "Processes, scheduling, memory management and file systems", Icon: "💻", IsActive: true},
	{Name: "CN", FullName: "Computer Networks", Description: "OSI and TCP/IP layers, routing and protocols", Icon: "🌐", IsActive: true},
	{Name: "OOPS", FullName: "Object Oriented Programming", Description: "Classes, inheritance, polymorphism and design principles", Icon: "🧩", IsActive: true},
}

// Seed inserts DefaultSubjects when the catalogue is empty and reports how
// many were inserted.
func Seed(ctx context.Context, repo SubjectRepo) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for i := range DefaultSubjects {
		subj := DefaultSubjects[i]
		if err := repo.Create(ctx, &subj); err != nil {
			return i, fmt.Errorf("seed %s: %w", subj.Name, err)
		}
	}
	return len(DefaultSubjects), nil
}
