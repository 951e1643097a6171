package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/quizforge/internal/quiz"
)

var progressColumns = []string{
	"id", "user_id", "total_quizzes", "total_score", "average_score",
	"subject_progress", "last_quiz_date",
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type progressRepo struct {
	s *Store
}

func (r *progressRepo) FindByUser(ctx context.Context, userID string) (*quiz.UserProgress, error) {
	p, err := r.find(ctx, r.s.db, userID, false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// Upsert keys on user_id: a second row for the same user replaces the
// aggregate columns of the first.
func (r *progressRepo) Upsert(ctx context.Context, p *quiz.UserProgress) error {
	return r.upsert(ctx, r.s.db, p)
}

// Apply locks the user's progress row, creating an empty one if needed,
// hands it to fn and writes the result back in the same transaction.
// Concurrent calls for one user are serialized.
func (r *progressRepo) Apply(ctx context.Context, userID string, fn func(*quiz.UserProgress)) (*quiz.UserProgress, error) {
	if r.s.dialect == dialect.SQLite {
		r.s.writeMu.Lock()
		defer r.s.writeMu.Unlock()
	}

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &quiz.PersistenceError{Op: "begin progress update", Err: err}
	}
	defer tx.Rollback()

	if err := r.ensureRow(ctx, tx, userID); err != nil {
		return nil, err
	}
	p, err := r.find(ctx, tx, userID, true)
	if err != nil {
		return nil, err
	}
	fn(p)
	if err := r.upsert(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, &quiz.PersistenceError{Op: "commit progress update", Err: err}
	}
	return p, nil
}

// ensureRow inserts an empty aggregate for userID unless one exists.
func (r *progressRepo) ensureRow(ctx context.Context, q querier, userID string) error {
	now := time.Now().UTC()
	query, args := r.s.builder().Insert(tableProgress).
		Columns(append(progressColumns, "created_at", "updated_at")...).
		Values(uuid.NewString(), userID, 0, int64(0), 0.0, "[]", nil, now, now).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing()).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return &quiz.PersistenceError{Op: "create progress", Err: err}
	}
	return nil
}

// find returns sql.ErrNoRows unwrapped when the user has no row.
func (r *progressRepo) find(ctx context.Context, q querier, userID string, lock bool) (*quiz.UserProgress, error) {
	b := r.s.builder()
	sel := b.Select(progressColumns...).
		From(b.Table(tableProgress)).
		Where(entsql.EQ("user_id", userID))
	if lock && r.s.dialect == dialect.Postgres {
		sel.ForUpdate()
	}
	query, args := sel.Query()

	var (
		p        quiz.UserProgress
		total    int64
		subjects []byte
		last     sql.NullTime
	)
	err := q.QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.UserID, &p.TotalQuizzes, &total, &p.AverageScore, &subjects, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, &quiz.PersistenceError{Op: "find progress", Err: err}
	}
	p.TotalScore = int(total)
	if last.Valid {
		p.LastQuizDate = last.Time
	}
	if err := json.Unmarshal(subjects, &p.Subjects); err != nil {
		return nil, fmt.Errorf("decode subject progress: %w", err)
	}
	return &p, nil
}

func (r *progressRepo) upsert(ctx context.Context, q querier, p *quiz.UserProgress) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	subjects := p.Subjects
	if subjects == nil {
		subjects = []quiz.SubjectProgress{}
	}
	data, err := json.Marshal(subjects)
	if err != nil {
		return fmt.Errorf("marshal subject progress: %w", err)
	}
	var last any
	if !p.LastQuizDate.IsZero() {
		last = p.LastQuizDate
	}
	now := time.Now().UTC()

	query, args := r.s.builder().Insert(tableProgress).
		Columns(append(progressColumns, "created_at", "updated_at")...).
		Values(p.ID, p.UserID, p.TotalQuizzes, int64(p.TotalScore), p.AverageScore, string(data), last, now, now).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range []string{"total_quizzes", "total_score", "average_score", "subject_progress", "last_quiz_date", "updated_at"} {
					u.SetExcluded(c)
				}
			}),
		).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return &quiz.PersistenceError{Op: "upsert progress", Err: err}
	}
	return nil
}
