package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizforge/internal/quiz"
)

var quizColumns = []string{
	"id", "user_id", "subject_id", "title", "subject_name", "difficulty",
	"total_questions", "time_limit", "questions", "is_completed", "created_at", "updated_at",
}

type quizRepo struct {
	s *Store
}

func (r *quizRepo) Create(ctx context.Context, q *quiz.Quiz) error {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now

	query, args := r.s.builder().Insert(tableQuizzes).
		Columns(quizColumns...).
		Values(q.ID, q.UserID, q.SubjectID, q.Title, q.SubjectName, string(q.Difficulty),
			q.TotalQuestions, q.TimeLimit, string(questions), q.IsCompleted, q.CreatedAt, q.UpdatedAt).
		Query()
	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return &quiz.PersistenceError{Op: "create quiz", Err: err}
	}
	return nil
}

func (r *quizRepo) Get(ctx context.Context, id string) (*quiz.Quiz, error) {
	b := r.s.builder()
	query, args := b.Select(quizColumns...).
		From(b.Table(tableQuizzes)).
		Where(entsql.EQ("id", id)).
		Query()
	q, err := scanQuiz(r.s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &quiz.NotFoundError{Kind: "quiz", ID: id}
	}
	if err != nil {
		return nil, &quiz.PersistenceError{Op: "get quiz", Err: err}
	}
	return q, nil
}

func (r *quizRepo) ListByUser(ctx context.Context, userID string) ([]quiz.Quiz, error) {
	b := r.s.builder()
	query, args := b.Select(quizColumns...).
		From(b.Table(tableQuizzes)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at")).
		Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &quiz.PersistenceError{Op: "list quizzes", Err: err}
	}
	defer rows.Close()

	var out []quiz.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, &quiz.PersistenceError{Op: "scan quiz", Err: err}
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func (r *quizRepo) MarkCompleted(ctx context.Context, id string) error {
	query, args := r.s.builder().Update(tableQuizzes).
		Set("is_completed", true).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id)).
		Query()
	return r.s.execOne(ctx, "complete quiz", "quiz", id, query, args)
}

func (r *quizRepo) Delete(ctx context.Context, id string) error {
	query, args := r.s.builder().Delete(tableQuizzes).
		Where(entsql.EQ("id", id)).
		Query()
	return r.s.execOne(ctx, "delete quiz", "quiz", id, query, args)
}

func scanQuiz(row scanner) (*quiz.Quiz, error) {
	var (
		q          quiz.Quiz
		difficulty string
		questions  []byte
	)
	err := row.Scan(&q.ID, &q.UserID, &q.SubjectID, &q.Title, &q.SubjectName, &difficulty,
		&q.TotalQuestions, &q.TimeLimit, &questions, &q.IsCompleted, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	q.Difficulty = quiz.Difficulty(difficulty)
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return &q, nil
}

// execOne runs a statement that must affect exactly one row identified by
// id; zero affected rows is a *quiz.NotFoundError.
func (s *Store) execOne(ctx context.Context, op, kind, id, query string, args []any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &quiz.PersistenceError{Op: op, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &quiz.PersistenceError{Op: op, Err: err}
	}
	if n == 0 {
		return &quiz.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
