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

var resultColumns = []string{
	"id", "user_id", "quiz_id", "subject_id", "user_answers", "score", "percentage",
	"time_taken", "ai_explanations", "feedback", "created_at",
}

type resultRepo struct {
	s *Store
}

func (r *resultRepo) Create(ctx context.Context, res *quiz.QuizResult) error {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	explanations := res.Explanations
	if explanations == nil {
		explanations = []quiz.Explanation{}
	}
	expl, err := json.Marshal(explanations)
	if err != nil {
		return fmt.Errorf("marshal explanations: %w", err)
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}

	query, args := r.s.builder().Insert(tableResults).
		Columns(resultColumns...).
		Values(res.ID, res.UserID, res.QuizID, res.SubjectID, string(answers), res.Score,
			res.Percentage, res.TimeTaken, string(expl), res.Feedback, res.CreatedAt).
		Query()
	if _, err := r.s.db.ExecContext(ctx, query, args...); err != nil {
		return &quiz.PersistenceError{Op: "create result", Err: err}
	}
	return nil
}

func (r *resultRepo) Get(ctx context.Context, id string) (*quiz.QuizResult, error) {
	b := r.s.builder()
	query, args := b.Select(resultColumns...).
		From(b.Table(tableResults)).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := scanResult(r.s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &quiz.NotFoundError{Kind: "result", ID: id}
	}
	if err != nil {
		return nil, &quiz.PersistenceError{Op: "get result", Err: err}
	}
	return res, nil
}

func (r *resultRepo) ListByUser(ctx context.Context, userID string, limit int) ([]quiz.QuizResult, error) {
	b := r.s.builder()
	sel := b.Select(resultColumns...).
		From(b.Table(tableResults)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &quiz.PersistenceError{Op: "list results", Err: err}
	}
	defer rows.Close()

	var out []quiz.QuizResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, &quiz.PersistenceError{Op: "scan result", Err: err}
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func scanResult(row scanner) (*quiz.QuizResult, error) {
	var (
		res          quiz.QuizResult
		answers      []byte
		explanations []byte
	)
	err := row.Scan(&res.ID, &res.UserID, &res.QuizID, &res.SubjectID, &answers, &res.Score,
		&res.Percentage, &res.TimeTaken, &explanations, &res.Feedback, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &res.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if err := json.Unmarshal(explanations, &res.Explanations); err != nil {
		return nil, fmt.Errorf("decode explanations: %w", err)
	}
	return &res, nil
}
