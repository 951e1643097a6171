package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizforge/internal/quiz"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func sampleQuiz(id, userID string, created time.Time) *quiz.Quiz {
	return &quiz.Quiz{
		ID:             id,
		UserID:         userID,
		SubjectID:      "subj-1",
		Title:          "Database Management Systems - Easy Quiz",
		SubjectName:    "Database Management Systems",
		Difficulty:     quiz.Easy,
		TotalQuestions: 2,
		TimeLimit:      180,
		CreatedAt:      created,
		Questions: []quiz.Question{
			{
				ID:   "q1",
				Text: "Which normal form removes partial dependencies?",
				Options: []quiz.Option{
					{Text: "1NF"}, {Text: "2NF", IsCorrect: true}, {Text: "3NF"}, {Text: "BCNF"},
				},
				CorrectAnswer: "2NF",
			},
			{
				ID:   "q2",
				Text: "Which SQL clause filters groups?",
				Options: []quiz.Option{
					{Text: "WHERE"}, {Text: "HAVING", IsCorrect: true}, {Text: "ORDER BY"}, {Text: "LIMIT"},
				},
				CorrectAnswer: "HAVING",
			},
		},
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{tableSubjects, tableQuizzes, tableResults, tableProgress, tableLLMEvents} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestTablesFromSchema(t *testing.T) {
	tables, err := Tables()
	require.NoError(t, err)
	require.Len(t, tables, 5)

	byName := map[string]int{}
	for i, tbl := range tables {
		byName[tbl.Name] = i
	}
	events := tables[byName[tableLLMEvents]]
	require.Len(t, events.PrimaryKey, 1)
	assert.True(t, events.PrimaryKey[0].Increment, "event ids auto-increment")

	quizzes := tables[byName[tableQuizzes]]
	assert.False(t, quizzes.PrimaryKey[0].Increment, "quiz ids are uuids")
	col, ok := quizzes.Column("is_completed")
	require.True(t, ok)
	assert.Equal(t, false, col.Default)
}

func TestDSNSelection(t *testing.T) {
	assert.True(t, IsPostgresDSN("postgres://u:p@localhost/quizforge"))
	assert.True(t, IsPostgresDSN("postgresql://localhost/quizforge"))
	assert.False(t, IsPostgresDSN("/tmp/quizforge.db"))

	assert.Equal(t, "a.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)&_txlock=immediate",
		withPragmas("a.db"))
	assert.Equal(t, "a.db?_pragma=foreign_keys(0)", withPragmas("a.db?_pragma=foreign_keys(0)"))
}

func TestSubjectRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.SubjectRepo()
	ctx := context.Background()

	dbms := &quiz.Subject{Name: "DBMS", FullName: "Database Management Systems", IsActive: true}
	require.NoError(t, repo.Create(ctx, dbms))
	assert.NotEmpty(t, dbms.ID)

	got, err := repo.Get(ctx, dbms.ID)
	require.NoError(t, err)
	assert.Equal(t, "Database Management Systems", got.FullName)
	assert.True(t, got.IsActive)

	byName, err := repo.GetByName(ctx, "dbms")
	require.NoError(t, err)
	assert.Equal(t, dbms.ID, byName.ID)

	err = repo.Create(ctx, &quiz.Subject{Name: "DBMS", FullName: "Duplicate"})
	assert.True(t, quiz.IsValidation(err), "duplicate name: %v", err)

	err = repo.Create(ctx, &quiz.Subject{Name: "CN"})
	assert.True(t, quiz.IsValidation(err), "missing fullName: %v", err)

	require.NoError(t, repo.Create(ctx, &quiz.Subject{Name: "ARCH", FullName: "Architecture", IsActive: false}))
	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "DBMS", active[0].Name)

	_, err = repo.Get(ctx, "missing")
	assert.True(t, quiz.IsNotFound(err))
}

func TestSeed(t *testing.T) {
	s := openTestStore(t)
	repo := s.SubjectRepo()
	ctx := context.Background()

	n, err := Seed(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultSubjects), n)

	n, err = Seed(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, n, "second seed is a no-op")

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, len(DefaultSubjects))
}

func TestQuizRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuizRepo()
	ctx := context.Background()

	q := sampleQuiz("quiz-1", "user-1", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, q))

	got, err := repo.Get(ctx, "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, q.TotalQuestions, got.TotalQuestions)
	assert.Equal(t, q.TimeLimit, got.TimeLimit)
	assert.Equal(t, quiz.Easy, got.Difficulty)
	assert.False(t, got.IsCompleted)
	assert.Equal(t, q.Questions, got.Questions, "question ordering and options survive")
}

func TestQuizLifecycle(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuizRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Create(ctx, sampleQuiz("old", "user-1", base.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, sampleQuiz("new", "user-1", base)))
	require.NoError(t, repo.Create(ctx, sampleQuiz("other", "user-2", base)))

	list, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID, "newest first")

	require.NoError(t, repo.MarkCompleted(ctx, "old"))
	got, err := repo.Get(ctx, "old")
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)

	assert.True(t, quiz.IsNotFound(repo.MarkCompleted(ctx, "missing")))

	require.NoError(t, repo.Delete(ctx, "old"))
	_, err = repo.Get(ctx, "old")
	assert.True(t, quiz.IsNotFound(err))
}

func TestResultRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()

	res := &quiz.QuizResult{
		ID:        "res-1",
		UserID:    "user-1",
		QuizID:    "quiz-1",
		SubjectID: "subj-1",
		Answers: []quiz.AnswerRecord{
			{QuestionIndex: 0, SelectedOption: strPtr("2NF"), IsCorrect: true},
			{QuestionIndex: 1, SelectedOption: nil, IsCorrect: false},
		},
		Score:      1,
		Percentage: 50,
		TimeTaken:  75,
		Feedback:   "Solid start on normalization.",
	}
	require.NoError(t, repo.Create(ctx, res))

	got, err := repo.Get(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, res.Answers, got.Answers)
	assert.Nil(t, got.Answers[1].SelectedOption)
	assert.Empty(t, got.Explanations)
	assert.Equal(t, 50, got.Percentage)

	second := *res
	second.ID = "res-2"
	second.CreatedAt = time.Now().UTC().Add(time.Minute)
	require.NoError(t, repo.Create(ctx, &second))

	list, err := repo.ListByUser(ctx, "user-1", 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "res-2", list[0].ID)

	_, err = repo.Get(ctx, "missing")
	assert.True(t, quiz.IsNotFound(err))
}

func TestProgressApply(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	first, err := repo.Apply(ctx, "user-1", func(p *quiz.UserProgress) {
		assert.Zero(t, p.TotalQuizzes, "new user starts from zero")
		p.Record(&quiz.QuizResult{SubjectID: "subj-1", Score: 3, Percentage: 60}, time.Now().UTC())
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	const n = 8
	var g errgroup.Group
	for range n {
		g.Go(func() error {
			_, err := repo.Apply(ctx, "user-1", func(p *quiz.UserProgress) {
				p.Record(&quiz.QuizResult{SubjectID: "subj-1", Score: 1, Percentage: 20}, time.Now().UTC())
			})
			return err
		})
	}
	require.NoError(t, g.Wait())

	got, err := repo.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, n+1, got.TotalQuizzes)
	assert.Equal(t, 3+n, got.TotalScore)
	require.Len(t, got.Subjects, 1)
	assert.Equal(t, n+1, got.Subjects[0].QuizzesTaken)
	assert.Equal(t, 60, got.Subjects[0].BestScore)

	other, err := repo.FindByUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestProgressUpsert(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	p, err := repo.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, p, "no progress yet")

	p = &quiz.UserProgress{UserID: "user-1"}
	p.Record(&quiz.QuizResult{SubjectID: "subj-1", Score: 2, Percentage: 40}, time.Now().UTC())
	require.NoError(t, repo.Upsert(ctx, p))

	got, err := repo.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.TotalQuizzes)
	assert.Equal(t, 2, got.TotalScore)
	require.Len(t, got.Subjects, 1)
	assert.Equal(t, 40, got.Subjects[0].BestScore)

	got.Record(&quiz.QuizResult{SubjectID: "subj-1", Score: 4, Percentage: 80}, time.Now().UTC())
	require.NoError(t, repo.Upsert(ctx, got))

	again, err := repo.FindByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID, "upsert keeps one row per user")
	assert.Equal(t, 2, again.TotalQuizzes)
	assert.Equal(t, 6, again.TotalScore)
	assert.InDelta(t, 3.0, again.AverageScore, 1e-9)
	assert.Equal(t, 80, again.Subjects[0].BestScore)
	assert.InDelta(t, 60.0, again.Subjects[0].AverageScore, 1e-9)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "question-gen", InputTokens: 100, OutputTokens: 400, LatencyMs: 900, Success: true, RequestBody: "[user]\nGenerate", ResponseBody: "[]"},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "time-budget", InputTokens: 20, OutputTokens: 10, LatencyMs: 100, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "question-gen", LatencyMs: 300, Success: false, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Greater(t, all[0].ID, all[1].ID, "newest first")
	assert.Equal(t, "rate limited", all[0].ErrorMessage)

	gen, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "question-gen", Limit: 1})
	require.NoError(t, err)
	require.Len(t, gen, 1)
	assert.False(t, gen[0].Success)

	first, err := repo.GetLLMEvent(ctx, all[2].ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "[user]\nGenerate", first.RequestBody)
	assert.Equal(t, "[]", first.ResponseBody)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "question-gen", byPurpose[0].Purpose)
	assert.Equal(t, 2, byPurpose[0].Calls)
	assert.Equal(t, int64(600), byPurpose[0].AvgLatencyMs)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, 2, byModel[0].Calls, "failed calls are not billed")
	assert.Equal(t, 120, byModel[0].InputTokens)
}
