package quiz

import "time"

// AnswerRecord is the graded answer for one question. SelectedOption is nil
// when the question was left unanswered.
type AnswerRecord struct {
	QuestionIndex  int     `json:"questionIndex"`
	SelectedOption *string `json:"selectedOption"`
	IsCorrect      bool    `json:"isCorrect"`
}

// Explanation is the stored AI explanation for one question.
type Explanation struct {
	QuestionIndex int    `json:"questionIndex"`
	Explanation   string `json:"explanation"`
}

// QuizResult is the immutable outcome of one completed session.
type QuizResult struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	QuizID       string         `json:"quizId"`
	SubjectID    string         `json:"subjectId"`
	Answers      []AnswerRecord `json:"userAnswers"`
	Score        int            `json:"score"`
	Percentage   int            `json:"percentage"`
	TimeTaken    int            `json:"timeTaken"`
	Explanations []Explanation  `json:"aiExplanations"`
	Feedback     string         `json:"feedback"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// TotalQuestions is the number of graded answers.
func (r *QuizResult) TotalQuestions() int { return len(r.Answers) }

// SubjectProgress aggregates results for one subject. Scores are percentages.
// PercentageSum is the running total AverageScore is derived from.
type SubjectProgress struct {
	SubjectID     string  `json:"subjectId"`
	QuizzesTaken  int     `json:"quizzesTaken"`
	BestScore     int     `json:"bestScore"`
	AverageScore  float64 `json:"averageScore"`
	PercentageSum int64   `json:"percentageSum"`
}

// UserProgress aggregates every result of a user.
type UserProgress struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	TotalQuizzes int               `json:"totalQuizzes"`
	TotalScore   int               `json:"totalScore"`
	AverageScore float64           `json:"averageScore"`
	Subjects     []SubjectProgress `json:"subjectProgress"`
	LastQuizDate time.Time         `json:"lastQuizDate"`
}

// Subject returns the progress entry for subjectID, or nil.
func (p *UserProgress) Subject(subjectID string) *SubjectProgress {
	for i := range p.Subjects {
		if p.Subjects[i].SubjectID == subjectID {
			return &p.Subjects[i]
		}
	}
	return nil
}

// Record folds one result into the aggregate. A zero-value progress becomes
// a progress seeded with this single result.
func (p *UserProgress) Record(r *QuizResult, at time.Time) {
	p.TotalQuizzes++
	p.TotalScore += r.Score
	p.AverageScore = Average(int64(p.TotalScore), p.TotalQuizzes)
	p.LastQuizDate = at

	if r.SubjectID == "" {
		return
	}
	sp := p.Subject(r.SubjectID)
	if sp == nil {
		p.Subjects = append(p.Subjects, SubjectProgress{SubjectID: r.SubjectID})
		sp = &p.Subjects[len(p.Subjects)-1]
	}
	if sp.PercentageSum == 0 && sp.QuizzesTaken > 0 {
		// Rows written before the sum was tracked.
		sp.PercentageSum = int64(RoundTo(sp.AverageScore*float64(sp.QuizzesTaken), 0))
	}
	sp.PercentageSum += int64(r.Percentage)
	sp.QuizzesTaken++
	sp.BestScore = max(sp.BestScore, r.Percentage)
	sp.AverageScore = Average(sp.PercentageSum, sp.QuizzesTaken)
}

// Submission is everything the grading service needs to grade one session.
type Submission struct {
	UserID      string         `json:"userId"`
	QuizID      string         `json:"quizId"`
	SubjectID   string         `json:"subjectId"`
	SubjectName string         `json:"subjectName"`
	Questions   []Question     `json:"questions"`
	Answers     []AnswerRecord `json:"userAnswers"`
	TimeTaken   int            `json:"timeTaken"`
}

// Outcome is returned to the session after a successful submission.
type Outcome struct {
	ResultID string      `json:"resultId"`
	Feedback string      `json:"feedback"`
	Result   *QuizResult `json:"result,omitempty"`
}
