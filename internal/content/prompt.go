package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/quizforge/internal/quiz"
)

const questionExample = `[
  {
    "question": "What is the primary purpose of normalization in databases?",
    "options": ["Reduce data redundancy", "Increase data size", "Slow down queries", "Create backups"],
    "correctAnswer": "Reduce data redundancy"
  }
]`

func questionPrompt(subject string, difficulty quiz.Difficulty, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d multiple choice questions about %s for B.Tech Computer Science students with %s difficulty.\n\n",
		count, subject, difficulty)
	b.WriteString("STRICT REQUIREMENTS:\n")
	b.WriteString("- Return ONLY valid JSON array\n")
	b.WriteString("- Each question must have exactly 4 options\n")
	b.WriteString("- One option must be clearly correct\n")
	b.WriteString("- Questions should be relevant to B.Tech CS curriculum\n\n")
	b.WriteString("JSON FORMAT:\n")
	b.WriteString(questionExample)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Subject: %s\nDifficulty: %s\nGenerate %d questions:", subject, difficulty, count)
	return b.String()
}

func timeBudgetPrompt(subject string, difficulty quiz.Difficulty, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Estimate the total time in seconds a B.Tech Computer Science student needs to answer %d %s multiple choice questions",
		count, difficulty)
	if subject != "" {
		fmt.Fprintf(&b, " about %s", subject)
	}
	b.WriteString(".\n\n")
	fmt.Fprintf(&b, "The total must be between %d and %d seconds.\n\n", quiz.MinTimeLimit, quiz.MaxTimeLimit)
	b.WriteString("Return ONLY this JSON object:\n{\"totalTime\": <seconds>}")
	return b.String()
}

// explanationInput is one question as shown to the provider.
type explanationInput struct {
	QuestionIndex int      `json:"questionIndex"`
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	UserAnswer    *string  `json:"userAnswer"`
}

func explanationPrompt(questions []quiz.Question, answers []*string) (string, error) {
	data := make([]explanationInput, len(questions))
	for i, q := range questions {
		data[i] = explanationInput{
			QuestionIndex: i,
			QuestionText:  q.Text,
			Options:       q.OptionTexts(),
			CorrectAnswer: q.CorrectAnswer,
			UserAnswer:    answers[i],
		}
	}
	js, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal questions: %w", err)
	}

	var b strings.Builder
	b.WriteString("Generate detailed explanations for these B.Tech quiz questions:\n\n")
	b.Write(js)
	b.WriteString("\n\nReturn ONLY this JSON array:\n")
	b.WriteString(`[
  {
    "questionText": "<question>",
    "userAnswer": "<user_answer_or_null>",
    "correctAnswer": "<correct_answer>",
    "isCorrect": <boolean>,
    "explanation": "<detailed_explanation>"
  }
]`)
	return b.String(), nil
}

func feedbackPrompt(s ResultSummary, subject string) string {
	var b strings.Builder
	b.WriteString("Generate personalized feedback for a B.Tech Computer Science student:\n\n")
	b.WriteString("Performance:\n")
	fmt.Fprintf(&b, "- Subject: %s\n", subject)
	fmt.Fprintf(&b, "- Score: %d/%d (%d%%)\n", s.Score, s.TotalQuestions, s.Percentage)
	fmt.Fprintf(&b, "- Time: %d minutes\n\n", quiz.RoundSeconds(float64(s.TimeSpent)/60))
	b.WriteString("Write encouraging, specific feedback (2-3 sentences) focusing on:\n")
	b.WriteString("1. Performance acknowledgment\n")
	b.WriteString("2. Subject-specific insights\n")
	b.WriteString("3. Study recommendations\n")
	b.WriteString("4. Motivation\n\n")
	b.WriteString("Return only the feedback text (no JSON, no formatting):")
	return b.String()
}
