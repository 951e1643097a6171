package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizforge/internal/assembly"
	"github.com/abhisek/quizforge/internal/content"
	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/session"
)

func (s *Server) listSubjects(c *gin.Context) {
	subjects, err := s.deps.Subjects.ListActive(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if subjects == nil {
		subjects = []quiz.Subject{}
	}
	respond(c, http.StatusOK, "All subjects", subjects)
}

type subjectRequest struct {
	Name        string `json:"name"`
	FullName    string `json:"fullName"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func (s *Server) createSubject(c *gin.Context) {
	var req subjectRequest
	if !bind(c, &req) {
		return
	}
	subj := &quiz.Subject{
		Name:        strings.TrimSpace(req.Name),
		FullName:    strings.TrimSpace(req.FullName),
		Description: req.Description,
		Icon:        req.Icon,
		IsActive:    true,
	}
	if err := s.deps.Subjects.Create(c.Request.Context(), subj); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Subject created", subj)
}

func (s *Server) getSubject(c *gin.Context) {
	subj, err := s.deps.Subjects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Subject details", subj)
}

func (s *Server) generateQuiz(c *gin.Context) {
	var req assembly.Request
	if !bind(c, &req) {
		return
	}
	res, err := s.deps.Assembly.Generate(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "AI Quiz generated successfully", res)
}

type timerRequest struct {
	SubjectID     string `json:"subjectId"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"questionCount"`
}

func (s *Server) calculateTimer(c *gin.Context) {
	var req timerRequest
	if !bind(c, &req) {
		return
	}
	if req.SubjectID == "" {
		s.fail(c, &quiz.ValidationError{Field: "subjectId", Message: "is required"})
		return
	}
	budget, err := s.deps.Assembly.TimeBudget(c.Request.Context(), req.SubjectID, req.Difficulty, req.QuestionCount)
	if err != nil {
		s.fail(c, err)
		return
	}
	message := "Timer calculated by AI"
	if budget.Source == content.SourceFallback {
		message = "Timer calculated (fallback)"
	}
	respond(c, http.StatusOK, message, budget)
}

type explanationsRequest struct {
	Questions   []quiz.Question `json:"questions"`
	UserAnswers []*string       `json:"userAnswers"`
}

func (s *Server) generateExplanations(c *gin.Context) {
	var req explanationsRequest
	if !bind(c, &req) {
		return
	}
	if len(req.Questions) == 0 {
		s.fail(c, &quiz.ValidationError{Field: "questions", Message: "is required"})
		return
	}
	items, err := s.deps.Content.GenerateExplanations(c.Request.Context(), req.Questions, req.UserAnswers)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "AI explanations generated", items)
}

type feedbackRequest struct {
	QuizResult *content.ResultSummary `json:"quizResult"`
	Subject    string                 `json:"subject"`
}

func (s *Server) generateFeedback(c *gin.Context) {
	var req feedbackRequest
	if !bind(c, &req) {
		return
	}
	if req.QuizResult == nil || strings.TrimSpace(req.Subject) == "" {
		s.fail(c, &quiz.ValidationError{Message: "quizResult and subject are required"})
		return
	}
	feedback, err := s.deps.Content.GenerateFeedback(c.Request.Context(), *req.QuizResult, req.Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "AI feedback generated", feedback)
}

func (s *Server) getQuiz(c *gin.Context) {
	q, err := s.deps.Assembly.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Quiz details", q)
}

func (s *Server) completeQuiz(c *gin.Context) {
	q, err := s.deps.Assembly.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Quiz marked as completed", q)
}

func (s *Server) deleteQuiz(c *gin.Context) {
	if err := s.deps.Assembly.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Quiz deleted", nil)
}

func (s *Server) listUserQuizzes(c *gin.Context) {
	quizzes, err := s.deps.Assembly.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if quizzes == nil {
		quizzes = []quiz.Quiz{}
	}
	respond(c, http.StatusOK, "User quizzes", quizzes)
}

func (s *Server) submitResult(c *gin.Context) {
	var sub quiz.Submission
	if !bind(c, &sub) {
		return
	}
	out, err := s.deps.Grading.Submit(c.Request.Context(), sub)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Quiz result saved", out)
}

func (s *Server) getResult(c *gin.Context) {
	res, err := s.deps.Grading.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Quiz result", res)
}

func (s *Server) listUserResults(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.fail(c, &quiz.ValidationError{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		limit = n
	}
	results, err := s.deps.Grading.Results(c.Request.Context(), c.Param("userId"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if results == nil {
		results = []quiz.QuizResult{}
	}
	respond(c, http.StatusOK, "User results", results)
}

func (s *Server) dashboard(c *gin.Context) {
	d, err := s.deps.Grading.Dashboard(c.Request.Context(), c.Param("userId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Dashboard data", d)
}

// Session records let a browser client resume after a reload. The server
// stores them as-is; answers are validated when the session is loaded.

func (s *Server) sessionStore(c *gin.Context) (session.Store, bool) {
	if s.deps.Sessions == nil {
		respond(c, http.StatusNotImplemented, "session storage is not configured", nil)
		return nil, false
	}
	return s.deps.Sessions(c.Writer, c.Request), true
}

func (s *Server) getSession(c *gin.Context) {
	store, ok := s.sessionStore(c)
	if !ok {
		return
	}
	quizID := c.Param("quizId")
	rec, err := store.Get(c.Request.Context(), session.Key(quizID))
	if err != nil {
		s.fail(c, err)
		return
	}
	if rec == nil {
		s.fail(c, &quiz.NotFoundError{Kind: "session", ID: quizID})
		return
	}
	respond(c, http.StatusOK, "Session state", rec)
}

func (s *Server) putSession(c *gin.Context) {
	store, ok := s.sessionStore(c)
	if !ok {
		return
	}
	var rec session.Record
	if !bind(c, &rec) {
		return
	}
	quizID := c.Param("quizId")
	if rec.QuizID != "" && rec.QuizID != quizID {
		s.fail(c, &quiz.ValidationError{Field: "quizId", Message: "does not match the path"})
		return
	}
	if rec.StartTime <= 0 {
		s.fail(c, &quiz.ValidationError{Field: "startTime", Message: "must be a positive unix millisecond timestamp"})
		return
	}
	rec.QuizID = quizID
	if rec.Answers == nil {
		rec.Answers = map[string]string{}
	}
	if err := store.Set(c.Request.Context(), session.Key(quizID), &rec); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Session saved", rec)
}

func (s *Server) deleteSession(c *gin.Context) {
	store, ok := s.sessionStore(c)
	if !ok {
		return
	}
	if err := store.Remove(c.Request.Context(), session.Key(c.Param("quizId"))); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Session cleared", nil)
}
