package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/quizforge/internal/content"
	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/session"
)

type envelope struct {
	Message string `json:"message"`
	Payload any    `json:"payload,omitempty"`
}

func respond(c *gin.Context, status int, message string, payload any) {
	c.JSON(status, envelope{Message: message, Payload: payload})
}

// fail maps err onto a status code and writes it.
func (s *Server) fail(c *gin.Context, err error) {
	status, payload := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", c.Request.Method, "path", c.FullPath(), "status", status, "error", err)
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	respond(c, status, message, payload)
}

func classify(err error) (int, any) {
	var (
		incomplete *quiz.IncompleteSubjectError
		validation *quiz.ValidationError
		notFound   *quiz.NotFoundError
	)
	switch {
	case errors.As(err, &incomplete):
		return http.StatusBadRequest, gin.H{"missingFields": incomplete.MissingFields()}
	case errors.As(err, &validation),
		errors.Is(err, content.ErrInputLengthMismatch),
		errors.Is(err, session.ErrInvalidQuizID):
		return http.StatusBadRequest, nil
	case errors.As(err, &notFound):
		return http.StatusNotFound, nil
	case content.IsProviderContract(err),
		errors.Is(err, quiz.ErrGenerationFailed),
		llm.IsProviderError(err):
		return http.StatusBadGateway, nil
	}
	return http.StatusInternalServerError, nil
}

// bind decodes the JSON body into v, answering 400 on failure.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return false
	}
	return true
}
