package http

import (
	"net/http"
	"time"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

type questionRequest struct {
	Text          string    `json:"text" validate:"required"`
	Options       [4]string `json:"options" validate:"dive,required"`
	CorrectAnswer string    `json:"correctAnswer" validate:"required,oneof=A B C D"`
	Marks         int       `json:"marks" validate:"gt=0"`
	Order         int       `json:"order" validate:"gte=0"`
}

type createQuizRequest struct {
	Title           string            `json:"title" validate:"required"`
	Description     string            `json:"description"`
	Subject         string            `json:"subject"`
	Grade           string            `json:"grade"`
	Section         string            `json:"section"`
	DurationMinutes int               `json:"durationMinutes" validate:"gte=0"`
	IsActive        *bool             `json:"isActive"`
	Questions       []questionRequest `json:"questions" validate:"required,min=1,dive"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type submitAttemptRequest struct {
	Answers   map[string]string `json:"answers"`
	StartedAt time.Time         `json:"startedAt"`
}

type attemptSessionResponse struct {
	QuizID    string                `json:"quizId"`
	Title     string                `json:"title"`
	StartedAt time.Time             `json:"startedAt"`
	Questions []domain.QuestionView `json:"questions"`
}

func (s *Server) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	draft := app.QuizDraft{
		Title:           req.Title,
		Description:     req.Description,
		Subject:         req.Subject,
		Grade:           req.Grade,
		Section:         req.Section,
		DurationMinutes: req.DurationMinutes,
		IsActive:        req.IsActive == nil || *req.IsActive,
	}
	for _, q := range req.Questions {
		draft.Questions = append(draft.Questions, app.QuestionDraft{
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: domain.Option(q.CorrectAnswer),
			Marks:         q.Marks,
			Order:         q.Order,
		})
	}
	quiz, err := s.svc.Authoring.CreateQuiz(r.Context(), capabilities(r.Context()), draft)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

// getQuiz returns the full quiz, answer key included, to authors.
func (s *Server) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := s.svc.Authoring.Quiz(r.Context(), capabilities(r.Context()), chi.URLParam(r, "quizID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (s *Server) setQuizActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	quizID := chi.URLParam(r, "quizID")
	if err := s.svc.Authoring.SetActive(r.Context(), capabilities(r.Context()), quizID, *req.Active); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) startAttempt(w http.ResponseWriter, r *http.Request) {
	caps := capabilities(r.Context())
	if !caps.CanAttempt {
		s.fail(w, r, domain.ErrForbidden)
		return
	}
	session, err := s.svc.Attempts.Start(r.Context(), caps.UserID, chi.URLParam(r, "quizID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attemptSessionResponse{
		QuizID:    session.QuizID,
		Title:     session.Title,
		StartedAt: session.StartedAt,
		Questions: session.Questions,
	})
}

// submitAttempt replays the posted answers through a session so unknown
// questions and letters outside A-D are rejected before scoring.
func (s *Server) submitAttempt(w http.ResponseWriter, r *http.Request) {
	caps := capabilities(r.Context())
	if !caps.CanAttempt {
		s.fail(w, r, domain.ErrForbidden)
		return
	}
	var req submitAttemptRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	session, err := s.svc.Attempts.Start(r.Context(), caps.UserID, chi.URLParam(r, "quizID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	for questionID, letter := range req.Answers {
		if err := session.RecordAnswer(questionID, domain.Option(letter)); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if !req.StartedAt.IsZero() {
		session.StartedAt = req.StartedAt
	}
	attempt, err := s.svc.Attempts.SubmitSession(r.Context(), session)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, attempt)
}

// subject is the student whose attempts are read: the caller, or ?studentId= when permitted.
func subject(r *http.Request) (string, error) {
	caps := capabilities(r.Context())
	studentID := r.URL.Query().Get("studentId")
	if studentID == "" {
		return caps.UserID, nil
	}
	if !caps.CanViewStudent(studentID) {
		return "", domain.ErrForbidden
	}
	return studentID, nil
}

func (s *Server) latestAttempt(w http.ResponseWriter, r *http.Request) {
	studentID, err := subject(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	attempt, found, err := s.svc.Attempts.Latest(r.Context(), studentID, chi.URLParam(r, "quizID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (s *Server) attemptHistory(w http.ResponseWriter, r *http.Request) {
	studentID, err := subject(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	attempts, err := s.svc.Attempts.History(r.Context(), studentID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if attempts == nil {
		attempts = []domain.Attempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (s *Server) rankings(w http.ResponseWriter, r *http.Request) {
	caps := capabilities(r.Context())
	if !caps.CanViewRankings {
		s.fail(w, r, domain.ErrForbidden)
		return
	}
	out, err := s.svc.Rankings.Get(r.Context(), chi.URLParam(r, "quizID"), caps.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
