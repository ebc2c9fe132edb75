package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"classroom-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type errResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrPingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, domain.ErrInvalidQuiz),
		errors.Is(err, errBadBody),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrNotJoined):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyResponded),
		errors.Is(err, domain.ErrQuizInactive):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPingExpired):
		return http.StatusGone
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Error("request failed")
		writeErr(w, status, "internal error")
		return
	}
	writeErr(w, status, err.Error())
}

// decode reads a JSON body and runs struct validation on it.
func (s *Server) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errBadBody
	}
	return s.validate.Struct(dst)
}

var errBadBody = errors.New("malformed JSON body")
