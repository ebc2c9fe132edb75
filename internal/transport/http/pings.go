package http

import (
	"net/http"

	"classroom-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

type studentPingState struct {
	PingID string           `json:"pingId"`
	State  domain.PingState `json:"state"`
}

func (s *Server) sendPing(w http.ResponseWriter, r *http.Request) {
	ping, err := s.svc.Pings.Send(r.Context(), capabilities(r.Context()), chi.URLParam(r, "classID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ping)
}

// pendingPing is the student poll target; 204 means nothing to show.
func (s *Server) pendingPing(w http.ResponseWriter, r *http.Request) {
	caps := capabilities(r.Context())
	ping, err := s.svc.Pings.Pending(r.Context(), chi.URLParam(r, "classID"), caps.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ping == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, ping)
}

func (s *Server) acknowledgePing(w http.ResponseWriter, r *http.Request) {
	caps := capabilities(r.Context())
	if !caps.CanAttempt {
		s.fail(w, r, domain.ErrForbidden)
		return
	}
	resp, err := s.svc.Pings.Acknowledge(r.Context(), chi.URLParam(r, "pingID"), caps.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// pingStatus gives teachers the full tally and everyone else their own state.
func (s *Server) pingStatus(w http.ResponseWriter, r *http.Request) {
	caps := capabilities(r.Context())
	pingID := chi.URLParam(r, "pingID")
	if !caps.CanRunLiveClass {
		state, err := s.svc.Pings.State(r.Context(), pingID, caps.UserID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, studentPingState{PingID: pingID, State: state})
		return
	}
	status, err := s.svc.Pings.Status(r.Context(), pingID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
