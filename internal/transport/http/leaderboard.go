package http

import (
	"net/http"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
)

func filterFrom(r *http.Request) domain.StudentFilter {
	q := r.URL.Query()
	return domain.StudentFilter{Grade: q.Get("grade"), Section: q.Get("section")}
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	if !capabilities(r.Context()).CanViewRankings {
		s.fail(w, r, domain.ErrForbidden)
		return
	}
	board, err := s.svc.Leaderboard.Get(r.Context(), filterFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) leaderboardCSV(w http.ResponseWriter, r *http.Request) {
	if !capabilities(r.Context()).CanViewRankings {
		s.fail(w, r, domain.ErrForbidden)
		return
	}
	board, err := s.svc.Leaderboard.Get(r.Context(), filterFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leaderboard.csv"`)
	if err := app.WriteLeaderboardCSV(w, board.Entries); err != nil {
		s.log.WithError(err).Warn("write leaderboard csv failed")
	}
}
