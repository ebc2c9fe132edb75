package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// UserHeader carries the caller id set by the upstream identity provider.
const UserHeader = "X-User-ID"

// Services bundles the use cases the API exposes.
type Services struct {
	Directory   *app.Directory
	Authoring   *app.Authoring
	Attempts    *app.Attempts
	Rankings    *app.Rankings
	Leaderboard *app.Leaderboard
	Pings       *app.Pings
}

type Server struct {
	svc      Services
	log      logrus.FieldLogger
	validate *validator.Validate
}

func NewServer(svc Services, log logrus.FieldLogger) *Server {
	return &Server{svc: svc, log: log, validate: validator.New()}
}

// Routes builds the chi router. An empty origins list allows any origin.
func (s *Server) Routes(origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", UserHeader},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(pr chi.Router) {
		pr.Use(s.identify)

		pr.Post("/quizzes", s.createQuiz)
		pr.Get("/quizzes/{quizID}", s.getQuiz)
		pr.Patch("/quizzes/{quizID}/active", s.setQuizActive)
		pr.Post("/quizzes/{quizID}/attempts/start", s.startAttempt)
		pr.Post("/quizzes/{quizID}/attempts", s.submitAttempt)
		pr.Get("/quizzes/{quizID}/attempts/latest", s.latestAttempt)
		pr.Get("/quizzes/{quizID}/rankings", s.rankings)
		pr.Get("/me/attempts", s.attemptHistory)

		pr.Get("/leaderboard", s.leaderboard)
		pr.Get("/leaderboard.csv", s.leaderboardCSV)

		pr.Post("/live-classes/{classID}/pings", s.sendPing)
		pr.Get("/live-classes/{classID}/pings/pending", s.pendingPing)
		pr.Post("/pings/{pingID}/ack", s.acknowledgePing)
		pr.Get("/pings/{pingID}", s.pingStatus)
	})
	return r
}

type capsKey struct{}

// identify resolves the caller's capabilities once per request.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserHeader))
		if userID == "" {
			writeErr(w, http.StatusUnauthorized, "missing "+UserHeader)
			return
		}
		caps, err := s.svc.Directory.Capabilities(r.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrProfileNotFound) {
				writeErr(w, http.StatusUnauthorized, "unknown user")
				return
			}
			s.fail(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), capsKey{}, caps)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func capabilities(ctx context.Context) domain.Capabilities {
	caps, _ := ctx.Value(capsKey{}).(domain.Capabilities)
	return caps
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request served")
	})
}
