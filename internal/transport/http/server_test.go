package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/infra/memory"
	"classroom-quiz-service/internal/logging"
	"classroom-quiz-service/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)

type testAPI struct {
	handler http.Handler
	store   *memory.Store
	clock   *schedule.FakeClock
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.NewStore()
	clock := schedule.NewFakeClock(t0)
	log := logging.Discard()
	quizzes := memory.NewQuizRepositoryWithClock(store, time.Minute, clock)
	directory := app.NewDirectory(store)

	store.PutProfile(domain.Profile{ID: "t1", FullName: "Ms. Rao", Role: domain.RoleTeacher})
	store.PutProfile(domain.Profile{ID: "s1", FullName: "Asha", Role: domain.RoleStudent, Grade: "7", Section: "A"})
	store.PutProfile(domain.Profile{ID: "s2", FullName: "Bilal", Role: domain.RoleStudent, Grade: "7", Section: "B"})
	store.PutProfile(domain.Profile{ID: "p1", FullName: "Parent", Role: domain.RoleParent, LinkedStudentIDs: []string{"s1"}})

	srv := NewServer(Services{
		Directory:   directory,
		Authoring:   app.NewAuthoring(store, quizzes, clock, log),
		Attempts:    app.NewAttempts(quizzes, store, clock, log),
		Rankings:    app.NewRankings(store, directory, 10),
		Leaderboard: app.NewLeaderboard(directory, store, app.DefaultLeaderboardWeights(), clock, log),
		Pings:       app.NewPings(store, store, app.DefaultPingPolicy(), clock, log),
	}, log)
	return &testAPI{handler: srv.Routes(nil), store: store, clock: clock}
}

func (a *testAPI) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) createQuiz(t *testing.T) domain.Quiz {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/quizzes", "t1", map[string]any{
		"title": "Fractions",
		"grade": "7",
		"questions": []map[string]any{
			{"text": "1/2 + 1/2", "options": []string{"1", "2", "1/4", "0"}, "correctAnswer": "A", "marks": 5, "order": 1},
			{"text": "1/3 of 9", "options": []string{"1", "2", "3", "9"}, "correctAnswer": "C", "marks": 3, "order": 2},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var quiz domain.Quiz
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quiz))
	require.Len(t, quiz.Questions, 2)
	return quiz
}

func TestHealthzNeedsNoIdentity(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestIdentityRequired(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/leaderboard", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(t, http.MethodGet, "/leaderboard", "ghost", nil).Code)
}

func TestAttemptFlow(t *testing.T) {
	api := newTestAPI(t)
	quiz := api.createQuiz(t)
	q1, q2 := quiz.Questions[0].ID, quiz.Questions[1].ID

	start := api.do(t, http.MethodPost, "/quizzes/"+quiz.ID+"/attempts/start", "s1", nil)
	require.Equal(t, http.StatusOK, start.Code, start.Body.String())
	assert.NotContains(t, start.Body.String(), "correctAnswer")
	assert.NotContains(t, start.Body.String(), "marks")

	api.clock.Advance(90 * time.Second)
	submit := api.do(t, http.MethodPost, "/quizzes/"+quiz.ID+"/attempts", "s1", map[string]any{
		"answers":   map[string]string{q1: "A", q2: "B"},
		"startedAt": t0,
	})
	require.Equal(t, http.StatusCreated, submit.Code, submit.Body.String())
	var attempt domain.Attempt
	require.NoError(t, json.Unmarshal(submit.Body.Bytes(), &attempt))
	assert.Equal(t, 5, attempt.Score)
	assert.Equal(t, 8, attempt.TotalMarks)
	assert.InDelta(t, 62.5, attempt.Percentage, 1e-9)
	assert.Equal(t, 90, attempt.TimeTakenSeconds)

	latest := api.do(t, http.MethodGet, "/quizzes/"+quiz.ID+"/attempts/latest", "s1", nil)
	require.Equal(t, http.StatusOK, latest.Code)

	history := api.do(t, http.MethodGet, "/me/attempts?studentId=s1", "p1", nil)
	require.Equal(t, http.StatusOK, history.Code)
	var attempts []domain.Attempt
	require.NoError(t, json.Unmarshal(history.Body.Bytes(), &attempts))
	assert.Len(t, attempts, 1)

	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodGet, "/me/attempts?studentId=s2", "p1", nil).Code)
	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodGet, "/quizzes/"+quiz.ID+"/attempts/latest", "s2", nil).Code)

	rankings := api.do(t, http.MethodGet, "/quizzes/"+quiz.ID+"/rankings", "s1", nil)
	require.Equal(t, http.StatusOK, rankings.Code)
	var out domain.Rankings
	require.NoError(t, json.Unmarshal(rankings.Body.Bytes(), &out))
	require.Len(t, out.Top, 1)
	assert.Equal(t, "Asha", out.Top[0].StudentName)
	require.NotNil(t, out.Mine)
	assert.Equal(t, 1, out.Mine.Rank)
}

func TestAttemptErrors(t *testing.T) {
	api := newTestAPI(t)
	quiz := api.createQuiz(t)
	q1 := quiz.Questions[0].ID
	path := "/quizzes/" + quiz.ID + "/attempts"

	rec := api.do(t, http.MethodPost, path, "s1", map[string]any{"answers": map[string]string{q1: "E"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, path, "s1", map[string]any{"answers": map[string]string{"nope": "A"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/quizzes/missing/attempts/start", "s1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, path, "t1", map[string]any{"answers": map[string]string{}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPatch, "/quizzes/"+quiz.ID+"/active", "t1", map[string]any{"active": false})
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = api.do(t, http.MethodPost, path+"/start", "s1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = api.do(t, http.MethodPost, path, "s1", map[string]any{"answers": map[string]string{}})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetQuizForAuthorsOnly(t *testing.T) {
	api := newTestAPI(t)
	quiz := api.createQuiz(t)

	rec := api.do(t, http.MethodGet, "/quizzes/"+quiz.ID, "t1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got domain.Quiz
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, quiz.ID, got.ID)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, domain.OptionA, got.Questions[0].CorrectAnswer)

	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodGet, "/quizzes/"+quiz.ID, "s1", nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/quizzes/missing", "t1", nil).Code)
}

func TestCreateQuizValidation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/quizzes", "t1", map[string]any{"title": "Empty"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/quizzes", "t1", map[string]any{
		"title": "Bad key",
		"questions": []map[string]any{
			{"text": "x", "options": []string{"1", "2", "3", "4"}, "correctAnswer": "Z", "marks": 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/quizzes", "s1", map[string]any{
		"title": "Student quiz",
		"questions": []map[string]any{
			{"text": "x", "options": []string{"1", "2", "3", "4"}, "correctAnswer": "A", "marks": 1},
		},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLeaderboardEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.store.AddLessonAttendance(domain.LessonAttendance{LessonID: "l1", StudentID: "s1", IsCompleted: true})

	rec := api.do(t, http.MethodGet, "/leaderboard?grade=7&section=a", "t1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var board domain.Leaderboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	require.Len(t, board.Entries, 1)
	assert.Equal(t, "s1", board.Entries[0].StudentID)
	assert.InDelta(t, 10, board.Entries[0].TotalPoints, 1e-9)

	csv := api.do(t, http.MethodGet, "/leaderboard.csv", "t1", nil)
	require.Equal(t, http.StatusOK, csv.Code)
	assert.Equal(t, "text/csv", csv.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(csv.Body.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "rank,"))
}

func TestPingEndpoints(t *testing.T) {
	api := newTestAPI(t)
	for _, id := range []string{"s1", "s2"} {
		api.store.AddLiveAttendance(domain.LiveClassAttendance{LiveClassID: "c1", StudentID: id, JoinedAt: t0})
	}

	assert.Equal(t, http.StatusForbidden, api.do(t, http.MethodPost, "/live-classes/c1/pings", "s1", nil).Code)

	sent := api.do(t, http.MethodPost, "/live-classes/c1/pings", "t1", nil)
	require.Equal(t, http.StatusCreated, sent.Code)
	var ping domain.Ping
	require.NoError(t, json.Unmarshal(sent.Body.Bytes(), &ping))

	pending := api.do(t, http.MethodGet, "/live-classes/c1/pings/pending", "s1", nil)
	require.Equal(t, http.StatusOK, pending.Code)

	api.clock.Advance(3 * time.Second)
	ack := api.do(t, http.MethodPost, "/pings/"+ping.ID+"/ack", "s1", nil)
	require.Equal(t, http.StatusOK, ack.Code, ack.Body.String())
	assert.Equal(t, http.StatusConflict, api.do(t, http.MethodPost, "/pings/"+ping.ID+"/ack", "s1", nil).Code)
	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodGet, "/live-classes/c1/pings/pending", "s1", nil).Code)

	api.clock.Advance(time.Minute)
	assert.Equal(t, http.StatusGone, api.do(t, http.MethodPost, "/pings/"+ping.ID+"/ack", "s2", nil).Code)

	status := api.do(t, http.MethodGet, "/pings/"+ping.ID, "t1", nil)
	require.Equal(t, http.StatusOK, status.Code)
	var tally domain.PingStatus
	require.NoError(t, json.Unmarshal(status.Body.Bytes(), &tally))
	assert.Equal(t, 1, tally.Present)
	assert.Equal(t, 1, tally.Absent)
	assert.Equal(t, 0, tally.Pending)

	state := api.do(t, http.MethodGet, "/pings/"+ping.ID, "s2", nil)
	require.Equal(t, http.StatusOK, state.Code)
	assert.Contains(t, state.Body.String(), string(domain.PingStateExpired))

	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodPost, "/pings/missing/ack", "s1", nil).Code)
}
