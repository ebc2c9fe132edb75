package app_test

import (
	"context"
	"testing"
	"time"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/infra/memory"
	"classroom-quiz-service/internal/logging"
	"classroom-quiz-service/internal/schedule"
)

var t0 = time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)

type fixture struct {
	store       *memory.Store
	clock       *schedule.FakeClock
	directory   *app.Directory
	authoring   *app.Authoring
	attempts    *app.Attempts
	rankings    *app.Rankings
	leaderboard *app.Leaderboard
	pings       *app.Pings
	runner      schedule.Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := schedule.NewFakeClock(t0)
	log := logging.Discard()
	quizzes := memory.NewQuizRepositoryWithClock(store, time.Minute, clock)
	directory := app.NewDirectory(store)

	return &fixture{
		store:       store,
		clock:       clock,
		directory:   directory,
		authoring:   app.NewAuthoring(store, quizzes, clock, log),
		attempts:    app.NewAttempts(quizzes, store, clock, log),
		rankings:    app.NewRankings(store, directory, 10),
		leaderboard: app.NewLeaderboard(directory, store, app.DefaultLeaderboardWeights(), clock, log),
		pings:       app.NewPings(store, store, app.DefaultPingPolicy(), clock, log),
		runner:      schedule.NewClockRunner(clock, log),
	}
}

func (f *fixture) student(id, name, grade, section string) {
	f.store.PutProfile(domain.Profile{ID: id, FullName: name, Role: domain.RoleStudent, Grade: grade, Section: section})
}

func (f *fixture) teacher(id string) domain.Capabilities {
	p := domain.Profile{ID: id, FullName: "Teacher " + id, Role: domain.RoleTeacher}
	f.store.PutProfile(p)
	return domain.CapabilitiesFor(p)
}

// twoQuestionQuiz has questions worth 5 (answer A) and 3 (answer C).
func (f *fixture) twoQuestionQuiz(t *testing.T) domain.Quiz {
	t.Helper()
	quiz, err := f.authoring.CreateQuiz(context.Background(), f.teacher("t1"), app.QuizDraft{
		Title:    "Fractions",
		Subject:  "Math",
		Grade:    "7",
		IsActive: true,
		Questions: []app.QuestionDraft{
			{Text: "1/2 + 1/2", Options: [4]string{"1", "2", "1/4", "0"}, CorrectAnswer: domain.OptionA, Marks: 5, Order: 1},
			{Text: "1/3 of 9", Options: [4]string{"1", "2", "3", "9"}, CorrectAnswer: domain.OptionC, Marks: 3, Order: 2},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	return quiz
}

// submitPct stores an attempt with a chosen percentage directly, bypassing scoring.
func (f *fixture) submitPct(t *testing.T, id, studentID, quizID string, pct float64, at time.Time) {
	t.Helper()
	err := f.store.InsertAttempt(context.Background(), domain.Attempt{
		ID:          id,
		StudentID:   studentID,
		QuizID:      quizID,
		Score:       int(pct),
		TotalMarks:  100,
		Percentage:  pct,
		IsCompleted: true,
		CompletedAt: at,
	})
	if err != nil {
		t.Fatalf("insert attempt: %v", err)
	}
}
