package app_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"classroom-quiz-service/internal/app"
	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/infra/memory"
	"classroom-quiz-service/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLeaderboard(f *fixture) {
	f.student("s1", "Amina", "7", "A")
	f.student("s2", "Brian", "7", "B")
	f.student("s3", "Chloe", "8", "A")

	ctx := context.Background()
	_ = f.store.InsertAttempt(ctx, domain.Attempt{ID: "a1", StudentID: "s1", QuizID: "q1", Score: 20, IsCompleted: true})
	_ = f.store.InsertAttempt(ctx, domain.Attempt{ID: "a2", StudentID: "s2", QuizID: "q1", Score: 15, IsCompleted: true})
	f.store.AddAssignmentSubmission(domain.AssignmentSubmission{StudentID: "s2", MarksObtained: 12, Graded: true})
	f.store.AddAssignmentSubmission(domain.AssignmentSubmission{StudentID: "s3", MarksObtained: 40, Graded: false})
	f.store.AddLessonAttendance(domain.LessonAttendance{StudentID: "s3", LessonID: "l1", IsCompleted: true})
	f.store.AddLiveAttendance(domain.LiveClassAttendance{LiveClassID: "c1", StudentID: "s1", AttendancePercentage: 85})
}

func TestLeaderboardScenarioQuizOnly(t *testing.T) {
	f := newFixture(t)
	f.student("s1", "Only", "7", "A")
	_ = f.store.InsertAttempt(context.Background(), domain.Attempt{ID: "a", StudentID: "s1", QuizID: "q", Score: 40, TotalMarks: 50, IsCompleted: true})

	lb, err := f.leaderboard.Get(context.Background(), domain.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, lb.Entries, 1)
	e := lb.Entries[0]
	assert.Equal(t, 40.0, e.TotalPoints)
	assert.Equal(t, 40.0, e.QuizPoints)
	assert.Zero(t, e.AssignmentPoints)
	assert.Zero(t, e.AttendancePoints)
	assert.Zero(t, e.ParticipationPoints)
	assert.Equal(t, 1, e.Rank)
	assert.Equal(t, 100, e.Percentile)
}

func TestLeaderboardAdditivityAndOrder(t *testing.T) {
	f := newFixture(t)
	seedLeaderboard(f)

	filters := []domain.StudentFilter{{}, {Grade: "7"}, {Section: "A"}, {Grade: "8", Section: "A"}, {Grade: "9"}}
	for _, filter := range filters {
		lb, err := f.leaderboard.Get(context.Background(), filter)
		require.NoError(t, err)
		for i, e := range lb.Entries {
			assert.Equal(t, e.QuizPoints+e.AssignmentPoints+e.AttendancePoints+e.ParticipationPoints, e.TotalPoints)
			assert.Equal(t, i+1, e.Rank)
			assert.GreaterOrEqual(t, e.Percentile, 0)
			assert.LessOrEqual(t, e.Percentile, 100)
			assert.LessOrEqual(t, e.Percentile, lb.Entries[0].Percentile)
		}
	}

	lb, err := f.leaderboard.Get(context.Background(), domain.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, lb.Entries, 3)
	// s1: 20 + 0 + 0 + 8.5, s2: 15 + 12, s3: 10 lesson points
	assert.Equal(t, "s1", lb.Entries[0].StudentID)
	assert.Equal(t, 28.5, lb.Entries[0].TotalPoints)
	assert.Equal(t, 8.5, lb.Entries[0].ParticipationPoints)
	assert.Equal(t, "s2", lb.Entries[1].StudentID)
	assert.Equal(t, 27.0, lb.Entries[1].TotalPoints)
	assert.Equal(t, "s3", lb.Entries[2].StudentID)
	assert.Equal(t, 10.0, lb.Entries[2].AttendancePoints)
	assert.Equal(t, []int{100, 67, 33}, []int{lb.Entries[0].Percentile, lb.Entries[1].Percentile, lb.Entries[2].Percentile})
}

func TestLeaderboardFilter(t *testing.T) {
	f := newFixture(t)
	seedLeaderboard(f)

	lb, err := f.leaderboard.Get(context.Background(), domain.StudentFilter{Grade: "7", Section: "B"})
	require.NoError(t, err)
	require.Len(t, lb.Entries, 1)
	assert.Equal(t, "s2", lb.Entries[0].StudentID)
	assert.Equal(t, 1, lb.Entries[0].Rank)
	assert.Equal(t, 100, lb.Entries[0].Percentile)
}

type brokenAssignments struct {
	*memory.Store
}

func (brokenAssignments) GradedAssignmentMarks(context.Context, []string) (map[string]float64, error) {
	return nil, errors.New("assignments table unavailable")
}

func TestLeaderboardToleratesFailingSource(t *testing.T) {
	f := newFixture(t)
	seedLeaderboard(f)
	lbSvc := app.NewLeaderboard(f.directory, brokenAssignments{f.store}, app.DefaultLeaderboardWeights(), f.clock, logging.Discard())

	lb, err := lbSvc.Get(context.Background(), domain.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{app.SourceAssignments}, lb.PartialSources)
	require.Len(t, lb.Entries, 3)
	for _, e := range lb.Entries {
		assert.Zero(t, e.AssignmentPoints)
	}
	assert.Equal(t, "s1", lb.Entries[0].StudentID)
	assert.Equal(t, 15.0, lb.Entries[1].TotalPoints)
}

func TestWriteLeaderboardCSV(t *testing.T) {
	f := newFixture(t)
	seedLeaderboard(f)
	lb, err := f.leaderboard.Get(context.Background(), domain.StudentFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, app.WriteLeaderboardCSV(&buf, lb.Entries))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{
		"rank", "student_name", "grade", "section", "total_points", "quiz_points",
		"assignment_points", "attendance_points", "participation_points", "percentile",
	}, records[0])
	assert.Equal(t, []string{"1", "Amina", "7", "A", "28.5", "20", "0", "0", "8.5", "100"}, records[1])
}
