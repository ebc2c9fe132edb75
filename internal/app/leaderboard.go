package app

import (
	"context"
	"math"
	"sort"
	"sync"

	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/schedule"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ActivityRepository exposes the four independent point sources, keyed by student id.
// A student with no rows is simply absent from the returned map.
type ActivityRepository interface {
	// QuizMarks sums the score of every completed attempt.
	QuizMarks(ctx context.Context, studentIDs []string) (map[string]float64, error)
	// GradedAssignmentMarks sums marks of graded submissions only.
	GradedAssignmentMarks(ctx context.Context, studentIDs []string) (map[string]float64, error)
	// CompletedLessons counts lesson_attendance rows with is_completed.
	CompletedLessons(ctx context.Context, studentIDs []string) (map[string]int, error)
	// LiveAttendanceTotals sums attendance_percentage over live class rows.
	LiveAttendanceTotals(ctx context.Context, studentIDs []string) (map[string]float64, error)
}

// LeaderboardWeights converts raw activity into points.
type LeaderboardWeights struct {
	LessonPoints         float64
	ParticipationDivisor float64
}

// DefaultLeaderboardWeights: 10 points per completed lesson, live percentage / 10.
func DefaultLeaderboardWeights() LeaderboardWeights {
	return LeaderboardWeights{LessonPoints: 10, ParticipationDivisor: 10}
}

const (
	SourceQuizzes     = "quizzes"
	SourceAssignments = "assignments"
	SourceLessons     = "lessons"
	SourceLiveClasses = "live_classes"
)

// Leaderboard aggregates overall points across the student population.
type Leaderboard struct {
	directory *Directory
	activity  ActivityRepository
	weights   LeaderboardWeights
	clock     schedule.Clock
	log       logrus.FieldLogger
}

func NewLeaderboard(directory *Directory, activity ActivityRepository, weights LeaderboardWeights, clock schedule.Clock, log logrus.FieldLogger) *Leaderboard {
	if weights.ParticipationDivisor == 0 {
		weights.ParticipationDivisor = DefaultLeaderboardWeights().ParticipationDivisor
	}
	return &Leaderboard{directory: directory, activity: activity, weights: weights, clock: clock, log: log}
}

// Get recomputes the ranked leaderboard for the filtered population.
// Failing point sources are reported in PartialSources and count as zero.
func (l *Leaderboard) Get(ctx context.Context, filter domain.StudentFilter) (domain.Leaderboard, error) {
	students, err := l.directory.Students(ctx, filter)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}

	var (
		quizMarks   map[string]float64
		assignments map[string]float64
		lessons     map[string]int
		live        map[string]float64

		mu      sync.Mutex
		partial []string
	)
	fail := func(source string, err error) {
		l.log.WithError(err).WithField("source", source).Warn("leaderboard source failed; counting zero")
		mu.Lock()
		partial = append(partial, source)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := l.activity.QuizMarks(gctx, ids)
		if err != nil {
			fail(SourceQuizzes, err)
			return nil
		}
		quizMarks = m
		return nil
	})
	g.Go(func() error {
		m, err := l.activity.GradedAssignmentMarks(gctx, ids)
		if err != nil {
			fail(SourceAssignments, err)
			return nil
		}
		assignments = m
		return nil
	})
	g.Go(func() error {
		m, err := l.activity.CompletedLessons(gctx, ids)
		if err != nil {
			fail(SourceLessons, err)
			return nil
		}
		lessons = m
		return nil
	})
	g.Go(func() error {
		m, err := l.activity.LiveAttendanceTotals(gctx, ids)
		if err != nil {
			fail(SourceLiveClasses, err)
			return nil
		}
		live = m
		return nil
	})
	_ = g.Wait()
	sort.Strings(partial)

	entries := make([]domain.LeaderboardEntry, 0, len(students))
	for _, s := range students {
		e := domain.LeaderboardEntry{
			StudentID:           s.ID,
			StudentName:         s.FullName,
			Grade:               s.Grade,
			Section:             s.Section,
			QuizPoints:          quizMarks[s.ID],
			AssignmentPoints:    assignments[s.ID],
			AttendancePoints:    float64(lessons[s.ID]) * l.weights.LessonPoints,
			ParticipationPoints: live[s.ID] / l.weights.ParticipationDivisor,
		}
		e.TotalPoints = e.QuizPoints + e.AssignmentPoints + e.AttendancePoints + e.ParticipationPoints
		entries = append(entries, e)
	}
	rankLeaderboard(entries)

	return domain.Leaderboard{
		Filter:         filter,
		Entries:        entries,
		PartialSources: partial,
		GeneratedAt:    l.clock.Now(),
	}, nil
}

// rankLeaderboard sorts by total desc (name, id on ties) and fills rank and percentile.
func rankLeaderboard(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		if entries[i].StudentName != entries[j].StudentName {
			return entries[i].StudentName < entries[j].StudentName
		}
		return entries[i].StudentID < entries[j].StudentID
	})
	n := len(entries)
	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].Percentile = int(math.Round(float64(n-i) / float64(n) * 100))
	}
}
