package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/schedule"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AttemptRepository persists completed attempts. Rows are insert-only.
type AttemptRepository interface {
	InsertAttempt(ctx context.Context, attempt domain.Attempt) error
	// AttemptsForQuiz returns every completed attempt of a quiz, in any order.
	AttemptsForQuiz(ctx context.Context, quizID string) ([]domain.Attempt, error)
	AttemptsForStudent(ctx context.Context, studentID string) ([]domain.Attempt, error)
}

// Attempts drives quiz taking and scoring.
type Attempts struct {
	quizzes  QuizRepository
	attempts AttemptRepository
	clock    schedule.Clock
	log      logrus.FieldLogger
}

func NewAttempts(quizzes QuizRepository, attempts AttemptRepository, clock schedule.Clock, log logrus.FieldLogger) *Attempts {
	return &Attempts{quizzes: quizzes, attempts: attempts, clock: clock, log: log}
}

// Start loads the quiz and returns a fresh session with the answer key stripped.
func (a *Attempts) Start(ctx context.Context, studentID, quizID string) (*AttemptSession, error) {
	quiz, err := a.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsActive {
		return nil, domain.ErrQuizInactive
	}
	return newAttemptSession(studentID, quiz, a.clock.Now()), nil
}

// SubmitSession scores and stores the answers collected in a session.
func (a *Attempts) SubmitSession(ctx context.Context, session *AttemptSession) (domain.Attempt, error) {
	return a.Submit(ctx, session.StudentID, session.QuizID, session.Answers(), session.StartedAt)
}

// Submit scores answers against the current quiz and inserts a new attempt row.
// Every call creates its own row; retakes and duplicate submits are not merged.
func (a *Attempts) Submit(ctx context.Context, studentID, quizID string, answers map[string]domain.Option, startedAt time.Time) (domain.Attempt, error) {
	quiz, err := a.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Attempt{}, err
	}
	if !quiz.IsActive {
		return domain.Attempt{}, domain.ErrQuizInactive
	}

	now := a.clock.Now()
	score, kept := scoreAnswers(quiz, answers)
	elapsed := int(now.Sub(startedAt) / time.Second)
	if startedAt.IsZero() || elapsed < 0 {
		elapsed = 0
	}

	attempt := domain.Attempt{
		ID:               uuid.NewString(),
		StudentID:        studentID,
		QuizID:           quizID,
		Score:            score,
		TotalMarks:       quiz.TotalMarks,
		Percentage:       Percentage(score, quiz.TotalMarks),
		TimeTakenSeconds: elapsed,
		Answers:          kept,
		IsCompleted:      true,
		CompletedAt:      now,
	}
	if err := a.attempts.InsertAttempt(ctx, attempt); err != nil {
		return domain.Attempt{}, fmt.Errorf("insert attempt: %w", err)
	}

	a.log.WithFields(logrus.Fields{
		"quiz_id":    quizID,
		"student_id": studentID,
		"attempt_id": attempt.ID,
		"score":      score,
		"total":      quiz.TotalMarks,
		"unanswered": len(quiz.Questions) - len(kept),
	}).Info("attempt submitted")
	return attempt, nil
}

// Latest returns the most recently completed attempt of a student for a quiz.
func (a *Attempts) Latest(ctx context.Context, studentID, quizID string) (domain.Attempt, bool, error) {
	all, err := a.attempts.AttemptsForStudent(ctx, studentID)
	if err != nil {
		return domain.Attempt{}, false, err
	}
	var (
		latest domain.Attempt
		found  bool
	)
	for _, at := range all {
		if at.QuizID != quizID || !at.IsCompleted {
			continue
		}
		if !found || at.CompletedAt.After(latest.CompletedAt) {
			latest = at
			found = true
		}
	}
	return latest, found, nil
}

// History lists a student's attempts, newest first.
func (a *Attempts) History(ctx context.Context, studentID string) ([]domain.Attempt, error) {
	all, err := a.attempts.AttemptsForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CompletedAt.After(all[j].CompletedAt)
	})
	return all, nil
}

// scoreAnswers awards a question's marks when the chosen letter matches the key.
// Answers for questions outside the quiz are dropped from the stored map.
func scoreAnswers(quiz domain.Quiz, answers map[string]domain.Option) (int, map[string]domain.Option) {
	score := 0
	kept := make(map[string]domain.Option, len(answers))
	for _, q := range quiz.Questions {
		chosen, ok := answers[q.ID]
		if !ok {
			continue
		}
		kept[q.ID] = chosen
		if chosen == q.CorrectAnswer {
			score += q.Marks
		}
	}
	return score, kept
}

// Percentage is score/total*100, defined as 0 for an empty total.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}
