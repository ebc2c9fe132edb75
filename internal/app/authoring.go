package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/schedule"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizStore persists authored quizzes.
type QuizStore interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	SetActive(ctx context.Context, quizID string, active bool) error
}

// quizInvalidator is implemented by caching quiz repositories.
type quizInvalidator interface {
	Invalidate(ctx context.Context, quizID string)
}

// QuizDraft is the authoring input for a new quiz.
type QuizDraft struct {
	Title           string
	Description     string
	Subject         string
	Grade           string
	Section         string
	DurationMinutes int
	IsActive        bool
	Questions       []QuestionDraft
}

type QuestionDraft struct {
	Text          string
	Options       [4]string
	CorrectAnswer domain.Option
	Marks         int
	Order         int
}

// Authoring owns quiz creation and activation.
type Authoring struct {
	store   QuizStore
	quizzes QuizRepository
	clock   schedule.Clock
	log     logrus.FieldLogger
}

func NewAuthoring(store QuizStore, quizzes QuizRepository, clock schedule.Clock, log logrus.FieldLogger) *Authoring {
	return &Authoring{store: store, quizzes: quizzes, clock: clock, log: log}
}

// CreateQuiz validates the draft and stores it with total marks computed from the questions.
func (a *Authoring) CreateQuiz(ctx context.Context, caps domain.Capabilities, draft QuizDraft) (domain.Quiz, error) {
	if !caps.CanAuthor {
		return domain.Quiz{}, domain.ErrForbidden
	}
	if err := validateDraft(draft); err != nil {
		return domain.Quiz{}, err
	}

	quiz := domain.Quiz{
		ID:              uuid.NewString(),
		TeacherID:       caps.UserID,
		Title:           strings.TrimSpace(draft.Title),
		Description:     draft.Description,
		Subject:         draft.Subject,
		Grade:           draft.Grade,
		Section:         draft.Section,
		DurationMinutes: draft.DurationMinutes,
		IsActive:        draft.IsActive,
		CreatedAt:       a.clock.Now(),
		Questions:       make([]domain.Question, 0, len(draft.Questions)),
	}
	for _, qd := range draft.Questions {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:            uuid.NewString(),
			QuizID:        quiz.ID,
			Text:          strings.TrimSpace(qd.Text),
			Options:       qd.Options,
			CorrectAnswer: qd.CorrectAnswer,
			Marks:         qd.Marks,
			Order:         qd.Order,
		})
	}
	sortQuestions(quiz.Questions)
	quiz.TotalMarks = quiz.SumMarks()

	if err := a.store.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("save quiz: %w", err)
	}
	a.invalidate(ctx, quiz.ID)
	a.log.WithFields(logrus.Fields{
		"quiz_id":     quiz.ID,
		"teacher_id":  caps.UserID,
		"questions":   len(quiz.Questions),
		"total_marks": quiz.TotalMarks,
	}).Info("quiz created")
	return quiz, nil
}

// SetActive opens or closes a quiz for new attempts.
func (a *Authoring) SetActive(ctx context.Context, caps domain.Capabilities, quizID string, active bool) error {
	if !caps.CanAuthor {
		return domain.ErrForbidden
	}
	if err := a.store.SetActive(ctx, quizID, active); err != nil {
		return err
	}
	a.invalidate(ctx, quizID)
	a.log.WithFields(logrus.Fields{"quiz_id": quizID, "active": active}).Info("quiz activation changed")
	return nil
}

// Quiz returns the full quiz including the answer key; authors only.
func (a *Authoring) Quiz(ctx context.Context, caps domain.Capabilities, quizID string) (domain.Quiz, error) {
	if !caps.CanAuthor {
		return domain.Quiz{}, domain.ErrForbidden
	}
	return a.quizzes.GetQuiz(ctx, quizID)
}

func (a *Authoring) invalidate(ctx context.Context, quizID string) {
	if inv, ok := a.quizzes.(quizInvalidator); ok {
		inv.Invalidate(ctx, quizID)
	}
}

func validateDraft(draft QuizDraft) error {
	if strings.TrimSpace(draft.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidQuiz)
	}
	if len(draft.Questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", domain.ErrInvalidQuiz)
	}
	orders := make(map[int]struct{}, len(draft.Questions))
	for i, q := range draft.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question %d has no text", domain.ErrInvalidQuiz, i+1)
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("%w: question %d option %s is empty", domain.ErrInvalidQuiz, i+1, domain.Options[j])
			}
		}
		if !q.CorrectAnswer.Valid() {
			return fmt.Errorf("%w: question %d: %v", domain.ErrInvalidQuiz, i+1, domain.ErrInvalidOption)
		}
		if q.Marks <= 0 {
			return fmt.Errorf("%w: question %d marks must be positive", domain.ErrInvalidQuiz, i+1)
		}
		if _, dup := orders[q.Order]; dup {
			return fmt.Errorf("%w: question order %d is used twice", domain.ErrInvalidQuiz, q.Order)
		}
		orders[q.Order] = struct{}{}
	}
	return nil
}

func sortQuestions(questions []domain.Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Order < questions[j].Order
	})
}
