package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/schedule"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := newCountingLoader(sampleQuiz())
	repo := NewQuizRepository(loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
}

func TestQuizRepositoryExpiresAndInvalidates(t *testing.T) {
	clock := schedule.NewFakeClock(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	loader := newCountingLoader(sampleQuiz())
	repo := NewQuizRepositoryWithClock(loader, time.Minute, clock)
	ctx := context.Background()

	_, _ = repo.GetQuiz(ctx, "quiz-1")
	clock.Advance(2 * time.Minute) // past ttl + max jitter
	_, _ = repo.GetQuiz(ctx, "quiz-1")
	if loader.count() != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.count())
	}

	repo.Invalidate(ctx, "quiz-1")
	_, _ = repo.GetQuiz(ctx, "quiz-1")
	if loader.count() != 3 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.count())
	}
}

func TestQuizRepositoryReturnsCopies(t *testing.T) {
	repo := NewQuizRepository(newCountingLoader(sampleQuiz()), time.Minute)
	ctx := context.Background()

	first, _ := repo.GetQuiz(ctx, "quiz-1")
	first.Questions[0].CorrectAnswer = domain.OptionD

	second, _ := repo.GetQuiz(ctx, "quiz-1")
	if second.Questions[0].CorrectAnswer != domain.OptionB {
		t.Fatalf("cached quiz was mutated through a returned copy")
	}
}

func TestQuizRepositoryUnknownQuiz(t *testing.T) {
	repo := NewQuizRepository(NewStore(), time.Minute)
	if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	mu    sync.Mutex
	calls int
}

func newCountingLoader(quizzes ...domain.Quiz) *countingLoader {
	store := NewStore()
	for _, q := range quizzes {
		_ = store.SaveQuiz(context.Background(), q)
	}
	return &countingLoader{QuizLoader: store}
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:         "quiz-1",
		Title:      "Arithmetic",
		TotalMarks: 1,
		IsActive:   true,
		Questions: []domain.Question{
			{
				ID:            "q1",
				QuizID:        "quiz-1",
				Text:          "What is 2 + 2?",
				Options:       [4]string{"3", "4", "5", "6"},
				CorrectAnswer: domain.OptionB,
				Marks:         1,
				Order:         1,
			},
		},
	}
}
