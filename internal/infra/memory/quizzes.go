package memory

import (
	"context"

	"classroom-quiz-service/internal/domain"
)

func (s *Store) SaveQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (s *Store) SetActive(_ context.Context, quizID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	quiz.IsActive = active
	s.quizzes[quizID] = quiz
	return nil
}

// LoadQuiz satisfies QuizLoader so the store can sit behind a cache.
func (s *Store) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(q.Questions))
	copy(questions, q.Questions)
	q.Questions = questions
	return q
}
