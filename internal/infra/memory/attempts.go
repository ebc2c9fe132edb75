package memory

import (
	"context"

	"classroom-quiz-service/internal/domain"
)

func (s *Store) InsertAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, cloneAttempt(attempt))
	return nil
}

func (s *Store) AttemptsForQuiz(_ context.Context, quizID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Attempt
	for _, at := range s.attempts {
		if at.QuizID == quizID && at.IsCompleted {
			out = append(out, cloneAttempt(at))
		}
	}
	return out, nil
}

func (s *Store) AttemptsForStudent(_ context.Context, studentID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Attempt
	for _, at := range s.attempts {
		if at.StudentID == studentID {
			out = append(out, cloneAttempt(at))
		}
	}
	return out, nil
}

func cloneAttempt(a domain.Attempt) domain.Attempt {
	answers := make(map[string]domain.Option, len(a.Answers))
	for k, v := range a.Answers {
		answers[k] = v
	}
	a.Answers = answers
	return a
}
