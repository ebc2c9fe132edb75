package app

import (
	"time"

	"classroom-quiz-service/internal/domain"
)

// AttemptSession is the in-progress state of one student taking one quiz.
// The caller owns it; nothing is persisted until submission.
type AttemptSession struct {
	StudentID string
	QuizID    string
	Title     string
	StartedAt time.Time
	Questions []domain.QuestionView

	index   int
	answers map[string]domain.Option
}

func newAttemptSession(studentID string, quiz domain.Quiz, startedAt time.Time) *AttemptSession {
	questions := make([]domain.Question, len(quiz.Questions))
	copy(questions, quiz.Questions)
	sortQuestions(questions)

	views := make([]domain.QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, q.View())
	}
	return &AttemptSession{
		StudentID: studentID,
		QuizID:    quiz.ID,
		Title:     quiz.Title,
		StartedAt: startedAt,
		Questions: views,
		answers:   make(map[string]domain.Option, len(views)),
	}
}

// RecordAnswer stores or replaces the selected option for a question.
func (s *AttemptSession) RecordAnswer(questionID string, option domain.Option) error {
	if !option.Valid() {
		return domain.ErrInvalidOption
	}
	if !s.hasQuestion(questionID) {
		return domain.ErrQuestionNotFound
	}
	if s.answers == nil {
		s.answers = make(map[string]domain.Option)
	}
	s.answers[questionID] = option
	return nil
}

// Answer returns the recorded option for a question, if any.
func (s *AttemptSession) Answer(questionID string) (domain.Option, bool) {
	opt, ok := s.answers[questionID]
	return opt, ok
}

// Answers returns a copy of the answer map.
func (s *AttemptSession) Answers() map[string]domain.Option {
	out := make(map[string]domain.Option, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Unanswered lists question ids without an answer, in display order.
// Callers use it to warn before submitting; it never blocks submission.
func (s *AttemptSession) Unanswered() []string {
	var missing []string
	for _, q := range s.Questions {
		if _, ok := s.answers[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	return missing
}

func (s *AttemptSession) Index() int { return s.index }

// Current returns the question under the cursor.
func (s *AttemptSession) Current() (domain.QuestionView, bool) {
	if s.index < 0 || s.index >= len(s.Questions) {
		return domain.QuestionView{}, false
	}
	return s.Questions[s.index], true
}

// Next moves forward; it reports false at the last question.
func (s *AttemptSession) Next() bool {
	if s.index+1 >= len(s.Questions) {
		return false
	}
	s.index++
	return true
}

// Prev moves back; it reports false at the first question.
func (s *AttemptSession) Prev() bool {
	if s.index == 0 {
		return false
	}
	s.index--
	return true
}

// Seek jumps to position i.
func (s *AttemptSession) Seek(i int) bool {
	if i < 0 || i >= len(s.Questions) {
		return false
	}
	s.index = i
	return true
}

func (s *AttemptSession) hasQuestion(id string) bool {
	for _, q := range s.Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}
