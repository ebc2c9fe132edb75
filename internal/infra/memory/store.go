package memory

import (
	"context"
	"sync"

	"classroom-quiz-service/internal/domain"
)

// Store is an in-process backing store holding every table the service reads.
// It implements the app repositories for demos and tests.
type Store struct {
	mu sync.RWMutex

	profiles    map[string]domain.Profile
	quizzes     map[string]domain.Quiz
	attempts    []domain.Attempt
	assignments []domain.AssignmentSubmission
	lessons     []domain.LessonAttendance
	live        []domain.LiveClassAttendance
	pings       map[string]domain.Ping
	responses   map[string]map[string]domain.PingResponse
}

func NewStore() *Store {
	return &Store{
		profiles:  make(map[string]domain.Profile),
		quizzes:   make(map[string]domain.Quiz),
		pings:     make(map[string]domain.Ping),
		responses: make(map[string]map[string]domain.PingResponse),
	}
}

// PutProfile inserts or replaces a directory record.
func (s *Store) PutProfile(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

func (s *Store) Profile(_ context.Context, userID string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

func (s *Store) Students(_ context.Context, filter domain.StudentFilter) ([]domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) Names(_ context.Context, ids []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out[id] = p.FullName
		}
	}
	return out, nil
}

func (s *Store) AddAssignmentSubmission(sub domain.AssignmentSubmission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = append(s.assignments, sub)
}

func (s *Store) AddLessonAttendance(row domain.LessonAttendance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lessons = append(s.lessons, row)
}

// AddLiveAttendance records that a student joined a live class.
func (s *Store) AddLiveAttendance(row domain.LiveClassAttendance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = append(s.live, row)
}
