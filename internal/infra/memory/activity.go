package memory

import (
	"context"
)

func (s *Store) QuizMarks(_ context.Context, studentIDs []string) (map[string]float64, error) {
	want := idSet(studentIDs)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64)
	for _, at := range s.attempts {
		if _, ok := want[at.StudentID]; ok && at.IsCompleted {
			out[at.StudentID] += float64(at.Score)
		}
	}
	return out, nil
}

func (s *Store) GradedAssignmentMarks(_ context.Context, studentIDs []string) (map[string]float64, error) {
	want := idSet(studentIDs)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64)
	for _, sub := range s.assignments {
		if _, ok := want[sub.StudentID]; ok && sub.Graded {
			out[sub.StudentID] += sub.MarksObtained
		}
	}
	return out, nil
}

func (s *Store) CompletedLessons(_ context.Context, studentIDs []string) (map[string]int, error) {
	want := idSet(studentIDs)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int)
	for _, row := range s.lessons {
		if _, ok := want[row.StudentID]; ok && row.IsCompleted {
			out[row.StudentID]++
		}
	}
	return out, nil
}

func (s *Store) LiveAttendanceTotals(_ context.Context, studentIDs []string) (map[string]float64, error) {
	want := idSet(studentIDs)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64)
	for _, row := range s.live {
		if _, ok := want[row.StudentID]; ok {
			out[row.StudentID] += row.AttendancePercentage
		}
	}
	return out, nil
}

// JoinedStudents lists distinct students with a live attendance row for the class.
func (s *Store) JoinedStudents(_ context.Context, liveClassID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, row := range s.live {
		if row.LiveClassID != liveClassID {
			continue
		}
		if _, ok := seen[row.StudentID]; ok {
			continue
		}
		seen[row.StudentID] = struct{}{}
		out = append(out, row.StudentID)
	}
	return out, nil
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
