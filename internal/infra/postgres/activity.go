package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
)

func (s *Store) QuizMarks(ctx context.Context, studentIDs []string) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT student_id, COALESCE(SUM(score), 0)::float8 FROM quiz_results
		WHERE is_completed AND student_id = ANY($1) GROUP BY student_id`, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("sum quiz marks: %w", err)
	}
	return scanFloatTotals(rows)
}

func (s *Store) GradedAssignmentMarks(ctx context.Context, studentIDs []string) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT student_id, COALESCE(SUM(marks_obtained), 0)::float8 FROM assignment_submissions
		WHERE status='graded' AND student_id = ANY($1) GROUP BY student_id`, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("sum assignment marks: %w", err)
	}
	return scanFloatTotals(rows)
}

func (s *Store) CompletedLessons(ctx context.Context, studentIDs []string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT student_id, COUNT(*) FROM lesson_attendance
		WHERE is_completed AND student_id = ANY($1) GROUP BY student_id`, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("count lessons: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var (
			id    string
			count int64
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan lesson count: %w", err)
		}
		out[id] = int(count)
	}
	return out, rows.Err()
}

func (s *Store) LiveAttendanceTotals(ctx context.Context, studentIDs []string) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT student_id, COALESCE(SUM(attendance_percentage), 0)::float8 FROM live_class_attendance
		WHERE student_id = ANY($1) GROUP BY student_id`, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("sum live attendance: %w", err)
	}
	return scanFloatTotals(rows)
}

func (s *Store) JoinedStudents(ctx context.Context, liveClassID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT student_id FROM live_class_attendance
		WHERE live_class_id=$1 ORDER BY student_id`, liveClassID)
	if err != nil {
		return nil, fmt.Errorf("list joined students: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan joined student: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// RecordLiveAttendance upserts the roster row written when a student joins a live class.
func (s *Store) RecordLiveAttendance(ctx context.Context, liveClassID, studentID string, percentage float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO live_class_attendance (live_class_id, student_id, attendance_percentage)
		VALUES ($1, $2, $3)
		ON CONFLICT (live_class_id, student_id) DO UPDATE SET attendance_percentage=EXCLUDED.attendance_percentage`,
		liveClassID, studentID, percentage)
	if err != nil {
		return fmt.Errorf("record live attendance: %w", err)
	}
	return nil
}

func scanFloatTotals(rows pgx.Rows) (map[string]float64, error) {
	defer rows.Close()
	out := make(map[string]float64)
	for rows.Next() {
		var (
			id    string
			total float64
		)
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("scan total: %w", err)
		}
		out[id] = total
	}
	return out, rows.Err()
}
