package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"classroom-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
)

const attemptColumns = `id, student_id, quiz_id, score, total_marks, percentage,
	time_taken_seconds, answers, is_completed, completed_at`

func (s *Store) InsertAttempt(ctx context.Context, at domain.Attempt) error {
	answers, err := json.Marshal(at.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quiz_results (`+attemptColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10)`,
		at.ID, at.StudentID, at.QuizID, at.Score, at.TotalMarks, at.Percentage,
		at.TimeTakenSeconds, string(answers), at.IsCompleted, at.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// AttemptsForQuiz reads the quiz_rankings view, which already drops unfinished attempts.
func (s *Store) AttemptsForQuiz(ctx context.Context, quizID string) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+attemptColumns+`
		FROM quiz_rankings WHERE quiz_id=$1`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}
	return scanAttempts(rows)
}

func (s *Store) AttemptsForStudent(ctx context.Context, studentID string) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+attemptColumns+`
		FROM quiz_results WHERE student_id=$1 ORDER BY completed_at DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list student attempts: %w", err)
	}
	return scanAttempts(rows)
}

func scanAttempts(rows pgx.Rows) ([]domain.Attempt, error) {
	defer rows.Close()
	var out []domain.Attempt
	for rows.Next() {
		var (
			at  domain.Attempt
			raw []byte
		)
		if err := rows.Scan(&at.ID, &at.StudentID, &at.QuizID, &at.Score, &at.TotalMarks,
			&at.Percentage, &at.TimeTakenSeconds, &raw, &at.IsCompleted, &at.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &at.Answers); err != nil {
				return nil, fmt.Errorf("unmarshal answers: %w", err)
			}
		}
		out = append(out, at)
	}
	return out, rows.Err()
}
