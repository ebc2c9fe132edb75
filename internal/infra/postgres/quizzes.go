package postgres

import (
	"context"
	"errors"
	"fmt"

	"classroom-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
)

// LoadQuiz reads a quiz and its questions in display order.
func (s *Store) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var q domain.Quiz
	err := s.pool.QueryRow(ctx, `
		SELECT id, teacher_id, title, description, subject, grade, section,
		       total_marks, duration_minutes, is_active, created_at
		FROM quizzes WHERE id=$1`, quizID,
	).Scan(&q.ID, &q.TeacherID, &q.Title, &q.Description, &q.Subject, &q.Grade, &q.Section,
		&q.TotalMarks, &q.DurationMinutes, &q.IsActive, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, question_text, option_a, option_b, option_c, option_d,
		       correct_answer, marks, question_order
		FROM quiz_questions WHERE quiz_id=$1 ORDER BY question_order, id`, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		question := domain.Question{QuizID: quizID}
		var correct string
		if err := rows.Scan(&question.ID, &question.Text,
			&question.Options[0], &question.Options[1], &question.Options[2], &question.Options[3],
			&correct, &question.Marks, &question.Order); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		question.CorrectAnswer = domain.Option(correct)
		q.Questions = append(q.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	return q, nil
}

// SaveQuiz writes the quiz and replaces its questions in one transaction.
func (s *Store) SaveQuiz(ctx context.Context, q domain.Quiz) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO quizzes (id, teacher_id, title, description, subject, grade, section,
				total_marks, duration_minutes, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET teacher_id=EXCLUDED.teacher_id, title=EXCLUDED.title,
				description=EXCLUDED.description, subject=EXCLUDED.subject, grade=EXCLUDED.grade,
				section=EXCLUDED.section, total_marks=EXCLUDED.total_marks,
				duration_minutes=EXCLUDED.duration_minutes, is_active=EXCLUDED.is_active`,
			q.ID, q.TeacherID, q.Title, q.Description, q.Subject, q.Grade, q.Section,
			q.TotalMarks, q.DurationMinutes, q.IsActive, q.CreatedAt); err != nil {
			return fmt.Errorf("save quiz: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM quiz_questions WHERE quiz_id=$1`, q.ID); err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		for _, question := range q.Questions {
			if _, err := tx.Exec(ctx, `
				INSERT INTO quiz_questions (id, quiz_id, question_text, option_a, option_b, option_c,
					option_d, correct_answer, marks, question_order)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				question.ID, q.ID, question.Text,
				question.Options[0], question.Options[1], question.Options[2], question.Options[3],
				string(question.CorrectAnswer), question.Marks, question.Order); err != nil {
				return fmt.Errorf("save question %s: %w", question.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) SetActive(ctx context.Context, quizID string, active bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE quizzes SET is_active=$2 WHERE id=$1`, quizID, active)
	if err != nil {
		return fmt.Errorf("set quiz active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}
