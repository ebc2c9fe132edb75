package postgres

import (
	"context"
	"errors"
	"fmt"

	"classroom-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Store implements every repository of the service on top of a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	var role string
	err := s.pool.QueryRow(ctx,
		`SELECT id, full_name, role, grade, section FROM profiles WHERE id=$1`, userID,
	).Scan(&p.ID, &p.FullName, &role, &p.Grade, &p.Section)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	p.Role = domain.Role(role)

	rows, err := s.pool.Query(ctx,
		`SELECT student_id FROM profile_links WHERE profile_id=$1 ORDER BY student_id`, userID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load profile links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return domain.Profile{}, fmt.Errorf("scan profile link: %w", err)
		}
		p.LinkedStudentIDs = append(p.LinkedStudentIDs, id)
	}
	return p, rows.Err()
}

// Students applies the filter in SQL with the same case-insensitive rules as StudentFilter.Matches.
func (s *Store) Students(ctx context.Context, filter domain.StudentFilter) ([]domain.Profile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, full_name, grade, section FROM profiles
		WHERE role='student'
		  AND ($1 = '' OR lower(grade) = lower($1))
		  AND ($2 = '' OR lower(section) = lower($2))
		ORDER BY full_name, id`, filter.Grade, filter.Section)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()
	var out []domain.Profile
	for rows.Next() {
		p := domain.Profile{Role: domain.RoleStudent}
		if err := rows.Scan(&p.ID, &p.FullName, &p.Grade, &p.Section); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Names(ctx context.Context, ids []string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, full_name FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load names: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

// PutProfile upserts a profile and replaces its links.
func (s *Store) PutProfile(ctx context.Context, p domain.Profile) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO profiles (id, full_name, role, grade, section) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET full_name=EXCLUDED.full_name, role=EXCLUDED.role,
				grade=EXCLUDED.grade, section=EXCLUDED.section`,
			p.ID, p.FullName, string(p.Role), p.Grade, p.Section); err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM profile_links WHERE profile_id=$1`, p.ID); err != nil {
			return fmt.Errorf("clear profile links: %w", err)
		}
		for _, studentID := range p.LinkedStudentIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO profile_links (profile_id, student_id) VALUES ($1, $2)`, p.ID, studentID); err != nil {
				return fmt.Errorf("insert profile link: %w", err)
			}
		}
		return nil
	})
}
