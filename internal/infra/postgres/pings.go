package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"classroom-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
)

const pingColumns = `id, live_class_id, teacher_id, ping_sent_at, ping_expires_at, finalized_at`

func (s *Store) CreatePing(ctx context.Context, ping domain.Ping) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO live_attendance_pings (`+pingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ping.ID, ping.LiveClassID, ping.TeacherID, ping.SentAt, ping.ExpiresAt, ping.FinalizedAt)
	if err != nil {
		return fmt.Errorf("insert ping: %w", err)
	}
	return nil
}

func (s *Store) GetPing(ctx context.Context, pingID string) (domain.Ping, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pingColumns+` FROM live_attendance_pings WHERE id=$1`, pingID)
	return scanPing(row)
}

func (s *Store) LatestPing(ctx context.Context, liveClassID string) (domain.Ping, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pingColumns+` FROM live_attendance_pings
		WHERE live_class_id=$1 ORDER BY ping_sent_at DESC LIMIT 1`, liveClassID)
	return scanPing(row)
}

// InsertResponse relies on the (ping_id, student_id) key; a conflicting row means the
// student already has an outcome for this ping.
func (s *Store) InsertResponse(ctx context.Context, resp domain.PingResponse) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO live_ping_responses (ping_id, student_id, responded_at, response_time_seconds, is_present)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ping_id, student_id) DO NOTHING`,
		resp.PingID, resp.StudentID, resp.RespondedAt, resp.ResponseTimeSeconds, resp.IsPresent)
	if err != nil {
		return fmt.Errorf("insert ping response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyResponded
	}
	return nil
}

func (s *Store) Response(ctx context.Context, pingID, studentID string) (domain.PingResponse, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT ping_id, student_id, responded_at, response_time_seconds, is_present
		FROM live_ping_responses WHERE ping_id=$1 AND student_id=$2`, pingID, studentID)
	resp, err := scanResponse(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PingResponse{}, false, nil
	}
	if err != nil {
		return domain.PingResponse{}, false, fmt.Errorf("load ping response: %w", err)
	}
	return resp, true, nil
}

func (s *Store) Responses(ctx context.Context, pingID string) ([]domain.PingResponse, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ping_id, student_id, responded_at, response_time_seconds, is_present
		FROM live_ping_responses WHERE ping_id=$1 ORDER BY student_id`, pingID)
	if err != nil {
		return nil, fmt.Errorf("list ping responses: %w", err)
	}
	defer rows.Close()
	var out []domain.PingResponse
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ping response: %w", err)
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}

// MarkFinalized stamps finalized_at once; later calls leave the first stamp.
func (s *Store) MarkFinalized(ctx context.Context, pingID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE live_attendance_pings SET finalized_at=COALESCE(finalized_at, $2) WHERE id=$1`, pingID, at)
	if err != nil {
		return fmt.Errorf("finalize ping: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPingNotFound
	}
	return nil
}

func (s *Store) ExpiredUnfinalized(ctx context.Context, now time.Time) ([]domain.Ping, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+pingColumns+` FROM live_attendance_pings
		WHERE finalized_at IS NULL AND ping_expires_at <= $1 ORDER BY ping_sent_at`, now)
	if err != nil {
		return nil, fmt.Errorf("list expired pings: %w", err)
	}
	defer rows.Close()
	var out []domain.Ping
	for rows.Next() {
		ping, err := scanPing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ping)
	}
	return out, rows.Err()
}

func scanPing(row pgx.Row) (domain.Ping, error) {
	var ping domain.Ping
	err := row.Scan(&ping.ID, &ping.LiveClassID, &ping.TeacherID, &ping.SentAt, &ping.ExpiresAt, &ping.FinalizedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Ping{}, domain.ErrPingNotFound
	}
	if err != nil {
		return domain.Ping{}, fmt.Errorf("scan ping: %w", err)
	}
	ping.SentAt = ping.SentAt.UTC()
	ping.ExpiresAt = ping.ExpiresAt.UTC()
	if ping.FinalizedAt != nil {
		at := ping.FinalizedAt.UTC()
		ping.FinalizedAt = &at
	}
	return ping, nil
}

func scanResponse(row pgx.Row) (domain.PingResponse, error) {
	var resp domain.PingResponse
	err := row.Scan(&resp.PingID, &resp.StudentID, &resp.RespondedAt, &resp.ResponseTimeSeconds, &resp.IsPresent)
	return resp, err
}
