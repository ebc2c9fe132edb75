package memory

import (
	"context"
	"sort"
	"time"

	"classroom-quiz-service/internal/domain"
)

func (s *Store) CreatePing(_ context.Context, ping domain.Ping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pings[ping.ID] = ping
	return nil
}

func (s *Store) GetPing(_ context.Context, pingID string) (domain.Ping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ping, ok := s.pings[pingID]
	if !ok {
		return domain.Ping{}, domain.ErrPingNotFound
	}
	return ping, nil
}

func (s *Store) LatestPing(_ context.Context, liveClassID string) (domain.Ping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		latest domain.Ping
		found  bool
	)
	for _, ping := range s.pings {
		if ping.LiveClassID != liveClassID {
			continue
		}
		if !found || ping.SentAt.After(latest.SentAt) {
			latest = ping
			found = true
		}
	}
	if !found {
		return domain.Ping{}, domain.ErrPingNotFound
	}
	return latest, nil
}

func (s *Store) InsertResponse(_ context.Context, resp domain.PingResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pings[resp.PingID]; !ok {
		return domain.ErrPingNotFound
	}
	byStudent, ok := s.responses[resp.PingID]
	if !ok {
		byStudent = make(map[string]domain.PingResponse)
		s.responses[resp.PingID] = byStudent
	}
	if _, dup := byStudent[resp.StudentID]; dup {
		return domain.ErrAlreadyResponded
	}
	byStudent[resp.StudentID] = resp
	return nil
}

func (s *Store) Response(_ context.Context, pingID, studentID string) (domain.PingResponse, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp, ok := s.responses[pingID][studentID]
	return resp, ok, nil
}

func (s *Store) Responses(_ context.Context, pingID string) ([]domain.PingResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PingResponse, 0, len(s.responses[pingID]))
	for _, resp := range s.responses[pingID] {
		out = append(out, resp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

func (s *Store) MarkFinalized(_ context.Context, pingID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ping, ok := s.pings[pingID]
	if !ok {
		return domain.ErrPingNotFound
	}
	if ping.FinalizedAt == nil {
		stamp := at
		ping.FinalizedAt = &stamp
		s.pings[pingID] = ping
	}
	return nil
}

func (s *Store) ExpiredUnfinalized(_ context.Context, now time.Time) ([]domain.Ping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Ping
	for _, ping := range s.pings {
		if ping.FinalizedAt == nil && ping.Expired(now) {
			out = append(out, ping)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	return out, nil
}
