package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/schedule"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PingRepository stores attendance pings and their responses.
type PingRepository interface {
	CreatePing(ctx context.Context, ping domain.Ping) error
	GetPing(ctx context.Context, pingID string) (domain.Ping, error)
	// LatestPing returns the most recently sent ping of a class or ErrPingNotFound.
	LatestPing(ctx context.Context, liveClassID string) (domain.Ping, error)
	// InsertResponse returns ErrAlreadyResponded when (ping, student) already has a row.
	InsertResponse(ctx context.Context, resp domain.PingResponse) error
	Response(ctx context.Context, pingID, studentID string) (domain.PingResponse, bool, error)
	Responses(ctx context.Context, pingID string) ([]domain.PingResponse, error)
	// MarkFinalized stamps finalized_at unless it is already set.
	MarkFinalized(ctx context.Context, pingID string, at time.Time) error
	// ExpiredUnfinalized lists pings whose window closed before now and were never finalized.
	ExpiredUnfinalized(ctx context.Context, now time.Time) ([]domain.Ping, error)
}

// ClassRoster answers who joined a live class.
type ClassRoster interface {
	JoinedStudents(ctx context.Context, liveClassID string) ([]string, error)
}

// PingPolicy holds the timing rules of the attendance challenge.
type PingPolicy struct {
	// Window is how long students have to acknowledge.
	Window time.Duration
	// Staleness bounds how old a ping may be when a poller first surfaces it.
	Staleness time.Duration
	// PollInterval is the client polling cadence.
	PollInterval time.Duration
	// SweepInterval is how often expired pings are finalized server-side.
	SweepInterval time.Duration
}

func DefaultPingPolicy() PingPolicy {
	return PingPolicy{
		Window:        60 * time.Second,
		Staleness:     10 * time.Second,
		PollInterval:  5 * time.Second,
		SweepInterval: 15 * time.Second,
	}
}

// Pings runs the live attendance challenge state machine.
type Pings struct {
	pings  PingRepository
	roster ClassRoster
	policy PingPolicy
	clock  schedule.Clock
	log    logrus.FieldLogger
}

func NewPings(pings PingRepository, roster ClassRoster, policy PingPolicy, clock schedule.Clock, log logrus.FieldLogger) *Pings {
	def := DefaultPingPolicy()
	if policy.Window <= 0 {
		policy.Window = def.Window
	}
	if policy.Staleness <= 0 {
		policy.Staleness = def.Staleness
	}
	if policy.PollInterval <= 0 {
		policy.PollInterval = def.PollInterval
	}
	if policy.SweepInterval <= 0 {
		policy.SweepInterval = def.SweepInterval
	}
	return &Pings{pings: pings, roster: roster, policy: policy, clock: clock, log: log}
}

func (p *Pings) Policy() PingPolicy { return p.policy }

// Send opens a new ping for a live class: NoPing -> PingActive.
func (p *Pings) Send(ctx context.Context, caps domain.Capabilities, liveClassID string) (domain.Ping, error) {
	if !caps.CanRunLiveClass {
		return domain.Ping{}, domain.ErrForbidden
	}
	now := p.clock.Now()
	ping := domain.Ping{
		ID:          uuid.NewString(),
		LiveClassID: liveClassID,
		TeacherID:   caps.UserID,
		SentAt:      now,
		ExpiresAt:   now.Add(p.policy.Window),
	}
	if err := p.pings.CreatePing(ctx, ping); err != nil {
		return domain.Ping{}, fmt.Errorf("create ping: %w", err)
	}
	p.log.WithFields(logrus.Fields{
		"ping_id":       ping.ID,
		"live_class_id": liveClassID,
		"expires_at":    ping.ExpiresAt,
	}).Info("attendance ping sent")
	return ping, nil
}

// Acknowledge records a student's presence: PingActive -> Acknowledged.
// A late acknowledgement finalizes the ping (the student is recorded absent)
// and returns ErrPingExpired.
func (p *Pings) Acknowledge(ctx context.Context, pingID, studentID string) (domain.PingResponse, error) {
	ping, err := p.pings.GetPing(ctx, pingID)
	if err != nil {
		return domain.PingResponse{}, err
	}

	joined, err := p.roster.JoinedStudents(ctx, ping.LiveClassID)
	if err != nil {
		return domain.PingResponse{}, fmt.Errorf("load roster: %w", err)
	}
	if !contains(joined, studentID) {
		return domain.PingResponse{}, domain.ErrNotJoined
	}

	now := p.clock.Now()
	log := p.log.WithFields(logrus.Fields{"ping_id": pingID, "student_id": studentID})
	if ping.Expired(now) {
		if _, err := p.finalize(ctx, ping, joined); err != nil {
			log.WithError(err).Warn("finalize after late acknowledgement failed")
		}
		log.Info("late acknowledgement rejected")
		return domain.PingResponse{}, domain.ErrPingExpired
	}

	respondedAt := now
	resp := domain.PingResponse{
		PingID:              pingID,
		StudentID:           studentID,
		RespondedAt:         &respondedAt,
		ResponseTimeSeconds: int(now.Sub(ping.SentAt) / time.Second),
		IsPresent:           true,
	}
	if err := p.pings.InsertResponse(ctx, resp); err != nil {
		return domain.PingResponse{}, err
	}
	log.WithField("response_seconds", resp.ResponseTimeSeconds).Info("attendance acknowledged")
	return resp, nil
}

// Finalize writes absent rows for every joined student without a response once
// the ping has expired. Calling it again is a no-op.
func (p *Pings) Finalize(ctx context.Context, pingID string) (bool, error) {
	ping, err := p.pings.GetPing(ctx, pingID)
	if err != nil {
		return false, err
	}
	if ping.FinalizedAt != nil || !ping.Expired(p.clock.Now()) {
		return false, nil
	}
	joined, err := p.roster.JoinedStudents(ctx, ping.LiveClassID)
	if err != nil {
		return false, fmt.Errorf("load roster: %w", err)
	}
	return p.finalize(ctx, ping, joined)
}

func (p *Pings) finalize(ctx context.Context, ping domain.Ping, joined []string) (bool, error) {
	if ping.FinalizedAt != nil {
		return false, nil
	}
	absent := 0
	for _, studentID := range joined {
		err := p.pings.InsertResponse(ctx, domain.PingResponse{
			PingID:    ping.ID,
			StudentID: studentID,
			IsPresent: false,
		})
		switch {
		case err == nil:
			absent++
		case errors.Is(err, domain.ErrAlreadyResponded):
		default:
			return false, fmt.Errorf("record absence: %w", err)
		}
	}
	if err := p.pings.MarkFinalized(ctx, ping.ID, p.clock.Now()); err != nil {
		return false, fmt.Errorf("mark finalized: %w", err)
	}
	p.log.WithFields(logrus.Fields{"ping_id": ping.ID, "absent": absent}).Info("attendance ping finalized")
	return true, nil
}

// Sweep finalizes every expired ping that has not been finalized yet.
func (p *Pings) Sweep(ctx context.Context) (int, error) {
	expired, err := p.pings.ExpiredUnfinalized(ctx, p.clock.Now())
	if err != nil {
		return 0, err
	}
	done := 0
	for _, ping := range expired {
		joined, err := p.roster.JoinedStudents(ctx, ping.LiveClassID)
		if err != nil {
			return done, fmt.Errorf("load roster: %w", err)
		}
		ok, err := p.finalize(ctx, ping, joined)
		if err != nil {
			return done, err
		}
		if ok {
			done++
		}
	}
	return done, nil
}

// StartSweeper finalizes expired pings in the background until the task is stopped.
func (p *Pings) StartSweeper(ctx context.Context, runner schedule.Runner) *schedule.Task {
	return runner.Every(ctx, "ping-sweeper", p.policy.SweepInterval, func(ctx context.Context) error {
		_, err := p.Sweep(ctx)
		return err
	})
}

// Status reports the responses of a ping, finalizing it first when expired.
func (p *Pings) Status(ctx context.Context, pingID string) (domain.PingStatus, error) {
	if _, err := p.Finalize(ctx, pingID); err != nil {
		return domain.PingStatus{}, err
	}
	ping, err := p.pings.GetPing(ctx, pingID)
	if err != nil {
		return domain.PingStatus{}, err
	}
	responses, err := p.pings.Responses(ctx, pingID)
	if err != nil {
		return domain.PingStatus{}, err
	}
	joined, err := p.roster.JoinedStudents(ctx, ping.LiveClassID)
	if err != nil {
		return domain.PingStatus{}, fmt.Errorf("load roster: %w", err)
	}

	status := domain.PingStatus{Ping: ping, Responses: responses}
	seen := make(map[string]struct{}, len(responses))
	for _, r := range responses {
		seen[r.StudentID] = struct{}{}
		if r.IsPresent {
			status.Present++
		} else {
			status.Absent++
		}
	}
	for _, id := range joined {
		if _, ok := seen[id]; !ok {
			status.Pending++
		}
	}
	return status, nil
}

// State returns where a student stands for a ping.
func (p *Pings) State(ctx context.Context, pingID, studentID string) (domain.PingState, error) {
	ping, err := p.pings.GetPing(ctx, pingID)
	if errors.Is(err, domain.ErrPingNotFound) {
		return domain.PingStateNone, nil
	}
	if err != nil {
		return "", err
	}
	resp, ok, err := p.pings.Response(ctx, pingID, studentID)
	if err != nil {
		return "", err
	}
	if ok {
		if resp.IsPresent {
			return domain.PingStateAcknowledged, nil
		}
		return domain.PingStateExpired, nil
	}
	if ping.Expired(p.clock.Now()) {
		return domain.PingStateExpired, nil
	}
	return domain.PingStateActive, nil
}

// Pending returns the ping a polling student should be prompted with, or nil.
// Only the latest ping counts, it must be younger than the staleness window,
// still open, and not yet answered by this student.
func (p *Pings) Pending(ctx context.Context, liveClassID, studentID string) (*domain.Ping, error) {
	ping, err := p.pings.LatestPing(ctx, liveClassID)
	if errors.Is(err, domain.ErrPingNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	now := p.clock.Now()
	if ping.Expired(now) || now.Sub(ping.SentAt) > p.policy.Staleness {
		return nil, nil
	}
	_, answered, err := p.pings.Response(ctx, ping.ID, studentID)
	if err != nil {
		return nil, err
	}
	if answered {
		return nil, nil
	}
	return &ping, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
