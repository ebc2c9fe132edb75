package app

import (
	"context"
	"sync"

	"classroom-quiz-service/internal/domain"
	"classroom-quiz-service/internal/schedule"
)

// PingPoller is the student-side loop that checks for new pings while a class is live.
// Each ping id is surfaced at most once.
type PingPoller struct {
	pings       *Pings
	runner      schedule.Runner
	liveClassID string
	studentID   string
	onPing      func(domain.Ping)

	mu       sync.Mutex
	surfaced map[string]struct{}
	task     *schedule.Task
}

func (p *Pings) NewPoller(runner schedule.Runner, liveClassID, studentID string, onPing func(domain.Ping)) *PingPoller {
	return &PingPoller{
		pings:       p,
		runner:      runner,
		liveClassID: liveClassID,
		studentID:   studentID,
		onPing:      onPing,
		surfaced:    make(map[string]struct{}),
	}
}

// Start begins polling at the policy interval. Starting twice is a no-op.
func (pp *PingPoller) Start(ctx context.Context) {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	if pp.task != nil {
		return
	}
	pp.task = pp.runner.Every(ctx, "ping-poller", pp.pings.policy.PollInterval, pp.Poll)
}

// Stop halts polling; it can be started again afterwards.
func (pp *PingPoller) Stop() {
	pp.mu.Lock()
	task := pp.task
	pp.task = nil
	pp.mu.Unlock()
	if task != nil {
		task.Stop()
	}
}

// Poll performs a single check.
func (pp *PingPoller) Poll(ctx context.Context) error {
	ping, err := pp.pings.Pending(ctx, pp.liveClassID, pp.studentID)
	if err != nil || ping == nil {
		return err
	}
	pp.mu.Lock()
	if _, seen := pp.surfaced[ping.ID]; seen {
		pp.mu.Unlock()
		return nil
	}
	pp.surfaced[ping.ID] = struct{}{}
	pp.mu.Unlock()

	pp.onPing(*ping)
	return nil
}
