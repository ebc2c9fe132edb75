package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Runner starts named periodic jobs. Errors returned by fn are logged and the
// job keeps its schedule.
type Runner interface {
	Every(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) *Task
}

// Task is a running periodic job.
type Task struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newTask(name string, cancel context.CancelFunc) *Task {
	return &Task{name: name, cancel: cancel, done: make(chan struct{})}
}

// Stop cancels the task and waits for the current run to return. Safe to call twice.
func (t *Task) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the job will not run again.
func (t *Task) Done() <-chan struct{} { return t.done }

// ClockRunner drives jobs from a Clock; with a FakeClock every run is
// triggered by Advance.
type ClockRunner struct {
	clock Clock
	log   logrus.FieldLogger
}

func NewClockRunner(clock Clock, log logrus.FieldLogger) *ClockRunner {
	return &ClockRunner{clock: clock, log: log}
}

func (r *ClockRunner) Every(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) *Task {
	ctx, cancel := context.WithCancel(ctx)
	task := newTask(name, cancel)
	log := r.log.WithField("task", name)

	go func() {
		defer close(task.done)
		for {
			timer := r.clock.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C():
			}
			if ctx.Err() != nil {
				return
			}
			if err := fn(ctx); err != nil {
				log.WithError(err).Warn("scheduled run failed")
			}
		}
	}()
	return task
}
