package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronRunner schedules jobs on robfig/cron. A job whose previous run is still
// going is skipped rather than stacked.
type CronRunner struct {
	cron *cron.Cron
	log  logrus.FieldLogger
}

func NewCronRunner(log logrus.FieldLogger) *CronRunner {
	logger := cronLogger{log: log}
	return &CronRunner{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		log: log,
	}
}

// Start runs the scheduler in the background.
func (r *CronRunner) Start() { r.cron.Start() }

// Stop halts scheduling and waits for running jobs to finish.
func (r *CronRunner) Stop() { <-r.cron.Stop().Done() }

// Every registers fn as "@every interval". Cron resolution is one second.
func (r *CronRunner) Every(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) *Task {
	ctx, cancel := context.WithCancel(ctx)
	task := newTask(name, cancel)
	log := r.log.WithField("task", name)

	var (
		mu      sync.Mutex
		stopped bool
		running sync.WaitGroup
	)
	id, err := r.cron.AddFunc("@every "+interval.String(), func() {
		mu.Lock()
		if stopped {
			mu.Unlock()
			return
		}
		running.Add(1)
		mu.Unlock()
		defer running.Done()

		if err := fn(ctx); err != nil {
			log.WithError(err).Warn("scheduled run failed")
		}
	})
	if err != nil {
		log.WithError(err).Error("schedule job failed")
		cancel()
		close(task.done)
		return task
	}

	go func() {
		<-ctx.Done()
		r.cron.Remove(id)
		mu.Lock()
		stopped = true
		mu.Unlock()
		running.Wait()
		close(task.done)
	}()
	return task
}

// cronLogger routes cron's own messages to logrus.
type cronLogger struct {
	log logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kvFields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithError(err).WithFields(kvFields(keysAndValues)).Error("cron: " + msg)
}

func kvFields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			fields[key] = kv[i+1]
		}
	}
	return fields
}
