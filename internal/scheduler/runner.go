package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RecurringTask runs a unit of work immediately on Start and then on every
// interval until Stop. It keeps no reentrancy guard beyond the start/stop
// bookkeeping: each tick runs in its own goroutine, so a slow tick may still
// be in flight when the next one fires. Tasks that are not overlap-tolerant
// must serialize themselves.
type RecurringTask struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context)
	logger   *zap.SugaredLogger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

func NewRecurringTask(name string, interval time.Duration, task func(ctx context.Context), logger *zap.SugaredLogger) *RecurringTask {
	return &RecurringTask{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger,
	}
}

// Start launches the timer loop. Calling Start on a running task is a no-op.
func (r *RecurringTask) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.stop = make(chan struct{})
	r.logger.Infow("recurring task started", "task", r.name, "interval", r.interval)
	go r.loop(r.stop)
}

// Stop cancels future runs. An in-flight tick is allowed to complete.
func (r *RecurringTask) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false
	close(r.stop)
	r.logger.Infow("recurring task stopped", "task", r.name)
}

// Running reports whether the timer loop is active.
func (r *RecurringTask) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *RecurringTask) loop(stop chan struct{}) {
	go r.runOnce()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			go r.runOnce()
		case <-stop:
			return
		}
	}
}

// runOnce executes one tick. A panic escaping the task body is a bug in the
// task, but it must never take the timer down with it.
func (r *RecurringTask) runOnce() {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Errorw("recurring task tick panicked", "task", r.name, "panic", rec)
		}
	}()
	r.task(context.Background())
}
