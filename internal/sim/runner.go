package sim

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrRunnerStopped is returned by Do after Run has returned.
var ErrRunnerStopped = errors.New("runner stopped")

// Command is executed on the runner goroutine between ticks.
type Command func(s *Session)

// Runner advances a session at a fixed cadence and serializes every
// external access to it.
type Runner struct {
	session  *Session
	interval time.Duration
	commands chan Command
	done     chan struct{}
}

// NewRunner creates runner ticking session tickRate times per second.
func NewRunner(session *Session, tickRate int) *Runner {
	if tickRate <= 0 {
		tickRate = 30
	}
	return &Runner{
		session:  session,
		interval: time.Second / time.Duration(tickRate),
		commands: make(chan Command, 64),
		done:     make(chan struct{}),
	}
}

// Interval returns tick interval.
func (r *Runner) Interval() time.Duration {
	return r.interval
}

// Run starts the tick loop (blocks until context is canceled).
// Every tick advances the session by the fixed interval.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.done)

	slog.Info("session runner started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("session runner stopping", "ticks", r.session.Tick())
			return ctx.Err()

		case cmd := <-r.commands:
			cmd(r.session)

		case <-ticker.C:
			r.drain()
			r.session.Advance(r.interval)
		}
	}
}

// drain executes queued commands so input lands before the tick.
func (r *Runner) drain() {
	for {
		select {
		case cmd := <-r.commands:
			cmd(r.session)
		default:
			return
		}
	}
}

// Submit queues cmd without waiting for it to run.
func (r *Runner) Submit(ctx context.Context, cmd Command) error {
	select {
	case r.commands <- cmd:
		return nil
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs cmd on the runner goroutine and waits for it to finish.
func (r *Runner) Do(ctx context.Context, cmd Command) error {
	finished := make(chan struct{})
	if err := r.Submit(ctx, func(s *Session) {
		defer close(finished)
		cmd(s)
	}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
