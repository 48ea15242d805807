package sim

import (
	"context"

	"github.com/udisondev/arena/internal/model"
)

// Move queues player movement input (dx, dy on the plane).
func (r *Runner) Move(ctx context.Context, dx, dy float64) error {
	return r.Submit(ctx, func(s *Session) {
		s.SetMoveInput(model.NewLocation(dx, dy, 0))
	})
}

// Attack queues a player swing request.
func (r *Runner) Attack(ctx context.Context) error {
	return r.Submit(ctx, func(s *Session) {
		if p := s.Player(); p != nil {
			s.RequestAttack(p.Body().ObjectID())
		}
	})
}

// Retry queues a run restart.
func (r *Runner) Retry(ctx context.Context) error {
	return r.Submit(ctx, func(s *Session) {
		s.Retry()
	})
}

// Snapshot returns the session view taken on the runner goroutine.
func (r *Runner) Snapshot(ctx context.Context) (any, error) {
	var snap Snapshot
	if err := r.Do(ctx, func(s *Session) {
		snap = s.Snapshot()
	}); err != nil {
		return nil, err
	}
	return snap, nil
}
