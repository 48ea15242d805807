package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/udisondev/arena/internal/spawn"
)

// RunSaver stores finished runs. Implemented by RunRepository.
type RunSaver interface {
	Save(ctx context.Context, s spawn.RunSummary) (int64, error)
}

// saveTimeout bounds a single insert.
const saveTimeout = 5 * time.Second

// Recorder persists run summaries off the simulation goroutine.
type Recorder struct {
	saver RunSaver
	queue chan spawn.RunSummary
}

// NewRecorder creates recorder with queue capacity size.
func NewRecorder(saver RunSaver, size int) *Recorder {
	return &Recorder{
		saver: saver,
		queue: make(chan spawn.RunSummary, max(size, 1)),
	}
}

// Record queues s for saving. Never blocks; drops s when the queue is full.
func (r *Recorder) Record(s spawn.RunSummary) {
	select {
	case r.queue <- s:
	default:
		slog.Warn("run recorder queue full, run dropped",
			"deaths", s.Deaths,
			"coins", s.Coins)
	}
}

// Run saves queued summaries (blocks until context is canceled).
// Summaries still queued on cancel are flushed with a fresh deadline.
func (r *Recorder) Run(ctx context.Context) error {
	slog.Info("run recorder started")

	for {
		select {
		case <-ctx.Done():
			r.flush()
			slog.Info("run recorder stopped")
			return ctx.Err()

		case s := <-r.queue:
			r.save(ctx, s)
		}
	}
}

func (r *Recorder) flush() {
	for {
		select {
		case s := <-r.queue:
			r.save(context.Background(), s)
		default:
			return
		}
	}
}

func (r *Recorder) save(ctx context.Context, s spawn.RunSummary) {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	id, err := r.saver.Save(ctx, s)
	if err != nil {
		slog.Error("failed to save run",
			"deaths", s.Deaths,
			"coins", s.Coins,
			"error", err)
		return
	}

	slog.Info("run saved",
		"id", id,
		"deaths", s.Deaths,
		"coins", s.Coins,
		"duration", s.Duration)
}
