package spawn

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/udisondev/arena/internal/clock"
)

// RespawnTask represents a scheduled respawn task
type RespawnTask struct {
	ObjectID uint32
	DueAt    time.Duration // on the scheduler's clock
}

// RespawnScheduler keeps pending respawns keyed by objectID.
// It runs on whatever clock it is given; the coordinator hands it the
// unscaled clock so respawns still happen while gameplay is paused.
type RespawnScheduler struct {
	clock clock.Source

	mu    sync.RWMutex
	tasks map[uint32]*RespawnTask // objectID → task
}

// NewRespawnScheduler creates new respawn scheduler
func NewRespawnScheduler(src clock.Source) *RespawnScheduler {
	return &RespawnScheduler{
		clock: src,
		tasks: make(map[uint32]*RespawnTask),
	}
}

// Schedule schedules respawn of objectID after delay.
// An existing task for the same objectID is replaced.
func (s *RespawnScheduler) Schedule(objectID uint32, delay time.Duration) *RespawnTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := &RespawnTask{
		ObjectID: objectID,
		DueAt:    s.clock.Now() + max(delay, 0),
	}
	s.tasks[objectID] = task

	slog.Debug("respawn scheduled",
		"objectID", objectID,
		"delay", delay,
		"dueAt", task.DueAt)
	return task
}

// Cancel cancels scheduled respawn
func (s *RespawnScheduler) Cancel(objectID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[objectID]; !ok {
		return
	}
	delete(s.tasks, objectID)

	slog.Debug("respawn cancelled", "objectID", objectID)
}

// Due removes and returns tasks that are due, ordered by due time.
func (s *RespawnScheduler) Due() []*RespawnTask {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*RespawnTask
	for id, task := range s.tasks {
		if now >= task.DueAt {
			due = append(due, task)
			delete(s.tasks, id)
		}
	}

	slices.SortFunc(due, func(a, b *RespawnTask) int {
		if c := cmp.Compare(a.DueAt, b.DueAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ObjectID, b.ObjectID)
	})
	return due
}

// Clear drops all pending tasks.
func (s *RespawnScheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.tasks)
}

// TaskCount returns number of scheduled respawn tasks
func (s *RespawnScheduler) TaskCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// GetTask returns respawn task for objectID (for testing)
func (s *RespawnScheduler) GetTask(objectID uint32) (*RespawnTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[objectID]
	return task, ok
}
