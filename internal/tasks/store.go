// Package tasks is the shared progress record: a concurrent task registry
// keyed by task id, with one writer (the owning orchestration run) per key
// and any number of concurrent pollers.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"clipperai/models"
)

type Store struct {
	mu    sync.RWMutex
	tasks map[string]*models.Task
}

func NewStore() *Store {
	return &Store{tasks: make(map[string]*models.Task)}
}

// Create registers a new task in the starting state and returns its id.
func (s *Store) Create() string {
	id := uuid.NewString()
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[id] = &models.Task{
		ID:        id,
		Status:    models.StatusStarting,
		Progress:  0,
		Message:   "Initializing...",
		StartedAt: now,
		UpdatedAt: now,
	}
	return id
}

// Get returns a copy of the task. Pollers never observe a task mid-update,
// though no cross-poll consistency is promised.
func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, false
	}
	return *t, true
}

// Len reports the number of tasks currently retained.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// update mutates the task under the lock. Writes to a terminal task are
// dropped: a run that has ended may not resurrect its task.
func (s *Store) update(id string, fn func(*models.Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.Status.Terminal() {
		return
	}
	fn(t)
	t.UpdatedAt = time.Now()
}

// SetStage moves the task to a new stage with its milestone progress.
func (s *Store) SetStage(id string, status models.TaskStatus, progress float64, message string) {
	s.update(id, func(t *models.Task) {
		t.Status = status
		t.Message = message
		if progress > t.Progress {
			t.Progress = progress
		}
	})
}

// SetProgress advances progress within the current stage. Progress is
// monotonic within a run; stale lower values are ignored.
func (s *Store) SetProgress(id string, progress float64, message string) {
	s.update(id, func(t *models.Task) {
		t.Message = message
		if progress > t.Progress {
			t.Progress = progress
		}
	})
}

// SetMessage updates only the human-readable message.
func (s *Store) SetMessage(id, message string) {
	s.update(id, func(t *models.Task) {
		t.Message = message
	})
}

// Complete moves the task to its terminal success state with its result.
func (s *Store) Complete(id string, result *models.ClipResult) {
	s.update(id, func(t *models.Task) {
		t.Status = models.StatusCompleted
		t.Progress = 100
		t.Message = "All clips created successfully!"
		t.Result = result
	})
}

// Fail moves the task to the terminal error state. Every terminal state
// carries a message; there is no silent failure.
func (s *Store) Fail(id, message string) {
	s.update(id, func(t *models.Task) {
		t.Status = models.StatusError
		t.Message = message
	})
}

// EvictTerminalBefore removes terminal tasks last updated before the cutoff
// and reports how many were evicted.
func (s *Store) EvictTerminalBefore(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, t := range s.tasks {
		if t.Status.Terminal() && t.UpdatedAt.Before(cutoff) {
			delete(s.tasks, id)
			n++
		}
	}
	return n
}

// StartJanitor evicts stale terminal tasks on an interval until the context
// is cancelled. Without it the registry would grow without bound.
func (s *Store) StartJanitor(ctx context.Context, interval, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.EvictTerminalBefore(time.Now().Add(-retention))
			}
		}
	}()
}
