package task

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store is the in-memory task table: a map guarded by a single RWMutex.
// Critical sections stay small (field mutation only, no I/O under lock).
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func NewStore() *Store {
	return &Store{tasks: make(map[string]*Task)}
}

// Create registers a new task in Pending status.
func (s *Store) Create(id, url, outputPath string, maxRetries int) *Task {
	now := time.Now()
	t := &Task{
		ID:         id,
		URL:        url,
		OutputPath: outputPath,
		Status:     StatusPending,
		MaxRetries: maxRetries,
		Retryable:  true,
		StartTime:  now,
		UpdatedAt:  now,
	}
	s.mu.Lock()
	s.tasks[id] = t
	s.mu.Unlock()
	return t
}

// ByID returns a clone of the task, or an error if it doesn't exist.
func (s *Store) ByID(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %q not found", id)
	}
	return t.Clone(), nil
}

// All returns clones of every task, newest first.
func (s *Store) All() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out
}

// Active returns clones of every task in Parsing or Running status.
func (s *Store) Active() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Task
	for _, t := range s.tasks {
		if t.Status == StatusParsing || t.Status == StatusRunning {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Queued returns clones of every task in Queued status, ordered by the
// time it was originally started (FIFO admission order).
func (s *Store) Queued() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Task
	for _, t := range s.tasks {
		if t.Status == StatusQueued {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (s *Store) mutate(id string, fn func(t *Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %q not found", id)
	}
	fn(t)
	t.UpdatedAt = time.Now()
	return nil
}

func (s *Store) SetStatus(id string, status Status) error {
	return s.mutate(id, func(t *Task) { t.Status = status })
}

func (s *Store) SetQueued(id string) error {
	return s.mutate(id, func(t *Task) { t.Status = StatusQueued })
}

func (s *Store) SetParsing(id string) error {
	return s.mutate(id, func(t *Task) { t.Status = StatusParsing })
}

func (s *Store) SetRunning(id string, total int, name string) error {
	return s.mutate(id, func(t *Task) {
		t.Status = StatusRunning
		t.Progress.Total = total
		if name != "" {
			t.Name = name
		}
	})
}

// SetNameAndPath records the sanitized gallery name and its resolved
// save-path once the parse phase has finished.
func (s *Store) SetNameAndPath(id, name, outputPath string) error {
	return s.mutate(id, func(t *Task) {
		t.Name = name
		t.OutputPath = outputPath
	})
}

// SetProgress implements parser.ProgressSink.
func (s *Store) SetProgress(id string, current, total int) {
	_ = s.mutate(id, func(t *Task) {
		t.Progress.Current = current
		if total > 0 {
			t.Progress.Total = total
		}
	})
}

// SetTaskName implements parser.ProgressSink.
func (s *Store) SetTaskName(id, name string) {
	_ = s.mutate(id, func(t *Task) { t.Name = name })
}

// SetCompleted marks a task Completed and stamps CompleteTime.
func (s *Store) SetCompleted(id string) error {
	return s.mutate(id, func(t *Task) {
		t.Status = StatusCompleted
		t.CompleteTime = time.Now()
	})
}

// SetPartialFailed marks a task PartialFailed with failedCount files lost.
func (s *Store) SetPartialFailed(id string, failedCount int) error {
	return s.mutate(id, func(t *Task) {
		t.Status = StatusPartialFailed
		t.FailedCount = failedCount
		t.CompleteTime = time.Now()
		t.Error = fmt.Sprintf("下载失败 %d/%d.", failedCount, t.Progress.Total)
	})
}

// SetFailed marks a task Failed with the given error string.
func (s *Store) SetFailed(id string, errMsg string) error {
	return s.mutate(id, func(t *Task) {
		t.Status = StatusFailed
		t.Error = errMsg
		t.CompleteTime = time.Now()
	})
}

// SetCancelled marks a task Cancelled.
func (s *Store) SetCancelled(id string) error {
	return s.mutate(id, func(t *Task) {
		t.Status = StatusCancelled
		t.CompleteTime = time.Now()
	})
}

// PrepareRetry resets a task back to Pending for another driver pass,
// incrementing RetryCount. Returns an error if the task isn't eligible.
func (s *Store) PrepareRetry(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %q not found", id)
	}
	if !t.Status.Terminal() || (t.Status != StatusFailed && t.Status != StatusPartialFailed) {
		return fmt.Errorf("task %q is not eligible for retry (status=%s)", id, t.Status)
	}
	if !t.Retryable {
		return fmt.Errorf("task %q is not retryable", id)
	}
	if t.RetryCount >= t.MaxRetries {
		return fmt.Errorf("task %q has exhausted its retry budget (%d/%d)", id, t.RetryCount, t.MaxRetries)
	}
	t.RetryCount++
	t.Status = StatusPending
	t.Error = ""
	t.Progress = Progress{}
	t.FailedCount = 0
	t.UpdatedAt = time.Now()
	return nil
}

// ClearHistory removes every terminal (non-active) task from the store.
func (s *Store) ClearHistory() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, t := range s.tasks {
		if t.Status.Terminal() {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed
}

// Delete removes a single task unconditionally.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
}
