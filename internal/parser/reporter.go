package parser

import "sync"

// ProgressSink is the minimal surface a task store exposes to a
// TaskReporter; it avoids an import cycle between parser and task.
type ProgressSink interface {
	SetProgress(taskID string, current, total int)
	SetTaskName(taskID, name string)
}

// EventEmitter optionally re-broadcasts progress as a "download:progress"
// event (e.g. to a Wails frontend). Nil-safe: callers may pass nil.
type EventEmitter interface {
	EmitProgress(taskID string, current, total int, name string)
}

// TaskReporter adapts the Reporter interface onto a single task's entry in
// a task store, additionally emitting an event on every update.
type TaskReporter struct {
	TaskID   string
	Sink     ProgressSink
	Emitter  EventEmitter
	mu       sync.Mutex
	total    int
	current  int
}

func NewTaskReporter(taskID string, sink ProgressSink, emitter EventEmitter) *TaskReporter {
	return &TaskReporter{TaskID: taskID, Sink: sink, Emitter: emitter}
}

func (t *TaskReporter) SetTotal(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = total
	t.Sink.SetProgress(t.TaskID, t.current, t.total)
	t.emit("")
}

func (t *TaskReporter) Inc(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current += delta
	t.Sink.SetProgress(t.TaskID, t.current, t.total)
	t.emit("")
}

func (t *TaskReporter) SetTaskName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Sink.SetTaskName(t.TaskID, name)
	t.emit(name)
}

func (t *TaskReporter) emit(name string) {
	if t.Emitter != nil {
		t.Emitter.EmitProgress(t.TaskID, t.current, t.total, name)
	}
}
