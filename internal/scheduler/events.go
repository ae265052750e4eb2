package scheduler

import "sync"

// Events is the host-facing event sink: every terminal or progress
// notification the scheduler emits during a task's lifetime. The Wails
// bridge satisfies this by wrapping runtime.EventsEmit.
type Events interface {
	EmitProgress(taskID string, eventType string, current, total int, name string)
	EmitCompleted(taskID, name string)
	EmitFailed(taskID, name, message string)
	EmitCancelled(taskID string)
	EmitBatchExtracted(sourceURL string, count int)
	EmitBatchStarted(sourceURL string, taskIDs []string, total int)
}

// NoopEvents discards every event; useful for tests and headless runs.
type NoopEvents struct{}

func (NoopEvents) EmitProgress(string, string, int, int, string)  {}
func (NoopEvents) EmitCompleted(string, string)                   {}
func (NoopEvents) EmitFailed(string, string, string)              {}
func (NoopEvents) EmitCancelled(string)                           {}
func (NoopEvents) EmitBatchExtracted(string, int)                 {}
func (NoopEvents) EmitBatchStarted(string, []string, int)         {}

// schedulerReporter adapts a *task.Store + Events pair into a
// parser.Reporter so site parsers can report progress without knowing
// about the scheduler or the store directly.
type schedulerReporter struct {
	taskID string
	sink   progressSink
	events Events

	mu      sync.Mutex
	total   int
	current int
}

type progressSink interface {
	SetProgress(taskID string, current, total int)
	SetTaskName(taskID, name string)
}

func newSchedulerReporter(taskID string, sink progressSink, events Events) *schedulerReporter {
	return &schedulerReporter{taskID: taskID, sink: sink, events: events}
}

func (r *schedulerReporter) SetTotal(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
	r.current = 0
	r.sink.SetProgress(r.taskID, 0, total)
	r.events.EmitProgress(r.taskID, "parsingTotal", 0, total, "")
}

func (r *schedulerReporter) Inc(delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current += delta
	r.sink.SetProgress(r.taskID, r.current, r.total)
	r.events.EmitProgress(r.taskID, "parsingProgress", r.current, r.total, "")
}

func (r *schedulerReporter) SetTaskName(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sink.SetTaskName(r.taskID, name)
	r.events.EmitProgress(r.taskID, "taskName", 0, r.total, name)
}
