package app

import "gallerydl/internal/task"

// TaskStartCrawl starts a single gallery download from url.
func (a *App) TaskStartCrawl(url string) (string, error) {
	return a.sched.StartTask(a.ctx, url)
}

// BatchStartCrawl crawls a listing page and starts one task per
// gallery link it finds.
func (a *App) BatchStartCrawl(url string) ([]string, error) {
	return a.sched.BatchStartTask(a.ctx, url)
}

// TaskCancel cancels a running or queued task.
func (a *App) TaskCancel(id string) bool {
	return a.sched.CancelTask(id)
}

// TaskRetry restarts an eligible failed or partially-failed task.
func (a *App) TaskRetry(id string) error {
	return a.sched.RetryTask(a.ctx, id)
}

// TaskAll returns every known task, newest first.
func (a *App) TaskAll() []*task.Task {
	return a.store.All()
}

// TaskActive returns only tasks currently parsing or downloading.
func (a *App) TaskActive() []*task.Task {
	return a.store.Active()
}

// TaskByID looks up a single task.
func (a *App) TaskByID(id string) (*task.Task, error) {
	return a.store.ByID(id)
}

// TaskProgress returns just the progress counters for a task.
func (a *App) TaskProgress(id string) (task.Progress, error) {
	t, err := a.store.ByID(id)
	if err != nil {
		return task.Progress{}, err
	}
	return t.Progress, nil
}

// TaskClearHistory removes every terminal task from the in-memory
// store (the persisted history file is untouched; see HistoryClear).
func (a *App) TaskClearHistory() int {
	return a.store.ClearHistory()
}
