package app

import "gallerydl/internal/history"

// TaskHistory returns the persisted download history, newest first.
func (a *App) TaskHistory() []history.Record {
	return a.historySink.GetHistory()
}

// HistoryGet is an alias kept for the command surface's naming: the
// persisted history and the in-memory task log are the same records.
func (a *App) HistoryGet() []history.Record {
	return a.historySink.GetHistory()
}

// HistoryAdd appends a record directly, e.g. when importing history
// from another instance.
func (a *App) HistoryAdd(rec history.Record) error {
	return a.historySink.AddRecord(rec)
}

// HistoryClear truncates the persisted history file to empty.
func (a *App) HistoryClear() error {
	return a.historySink.Clear()
}

// HistoryCheckURL reports whether url has already been downloaded,
// using the duplicate-URL index for an O(1) answer instead of scanning
// the full history file.
func (a *App) HistoryCheckURL(url string) (status string, found bool, err error) {
	return a.historySink.CheckURL(url)
}
