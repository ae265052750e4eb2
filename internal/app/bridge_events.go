package app

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// wailsEvents implements scheduler.Events by forwarding every call to
// the Wails runtime's event bus, matching the payload shapes the
// frontend expects.
type wailsEvents struct {
	ctx context.Context
}

func (e *wailsEvents) EmitProgress(taskID, eventType string, current, total int, name string) {
	runtime.EventsEmit(e.ctx, "download:progress", map[string]interface{}{
		"taskId":  taskID,
		"type":    eventType,
		"current": current,
		"total":   total,
		"name":    name,
	})
}

func (e *wailsEvents) EmitCompleted(taskID, name string) {
	runtime.EventsEmit(e.ctx, "download:completed", map[string]interface{}{
		"taskId":   taskID,
		"taskName": name,
	})
}

func (e *wailsEvents) EmitFailed(taskID, name, message string) {
	runtime.EventsEmit(e.ctx, "download:failed", map[string]interface{}{
		"taskId":   taskID,
		"taskName": name,
		"message":  message,
	})
}

func (e *wailsEvents) EmitCancelled(taskID string) {
	runtime.EventsEmit(e.ctx, "download:cancelled", map[string]interface{}{
		"taskId": taskID,
	})
}

func (e *wailsEvents) EmitBatchExtracted(sourceURL string, count int) {
	runtime.EventsEmit(e.ctx, "batch:extracted", map[string]interface{}{
		"url":   sourceURL,
		"count": count,
	})
}

func (e *wailsEvents) EmitBatchStarted(sourceURL string, taskIDs []string, total int) {
	runtime.EventsEmit(e.ctx, "batch:started", map[string]interface{}{
		"sourceUrl":  sourceURL,
		"taskIds":    taskIDs,
		"totalTasks": total,
	})
}
