package app

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"gallerydl/internal/config"
	"gallerydl/internal/history"
	"gallerydl/internal/scheduler"
	"gallerydl/internal/security"
	"gallerydl/internal/task"
)

// Store, Config, HistorySink, Scheduler and Audit expose the instances
// NewApp wired together so a host process can share them with other
// components, e.g. the control server, instead of constructing its
// own duplicate set.
func (a *App) Store() *task.Store              { return a.store }
func (a *App) Config() *config.Manager         { return a.cfg }
func (a *App) HistorySink() *history.Sink      { return a.historySink }
func (a *App) Scheduler() *scheduler.Scheduler { return a.sched }
func (a *App) Audit() *security.AuditLogger    { return a.audit }

// BeforeClose hides the window instead of closing it, unless QuitApp
// has been called first.
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	if a.isQuitting {
		return false
	}
	runtime.WindowHide(ctx)
	return true
}

// QuitApp is invoked from the tray menu to actually exit.
func (a *App) QuitApp() {
	a.isQuitting = true
	runtime.Quit(a.ctx)
}

// ShowApp restores the window from the tray.
func (a *App) ShowApp() {
	runtime.WindowShow(a.ctx)
	runtime.WindowSetAlwaysOnTop(a.ctx, true)
	runtime.WindowSetAlwaysOnTop(a.ctx, false)
}
