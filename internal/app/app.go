// Package app binds the scheduler, task store, config manager, and
// history sink onto a Wails-exposed struct, split by domain across
// sibling files in the teacher's convention.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gallerydl/internal/bandwidth"
	"gallerydl/internal/config"
	"gallerydl/internal/crawler"
	crawlersites "gallerydl/internal/crawler/sites"
	"gallerydl/internal/history"
	"gallerydl/internal/httpclient"
	"gallerydl/internal/parser"
	parsersites "gallerydl/internal/parser/sites"
	"gallerydl/internal/scheduler"
	"gallerydl/internal/security"
	"gallerydl/internal/task"
)

// App is the struct Wails binds to the frontend. Every exported method
// with a pointer receiver becomes a callable frontend command.
type App struct {
	ctx context.Context

	store       *task.Store
	cfg         *config.Manager
	historySink *history.Sink
	historyIdx  *history.Index
	sched       *scheduler.Scheduler
	audit       *security.AuditLogger

	isQuitting bool
}

// NewApp wires every dependency and constructs the scheduler with a
// no-op event sink; Startup swaps in the Wails-backed one once a
// frontend context exists. log is used for the access-audit log; pass
// slog.Default() if the caller has no fanout logger of its own.
func NewApp(log *slog.Logger) (*App, error) {
	dataDir, err := appDataDir()
	if err != nil {
		return nil, err
	}

	cfgPath, err := config.DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	cfgMgr, err := config.NewManager(config.NewFileConfigRepository(cfgPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	historyIdx, err := history.OpenIndex(filepath.Join(dataDir, "history-index"))
	if err != nil {
		return nil, fmt.Errorf("open history index: %w", err)
	}
	historySink, err := history.NewSink(dataDir, historyIdx)
	if err != nil {
		return nil, fmt.Errorf("open history sink: %w", err)
	}

	client, err := httpclient.New(cfgMgr.ProxyURL())
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}

	parsers := parser.NewRegistry()
	parsersites.RegisterAll(parsers)
	crawlers := crawler.NewRegistry()
	crawlersites.RegisterAll(crawlers)

	store := task.NewStore()
	sched := scheduler.New(
		store,
		cfgMgr,
		historySink,
		historyIdx,
		parsers,
		crawlers,
		client,
		bandwidth.NewBandwidthManager(),
		nil,
		log,
	)

	return &App{
		store:       store,
		cfg:         cfgMgr,
		historySink: historySink,
		historyIdx:  historyIdx,
		sched:       sched,
		audit:       security.NewAuditLogger(log),
	}, nil
}

// Startup is the Wails lifecycle hook: it receives the frontend-bound
// context, points the scheduler's event sink and audit logger at it,
// and starts the queue-promotion loop.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.sched.SetEvents(&wailsEvents{ctx: ctx})
	a.audit.SetContext(ctx)
	go a.sched.Run(ctx)
}

// Shutdown is the Wails lifecycle hook run on window close.
func (a *App) Shutdown(ctx context.Context) {
	a.sched.Stop()
	a.audit.Close()
	if a.historyIdx != nil {
		_ = a.historyIdx.Close()
	}
}

func appDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "gallerydl", "data")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create app data dir: %w", err)
	}
	return dir, nil
}
