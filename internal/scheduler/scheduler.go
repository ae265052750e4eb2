// Package scheduler is the admission, cancellation, and per-task driver
// logic binding the parser/crawler registries, the downloader, and the
// task store into a running system.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"gallerydl/internal/bandwidth"
	"gallerydl/internal/config"
	"gallerydl/internal/crawler"
	"gallerydl/internal/history"
	"gallerydl/internal/httpclient"
	"gallerydl/internal/parser"
	"gallerydl/internal/task"
)

const (
	defaultPerTaskConcurrency = 8
	livenessInterval          = 3 * time.Second

	// estimatedBytesPerImage seeds the preflight free-space check; gallery
	// page sizes aren't known until each image is fetched, so this is a
	// coarse per-file average rather than a real estimate.
	estimatedBytesPerImage = 2 << 20 // 2MiB
)

type cancelEntry struct {
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

// Scheduler owns admission, the queued-task liveness loop, per-task
// cancellation tokens, and the download driver itself.
type Scheduler struct {
	store        *task.Store
	cfg          *config.Manager
	historySink  *history.Sink
	historyIndex *history.Index
	parsers      *parser.Registry
	crawlers     *crawler.Registry
	baseClient   *httpclient.Client
	bw           *bandwidth.BandwidthManager
	events       Events
	logger       *slog.Logger

	mu      sync.Mutex
	cancels map[string]*cancelEntry
	q       *queue

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(
	store *task.Store,
	cfg *config.Manager,
	historySink *history.Sink,
	historyIndex *history.Index,
	parsers *parser.Registry,
	crawlers *crawler.Registry,
	baseClient *httpclient.Client,
	bw *bandwidth.BandwidthManager,
	events Events,
	logger *slog.Logger,
) *Scheduler {
	if events == nil {
		events = NoopEvents{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:        store,
		cfg:          cfg,
		historySink:  historySink,
		historyIndex: historyIndex,
		parsers:      parsers,
		crawlers:     crawlers,
		baseClient:   baseClient,
		bw:           bw,
		events:       events,
		logger:       logger,
		cancels:      make(map[string]*cancelEntry),
		q:            newQueue(),
		stopCh:       make(chan struct{}),
	}
}

// Run starts the liveness loop that promotes queued tasks every 3
// seconds when admission capacity has freed up. It blocks until ctx is
// cancelled or Stop is called.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(livenessInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.promoteQueued(ctx)
		}
	}
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// SetEvents swaps the event sink, e.g. once a Wails context becomes
// available after construction. Safe to call before Run starts.
func (s *Scheduler) SetEvents(events Events) {
	if events == nil {
		events = NoopEvents{}
	}
	s.mu.Lock()
	s.events = events
	s.mu.Unlock()
}

func (s *Scheduler) runningCount() int {
	return len(s.store.Active())
}

func (s *Scheduler) hasCapacity() bool {
	return s.runningCount() < s.cfg.MaxConcurrentTasks()
}

// StartTask allocates a task id, admits it immediately if capacity
// allows, or queues it otherwise. Returns the id right away either way.
func (s *Scheduler) StartTask(ctx context.Context, galleryURL string) (string, error) {
	outputDir := s.cfg.OutputDir()
	if outputDir == "" {
		return "", fmt.Errorf("no output directory configured")
	}
	id := uuid.NewString()
	s.store.Create(id, galleryURL, outputDir, 3)

	s.mu.Lock()
	admit := s.hasCapacity()
	s.mu.Unlock()

	if admit {
		_ = s.store.SetParsing(id)
		go s.runDriver(ctx, id, galleryURL, outputDir)
	} else {
		_ = s.store.SetQueued(id)
		s.q.push(id)
	}
	return id, nil
}

// BatchStartTask crawls a listing URL for gallery links and starts one
// task per link, emitting batch:extracted then batch:started.
func (s *Scheduler) BatchStartTask(ctx context.Context, listingURL string) ([]string, error) {
	c, err := s.crawlers.DetectAndCreate(listingURL)
	if err != nil {
		return nil, err
	}
	links, err := c.ExtractGalleryLinks(ctx, s.baseClient, listingURL, parser.NoopReporter{})
	if err != nil {
		return nil, fmt.Errorf("extract gallery links: %w", err)
	}
	s.events.EmitBatchExtracted(listingURL, len(links))

	ids := make([]string, 0, len(links))
	for _, link := range links {
		id, err := s.StartTask(ctx, link)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	s.events.EmitBatchStarted(listingURL, ids, len(ids))
	return ids, nil
}

// promoteQueued admits the oldest queued task while capacity remains.
// This is the only place a queued task is ever admitted.
func (s *Scheduler) promoteQueued(ctx context.Context) {
	for {
		s.mu.Lock()
		if !s.hasCapacity() {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		id, ok := s.q.pop()
		if !ok {
			return
		}
		t, err := s.store.ByID(id)
		if err != nil {
			continue
		}
		_ = s.store.SetParsing(id)
		go s.runDriver(ctx, id, t.URL, s.cfg.OutputDir())
	}
}

// CancelTask cancels an in-flight task's token, or drops it from the
// queue if it was never admitted. Returns false if the task is unknown
// to both the cancellation registry and the queue.
func (s *Scheduler) CancelTask(id string) bool {
	s.mu.Lock()
	entry, ok := s.cancels[id]
	s.mu.Unlock()

	if ok {
		s.logger.Info("cancelling task", "id", id)
		entry.cancelled.Store(true)
		entry.cancel()
		return true
	}
	if s.q.remove(id) {
		s.logger.Info("cancelling queued task", "id", id)
		_ = s.store.SetCancelled(id)
		s.events.EmitCancelled(id)
		return true
	}
	return false
}

// RetryTask resets an eligible terminal task back to Pending and
// re-admits it (through the same admission path as a fresh start).
func (s *Scheduler) RetryTask(ctx context.Context, id string) error {
	if err := s.store.PrepareRetry(id); err != nil {
		return err
	}
	t, err := s.store.ByID(id)
	if err != nil {
		return err
	}
	s.logger.Info("retrying task", "id", id, "url", t.URL, "attempt", t.RetryCount)

	s.mu.Lock()
	admit := s.hasCapacity()
	s.mu.Unlock()

	if admit {
		_ = s.store.SetParsing(id)
		go s.runDriver(ctx, id, t.URL, s.cfg.OutputDir())
	} else {
		_ = s.store.SetQueued(id)
		s.q.push(id)
	}
	return nil
}

func (s *Scheduler) registerCancel(id string) (context.Context, *cancelEntry) {
	ctx, cancel := context.WithCancel(context.Background())
	entry := &cancelEntry{cancel: cancel}
	s.mu.Lock()
	s.cancels[id] = entry
	s.mu.Unlock()
	return ctx, entry
}

func (s *Scheduler) unregisterCancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cancels, id)
}
