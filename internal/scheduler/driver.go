package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"sync"

	"gallerydl/internal/downloader"
	"gallerydl/internal/history"
	"gallerydl/internal/parser"
)

// runDriver carries one admitted task from parse through terminal
// classification. It owns the task's cancellation token for its entire
// lifetime and always removes it before returning.
func (s *Scheduler) runDriver(ctx context.Context, id, galleryURL, outputDir string) {
	s.logger.Info("task starting", "id", id, "url", galleryURL)
	taskCtx, entry := s.registerCancel(id)
	defer s.unregisterCancel(id)

	p, tag, err := s.dispatch(galleryURL)
	if err != nil {
		s.logger.Error("no parser matched", "id", id, "url", galleryURL, "error", err)
		s.failTask(id, galleryURL, err.Error())
		return
	}

	parsed, err := s.parseUnderCancellation(taskCtx, entry, id, p, galleryURL, tag)
	if err != nil {
		if entry.cancelled.Load() {
			s.logger.Info("task cancelled during parse", "id", id)
			s.finishCancelled(id, galleryURL)
		} else {
			s.logger.Error("parse failed", "id", id, "url", galleryURL, "error", err)
			s.failTask(id, galleryURL, err.Error())
		}
		return
	}

	safeName := sanitizeTitle(parsed.Title)
	savePath := filepath.Join(outputDir, safeName)

	estimatedBytes := uint64(len(parsed.ImageURLs)) * estimatedBytesPerImage
	if err := downloader.CheckFreeSpace(outputDir, estimatedBytes); err != nil {
		s.logger.Error("insufficient disk space", "id", id, "path", outputDir, "error", err)
		s.failTask(id, galleryURL, err.Error())
		return
	}

	_ = s.store.SetNameAndPath(id, safeName, savePath)
	_ = s.store.SetRunning(id, len(parsed.ImageURLs), safeName)

	urls, paths := downloader.BuildDownloadPlan(parsed.ImageURLs, savePath)

	concurrency := parsed.RecommendedConcurrency
	if concurrency <= 0 {
		concurrency = defaultPerTaskConcurrency
	}

	failedCount, firstErr := s.runDownloadPool(taskCtx, entry, id, urls, paths, parsed.DownloadHeaders, concurrency)

	s.finishTerminal(id, galleryURL, savePath, entry, len(urls), failedCount, firstErr)
}

func (s *Scheduler) dispatch(galleryURL string) (parser.Parser, string, error) {
	parsed, err := url.Parse(galleryURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid gallery url: %w", err)
	}
	tag, ok := s.parsers.Detect(parsed.Host)
	if !ok {
		return nil, "", fmt.Errorf("no parser matched for host %q", parsed.Host)
	}
	p, ok := s.parsers.Create(tag)
	if !ok {
		return nil, "", fmt.Errorf("parser tag %q has no constructor", tag)
	}
	return p, tag, nil
}

// parseUnderCancellation races the parse future against the task's
// cancellation token, biased toward cancellation when both are ready.
func (s *Scheduler) parseUnderCancellation(ctx context.Context, entry *cancelEntry, id string, p parser.Parser, galleryURL, tag string) (parser.ParsedGallery, error) {
	cfg := s.toParserConfig(tag)
	reporter := newSchedulerReporter(id, s.store, s.events)

	type result struct {
		gallery parser.ParsedGallery
		err     error
	}
	done := make(chan result, 1)
	go func() {
		g, err := p.Parse(ctx, s.baseClient, galleryURL, reporter, cfg)
		done <- result{g, err}
	}()

	select {
	case <-ctx.Done():
		return parser.ParsedGallery{}, ctx.Err()
	case r := <-done:
		if entry.cancelled.Load() {
			return parser.ParsedGallery{}, ctx.Err()
		}
		return r.gallery, r.err
	}
}

// runDownloadPool executes the download plan with bounded-unordered
// concurrency, honoring the cancellation token on every file's entry.
// It returns the number of files that ended in error and the first
// error message observed, if any.
func (s *Scheduler) runDownloadPool(ctx context.Context, entry *cancelEntry, id string, urls, paths []string, headers http.Header, concurrency int) (failedCount int, firstErr string) {
	client := s.baseClient.WithLimit(concurrency)
	dlCfg := downloader.DefaultConfig()
	dlCfg.TaskID = id
	dlCfg.ExtraHeaders = headers
	d := downloader.New(client, s.bw, dlCfg)

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	current := 0
	total := len(urls)

	for i := range urls {
		i := i
		if entry.cancelled.Load() {
			mu.Lock()
			failedCount++
			if firstErr == "" {
				firstErr = "cancelled"
			}
			mu.Unlock()
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			var dlErr error
			if entry.cancelled.Load() {
				dlErr = fmt.Errorf("cancelled")
			} else {
				dlErr = d.DownloadFile(ctx, urls[i], paths[i])
			}

			mu.Lock()
			current++
			s.store.SetProgress(id, current, total)
			s.events.EmitProgress(id, "parsingProgress", current, total, "")
			if dlErr != nil {
				failedCount++
				if firstErr == "" {
					firstErr = dlErr.Error()
				}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	return failedCount, firstErr
}

func (s *Scheduler) failTask(id, galleryURL, message string) {
	s.logger.Error("task failed", "id", id, "url", galleryURL, "reason", message)
	_ = s.store.SetFailed(id, message)
	s.recordHistory(id, galleryURL)
	s.events.EmitFailed(id, "", message)
}

func (s *Scheduler) finishCancelled(id, galleryURL string) {
	s.logger.Info("task cancelled", "id", id, "url", galleryURL)
	_ = s.store.SetCancelled(id)
	s.recordHistory(id, galleryURL)
	s.events.EmitCancelled(id)
}

func (s *Scheduler) finishTerminal(id, galleryURL, savePath string, entry *cancelEntry, total, failedCount int, firstErr string) {
	switch {
	case entry.cancelled.Load():
		s.logger.Info("task cancelled", "id", id, "url", galleryURL)
		_ = s.store.SetCancelled(id)
		s.recordHistory(id, galleryURL)
		s.events.EmitCancelled(id)
	case failedCount == 0:
		s.logger.Info("task completed", "id", id, "url", galleryURL, "path", savePath, "files", total)
		_ = s.store.SetCompleted(id)
		s.recordHistory(id, galleryURL)
		t, _ := s.store.ByID(id)
		name := ""
		if t != nil {
			name = t.Name
		}
		s.events.EmitCompleted(id, name)
	case failedCount == total:
		s.logger.Error("task failed", "id", id, "url", galleryURL, "reason", firstErr)
		_ = s.store.SetFailed(id, firstErr)
		s.recordHistory(id, galleryURL)
		s.events.EmitFailed(id, "", firstErr)
	default:
		s.logger.Warn("task partially failed", "id", id, "url", galleryURL, "failed", failedCount, "total", total)
		_ = s.store.SetPartialFailed(id, failedCount)
		s.recordHistory(id, galleryURL)
		t, _ := s.store.ByID(id)
		msg := ""
		if t != nil {
			msg = t.Error
		}
		s.events.EmitFailed(id, "", msg)
	}
}

func (s *Scheduler) recordHistory(id, galleryURL string) {
	t, err := s.store.ByID(id)
	if err != nil {
		return
	}
	rec := history.RecordFromTask(t)
	if err := s.historySink.AddRecord(rec); err != nil {
		s.logger.Error("failed to persist history record", "id", id, "error", err)
	}
	if s.historyIndex != nil {
		if err := s.historyIndex.Put(galleryURL, string(t.Status)); err != nil {
			s.logger.Error("failed to update duplicate-url index", "id", id, "error", err)
		}
	}
}
