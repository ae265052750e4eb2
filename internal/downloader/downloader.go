// Package downloader streams a single file to disk with bounded retries
// and global bandwidth shaping. It does not resume partial files: a
// retried attempt overwrites the destination from byte zero.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gallerydl/internal/bandwidth"
	"gallerydl/internal/httpclient"
)

// Config controls retry behavior for a Downloader.
type Config struct {
	RetryCount     int
	RetryDelay     time.Duration
	BufferSize     int
	TaskID         string
	ExtraHeaders   http.Header
}

// DefaultConfig matches the original implementation's defaults.
func DefaultConfig() Config {
	return Config{
		RetryCount: 3,
		RetryDelay: 2 * time.Second,
		BufferSize: 32 * 1024,
	}
}

// Downloader fetches a single URL to a single file path.
type Downloader struct {
	client *httpclient.Client
	bw     *bandwidth.BandwidthManager
	cfg    Config
}

func New(client *httpclient.Client, bw *bandwidth.BandwidthManager, cfg Config) *Downloader {
	return &Downloader{client: client, bw: bw, cfg: cfg}
}

// DownloadFile streams target into filePath, retrying up to cfg.RetryCount
// additional times on failure with cfg.RetryDelay between attempts. Each
// attempt truncates and rewrites the file from scratch.
func (d *Downloader) DownloadFile(ctx context.Context, target, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}

	var lastErr error
	attempts := d.cfg.RetryCount + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(d.cfg.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := d.attempt(ctx, target, filePath); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("download failed after %d attempts: %w", attempts, lastErr)
}

func (d *Downloader) attempt(ctx context.Context, target, filePath string) error {
	resp, err := d.client.GetWithHeadersRateLimited(ctx, target, d.cfg.ExtraHeaders)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer out.Close()

	buf := make([]byte, d.cfg.BufferSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if d.bw != nil {
				if werr := d.bw.Wait(ctx, d.cfg.TaskID, n); werr != nil {
					return werr
				}
			}
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// BuildDownloadPlan pairs each image URL with a destination file path named
// "0001.<ext>", "0002.<ext>", ... under basePath, inferring the extension
// from the URL and defaulting to "jpg" when it cannot be determined.
func BuildDownloadPlan(imageURLs []string, basePath string) (urls []string, paths []string) {
	urls = make([]string, len(imageURLs))
	paths = make([]string, len(imageURLs))
	for i, u := range imageURLs {
		ext := inferExtFromURL(u)
		if ext == "" {
			ext = "jpg"
		}
		urls[i] = u
		paths[i] = filepath.Join(basePath, fmt.Sprintf("%04d.%s", i+1, ext))
	}
	return urls, paths
}

var knownExts = []string{".webp", ".jpg", ".jpeg", ".png", ".gif"}

// inferExtFromURL strips any query/fragment and checks for a known image
// extension, case-insensitively. Returns "" when none match.
func inferExtFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	path := rawURL
	if err == nil {
		path = parsed.Path
	}
	lower := strings.ToLower(path)
	for _, ext := range knownExts {
		if strings.HasSuffix(lower, ext) {
			return strings.TrimPrefix(ext, ".")
		}
	}
	return ""
}
