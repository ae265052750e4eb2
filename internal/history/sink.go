// Package history persists completed-task records to a flat JSON array
// file and maintains a small badger index for fast duplicate-URL lookups.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gallerydl/internal/task"
)

// Record is the durable, on-disk shape of a finished task.
type Record struct {
	ID           string        `json:"id"`
	URL          string        `json:"url"`
	Status       task.Status   `json:"status"`
	SavePath     string        `json:"savePath"`
	Name         string        `json:"name"`
	Progress     task.Progress `json:"progress"`
	FailedCount  int           `json:"failedCount"`
	Error        string        `json:"error,omitempty"`
	Retryable    bool          `json:"retryable"`
	StartTime    string        `json:"startTime"`
	CompleteTime string        `json:"completeTime"`
	UpdatedAt    string        `json:"updatedAt"`
}

// RecordFromTask builds a Record from a finished task snapshot.
func RecordFromTask(t *task.Task) Record {
	return Record{
		ID:           t.ID,
		URL:          t.URL,
		Status:       t.Status,
		SavePath:     t.OutputPath,
		Name:         t.Name,
		Progress:     t.Progress,
		FailedCount:  t.FailedCount,
		Error:        t.Error,
		Retryable:    t.Retryable,
		StartTime:    t.StartTime.Format(timeLayout),
		CompleteTime: t.CompleteTime.Format(timeLayout),
		UpdatedAt:    t.UpdatedAt.Format(timeLayout),
	}
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

// Sink is an append-only JSON history file, tolerant of a missing or
// corrupt file on load (treated as empty history rather than an error).
type Sink struct {
	mu       sync.Mutex
	path     string
	records  []Record
	index    *Index // optional duplicate-URL index; nil-safe
}

// NewSink opens (or prepares to create) the history file at dataDir/download_history.json.
func NewSink(dataDir string, index *Index) (*Sink, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create history data dir: %w", err)
	}
	s := &Sink{path: filepath.Join(dataDir, "download_history.json"), index: index}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sink) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.records = nil
			return nil
		}
		return fmt.Errorf("read history file: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		// Corrupt file: start fresh rather than fail the whole app.
		s.records = nil
		return nil
	}
	s.records = records
	return nil
}

func (s *Sink) save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// AddRecord appends rec and persists the file, also updating the
// duplicate-URL index when one is configured.
func (s *Sink) AddRecord(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if err := s.save(); err != nil {
		return err
	}
	if s.index != nil {
		_ = s.index.Put(rec.URL, string(rec.Status))
	}
	return nil
}

// GetHistory returns every record sorted descending by complete time.
func (s *Sink) GetHistory() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	sort.Slice(out, func(i, j int) bool { return out[i].CompleteTime > out[j].CompleteTime })
	return out
}

// CheckURL reports whether url has a prior recorded status, using the
// duplicate-URL index when one is configured. found is false whenever
// no index was given to NewSink.
func (s *Sink) CheckURL(url string) (status string, found bool, err error) {
	if s.index == nil {
		return "", false, nil
	}
	return s.index.Lookup(url)
}

// Clear empties the history file and drops every entry from the
// duplicate-URL index, keeping the two in sync.
func (s *Sink) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index != nil {
		for _, rec := range s.records {
			_ = s.index.Delete(rec.URL)
		}
	}
	s.records = nil
	return s.save()
}
