package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gallerydl/internal/task"
)

func newTestSink(t *testing.T) *Sink {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSink(dir, nil)
	require.NoError(t, err)
	return s
}

func TestSinkAddAndGetHistory(t *testing.T) {
	s := newTestSink(t)

	rec1 := Record{ID: "a", URL: "https://e-hentai.org/g/1/1", Status: task.StatusCompleted, CompleteTime: "2026-01-01T00:00:00Z"}
	rec2 := Record{ID: "b", URL: "https://e-hentai.org/g/2/2", Status: task.StatusCompleted, CompleteTime: "2026-02-01T00:00:00Z"}

	require.NoError(t, s.AddRecord(rec1))
	require.NoError(t, s.AddRecord(rec2))

	got := s.GetHistory()
	require.Len(t, got, 2)
	// Newest complete time first.
	require.Equal(t, "b", got[0].ID)
	require.Equal(t, "a", got[1].ID)
}

func TestSinkPersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s, err := NewSink(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.AddRecord(Record{ID: "x", URL: "https://nhentai.net/g/1", Status: task.StatusCompleted, CompleteTime: "2026-01-01T00:00:00Z"}))

	reopened, err := NewSink(dir, nil)
	require.NoError(t, err)
	require.Len(t, reopened.GetHistory(), 1)
}

func TestSinkToleratesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "download_history.json"), []byte("{not valid json"), 0644))

	s, err := NewSink(dir, nil)
	require.NoError(t, err)
	require.Empty(t, s.GetHistory())
}

func TestSinkClear(t *testing.T) {
	s := newTestSink(t)
	require.NoError(t, s.AddRecord(Record{ID: "a", URL: "https://wnacg.com/photos-index-id-1.html", Status: task.StatusCompleted}))
	require.NoError(t, s.Clear())
	require.Empty(t, s.GetHistory())
}

func TestSinkCheckURLWithoutIndex(t *testing.T) {
	s := newTestSink(t)
	require.NoError(t, s.AddRecord(Record{ID: "a", URL: "https://e-hentai.org/g/1/1", Status: task.StatusCompleted}))

	_, found, err := s.CheckURL("https://e-hentai.org/g/1/1")
	require.NoError(t, err)
	require.False(t, found, "no index configured, so CheckURL never reports a hit")
}

func TestSinkCheckURLWithIndex(t *testing.T) {
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "idx"))
	require.NoError(t, err)
	defer idx.Close()

	s, err := NewSink(t.TempDir(), idx)
	require.NoError(t, err)

	rec := Record{ID: "a", URL: "https://nhentai.net/g/1", Status: task.StatusCompleted}
	require.NoError(t, s.AddRecord(rec))

	status, found, err := s.CheckURL(rec.URL)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, string(task.StatusCompleted), status)

	_, found, err = s.CheckURL("https://nhentai.net/g/2")
	require.NoError(t, err)
	require.False(t, found)
}

func TestSinkClearWipesIndex(t *testing.T) {
	idx, err := OpenIndex(filepath.Join(t.TempDir(), "idx"))
	require.NoError(t, err)
	defer idx.Close()

	s, err := NewSink(t.TempDir(), idx)
	require.NoError(t, err)

	rec := Record{ID: "a", URL: "https://wnacg.com/photos-index-id-1.html", Status: task.StatusCompleted}
	require.NoError(t, s.AddRecord(rec))
	require.NoError(t, s.Clear())

	_, found, err := s.CheckURL(rec.URL)
	require.NoError(t, err)
	require.False(t, found)
}

func TestRecordFromTask(t *testing.T) {
	tk := &task.Task{
		ID:     "t1",
		URL:    "https://telegra.ph/a",
		Name:   "a",
		Status: task.StatusCompleted,
	}
	rec := RecordFromTask(tk)
	require.Equal(t, "t1", rec.ID)
	require.Equal(t, task.StatusCompleted, rec.Status)
}
