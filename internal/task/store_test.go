package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreCreateAndByID(t *testing.T) {
	s := NewStore()
	tk := s.Create("t1", "https://example.test/g/1", "/out", 3)
	require.Equal(t, StatusPending, tk.Status)

	got, err := s.ByID("t1")
	require.NoError(t, err)
	require.Equal(t, "t1", got.ID)
	require.Equal(t, "https://example.test/g/1", got.URL)
}

func TestStoreByIDMissing(t *testing.T) {
	s := NewStore()
	_, err := s.ByID("missing")
	require.Error(t, err)
}

func TestStoreByIDReturnsClone(t *testing.T) {
	s := NewStore()
	s.Create("t1", "u", "/out", 3)

	got, err := s.ByID("t1")
	require.NoError(t, err)
	got.Name = "mutated"

	got2, err := s.ByID("t1")
	require.NoError(t, err)
	require.NotEqual(t, "mutated", got2.Name)
}

func TestStoreActiveAndQueued(t *testing.T) {
	s := NewStore()
	s.Create("running", "u1", "/out", 3)
	require.NoError(t, s.SetRunning("running", 10, "gallery"))

	s.Create("queued", "u2", "/out", 3)
	require.NoError(t, s.SetQueued("queued"))

	s.Create("pending", "u3", "/out", 3)

	active := s.Active()
	require.Len(t, active, 1)
	require.Equal(t, "running", active[0].ID)

	queued := s.Queued()
	require.Len(t, queued, 1)
	require.Equal(t, "queued", queued[0].ID)
}

func TestStoreAllSortedNewestFirst(t *testing.T) {
	s := NewStore()
	first := s.Create("first", "u1", "/out", 3)
	first.StartTime = first.StartTime.Add(-time.Minute)
	s.Create("second", "u2", "/out", 3)

	all := s.All()
	require.Len(t, all, 2)
	require.Equal(t, "second", all[0].ID)
	require.Equal(t, "first", all[1].ID)
}

func TestStoreSetProgressAndTaskName(t *testing.T) {
	s := NewStore()
	s.Create("t1", "u", "/out", 3)
	s.SetProgress("t1", 2, 10)
	s.SetTaskName("t1", "foo - bar")

	got, err := s.ByID("t1")
	require.NoError(t, err)
	require.Equal(t, 2, got.Progress.Current)
	require.Equal(t, 10, got.Progress.Total)
	require.Equal(t, "foo - bar", got.Name)
}

func TestStoreTerminalTransitions(t *testing.T) {
	s := NewStore()

	s.Create("completed", "u", "/out", 3)
	require.NoError(t, s.SetCompleted("completed"))
	got, _ := s.ByID("completed")
	require.Equal(t, StatusCompleted, got.Status)
	require.False(t, got.CompleteTime.IsZero())

	s.Create("partial", "u", "/out", 3)
	require.NoError(t, s.SetPartialFailed("partial", 2))
	got, _ = s.ByID("partial")
	require.Equal(t, StatusPartialFailed, got.Status)
	require.Equal(t, 2, got.FailedCount)
	require.NotEmpty(t, got.Error)

	s.Create("failed", "u", "/out", 3)
	require.NoError(t, s.SetFailed("failed", "boom"))
	got, _ = s.ByID("failed")
	require.Equal(t, StatusFailed, got.Status)
	require.Equal(t, "boom", got.Error)

	s.Create("cancelled", "u", "/out", 3)
	require.NoError(t, s.SetCancelled("cancelled"))
	got, _ = s.ByID("cancelled")
	require.Equal(t, StatusCancelled, got.Status)
}

func TestStorePrepareRetryEligibility(t *testing.T) {
	s := NewStore()
	s.Create("t1", "u", "/out", 1)
	require.NoError(t, s.SetFailed("t1", "boom"))

	require.NoError(t, s.PrepareRetry("t1"))
	got, _ := s.ByID("t1")
	require.Equal(t, StatusPending, got.Status)
	require.Equal(t, 1, got.RetryCount)
	require.Empty(t, got.Error)

	require.NoError(t, s.SetFailed("t1", "boom again"))
	err := s.PrepareRetry("t1")
	require.Error(t, err, "retry budget of 1 should now be exhausted")
}

func TestStorePrepareRetryRejectsNonTerminal(t *testing.T) {
	s := NewStore()
	s.Create("t1", "u", "/out", 3)
	err := s.PrepareRetry("t1")
	require.Error(t, err)
}

func TestStoreClearHistoryRemovesOnlyTerminal(t *testing.T) {
	s := NewStore()
	s.Create("running", "u", "/out", 3)
	require.NoError(t, s.SetRunning("running", 1, "g"))

	s.Create("done", "u", "/out", 3)
	require.NoError(t, s.SetCompleted("done"))

	removed := s.ClearHistory()
	require.Equal(t, 1, removed)

	_, err := s.ByID("done")
	require.Error(t, err)

	_, err = s.ByID("running")
	require.NoError(t, err)
}

func TestStoreSetNameAndPath(t *testing.T) {
	s := NewStore()
	s.Create("t1", "u", "/out", 3)
	require.NoError(t, s.SetNameAndPath("t1", "My Gallery", "/out/My Gallery"))

	got, err := s.ByID("t1")
	require.NoError(t, err)
	require.Equal(t, "My Gallery", got.Name)
	require.Equal(t, "/out/My Gallery", got.OutputPath)
}

func TestStoreDelete(t *testing.T) {
	s := NewStore()
	s.Create("t1", "u", "/out", 3)
	s.Delete("t1")
	_, err := s.ByID("t1")
	require.Error(t, err)
}
