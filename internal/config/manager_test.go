package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	repo := NewFileConfigRepository(filepath.Join(t.TempDir(), "config.json"))
	m, err := NewManager(repo)
	require.NoError(t, err)
	return m
}

func TestManagerLibraries(t *testing.T) {
	m := newTestManager(t)
	require.Empty(t, m.Libraries())

	require.NoError(t, m.AddLibrary("/mnt/gallery"))
	require.NoError(t, m.AddLibrary("/mnt/gallery")) // idempotent
	require.Equal(t, []string{"/mnt/gallery"}, m.Libraries())

	require.NoError(t, m.SetActiveLibrary("/mnt/gallery"))
	require.Equal(t, "/mnt/gallery", m.ActiveLibrary())
}

func TestManagerOutputDirAndProxy(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.SetOutputDir("/downloads"))
	require.NoError(t, m.SetProxyURL("socks5://127.0.0.1:1080"))
	require.Equal(t, "/downloads", m.OutputDir())
	require.Equal(t, "socks5://127.0.0.1:1080", m.ProxyURL())
}

func TestManagerParserConfigDefaultsWhenUnset(t *testing.T) {
	m := newTestManager(t)
	pc := m.ParserConfig("ehentai")
	require.Equal(t, 3, pc.Base.Concurrency)
}

func TestManagerSetAndGetParserConfig(t *testing.T) {
	m := newTestManager(t)
	pc := &ParserConfig{
		Base: BaseParserConfig{Concurrency: 5},
		Auth: &AuthConfig{Cookies: "session=abc"},
	}
	require.NoError(t, m.SetParserConfig("pixiv", pc))

	got := m.ParserConfig("pixiv")
	require.Equal(t, 5, got.Base.Concurrency)
	require.Equal(t, "session=abc", got.Auth.Cookies)

	all := m.AllParserConfigs()
	require.Contains(t, all, "pixiv")
}

func TestManagerMaxConcurrentTasksDefault(t *testing.T) {
	m := newTestManager(t)
	require.Equal(t, 3, m.MaxConcurrentTasks())
	require.NoError(t, m.SetMaxConcurrentTasks(8))
	require.Equal(t, 8, m.MaxConcurrentTasks())
}
