package config

import (
	"fmt"
	"sync"
)

// Manager is a narrow facade over a Repository: named getters/setters
// guarded by a single mutex, with every mutation persisted immediately.
// Mirrors the teacher's settings facade idiom, generalized from a
// key/value store to a whole-file-backed one.
type Manager struct {
	mu   sync.RWMutex
	repo Repository
	cfg  *Config
}

func NewManager(repo Repository) (*Manager, error) {
	cfg, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &Manager{repo: repo, cfg: cfg}, nil
}

func (m *Manager) Libraries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.cfg.Libraries))
	copy(out, m.cfg.Libraries)
	return out
}

func (m *Manager) AddLibrary(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, lib := range m.cfg.Libraries {
		if lib == dir {
			return nil
		}
	}
	m.cfg.Libraries = append(m.cfg.Libraries, dir)
	return m.repo.Save(m.cfg)
}

func (m *Manager) ActiveLibrary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.ActiveLibrary
}

func (m *Manager) SetActiveLibrary(lib string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.ActiveLibrary = lib
	return m.repo.Save(m.cfg)
}

func (m *Manager) OutputDir() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.OutputDir
}

func (m *Manager) SetOutputDir(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.OutputDir = dir
	return m.repo.Save(m.cfg)
}

func (m *Manager) ProxyURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.ProxyURL
}

func (m *Manager) SetProxyURL(proxy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.ProxyURL = proxy
	return m.repo.Save(m.cfg)
}

func (m *Manager) MaxConcurrentTasks() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cfg.MaxConcurrentTasks <= 0 {
		return 3
	}
	return m.cfg.MaxConcurrentTasks
}

func (m *Manager) SetMaxConcurrentTasks(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.MaxConcurrentTasks = n
	return m.repo.Save(m.cfg)
}

// ParserConfig returns the stored configuration for tag, or a sane
// default (concurrency 3) when none has been set yet.
func (m *Manager) ParserConfig(tag string) *ParserConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if pc, ok := m.cfg.ParserConfigs[tag]; ok {
		return pc
	}
	return defaultParserConfig()
}

func (m *Manager) SetParserConfig(tag string, pc *ParserConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg.ParserConfigs == nil {
		m.cfg.ParserConfigs = make(map[string]*ParserConfig)
	}
	m.cfg.ParserConfigs[tag] = pc
	return m.repo.Save(m.cfg)
}

func (m *Manager) AllParserConfigs() map[string]*ParserConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*ParserConfig, len(m.cfg.ParserConfigs))
	for k, v := range m.cfg.ParserConfigs {
		out[k] = v
	}
	return out
}
