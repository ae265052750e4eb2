package app

import "gallerydl/internal/config"

func (a *App) ConfigLibraries() []string {
	return a.cfg.Libraries()
}

func (a *App) ConfigAddLibrary(dir string) error {
	return a.cfg.AddLibrary(dir)
}

func (a *App) ConfigActiveLibrary() string {
	return a.cfg.ActiveLibrary()
}

func (a *App) ConfigSetActiveLibrary(lib string) error {
	return a.cfg.SetActiveLibrary(lib)
}

func (a *App) ConfigOutputDir() string {
	return a.cfg.OutputDir()
}

func (a *App) ConfigSetOutputDir(dir string) error {
	return a.cfg.SetOutputDir(dir)
}

func (a *App) ConfigProxyURL() string {
	return a.cfg.ProxyURL()
}

func (a *App) ConfigSetProxyURL(proxy string) error {
	return a.cfg.SetProxyURL(proxy)
}

func (a *App) ConfigMaxConcurrentTasks() int {
	return a.cfg.MaxConcurrentTasks()
}

func (a *App) ConfigSetMaxConcurrentTasks(n int) error {
	return a.cfg.SetMaxConcurrentTasks(n)
}

func (a *App) ConfigParserConfig(tag string) *config.ParserConfig {
	return a.cfg.ParserConfig(tag)
}

func (a *App) ConfigSetParserConfig(tag string, pc *config.ParserConfig) error {
	return a.cfg.SetParserConfig(tag, pc)
}
