package app

import "gallerydl/internal/network"

// NetworkSpeedTest runs a one-shot speed test against the nearest
// server. Returns nil if the test fails for any reason.
func (a *App) NetworkSpeedTest() *network.SpeedTestResult {
	res, err := network.RunSpeedTest()
	if err != nil {
		return nil
	}
	return res
}

// NetworkApplyRecommendedConcurrency runs a speed test and, if it
// succeeds, sets the configured max concurrent tasks to the suggested
// value. Returns the value it applied, or 0 if the test failed or
// produced no usable recommendation.
func (a *App) NetworkApplyRecommendedConcurrency() int {
	res, err := network.RunSpeedTest()
	if err != nil {
		return 0
	}
	n := network.RecommendedConcurrency(res)
	if n <= 0 {
		return 0
	}
	if err := a.cfg.SetMaxConcurrentTasks(n); err != nil {
		return 0
	}
	return n
}
