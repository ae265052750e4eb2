package network

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecommendedConcurrencyNilResult(t *testing.T) {
	require.Equal(t, 0, RecommendedConcurrency(nil))
}

func TestRecommendedConcurrencyZeroSpeed(t *testing.T) {
	require.Equal(t, 0, RecommendedConcurrency(&SpeedTestResult{DownloadSpeed: 0}))
}

func TestRecommendedConcurrencyClampsLow(t *testing.T) {
	require.Equal(t, minRecommendedConcurrency, RecommendedConcurrency(&SpeedTestResult{DownloadSpeed: 1}))
}

func TestRecommendedConcurrencyClampsHigh(t *testing.T) {
	require.Equal(t, maxRecommendedConcurrency, RecommendedConcurrency(&SpeedTestResult{DownloadSpeed: 10000}))
}

func TestRecommendedConcurrencyScalesWithSpeed(t *testing.T) {
	require.Equal(t, 10, RecommendedConcurrency(&SpeedTestResult{DownloadSpeed: 50}))
}
