package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareBundleMetrics(t *testing.T) {
	tests := []struct {
		name       string
		old, new   float64
		wantTrend  Trend
		wantChange float64
	}{
		{"growth", 100, 120, TrendIncrease, 20},
		{"shrink", 200, 150, TrendDecrease, -25},
		{"unchanged", 80, 80, TrendStable, 0},
		{"zero baseline", 0, 100, TrendIncrease, 100},
		{"both zero", 0, 0, TrendStable, 0},
		{"rounded to two decimals", 300, 301, TrendIncrease, 0.33},
		{"tiny change is stable", 1000000, 1000000.01, TrendStable, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareBundleMetrics(tt.old, tt.new)
			assert.Equal(t, tt.old, got.Old)
			assert.Equal(t, tt.new, got.New)
			assert.Equal(t, tt.wantTrend, got.Trend)
			assert.InDelta(t, tt.wantChange, got.Change, 1e-9)
		})
	}
}

func TestCompareBundles(t *testing.T) {
	got := CompareBundles(
		Bundle{FirstLoadJS: 100, TotalSize: 500, ChunkCount: 10},
		Bundle{FirstLoadJS: 120, TotalSize: 500, ChunkCount: 8},
	)

	assert.Equal(t, TrendIncrease, got.FirstLoadJS.Trend)
	assert.Equal(t, TrendStable, got.TotalSize.Trend)
	assert.Equal(t, TrendDecrease, got.ChunkCount.Trend)
	assert.InDelta(t, -20, got.ChunkCount.Change, 1e-9)
}
