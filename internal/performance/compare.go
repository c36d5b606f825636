// Package performance compares frontend bundle metrics between builds.
package performance

import "math"

type Trend string

const (
	TrendIncrease Trend = "increase"
	TrendDecrease Trend = "decrease"
	TrendStable   Trend = "stable"
)

// stableBand is the absolute percentage change treated as no change.
const stableBand = 0.01

// Comparison is the percentage change of one metric between two builds.
type Comparison struct {
	Old    float64 `json:"old"`
	New    float64 `json:"new"`
	Trend  Trend   `json:"trend"`
	Change float64 `json:"change"`
}

// Bundle holds the size metrics of one build.
type Bundle struct {
	FirstLoadJS float64 `json:"firstLoadJS"`
	TotalSize   float64 `json:"totalSize"`
	ChunkCount  int     `json:"chunkCount"`
}

type BundleComparison struct {
	FirstLoadJS Comparison `json:"firstLoadJS"`
	TotalSize   Comparison `json:"totalSize"`
	ChunkCount  Comparison `json:"chunkCount"`
}

// CompareBundleMetrics returns the percentage change from old to new. A zero
// baseline reports 100 when new is positive and 0 otherwise.
func CompareBundleMetrics(oldValue, newValue float64) Comparison {
	var change float64
	switch {
	case oldValue == 0 && newValue > 0:
		change = 100
	case oldValue == 0:
		change = 0
	default:
		change = (newValue - oldValue) / oldValue * 100
	}
	change = math.Round(change*100) / 100

	var trend Trend
	switch {
	case math.Abs(change) < stableBand:
		trend = TrendStable
	case change > 0:
		trend = TrendIncrease
	default:
		trend = TrendDecrease
	}

	return Comparison{
		Old:    oldValue,
		New:    newValue,
		Trend:  trend,
		Change: change,
	}
}

func CompareBundles(oldBundle, newBundle Bundle) BundleComparison {
	return BundleComparison{
		FirstLoadJS: CompareBundleMetrics(oldBundle.FirstLoadJS, newBundle.FirstLoadJS),
		TotalSize:   CompareBundleMetrics(oldBundle.TotalSize, newBundle.TotalSize),
		ChunkCount:  CompareBundleMetrics(float64(oldBundle.ChunkCount), float64(newBundle.ChunkCount)),
	}
}
