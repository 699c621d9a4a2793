package metrics

import "math"

// DefaultTolerance is the relative step allowed between consecutive values
const DefaultTolerance = 0.05

// Trend classifies a numeric sequence
type Trend struct {
	IsStable     bool `json:"is_stable"`
	IsIncreasing bool `json:"is_increasing"`
	IsDecreasing bool `json:"is_decreasing"`
}

// AnalyzeSequence classifies seq under a relative-change tolerance.
//
// Direction comes from the endpoints only. Stability requires every step
// |s[i]-s[i-1]| / |s[i-1]| <= tolerance; a zero previous value makes the
// ratio undefined and is treated as unstable. Sequences shorter than 2 are
// stable with no direction.
func AnalyzeSequence(seq []float64, tolerance float64) Trend {
	if len(seq) < 2 {
		return Trend{IsStable: true}
	}

	delta := seq[len(seq)-1] - seq[0]
	trend := Trend{
		IsStable:     true,
		IsIncreasing: delta > 0,
		IsDecreasing: delta < 0,
	}

	for i := 1; i < len(seq); i++ {
		prev := seq[i-1]
		if prev == 0 {
			trend.IsStable = false
			break
		}
		change := math.Abs(seq[i]-prev) / math.Abs(prev)
		// NaN compares false, so it falls through to unstable
		if !(change <= tolerance) {
			trend.IsStable = false
			break
		}
	}

	return trend
}
