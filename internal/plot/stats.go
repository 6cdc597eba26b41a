package plot

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	gonumstat "gonum.org/v1/gonum/stat"
)

// BoxStats summarizes one box's distribution. Fences are the most extreme
// values within 1.5 IQR of the quartiles.
type BoxStats struct {
	N          int     `json:"n"`
	Min        float64 `json:"min"`
	Q1         float64 `json:"q1"`
	Median     float64 `json:"median"`
	Q3         float64 `json:"q3"`
	Max        float64 `json:"max"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	LowerFence float64 `json:"lower_fence"`
	UpperFence float64 `json:"upper_fence"`
}

// Summarize computes box statistics. Quartiles use linear interpolation.
func Summarize(data []float64) (BoxStats, error) {
	if len(data) == 0 {
		return BoxStats{}, stats.EmptyInputErr
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	min, err := stats.Min(sorted)
	if err != nil {
		return BoxStats{}, err
	}
	max, err := stats.Max(sorted)
	if err != nil {
		return BoxStats{}, err
	}
	median, err := stats.Median(sorted)
	if err != nil {
		return BoxStats{}, err
	}
	mean, err := stats.Mean(sorted)
	if err != nil {
		return BoxStats{}, err
	}

	q1 := gonumstat.Quantile(0.25, gonumstat.LinInterp, sorted, nil)
	q3 := gonumstat.Quantile(0.75, gonumstat.LinInterp, sorted, nil)

	stdDev := 0.0
	if len(sorted) > 1 {
		stdDev = gonumstat.StdDev(sorted, nil)
	}

	iqr := q3 - q1
	lower, upper := q1-1.5*iqr, q3+1.5*iqr
	lowerFence, upperFence := max, min
	for _, v := range sorted {
		if v >= lower && v < lowerFence {
			lowerFence = v
		}
		if v <= upper && v > upperFence {
			upperFence = v
		}
	}

	return BoxStats{
		N:          len(sorted),
		Min:        min,
		Q1:         q1,
		Median:     median,
		Q3:         q3,
		Max:        max,
		Mean:       mean,
		StdDev:     stdDev,
		LowerFence: lowerFence,
		UpperFence: upperFence,
	}, nil
}

// IsOutlier reports whether v lies outside the fences
func (b BoxStats) IsOutlier(v float64) bool {
	return v < b.LowerFence || v > b.UpperFence || math.IsNaN(v)
}
