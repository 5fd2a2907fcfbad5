package sim

import (
	"math"

	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
)

// ExtractScalar reduces a time series to a single scalar using the given
// extraction mode. NaN entries are skipped for max/min/mean; an empty series
// or an all-NaN series reduces to NaN.
func ExtractScalar(series []float64, mode config.Extraction) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	switch mode {
	case config.ExtractionMax:
		return nanReduce(series, math.Inf(-1), math.Max)
	case config.ExtractionMin:
		return nanReduce(series, math.Inf(1), math.Min)
	case config.ExtractionFinal:
		return series[len(series)-1]
	case config.ExtractionMean:
		sum, count := 0.0, 0
		for _, v := range series {
			if !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		if count == 0 {
			return math.NaN()
		}
		return sum / float64(count)
	default:
		return math.NaN()
	}
}

func nanReduce(series []float64, init float64, combine func(a, b float64) float64) float64 {
	acc := init
	found := false
	for _, v := range series {
		if math.IsNaN(v) {
			continue
		}
		acc = combine(acc, v)
		found = true
	}
	if !found {
		return math.NaN()
	}
	return acc
}
