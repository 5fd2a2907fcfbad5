package doe

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/utils"
)

// GenerateLHS produces n design vectors filling the bound hyper-rectangle by
// Latin Hypercube sampling: each variable's range is split into n equal
// strata, one sample lands in each stratum, and the stratum-to-sample
// assignment is permuted independently per variable with jitter inside the
// stratum. Integer-flagged variables are rounded afterwards; post-rounding
// duplicates across samples are accepted. Identical (problem, n, seed)
// inputs yield identical output.
func GenerateLHS(problem *config.Problem, n int, seed int64) ([][]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}
	if problem.NVar() == 0 {
		return nil, fmt.Errorf("problem has no design variables")
	}

	rng := utils.NewRandSource(seed)
	vectors := make([][]float64, n)
	for i := range vectors {
		vectors[i] = make([]float64, problem.NVar())
	}

	for j, v := range problem.Variables {
		perm := rng.Perm(n)
		span := v.UpperBound - v.LowerBound
		for i := 0; i < n; i++ {
			u := (float64(perm[i]) + rng.Float64()) / float64(n)
			value := v.LowerBound + u*span
			if v.IsInteger {
				value = math.Round(value)
			}
			vectors[i][j] = value
		}
	}

	return vectors, nil
}
