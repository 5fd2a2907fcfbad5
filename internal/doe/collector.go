package doe

import (
	"context"

	"github.com/GoSim-25-26J-441/optimizer-core/internal/sim"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/logger"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/models"
)

// Collector drives the external simulator over batches of design vectors.
// Evaluations are strictly sequential because the simulator session is a
// non-reentrant singleton resource.
type Collector struct {
	session *sim.Session
}

// NewCollector creates a collector bound to an open simulator session.
func NewCollector(session *sim.Session) *Collector {
	return &Collector{session: session}
}

// RunDOE evaluates every design vector in input order and returns one
// Sample per vector, in the same order. A failed evaluation records NaN
// outputs and feasible=false for that sample only; it never aborts the
// batch. Context cancellation stops between samples and returns the
// samples collected so far along with the context error.
func (c *Collector) RunDOE(ctx context.Context, problem *config.Problem, vectors [][]float64) ([]models.Sample, error) {
	samples := make([]models.Sample, 0, len(vectors))

	for i, x := range vectors {
		select {
		case <-ctx.Done():
			return samples, ctx.Err()
		default:
		}

		logger.Info("running DOE sample", "sample", i+1, "total", len(vectors))

		outputs := c.session.Evaluate(ctx, problem, x)
		samples = append(samples, models.Sample{
			Vector:   append([]float64(nil), x...),
			Outputs:  outputs,
			Feasible: sim.SampleFeasible(problem, outputs),
		})
	}

	logger.Info("DOE batch complete", "feasible", FeasibleCount(samples), "total", len(samples))
	return samples, nil
}

// EvaluatePoint evaluates a single design vector, returning the extracted
// outputs (all-NaN on failure).
func (c *Collector) EvaluatePoint(ctx context.Context, problem *config.Problem, x []float64) models.OutputMap {
	return c.session.Evaluate(ctx, problem, x)
}

// FeasibleCount returns the number of feasible samples in a batch.
func FeasibleCount(samples []models.Sample) int {
	count := 0
	for _, s := range samples {
		if s.Feasible {
			count++
		}
	}
	return count
}

// FeasibleRatio returns the feasible fraction of a batch, 0 for an empty batch.
func FeasibleRatio(samples []models.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	return float64(FeasibleCount(samples)) / float64(len(samples))
}
