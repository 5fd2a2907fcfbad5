package pipeline

import (
	"context"
	"math"

	"github.com/GoSim-25-26J-441/optimizer-core/internal/sim"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/logger"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/models"
)

// relErrEps floors the denominator of the relative error so near-zero
// predictions do not blow the metric up.
const relErrEps = 1e-9

// Verify re-evaluates each candidate against the ground-truth simulator
// and attaches the actual objective values, feasibility, and the
// per-objective relative prediction error. Candidates are modified in
// place; a failed ground-truth run leaves NaN errors rather than
// aborting the batch.
func Verify(ctx context.Context, session *sim.Session, problem *config.Problem, candidates []models.Candidate) error {
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := &candidates[i]
		outputs := session.Evaluate(ctx, problem, c.Vector)

		c.Actual = outputs
		c.Feasible = sim.SampleFeasible(problem, outputs)
		c.RelativeError = make(models.OutputMap, len(problem.Objectives))
		for j, obj := range problem.Objectives {
			actual := outputs[obj.Name]
			predicted := c.Predicted[j]
			c.RelativeError[obj.Name] = relativeError(predicted, actual)
		}
		c.Verified = true

		logger.Info("verified candidate",
			"label", c.Label,
			"feasible", c.Feasible,
			"relative_error", map[string]float64(c.RelativeError))
	}
	return nil
}

// relativeError is |actual - predicted| / max(|predicted|, eps); NaN
// when the ground truth is not numeric.
func relativeError(predicted, actual float64) float64 {
	if !models.IsNumeric(actual) || !models.IsNumeric(predicted) {
		return math.NaN()
	}
	denom := math.Abs(predicted)
	if denom < relErrEps {
		denom = relErrEps
	}
	return math.Abs(actual-predicted) / denom
}
