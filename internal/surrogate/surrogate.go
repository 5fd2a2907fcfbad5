// Package surrogate fits cheap interpolating models of the expensive
// simulator responses and scores their out-of-sample fidelity. One
// thin-plate-spline interpolant is fitted per objective from the feasible
// subset of a ground-truth sample batch; leave-one-out cross-validation is
// the quality signal gating the rest of the pipeline, because in-sample
// residuals of an exact interpolant are identically zero.
package surrogate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/logger"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/models"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/utils"
)

// ErrInsufficientData is returned by Fit when fewer than 2 usable feasible
// samples remain after filtering. The caller must collect more ground truth
// before retrying; there is no automatic re-sampling.
var ErrInsufficientData = errors.New("insufficient feasible samples")

// ErrNotFitted is returned by read operations before a successful Fit.
var ErrNotFitted = errors.New("surrogate model not fitted")

// Model is a multi-output surrogate: one interpolant per objective, all
// sharing the feasible sample vectors as centers. Fit replaces any previous
// state; Predict and the quality metrics are pure reads afterwards. The
// model lives only for the duration of one optimization run.
type Model struct {
	interpolants map[string]*rbf
	objNames     []string
	x            [][]float64
	y            map[string][]float64
}

// New creates an empty, unfitted surrogate model.
func New() *Model {
	return &Model{}
}

// Fit fits one interpolant per objective from the feasible samples of a
// batch. Samples that are infeasible, or whose objective outputs are
// non-numeric, are excluded. Returns ErrInsufficientData (wrapped) when
// fewer than 2 samples survive the filter.
func (m *Model) Fit(samples []models.Sample, problem *config.Problem) error {
	objNames := problem.ObjectiveNames()

	valid := make([]models.Sample, 0, len(samples))
	for _, s := range samples {
		if !s.Feasible {
			continue
		}
		usable := true
		for _, name := range objNames {
			if !models.IsNumeric(s.Outputs[name]) {
				usable = false
				break
			}
		}
		if usable {
			valid = append(valid, s)
		}
	}

	if len(valid) < 2 {
		return fmt.Errorf("%w: need at least 2 to fit, got %d of %d samples", ErrInsufficientData, len(valid), len(samples))
	}

	// Rounded integer designs may repeat across samples. Coincident
	// vectors collapse to one center with averaged outputs, since
	// identical kernel rows make the interpolation system singular.
	groups := make(map[string][]int, len(valid))
	keys := make([]string, 0, len(valid))
	for i, s := range valid {
		k := vectorKey(s.Vector)
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}
	if len(keys) < 2 {
		return fmt.Errorf("%w: need at least 2 distinct design vectors, got %d", ErrInsufficientData, len(keys))
	}

	x := make([][]float64, len(keys))
	for j, k := range keys {
		x[j] = append([]float64(nil), valid[groups[k][0]].Vector...)
	}

	interpolants := make(map[string]*rbf, len(objNames))
	y := make(map[string][]float64, len(objNames))
	for _, name := range objNames {
		targets := make([]float64, len(keys))
		for j, k := range keys {
			sum := 0.0
			for _, i := range groups[k] {
				sum += valid[i].Outputs[name]
			}
			targets[j] = sum / float64(len(groups[k]))
		}
		fitted, err := fitRBF(x, targets)
		if err != nil {
			return fmt.Errorf("failed to fit objective %s: %w", name, err)
		}
		interpolants[name] = fitted
		y[name] = targets
	}

	m.interpolants = interpolants
	m.objNames = objNames
	m.x = x
	m.y = y

	logger.Info("surrogate fitted", "objectives", len(objNames), "points", len(keys))
	return nil
}

func vectorKey(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, "|")
}

// TrainingSize returns the number of distinct feasible design vectors used
// by the last Fit.
func (m *Model) TrainingSize() int {
	return len(m.x)
}

// Predict evaluates all fitted interpolants at the given points. Pure; may
// be called any number of times after Fit.
func (m *Model) Predict(X [][]float64) (map[string][]float64, error) {
	if m.interpolants == nil {
		return nil, ErrNotFitted
	}
	out := make(map[string][]float64, len(m.objNames))
	for _, name := range m.objNames {
		interp := m.interpolants[name]
		values := make([]float64, len(X))
		for i, x := range X {
			values[i] = interp.predict(x)
		}
		out[name] = values
	}
	return out, nil
}

// PredictSingle evaluates all fitted interpolants at exactly one point.
func (m *Model) PredictSingle(x []float64) (map[string]float64, error) {
	preds, err := m.Predict([][]float64{x})
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(preds))
	for name, values := range preds {
		out[name] = values[0]
	}
	return out, nil
}

// R2Scores computes the leave-one-out R² per objective: each training point
// is held out in turn, the interpolant refitted without it, and the held-out
// prediction compared against the recorded value. A naive in-sample R² would
// be trivially 1.0 for an exact interpolant, which is why it is not offered.
func (m *Model) R2Scores() (map[string]float64, error) {
	if m.interpolants == nil {
		return nil, ErrNotFitted
	}

	n := len(m.x)
	scores := make(map[string]float64, len(m.objNames))

	// Two training points leave nothing to refit against once one is
	// held out; report the worst score and let the quality gate flag it.
	if n < 3 {
		for _, name := range m.objNames {
			scores[name] = 0
		}
		return scores, nil
	}

	for _, name := range m.objNames {
		y := m.y[name]
		ssRes := 0.0
		for i := 0; i < n; i++ {
			xTrain := make([][]float64, 0, n-1)
			yTrain := make([]float64, 0, n-1)
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				xTrain = append(xTrain, m.x[j])
				yTrain = append(yTrain, y[j])
			}
			looModel, err := fitRBF(xTrain, yTrain)
			if err != nil {
				return nil, fmt.Errorf("leave-one-out refit for %s failed at point %d: %w", name, i, err)
			}
			residual := y[i] - looModel.predict(m.x[i])
			ssRes += residual * residual
		}

		variance, err := stats.PopulationVariance(stats.Float64Data(y))
		if err != nil {
			return nil, fmt.Errorf("variance of %s targets: %w", name, err)
		}
		ssTot := variance * float64(n)

		if ssTot > 0 {
			scores[name] = utils.Round(1.0-ssRes/ssTot, 4)
		} else {
			scores[name] = 0
		}
	}

	return scores, nil
}

// FormatR2Report renders the leave-one-out scores with a quality bucket per
// objective: >= 0.9 good, >= 0.7 acceptable, otherwise poor.
func (m *Model) FormatR2Report() (string, error) {
	scores, err := m.R2Scores()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("**Surrogate Model Quality (LOO R^2):**")
	for _, name := range m.objNames {
		r2 := scores[name]
		quality := "poor"
		switch {
		case r2 >= 0.9:
			quality = "good"
		case r2 >= 0.7:
			quality = "acceptable"
		}
		sb.WriteString(fmt.Sprintf("\n- %s: R^2 = %.4f (%s)", name, r2, quality))
	}
	return sb.String(), nil
}
