package archive

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/optimizer-core/internal/pipeline"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/models"
)

const archiveProblemYAML = `
design: plate.dsn
variables:
  - name: x
    component: plate
    property: x
    lower_bound: 0
    upper_bound: 1
objectives:
  - name: total
    series: total
    extraction: final
    direction: maximize
`

func testResult(t *testing.T) *pipeline.Result {
	t.Helper()
	problem, err := config.ParseProblemYAMLString(archiveProblemYAML)
	require.NoError(t, err)
	return &pipeline.Result{
		Problem:       problem,
		FeasibleRatio: 0.75,
		Samples: []models.Sample{
			{Vector: []float64{0.2}, Outputs: models.OutputMap{"total": 0.2}, Feasible: true},
			{Vector: []float64{0.8}, Outputs: models.OutputMap{"total": math.NaN()}, Feasible: false},
		},
		Candidates: []models.Candidate{
			{
				Index:         0,
				Label:         models.LabelKneePoint,
				Vector:        []float64{0.9},
				Predicted:     []float64{0.9},
				Verified:      true,
				Actual:        models.OutputMap{"total": 0.91},
				RelativeError: models.OutputMap{"total": 0.0111},
				Feasible:      true,
			},
		},
		Gates: []models.GateSignal{
			{Metric: models.MetricFeasibleRatio, Observed: 0.75, Threshold: 0.3, Passed: true},
			{Metric: models.MetricVerificationError, Subject: "Knee point/total", Observed: math.NaN(), Threshold: 0.15, Passed: false},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, "run-1", archiveProblemYAML, testResult(t)))

	loaded, err := store.LoadRun(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, "plate.dsn", loaded.Problem.Design)
	assert.Equal(t, 0.75, loaded.FeasibleRatio)

	require.Len(t, loaded.Samples, 2)
	assert.Equal(t, []float64{0.2}, loaded.Samples[0].Vector)
	assert.True(t, loaded.Samples[0].Feasible)
	assert.True(t, math.IsNaN(loaded.Samples[1].Outputs["total"]), "failed output should round-trip as NaN")
	assert.False(t, loaded.Samples[1].Feasible)

	require.Len(t, loaded.Candidates, 1)
	c := loaded.Candidates[0]
	assert.Equal(t, models.LabelKneePoint, c.Label)
	assert.Equal(t, []float64{0.9}, c.Vector)
	assert.True(t, c.Verified)
	assert.InDelta(t, 0.91, c.Actual["total"], 1e-12)

	require.Len(t, loaded.Gates, 2)
	assert.True(t, loaded.Gates[0].Passed)
	assert.True(t, math.IsNaN(loaded.Gates[1].Observed), "null observation should load as NaN")
	assert.False(t, loaded.Gates[1].Passed)
}

func TestLoadRunNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.LoadRun(context.Background(), "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, "run-a", archiveProblemYAML, testResult(t)))
	require.NoError(t, store.SaveRun(ctx, "run-b", archiveProblemYAML, testResult(t)))

	summaries, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	for _, sum := range summaries {
		assert.Equal(t, "plate.dsn", sum.Design)
		assert.Equal(t, 2, sum.SampleCount)
		assert.Equal(t, 1, sum.CandidateCount)
		assert.False(t, sum.CreatedAt.IsZero())
	}
}

func TestDeleteRunCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, "run-1", archiveProblemYAML, testResult(t)))
	require.NoError(t, store.DeleteRun(ctx, "run-1"))

	_, err := store.LoadRun(ctx, "run-1")
	assert.Error(t, err)

	var count int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM samples`).Scan(&count))
	assert.Zero(t, count, "cascade should remove dependent samples")

	assert.Error(t, store.DeleteRun(ctx, "run-1"), "double delete should report not found")
}

func TestDuplicateRunIDRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, "run-1", archiveProblemYAML, testResult(t)))
	assert.Error(t, store.SaveRun(ctx, "run-1", archiveProblemYAML, testResult(t)))
}
