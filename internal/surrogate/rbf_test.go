package surrogate

import (
	"math"
	"testing"
)

func TestFitRBFExactAtCenters(t *testing.T) {
	// A nonlinear response sampled on a small grid.
	X := [][]float64{
		{0, 0}, {0, 1}, {1, 0}, {1, 1}, {0.5, 0.5}, {0.25, 0.75},
	}
	y := make([]float64, len(X))
	for i, x := range X {
		y[i] = math.Sin(3*x[0]) + x[1]*x[1]
	}

	model, err := fitRBF(X, y)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	for i, x := range X {
		if got := model.predict(x); math.Abs(got-y[i]) > 1e-8 {
			t.Errorf("center %d: predict = %v, want %v", i, got, y[i])
		}
	}
}

func TestFitRBFLinearReproduction(t *testing.T) {
	// With a linear tail the interpolant reproduces linear functions
	// everywhere, not only at the centers.
	X := [][]float64{
		{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0.3, 0.7}, {0.8, 0.2},
	}
	y := make([]float64, len(X))
	for i, x := range X {
		y[i] = 4*x[0] - 2*x[1] + 0.5
	}

	model, err := fitRBF(X, y)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	probe := []float64{0.6, 0.4}
	want := 4*probe[0] - 2*probe[1] + 0.5
	if got := model.predict(probe); math.Abs(got-want) > 1e-6 {
		t.Errorf("predict(%v) = %v, want %v", probe, got, want)
	}
}

func TestFitRBFTwoPoints(t *testing.T) {
	// Two points in 2D cannot support a linear tail; the fallback ladder
	// must still produce an exact interpolant.
	X := [][]float64{{0, 0}, {2, 1}}
	y := []float64{1.0, 3.0}

	model, err := fitRBF(X, y)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	for i, x := range X {
		if got := model.predict(x); math.Abs(got-y[i]) > 1e-8 {
			t.Errorf("center %d: predict = %v, want %v", i, got, y[i])
		}
	}
}

func TestFitRBFSingularSystemIsError(t *testing.T) {
	// Two points at unit distance: phi(1) = 0, so the kernel matrix is
	// all zeros and every rung of the fallback ladder is exactly
	// singular. The fit must report that, not panic.
	X := [][]float64{{0, 0}, {1, 0}}
	y := []float64{1.0, 2.0}

	if _, err := fitRBF(X, y); err == nil {
		t.Error("expected error for a singular system")
	}
}

func TestFitRBFCoincidentPointsIsError(t *testing.T) {
	// Coincident centers produce identical kernel rows; callers must
	// collapse duplicates before fitting.
	X := [][]float64{{3}, {3}, {4}}
	y := []float64{9.0, 11.0, 16.0}

	if _, err := fitRBF(X, y); err == nil {
		t.Error("expected error for coincident centers")
	}
}

func TestFitRBFDegenerate(t *testing.T) {
	if _, err := fitRBF([][]float64{{0, 0}}, []float64{1}); err == nil {
		t.Error("expected error for a single point")
	}
	if _, err := fitRBF([][]float64{{0, 0}, {1, 1}}, []float64{1}); err == nil {
		t.Error("expected error for mismatched target length")
	}
}
