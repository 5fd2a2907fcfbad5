package surrogate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/GoSim-25-26J-441/optimizer-core/pkg/utils"
)

// thinPlateSpline is the radial kernel phi(r) = r^2 * ln(r), with the
// removable singularity at r = 0 taken as 0.
func thinPlateSpline(r float64) float64 {
	if r == 0 {
		return 0
	}
	return r * r * math.Log(r)
}

// rbf is a scalar-valued thin-plate-spline interpolant over scattered
// centers, augmented with a polynomial tail. It reproduces its training
// values exactly at the centers by construction.
type rbf struct {
	centers [][]float64
	weights []float64
	// poly holds the polynomial tail coefficients: empty for kernel-only,
	// [c] for a constant tail, [c, a1..ad] for a linear tail.
	poly []float64
}

// fitRBF fits a thin-plate-spline interpolant through (X, y). The
// polynomial tail degree is chosen from the sample count: linear when
// n >= d+1 (reproducing linear functions exactly), falling back to a
// constant tail and finally to a kernel-only system when the augmented
// system is singular.
func fitRBF(X [][]float64, y []float64) (*rbf, error) {
	n := len(X)
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 points to interpolate, got %d", n)
	}
	if len(y) != n {
		return nil, fmt.Errorf("target length %d does not match %d points", len(y), n)
	}
	d := len(X[0])

	ladder := []int{1 + d, 1, 0}
	if n < d+1 {
		ladder = []int{1, 0}
	}

	var lastErr error
	for _, polyTerms := range ladder {
		model, err := solveSaddle(X, y, polyTerms)
		if err == nil {
			return model, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("rbf system is singular: %w", lastErr)
}

// solveSaddle assembles and solves the symmetric saddle system
//
//	[ K  P ] [w]   [y]
//	[ Pᵀ 0 ] [a] = [0]
//
// where K is the kernel matrix and P the polynomial basis evaluated at the
// centers (polyTerms columns).
func solveSaddle(X [][]float64, y []float64, polyTerms int) (*rbf, error) {
	n := len(X)
	size := n + polyTerms

	A := mat.NewDense(size, size, nil)
	b := mat.NewDense(size, 1, nil)

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := thinPlateSpline(utils.EuclideanDistance(X[i], X[j]))
			A.Set(i, j, v)
			A.Set(j, i, v)
		}
		if polyTerms > 0 {
			A.Set(i, n, 1)
			A.Set(n, i, 1)
		}
		for k := 1; k < polyTerms; k++ {
			A.Set(i, n+k, X[i][k-1])
			A.Set(n+k, i, X[i][k-1])
		}
		b.Set(i, 0, y[i])
	}

	var lu mat.LU
	lu.Factorize(A)

	var sol mat.Dense
	if err := lu.SolveTo(&sol, false, b); err != nil {
		// A finite Condition error still carries a usable solution. An
		// infinite one means the factorization found the matrix exactly
		// singular and left the destination unpopulated.
		c, ok := err.(mat.Condition)
		if !ok || math.IsInf(float64(c), 1) || sol.IsEmpty() {
			return nil, err
		}
	}

	model := &rbf{
		centers: X,
		weights: make([]float64, n),
		poly:    make([]float64, polyTerms),
	}
	for i := 0; i < n; i++ {
		model.weights[i] = sol.At(i, 0)
	}
	for k := 0; k < polyTerms; k++ {
		model.poly[k] = sol.At(n+k, 0)
	}
	return model, nil
}

// predict evaluates the interpolant at x.
func (m *rbf) predict(x []float64) float64 {
	value := 0.0
	for i, center := range m.centers {
		value += m.weights[i] * thinPlateSpline(utils.EuclideanDistance(x, center))
	}
	if len(m.poly) > 0 {
		value += m.poly[0]
	}
	for k := 1; k < len(m.poly); k++ {
		value += m.poly[k] * x[k-1]
	}
	return value
}
