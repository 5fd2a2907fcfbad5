package pareto

import "math"

// KneeIndex returns the index of the knee point of a front given its
// minimized objective matrix. For two objectives the knee is the point
// farthest from the line through the two extreme points after
// normalizing each axis to [0, 1]; for higher dimensions it is the point
// with the smallest normalized objective sum. Fronts with at most two
// points have no interior, so the first point is returned.
func KneeIndex(F [][]float64) int {
	if len(F) <= 2 {
		return 0
	}

	norm := normalize(F)
	if len(F[0]) == 2 {
		return kneeByDistance(norm)
	}
	return kneeBySum(norm)
}

// normalize rescales each objective column to [0, 1]. Columns with zero
// range collapse to 0.
func normalize(F [][]float64) [][]float64 {
	n := len(F)
	m := len(F[0])
	lo := make([]float64, m)
	hi := make([]float64, m)
	for j := 0; j < m; j++ {
		lo[j] = math.Inf(1)
		hi[j] = math.Inf(-1)
	}
	for _, row := range F {
		for j, v := range row {
			if v < lo[j] {
				lo[j] = v
			}
			if v > hi[j] {
				hi[j] = v
			}
		}
	}
	out := make([][]float64, n)
	for i, row := range F {
		out[i] = make([]float64, m)
		for j, v := range row {
			if hi[j]-lo[j] > 0 {
				out[i][j] = (v - lo[j]) / (hi[j] - lo[j])
			}
		}
	}
	return out
}

// kneeByDistance picks the point with the largest perpendicular distance
// from the line through the two extreme points of a two-objective front.
func kneeByDistance(norm [][]float64) int {
	a := 0 // minimizes objective 0
	b := 0 // minimizes objective 1
	for i, row := range norm {
		if row[0] < norm[a][0] {
			a = i
		}
		if row[1] < norm[b][1] {
			b = i
		}
	}
	dx := norm[b][0] - norm[a][0]
	dy := norm[b][1] - norm[a][1]
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 0
	}

	best := 0
	bestDist := math.Inf(-1)
	for i, row := range norm {
		dist := math.Abs(dx*(norm[a][1]-row[1])-dy*(norm[a][0]-row[0])) / length
		if dist > bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

// kneeBySum picks the point with the smallest normalized objective sum.
func kneeBySum(norm [][]float64) int {
	best := 0
	bestSum := math.Inf(1)
	for i, row := range norm {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		if sum < bestSum {
			best = i
			bestSum = sum
		}
	}
	return best
}
