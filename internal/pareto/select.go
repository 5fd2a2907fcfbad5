package pareto

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/models"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/utils"
)

// SelectTop3 picks up to three distinct candidate designs from a front
// for ground-truth verification: the knee point first, then the best
// design per objective, then designs that maximize spread across the
// front. Fewer than three are returned only when the front itself has
// fewer distinct points.
func SelectTop3(front *models.ParetoResult, problem *config.Problem) []models.Candidate {
	n := len(front.Points)
	if n == 0 {
		return nil
	}

	F := make([][]float64, n)
	for i, p := range front.Points {
		F[i] = p.Minimized
	}

	var picked []int
	var labels []string
	add := func(idx int, label string) {
		for _, p := range picked {
			if p == idx {
				return
			}
		}
		if len(picked) < 3 {
			picked = append(picked, idx)
			labels = append(labels, label)
		}
	}

	add(KneeIndex(F), models.LabelKneePoint)

	// Best design per objective, in the objective's natural direction.
	// Ties keep the earliest point on the front.
	for j, obj := range problem.Objectives {
		best := 0
		for i := 1; i < n; i++ {
			v := front.Points[i].Objectives[j]
			cur := front.Points[best].Objectives[j]
			if obj.Direction == config.DirectionMaximize {
				if v > cur {
					best = i
				}
			} else if v < cur {
				best = i
			}
		}
		add(best, fmt.Sprintf("Best %s", obj.Name))
	}

	// Fill remaining slots with the points farthest from everything
	// already picked, measured on the normalized minimized axes.
	norm := normalize(F)
	for len(picked) < 3 && len(picked) < n {
		best := -1
		bestDist := math.Inf(-1)
		for i := 0; i < n; i++ {
			if contains(picked, i) {
				continue
			}
			nearest := math.Inf(1)
			for _, p := range picked {
				if d := utils.EuclideanDistance(norm[i], norm[p]); d < nearest {
					nearest = d
				}
			}
			if nearest > bestDist {
				best = i
				bestDist = nearest
			}
		}
		if best < 0 {
			break
		}
		add(best, models.LabelMostDiverse)
	}

	candidates := make([]models.Candidate, len(picked))
	for k, idx := range picked {
		p := front.Points[idx]
		candidates[k] = models.Candidate{
			Index:     idx,
			Vector:    append([]float64(nil), p.Vector...),
			Predicted: append([]float64(nil), p.Objectives...),
			Label:     labels[k],
		}
	}
	return candidates
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
