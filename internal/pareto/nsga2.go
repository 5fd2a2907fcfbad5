// Package pareto searches the fitted surrogate for the Pareto-optimal
// trade-off front with NSGA-II, then picks a short list of candidate
// designs from the front for ground-truth verification.
//
// The search works internally in a minimization convention: maximize
// objectives are negated on the way in and restored on the way out, so
// dominance and crowding never need to know about directions.
package pareto

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/optimizer-core/internal/doe"
	"github.com/GoSim-25-26J-441/optimizer-core/internal/surrogate"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/logger"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/models"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/utils"
)

// Params controls the NSGA-II run.
type Params struct {
	PopulationSize int
	Generations    int
	CrossoverProb  float64
	// MutationProb is the per-variable mutation probability; zero or
	// negative selects the 1/n_var default.
	MutationProb float64
	EtaCrossover float64
	EtaMutation  float64
	Seed         int64
}

// DefaultParams returns the parameter set used when the caller does not
// override anything.
func DefaultParams() Params {
	return Params{
		PopulationSize: 100,
		Generations:    200,
		CrossoverProb:  0.9,
		MutationProb:   0,
		EtaCrossover:   15,
		EtaMutation:    20,
		Seed:           42,
	}
}

// individual is one member of the search population. The genotype x is
// continuous even for integer variables; rounding happens at surrogate
// query time.
type individual struct {
	x        []float64
	f        []float64
	rank     int
	crowding float64
}

// Run searches the surrogate for the non-dominated front of the problem's
// objectives. The returned front holds both natural-direction and
// minimized objective values; its vectors have integer variables rounded.
func Run(model *surrogate.Model, problem *config.Problem, params Params) (*models.ParetoResult, error) {
	if problem.NObj() == 0 {
		return nil, fmt.Errorf("pareto: problem has no objectives")
	}
	if params.PopulationSize < 4 {
		return nil, fmt.Errorf("pareto: population size %d is too small", params.PopulationSize)
	}
	if params.Generations < 1 {
		return nil, fmt.Errorf("pareto: need at least 1 generation, got %d", params.Generations)
	}
	popSize := params.PopulationSize
	if popSize%2 != 0 {
		popSize++
	}
	mutProb := params.MutationProb
	if mutProb <= 0 {
		mutProb = 1.0 / float64(problem.NVar())
	}

	rng := utils.NewRandSource(params.Seed)
	lower := problem.LowerBounds()
	upper := problem.UpperBounds()

	vectors, err := doe.GenerateLHS(problem, popSize, params.Seed)
	if err != nil {
		return nil, fmt.Errorf("pareto: seeding population: %w", err)
	}
	pop := make([]individual, popSize)
	for i, x := range vectors {
		pop[i] = individual{x: x}
	}
	if err := evaluate(model, problem, pop); err != nil {
		return nil, err
	}
	assignRanksAndCrowding(pop)

	for gen := 0; gen < params.Generations; gen++ {
		offspring := make([]individual, 0, popSize)
		for len(offspring) < popSize {
			p1 := tournament(rng, pop)
			p2 := tournament(rng, pop)
			var c1, c2 []float64
			if rng.Float64() < params.CrossoverProb {
				c1, c2 = sbxCrossover(rng, p1.x, p2.x, lower, upper, params.EtaCrossover)
			} else {
				c1 = append([]float64(nil), p1.x...)
				c2 = append([]float64(nil), p2.x...)
			}
			polynomialMutation(rng, c1, lower, upper, params.EtaMutation, mutProb)
			polynomialMutation(rng, c2, lower, upper, params.EtaMutation, mutProb)
			offspring = append(offspring, individual{x: c1}, individual{x: c2})
		}
		offspring = offspring[:popSize]
		if err := evaluate(model, problem, offspring); err != nil {
			return nil, err
		}

		combined := append(pop, offspring...)
		pop = survivorSelection(combined, popSize)
	}

	front := firstFront(pop)
	result := buildResult(front, problem)
	logger.Info("pareto search finished",
		"generations", params.Generations,
		"population", popSize,
		"front_size", len(result.Points))
	return result, nil
}

// evaluate fills in the minimized objective vector of every individual
// with one batched surrogate query. Integer variables are rounded before
// the query so the surrogate only ever sees admissible designs.
func evaluate(model *surrogate.Model, problem *config.Problem, pop []individual) error {
	X := make([][]float64, len(pop))
	for i := range pop {
		X[i] = problem.RoundIntegers(pop[i].x)
	}
	preds, err := model.Predict(X)
	if err != nil {
		return fmt.Errorf("pareto: surrogate query: %w", err)
	}
	for i := range pop {
		f := make([]float64, len(problem.Objectives))
		for j, obj := range problem.Objectives {
			v := preds[obj.Name][i]
			if obj.Direction == config.DirectionMaximize {
				v = -v
			}
			f[j] = v
		}
		pop[i].f = f
	}
	return nil
}

// dominates reports whether a dominates b in the minimization convention:
// no worse in every objective and strictly better in at least one.
func dominates(a, b []float64) bool {
	better := false
	for j := range a {
		if a[j] > b[j] {
			return false
		}
		if a[j] < b[j] {
			better = true
		}
	}
	return better
}

// nonDominatedSort partitions the population into fronts and stamps each
// individual's rank. Fronts are returned as index slices into pop.
func nonDominatedSort(pop []individual) [][]int {
	n := len(pop)
	dominationCount := make([]int, n)
	dominated := make([][]int, n)

	var first []int
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if dominates(pop[i].f, pop[j].f) {
				dominated[i] = append(dominated[i], j)
			} else if dominates(pop[j].f, pop[i].f) {
				dominationCount[i]++
			}
		}
		if dominationCount[i] == 0 {
			pop[i].rank = 0
			first = append(first, i)
		}
	}

	fronts := [][]int{first}
	for len(fronts[len(fronts)-1]) > 0 {
		current := fronts[len(fronts)-1]
		var next []int
		for _, i := range current {
			for _, j := range dominated[i] {
				dominationCount[j]--
				if dominationCount[j] == 0 {
					pop[j].rank = len(fronts)
					next = append(next, j)
				}
			}
		}
		fronts = append(fronts, next)
	}
	return fronts[:len(fronts)-1]
}

// assignCrowding computes the crowding distance of each individual in a
// single front. Boundary points get +Inf so they always survive
// truncation before interior points.
func assignCrowding(pop []individual, front []int) {
	for _, i := range front {
		pop[i].crowding = 0
	}
	if len(front) <= 2 {
		for _, i := range front {
			pop[i].crowding = math.Inf(1)
		}
		return
	}
	nObj := len(pop[front[0]].f)
	order := make([]int, len(front))
	for j := 0; j < nObj; j++ {
		copy(order, front)
		sort.SliceStable(order, func(a, b int) bool {
			return pop[order[a]].f[j] < pop[order[b]].f[j]
		})
		lo := pop[order[0]].f[j]
		hi := pop[order[len(order)-1]].f[j]
		pop[order[0]].crowding = math.Inf(1)
		pop[order[len(order)-1]].crowding = math.Inf(1)
		if hi-lo == 0 {
			continue
		}
		for k := 1; k < len(order)-1; k++ {
			gap := pop[order[k+1]].f[j] - pop[order[k-1]].f[j]
			pop[order[k]].crowding += gap / (hi - lo)
		}
	}
}

func assignRanksAndCrowding(pop []individual) {
	for _, front := range nonDominatedSort(pop) {
		assignCrowding(pop, front)
	}
}

// survivorSelection keeps the best popSize individuals from the combined
// parent+offspring pool, filling whole fronts and truncating the last
// one by crowding distance.
func survivorSelection(combined []individual, popSize int) []individual {
	fronts := nonDominatedSort(combined)
	next := make([]individual, 0, popSize)
	for _, front := range fronts {
		assignCrowding(combined, front)
		if len(next)+len(front) <= popSize {
			for _, i := range front {
				next = append(next, combined[i])
			}
			continue
		}
		remaining := append([]int(nil), front...)
		sort.SliceStable(remaining, func(a, b int) bool {
			return combined[remaining[a]].crowding > combined[remaining[b]].crowding
		})
		for _, i := range remaining[:popSize-len(next)] {
			next = append(next, combined[i])
		}
		break
	}
	return next
}

// tournament runs a binary tournament: lower rank wins, ties broken by
// larger crowding distance.
func tournament(rng *utils.RandSource, pop []individual) individual {
	a := pop[rng.Intn(len(pop))]
	b := pop[rng.Intn(len(pop))]
	if a.rank < b.rank {
		return a
	}
	if b.rank < a.rank {
		return b
	}
	if a.crowding >= b.crowding {
		return a
	}
	return b
}

// sbxCrossover performs simulated binary crossover between two parents,
// clamping both children to the variable bounds.
func sbxCrossover(rng *utils.RandSource, p1, p2, lower, upper []float64, eta float64) ([]float64, []float64) {
	c1 := append([]float64(nil), p1...)
	c2 := append([]float64(nil), p2...)
	for k := range p1 {
		if rng.Float64() > 0.5 {
			continue
		}
		if math.Abs(p1[k]-p2[k]) < 1e-14 {
			continue
		}
		u := rng.Float64()
		var beta float64
		if u <= 0.5 {
			beta = math.Pow(2*u, 1/(eta+1))
		} else {
			beta = math.Pow(1/(2*(1-u)), 1/(eta+1))
		}
		c1[k] = utils.ClampFloat64(0.5*((1+beta)*p1[k]+(1-beta)*p2[k]), lower[k], upper[k])
		c2[k] = utils.ClampFloat64(0.5*((1-beta)*p1[k]+(1+beta)*p2[k]), lower[k], upper[k])
	}
	return c1, c2
}

// polynomialMutation perturbs each variable with probability prob using
// Deb's polynomial mutation, clamped to the bounds.
func polynomialMutation(rng *utils.RandSource, x, lower, upper []float64, eta, prob float64) {
	for k := range x {
		if rng.Float64() >= prob {
			continue
		}
		span := upper[k] - lower[k]
		if span == 0 {
			continue
		}
		u := rng.Float64()
		var delta float64
		if u < 0.5 {
			delta = math.Pow(2*u, 1/(eta+1)) - 1
		} else {
			delta = 1 - math.Pow(2*(1-u), 1/(eta+1))
		}
		x[k] = utils.ClampFloat64(x[k]+delta*span, lower[k], upper[k])
	}
}

// firstFront returns the non-dominated members of the final population.
func firstFront(pop []individual) []individual {
	fronts := nonDominatedSort(pop)
	front := make([]individual, 0, len(fronts[0]))
	for _, i := range fronts[0] {
		front = append(front, pop[i])
	}
	return front
}

// buildResult converts the final front into the exported result form,
// deduplicating designs that round to the same vector.
func buildResult(front []individual, problem *config.Problem) *models.ParetoResult {
	result := &models.ParetoResult{
		ObjectiveNames: problem.ObjectiveNames(),
	}
	seen := make(map[string]bool)
	for _, ind := range front {
		vec := problem.RoundIntegers(ind.x)
		key := vectorKey(vec)
		if seen[key] {
			continue
		}
		seen[key] = true
		natural := FromMinimized(problem, ind.f)
		result.Points = append(result.Points, models.ParetoPoint{
			Vector:     vec,
			Objectives: natural,
			Minimized:  append([]float64(nil), ind.f...),
		})
	}
	return result
}

func vectorKey(x []float64) string {
	var sb strings.Builder
	for i, v := range x {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return sb.String()
}

// ToMinimized converts natural-direction objective values into the
// search's minimization convention.
func ToMinimized(problem *config.Problem, values []float64) []float64 {
	out := append([]float64(nil), values...)
	for j, obj := range problem.Objectives {
		if obj.Direction == config.DirectionMaximize {
			out[j] = -out[j]
		}
	}
	return out
}

// FromMinimized converts minimized objective values back to each
// objective's natural direction.
func FromMinimized(problem *config.Problem, values []float64) []float64 {
	// Negating maximize entries is its own inverse.
	return ToMinimized(problem, values)
}
