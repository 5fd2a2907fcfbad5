package models

import (
	"encoding/json"
	"math"
)

// IsNumeric reports whether v is a usable scalar. Failed evaluations record
// NaN for every output, which must never compare as satisfying anything.
func IsNumeric(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// OutputMap maps output names (objectives and constraints) to extracted
// scalars. Non-numeric entries mark failed evaluations. JSON encoding maps
// NaN/Inf to null and back, since bare NaN is not representable in JSON.
type OutputMap map[string]float64

// MarshalJSON implements json.Marshaler
func (m OutputMap) MarshalJSON() ([]byte, error) {
	out := make(map[string]*float64, len(m))
	for name, v := range m {
		if IsNumeric(v) {
			val := v
			out[name] = &val
		} else {
			out[name] = nil
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler
func (m *OutputMap) UnmarshalJSON(data []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(OutputMap, len(raw))
	for name, v := range raw {
		if v == nil {
			out[name] = math.NaN()
		} else {
			out[name] = *v
		}
	}
	*m = out
	return nil
}

// Sample is one ground-truth evaluation: a design vector, the extracted
// outputs by name, and the derived feasibility flag. Immutable once produced.
type Sample struct {
	Vector   []float64 `json:"vector"`
	Outputs  OutputMap `json:"outputs"`
	Feasible bool      `json:"feasible"`
}

// ParetoPoint is one non-dominated solution found by the search.
// Objectives holds values in each objective's natural direction;
// Minimized holds the same values in the search's minimization convention.
type ParetoPoint struct {
	Vector     []float64 `json:"vector"`
	Objectives []float64 `json:"objectives"`
	Minimized  []float64 `json:"minimized"`
}

// ParetoResult is the deduplicated non-dominated set of a search run.
type ParetoResult struct {
	ObjectiveNames []string      `json:"objective_names"`
	Points         []ParetoPoint `json:"points"`
}

// Candidate selection labels.
const (
	LabelKneePoint   = "Knee point"
	LabelMostDiverse = "Most diverse"
)

// Candidate is a representative Pareto point chosen for verification.
// Actual, Feasible and RelativeError are populated by the verification
// harness; before verification Verified is false and they are zero-valued.
type Candidate struct {
	Index     int       `json:"index"`
	Vector    []float64 `json:"vector"`
	Predicted []float64 `json:"predicted"`
	Label     string    `json:"label"`

	Verified      bool      `json:"verified"`
	Actual        OutputMap `json:"actual,omitempty"`
	Feasible      bool      `json:"feasible"`
	RelativeError OutputMap `json:"relative_error,omitempty"`
}

// Gate metric identifiers.
const (
	MetricFeasibleRatio     = "feasible_ratio"
	MetricLOORSquared       = "loo_r2"
	MetricVerificationError = "verification_error"
)

// GateSignal is a structured quality-gate outcome. Gates never retry
// anything; they surface a decision to the operator.
type GateSignal struct {
	Metric    string  `json:"metric"`
	Subject   string  `json:"subject,omitempty"`
	Observed  float64 `json:"observed"`
	Threshold float64 `json:"threshold"`
	Passed    bool    `json:"passed"`
}

// MarshalJSON implements json.Marshaler. A non-numeric observed value
// (a gate computed from a failed evaluation) encodes as null.
func (g GateSignal) MarshalJSON() ([]byte, error) {
	var observed *float64
	if IsNumeric(g.Observed) {
		v := g.Observed
		observed = &v
	}
	return json.Marshal(struct {
		Metric    string   `json:"metric"`
		Subject   string   `json:"subject,omitempty"`
		Observed  *float64 `json:"observed"`
		Threshold float64  `json:"threshold"`
		Passed    bool     `json:"passed"`
	}{g.Metric, g.Subject, observed, g.Threshold, g.Passed})
}
