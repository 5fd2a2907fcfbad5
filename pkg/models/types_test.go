package models

import (
	"encoding/json"
	"math"
	"testing"
)

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want bool
	}{
		{"Finite", 1.5, true},
		{"Zero", 0, true},
		{"NaN", math.NaN(), false},
		{"PosInf", math.Inf(1), false},
		{"NegInf", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNumeric(tt.v); got != tt.want {
				t.Errorf("IsNumeric(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestOutputMapJSONRoundTrip(t *testing.T) {
	m := OutputMap{
		"apogee":    123.4,
		"stability": math.NaN(),
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back OutputMap
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if back["apogee"] != 123.4 {
		t.Errorf("apogee = %v, want 123.4", back["apogee"])
	}
	if !math.IsNaN(back["stability"]) {
		t.Errorf("stability = %v, want NaN", back["stability"])
	}
}

func TestSampleJSONWithFailedOutputs(t *testing.T) {
	s := Sample{
		Vector:   []float64{0.1, 0.2},
		Outputs:  OutputMap{"apogee": math.NaN()},
		Feasible: false,
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back Sample
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.Feasible {
		t.Error("expected infeasible sample")
	}
	if !math.IsNaN(back.Outputs["apogee"]) {
		t.Errorf("apogee = %v, want NaN", back.Outputs["apogee"])
	}
}

func TestGateSignalJSONWithNaNObserved(t *testing.T) {
	g := GateSignal{
		Metric:    MetricVerificationError,
		Subject:   "apogee",
		Observed:  math.NaN(),
		Threshold: 0.1,
		Passed:    false,
	}

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if raw["observed"] != nil {
		t.Errorf("observed = %v, want null", raw["observed"])
	}
	if raw["passed"] != false {
		t.Errorf("passed = %v, want false", raw["passed"])
	}
}
