package utils

import (
	"math"
	"testing"
)

func TestClampFloat64(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{"Below min", -1.5, 0.0, 1.0, 0.0},
		{"Above max", 2.5, 0.0, 1.0, 1.0},
		{"Within range", 0.5, 0.0, 1.0, 0.5},
		{"At min", 0.0, 0.0, 1.0, 0.0},
		{"At max", 1.0, 0.0, 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampFloat64(tt.value, tt.min, tt.max); got != tt.expected {
				t.Errorf("ClampFloat64(%v, %v, %v) = %v, want %v", tt.value, tt.min, tt.max, got, tt.expected)
			}
		})
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("Mean = %v, want 2.5", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean of empty slice = %v, want 0", got)
	}
}

func TestEuclideanDistance(t *testing.T) {
	got := EuclideanDistance([]float64{0, 0}, []float64{3, 4})
	if math.Abs(got-5.0) > 1e-12 {
		t.Errorf("EuclideanDistance = %v, want 5.0", got)
	}
	if d := EuclideanDistance([]float64{1}, []float64{1}); d != 0 {
		t.Errorf("EuclideanDistance of identical vectors = %v, want 0", d)
	}
}

func TestRound(t *testing.T) {
	if got := Round(1.23456, 2); got != 1.23 {
		t.Errorf("Round(1.23456, 2) = %v, want 1.23", got)
	}
	if got := Round(1.5, 0); got != 2.0 {
		t.Errorf("Round(1.5, 0) = %v, want 2", got)
	}
}
