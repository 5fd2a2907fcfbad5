package config

import (
	"strings"
	"testing"
)

const validProblemYAML = `
design: simple.ork
variables:
  - name: nose_length
    component: Nose cone
    property: length
    lower_bound: 0.1
    upper_bound: 0.3
    unit: m
  - name: fin_count
    component: Fin set
    property: fin_count
    lower_bound: 3
    upper_bound: 6
    is_integer: true
objectives:
  - name: apogee
    series: altitude
    extraction: max
    direction: maximize
constraints:
  - name: stability
    series: stability_margin
    extraction: min
    operator: ge
    threshold: 1.5
`

func TestParseProblemYAML(t *testing.T) {
	problem, err := ParseProblemYAMLString(validProblemYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if problem.NVar() != 2 {
		t.Errorf("expected 2 variables, got %d", problem.NVar())
	}
	if problem.NObj() != 1 {
		t.Errorf("expected 1 objective, got %d", problem.NObj())
	}
	if problem.NConstr() != 1 {
		t.Errorf("expected 1 constraint, got %d", problem.NConstr())
	}

	lower := problem.LowerBounds()
	upper := problem.UpperBounds()
	if lower[0] != 0.1 || upper[0] != 0.3 {
		t.Errorf("unexpected bounds for variable 0: [%g, %g]", lower[0], upper[0])
	}
	if !problem.Variables[1].IsInteger {
		t.Error("expected fin_count to be integer-flagged")
	}
	if problem.Objectives[0].Direction != DirectionMaximize {
		t.Errorf("expected maximize direction, got %s", problem.Objectives[0].Direction)
	}
}

func TestParseProblemYAMLInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "no objectives",
			yaml: `
variables:
  - {name: x, lower_bound: 0, upper_bound: 1}
`,
			wantErr: "at least one objective",
		},
		{
			name: "inverted bounds",
			yaml: `
variables:
  - {name: x, lower_bound: 2, upper_bound: 1}
objectives:
  - {name: f, series: s, extraction: max, direction: maximize}
`,
			wantErr: "lower_bound",
		},
		{
			name: "duplicate variable names",
			yaml: `
variables:
  - {name: x, lower_bound: 0, upper_bound: 1}
  - {name: x, lower_bound: 0, upper_bound: 1}
objectives:
  - {name: f, series: s, extraction: max, direction: maximize}
`,
			wantErr: "duplicate variable name",
		},
		{
			name: "objective and constraint name collision",
			yaml: `
variables:
  - {name: x, lower_bound: 0, upper_bound: 1}
objectives:
  - {name: f, series: s, extraction: max, direction: maximize}
constraints:
  - {name: f, series: s, extraction: min, operator: ge, threshold: 1}
`,
			wantErr: "collides",
		},
		{
			name: "bad extraction",
			yaml: `
variables:
  - {name: x, lower_bound: 0, upper_bound: 1}
objectives:
  - {name: f, series: s, extraction: median, direction: maximize}
`,
			wantErr: "invalid extraction",
		},
		{
			name: "bad operator",
			yaml: `
variables:
  - {name: x, lower_bound: 0, upper_bound: 1}
objectives:
  - {name: f, series: s, extraction: max, direction: maximize}
constraints:
  - {name: g, series: s, extraction: min, operator: gt, threshold: 1}
`,
			wantErr: "invalid operator",
		},
		{
			name:    "malformed yaml",
			yaml:    "variables: [unterminated",
			wantErr: "parse problem yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProblemYAMLString(tt.yaml)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestRoundIntegers(t *testing.T) {
	problem, err := ParseProblemYAMLString(validProblemYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rounded := problem.RoundIntegers([]float64{0.15, 4.6})
	if rounded[0] != 0.15 {
		t.Errorf("continuous variable changed: %g", rounded[0])
	}
	if rounded[1] != 5.0 {
		t.Errorf("integer variable not rounded: %g", rounded[1])
	}
}

func TestNewCatalogVariable(t *testing.T) {
	v, ok := NewCatalogVariable("fin_count", "Fin set", 3, 6)
	if !ok {
		t.Fatal("expected fin_count in catalog")
	}
	if !v.IsInteger {
		t.Error("expected fin_count to be integer-flagged")
	}
	if v.Component != "Fin set" {
		t.Errorf("unexpected component: %s", v.Component)
	}

	if _, ok := NewCatalogVariable("warp_factor", "Engine", 1, 9); ok {
		t.Error("expected unknown name to miss the catalog")
	}
}
