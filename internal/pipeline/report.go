package pipeline

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/models"
)

// Markdown report fragments. Each formatter returns a self-contained
// block so callers can assemble whichever report they need.

func formatCell(v float64) string {
	if !models.IsNumeric(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4g", v)
}

// FormatSampleTable renders the DOE plan as a markdown table, one row
// per design vector.
func FormatSampleTable(problem *config.Problem, vectors [][]float64) string {
	var sb strings.Builder
	sb.WriteString("**DOE Sample Plan:**\n\n")
	sb.WriteString("| # |")
	for _, v := range problem.Variables {
		fmt.Fprintf(&sb, " %s |", v.Name)
	}
	sb.WriteString("\n|---|")
	for range problem.Variables {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for i, vec := range vectors {
		fmt.Fprintf(&sb, "| %d |", i+1)
		for _, v := range vec {
			fmt.Fprintf(&sb, " %s |", formatCell(v))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatResultsTable renders collected ground-truth samples, writing
// NaN for failed evaluations and a feasibility marker per row.
func FormatResultsTable(problem *config.Problem, samples []models.Sample) string {
	outputs := problem.OutputNames()

	var sb strings.Builder
	sb.WriteString("**DOE Results:**\n\n")
	sb.WriteString("| # |")
	for _, v := range problem.Variables {
		fmt.Fprintf(&sb, " %s |", v.Name)
	}
	for _, name := range outputs {
		fmt.Fprintf(&sb, " %s |", name)
	}
	sb.WriteString(" feasible |\n|---|")
	for i := 0; i < len(problem.Variables)+len(outputs)+1; i++ {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for i, s := range samples {
		fmt.Fprintf(&sb, "| %d |", i+1)
		for _, v := range s.Vector {
			fmt.Fprintf(&sb, " %s |", formatCell(v))
		}
		for _, name := range outputs {
			fmt.Fprintf(&sb, " %s |", formatCell(s.Outputs[name]))
		}
		if s.Feasible {
			sb.WriteString(" yes |\n")
		} else {
			sb.WriteString(" no |\n")
		}
	}
	return sb.String()
}

// FormatCandidateTable renders the verified candidates with predicted
// against actual objective values and the relative error.
func FormatCandidateTable(problem *config.Problem, candidates []models.Candidate) string {
	var sb strings.Builder
	sb.WriteString("**Candidate Designs:**\n\n")
	sb.WriteString("| candidate |")
	for _, v := range problem.Variables {
		fmt.Fprintf(&sb, " %s |", v.Name)
	}
	for _, obj := range problem.Objectives {
		fmt.Fprintf(&sb, " %s (pred) | %s (actual) | rel. err |", obj.Name, obj.Name)
	}
	sb.WriteString(" feasible |\n|---|")
	for i := 0; i < len(problem.Variables)+3*len(problem.Objectives)+1; i++ {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for _, c := range candidates {
		fmt.Fprintf(&sb, "| %s |", c.Label)
		for _, v := range c.Vector {
			fmt.Fprintf(&sb, " %s |", formatCell(v))
		}
		for j, obj := range problem.Objectives {
			fmt.Fprintf(&sb, " %s |", formatCell(c.Predicted[j]))
			if c.Verified {
				fmt.Fprintf(&sb, " %s | %s |",
					formatCell(c.Actual[obj.Name]),
					formatCell(c.RelativeError[obj.Name]))
			} else {
				sb.WriteString(" - | - |")
			}
		}
		if !c.Verified {
			sb.WriteString(" - |\n")
		} else if c.Feasible {
			sb.WriteString(" yes |\n")
		} else {
			sb.WriteString(" no |\n")
		}
	}
	return sb.String()
}

// FormatGateTable renders the quality-gate outcomes.
func FormatGateTable(gates []models.GateSignal) string {
	var sb strings.Builder
	sb.WriteString("**Quality Gates:**\n\n")
	sb.WriteString("| metric | subject | observed | threshold | passed |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, g := range gates {
		subject := g.Subject
		if subject == "" {
			subject = "-"
		}
		status := "no"
		if g.Passed {
			status = "yes"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			g.Metric, subject, formatCell(g.Observed), formatCell(g.Threshold), status)
	}
	return sb.String()
}

// FormatOutputSummary renders per-output summary statistics over the
// successful samples: min, max, mean and standard deviation.
func FormatOutputSummary(problem *config.Problem, samples []models.Sample) string {
	var sb strings.Builder
	sb.WriteString("**Output Summary (successful samples):**\n\n")
	sb.WriteString("| output | n | min | max | mean | stddev |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, name := range problem.OutputNames() {
		var values stats.Float64Data
		for _, s := range samples {
			if v, ok := s.Outputs[name]; ok && models.IsNumeric(v) {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			fmt.Fprintf(&sb, "| %s | 0 | - | - | - | - |\n", name)
			continue
		}
		min, _ := stats.Min(values)
		max, _ := stats.Max(values)
		mean, _ := stats.Mean(values)
		stddev, _ := stats.StandardDeviation(values)
		fmt.Fprintf(&sb, "| %s | %d | %s | %s | %s | %s |\n",
			name, len(values),
			formatCell(min), formatCell(max), formatCell(mean), formatCell(stddev))
	}
	return sb.String()
}

// FormatReport assembles the full run report in markdown.
func FormatReport(result *Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Optimization Report: %s\n\n", result.Problem.Design)
	sb.WriteString(FormatResultsTable(result.Problem, result.Samples))
	sb.WriteString("\n")
	sb.WriteString(FormatOutputSummary(result.Problem, result.Samples))
	sb.WriteString("\n")
	if len(result.Candidates) > 0 {
		sb.WriteString(FormatCandidateTable(result.Problem, result.Candidates))
		sb.WriteString("\n")
	}
	sb.WriteString(FormatGateTable(result.Gates))
	return sb.String()
}
