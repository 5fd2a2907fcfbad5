package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GoSim-25-26J-441/optimizer-core/internal/archive"
	"github.com/GoSim-25-26J-441/optimizer-core/internal/pipeline"
	"github.com/GoSim-25-26J-441/optimizer-core/internal/sim"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/utils"
)

var runCmd = &cobra.Command{
	Use:   "run <problem.yaml>",
	Short: "Execute the full optimization pipeline for a problem",
	Long: `Run samples the design space, evaluates every sample against the
simulator, fits a surrogate model, searches it for the Pareto front,
and verifies the selected candidates against the simulator. The run
report is written as markdown and the run can be archived for later
inspection.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("evaluator-spec", "", "path to an analytic evaluator yaml (required)")
	runCmd.Flags().Int("samples", 0, "DOE sample count (0 uses the default)")
	runCmd.Flags().Int64("seed", 0, "random seed for sampling and search (0 uses the default)")
	runCmd.Flags().Int("population", 0, "search population size (0 uses the default)")
	runCmd.Flags().Int("generations", 0, "search generation count (0 uses the default)")
	runCmd.Flags().String("report", "", "write the markdown report to this file instead of stdout")
	runCmd.Flags().String("db", "", "archive database path (empty disables archiving)")
	viper.BindPFlag("db", runCmd.Flags().Lookup("db"))

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	problem, err := config.LoadProblem(args[0])
	if err != nil {
		return err
	}
	problemYAML, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	specPath, _ := cmd.Flags().GetString("evaluator-spec")
	if specPath == "" {
		return fmt.Errorf("--evaluator-spec is required")
	}
	specData, err := os.ReadFile(specPath)
	if err != nil {
		return fmt.Errorf("reading evaluator spec: %w", err)
	}
	spec, err := sim.ParseAnalyticYAML(specData)
	if err != nil {
		return fmt.Errorf("parsing evaluator spec: %w", err)
	}

	opts := pipeline.DefaultOptions()
	if n, _ := cmd.Flags().GetInt("samples"); n > 0 {
		opts.SampleCount = n
	}
	if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
		opts.Seed = seed
		opts.Search.Seed = seed
	}
	if n, _ := cmd.Flags().GetInt("population"); n > 0 {
		opts.Search.PopulationSize = n
	}
	if n, _ := cmd.Flags().GetInt("generations"); n > 0 {
		opts.Search.Generations = n
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := sim.NewSession(sim.NewAnalyticEvaluator(spec))
	defer session.Close()

	result, err := pipeline.New(session, opts).Run(ctx, problem)
	if err != nil {
		return err
	}

	report := pipeline.FormatReport(result)
	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Report written to", path)
	} else {
		fmt.Println(report)
	}

	if dbPath := viper.GetString("db"); dbPath != "" {
		store, err := archive.NewStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		runID := utils.GenerateRunID()
		if err := store.SaveRun(ctx, runID, string(problemYAML), result); err != nil {
			return fmt.Errorf("archiving run: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Archived as", runID)
	}

	if !result.GatesPassed() {
		fmt.Fprintln(os.Stderr, "Warning: one or more quality gates failed; see the report")
	}
	return nil
}
