package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/optimizer-core/internal/doe"
	"github.com/GoSim-25-26J-441/optimizer-core/internal/pipeline"
	"github.com/GoSim-25-26J-441/optimizer-core/pkg/config"
)

var sampleCmd = &cobra.Command{
	Use:   "sample <problem.yaml>",
	Short: "Generate and print a DOE sample plan without evaluating it",
	Long: `Sample generates the Latin hypercube sample plan for a problem and
prints it as a markdown table. No simulator is contacted; use this to
inspect the coverage of the design space before spending evaluations.`,
	Args: cobra.ExactArgs(1),
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().Int("samples", 20, "number of design vectors to generate")
	sampleCmd.Flags().Int64("seed", 42, "random seed")

	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, args []string) error {
	problem, err := config.LoadProblem(args[0])
	if err != nil {
		return err
	}

	n, _ := cmd.Flags().GetInt("samples")
	seed, _ := cmd.Flags().GetInt64("seed")

	vectors, err := doe.GenerateLHS(problem, n, seed)
	if err != nil {
		return err
	}

	fmt.Println(pipeline.FormatSampleTable(problem, vectors))
	return nil
}
