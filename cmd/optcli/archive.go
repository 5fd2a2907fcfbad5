package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GoSim-25-26J-441/optimizer-core/internal/archive"
	"github.com/GoSim-25-26J-441/optimizer-core/internal/pipeline"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse archived optimization runs",
	Long: `Archive lists, shows, and deletes optimization runs stored in the
run archive database. Showing a run renders the same markdown report
the run produced when it finished.`,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs",
	RunE:  runArchiveList,
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Render the report of an archived run",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveShow,
}

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete an archived run",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveDelete,
}

func init() {
	archiveCmd.PersistentFlags().String("db", "optimizer.db", "archive database path")
	viper.BindPFlag("archive_db", archiveCmd.PersistentFlags().Lookup("db"))

	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	archiveCmd.AddCommand(archiveDeleteCmd)
	rootCmd.AddCommand(archiveCmd)
}

func openArchive() (*archive.Store, error) {
	return archive.NewStore(viper.GetString("archive_db"))
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.ListRuns(context.Background())
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No archived runs.")
		return nil
	}

	fmt.Println("| run | design | created | samples | candidates | feasible ratio |")
	fmt.Println("|---|---|---|---|---|---|")
	for _, sum := range summaries {
		fmt.Printf("| %s | %s | %s | %d | %d | %.2f |\n",
			sum.ID, sum.Design, sum.CreatedAt.Format(time.RFC3339),
			sum.SampleCount, sum.CandidateCount, sum.FeasibleRatio)
	}
	return nil
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.LoadRun(context.Background(), args[0])
	if err != nil {
		return err
	}
	fmt.Println(pipeline.FormatReport(result))
	return nil
}

func runArchiveDelete(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteRun(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Println("Deleted", args[0])
	return nil
}
