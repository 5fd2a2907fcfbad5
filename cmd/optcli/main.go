// Package main is the entry point for the optcli command line tool. It
// drives design optimization runs from problem definition files and
// inspects the run archive.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GoSim-25-26J-441/optimizer-core/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "optcli",
	Short: "Surrogate-assisted design optimization from the command line",
	Long: `optcli runs the design optimization pipeline against a problem
definition: sample the design space, collect ground truth from the
simulator, fit a surrogate model, search it for the Pareto front, and
verify the selected candidate designs.

Each stage is also available standalone; use the sample subcommand to
inspect a DOE plan and the archive subcommand to browse past runs.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		logger.SetDefault(logger.NewText(level, os.Stderr))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./optcli.yaml or ~/.config/optcli/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("optcli")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "optcli"))
		}
	}

	viper.SetEnvPrefix("OPTCLI")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
