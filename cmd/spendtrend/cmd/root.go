// Package cmd provides CLI commands for spendtrend.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spendtrend/internal/cli"
	"spendtrend/internal/config"
	"spendtrend/internal/log"
)

var (
	cfgFile     string
	debug       bool
	aliasFile   string
	ledgerFiles []string

	logger *log.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "spendtrend",
	Short: "Analyze personal spending exports",
	Long: `spendtrend loads transaction exports, cleans them and reports on
where the money went.

It supports:
- Headline figures, category rankings and monthly series
- Checking the latest month against a budget
- Projecting the next months with a linear trend
- Serving the same analyses over a JSON API

Example:
  spendtrend summary --file january.csv --file february.csv
  spendtrend budget --file export.csv --threshold 800
  spendtrend forecast --months 6 --category Food
  spendtrend serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.LoadEnvFile(cfgFile); err != nil {
			return err
		}
		logger = cli.SetupLogger(os.Getenv("LOG_LEVEL"), debug)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "env file to load (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&aliasFile, "aliases", "", "YAML file with extra header aliases (overrides ALIAS_FILE)")
	rootCmd.PersistentFlags().StringArrayVarP(&ledgerFiles, "file", "f", nil, "CSV ledger to load; repeat to combine several")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(budgetCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads and validates the environment configuration. An
// --aliases flag takes precedence over ALIAS_FILE.
func loadConfig() (*config.Config, error) {
	if aliasFile != "" {
		if err := os.Setenv("ALIAS_FILE", aliasFile); err != nil {
			return nil, err
		}
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
