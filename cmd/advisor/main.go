package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ai-trade-advisor/internal/store"
)

const appVersion = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "advisor",
		Short: "AI-driven trading signal advisor",
		Long: `advisor fetches market prices and news, asks a configured model for a
trading signal, fuses it with a moving-average trend and prints a
BUY/SELL/HOLD decision with take-profit and stop-loss levels.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "config.yaml", "Configuration file path")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze SYMBOLS",
		Short: "Produce a decision for one or more symbols",
		Long: `Run the decision pipeline for a comma-separated list of symbols.
Example: advisor analyze bitcoin,ethereum --currency usd --take-profit 0.03`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0])
		},
	}

	cmd.Flags().String("currency", "", "Fiat currency for pricing (default from config)")
	cmd.Flags().Int("days", 0, "Days of price history for the moving average")
	cmd.Flags().Float64("take-profit", 0, "Take-profit percentage, e.g. 0.02 for 2%")
	cmd.Flags().Float64("stop-loss", 0, "Stop-loss percentage, e.g. 0.01 for 1%")
	cmd.Flags().Bool("logfile", false, "Append decisions to the daily decision log")

	return cmd
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Inspect and validate the effective configuration after defaults, file and environment are merged.",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective merged configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEffectiveConfig(cmd)
			if err != nil {
				return err
			}
			// credentials carry yaml:"-" and never print
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadEffectiveConfig(cmd); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	})

	return configCmd
}

func loadEffectiveConfig(cmd *cobra.Command) (*store.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	return store.LoadConfig(configPath)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ai-trade-advisor v"+appVersion)
		},
	}
}
