package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/everstacklabs/modelprices/internal/catalog"
	"github.com/everstacklabs/modelprices/internal/config"
	"github.com/everstacklabs/modelprices/internal/pipeline"
	"github.com/everstacklabs/modelprices/internal/validate"
)

var (
	cfgFile    string
	outputPath string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(pipeline.ExitFailure)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "modelprices",
		Short:         "Snapshot LLM prices from the LiteLLM catalog",
		Long:          "Downloads the LiteLLM model price catalog, normalizes it to per-million-token prices, and writes model_prices.json.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outputPath != "" {
				cfg.OutputPath = outputPath
			}

			_, err = pipeline.New(cfg, pipeline.WithOutput(cmd.OutOrStdout())).Run(cmd.Context())
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./modelprices.yaml)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: model_prices.json)")

	cmd.AddCommand(validateCmd())
	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an existing snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			if path == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				path = cfg.OutputPath
			}

			snap, err := catalog.Load(path)
			if err != nil {
				return fmt.Errorf("loading snapshot: %w", err)
			}

			result := validate.ValidateSnapshot(snap)
			fmt.Fprintln(cmd.OutOrStdout(), validate.FormatResult(result))

			if result.HasErrors() {
				return fmt.Errorf("%s: %d validation errors", path, len(result.Errors()))
			}
			return nil
		},
	}

	cmd.Flags().String("path", "", "Path to snapshot (default: from config)")

	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	return cfg, nil
}
