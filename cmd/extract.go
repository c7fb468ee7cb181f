package main

import (
	"context"
	"fmt"

	"verisearch/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Print the text the configured extractor pulls from a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger := zap.NewNop()
		if debug {
			if logger, err = zap.NewDevelopment(); err != nil {
				return err
			}
			defer logger.Sync()
		}

		text, err := extractPage(cmd.Context(), cfg, args[0], logger)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func extractPage(ctx context.Context, cfg *config.Config, pageURL string, logger *zap.Logger) (string, error) {
	httpClient, _, err := NewHttpClient(cfg.ProxyURL)
	if err != nil {
		return "", err
	}
	extractor, err := newExtractor(cfg, httpClient, logger)
	if err != nil {
		return "", err
	}
	return extractor.Extract(ctx, pageURL)
}
