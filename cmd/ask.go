package main

import (
	"encoding/json"
	"errors"
	"os"
	"strings"

	"verisearch/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Run one query and print the JSON response",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zap.NewNop()
		if debug {
			var err error
			if logger, err = zap.NewDevelopment(); err != nil {
				return err
			}
			defer logger.Sync()
		}

		app, err := newApp(configPath, logger)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		resp, err := app.pipeline.Run(cmd.Context(), strings.Join(args, " "))
		if errors.Is(err, pipeline.ErrNoResults) {
			return enc.Encode(map[string]string{"error": err.Error()})
		}
		if err != nil {
			return err
		}
		return enc.Encode(resp)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
