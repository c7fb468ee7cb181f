package main

import (
	"os/signal"
	"syscall"

	"verisearch/api"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		app, err := newApp(configPath, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("starting",
			zap.String("search_mode", app.cfg.Search.Mode),
			zap.String("llm_backend", app.cfg.LLM.Backend),
			zap.Bool("query_transform", app.cfg.LLM.QueryTransform))

		return api.NewServer(app.pipeline, app.cfg.AppPort, logger).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
