package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "verisearch",
	Short: "Search the web and validate the answer with an LLM",
	Long: `verisearch answers a query by rewriting it for a search engine, scraping
the results page, and asking an LLM to synthesize an answer with references.

Commands:
  verisearch serve        Run the HTTP API (POST /search, GET /health)
  verisearch ask <query>  Run a single query and print the JSON response
  verisearch extract <url> Print the text extracted from one page`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to a YAML config file (environment variables override it)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable development logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
