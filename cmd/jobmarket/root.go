package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/datajobs/jobmarket/internal/config"
)

var (
	cfgPath string
	debug   bool
	refresh bool
)

var rootCmd = &cobra.Command{
	Use:   "jobmarket",
	Short: "One-shot job-market analysis",
	Long:  "Jobmarket loads a job-postings dataset, computes market insights,\nrenders charts, and exports BI-ready tables in a single run.",
	// Default to `run` so that `jobmarket` with no args performs the analysis.
	RunE: runAnalysis,

	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&refresh, "refresh", false, "ignore the local dataset cache and re-download")
}

// loadConfig resolves the config. An explicit --config path must exist; the
// implicit ./config.yaml is optional and its absence means defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.Load("config.yaml")
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}
