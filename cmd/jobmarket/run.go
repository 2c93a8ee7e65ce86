package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/datajobs/jobmarket/internal/analyze"
	"github.com/datajobs/jobmarket/internal/chart"
	"github.com/datajobs/jobmarket/internal/export"
	"github.com/datajobs/jobmarket/internal/model"
	"github.com/datajobs/jobmarket/internal/pipeline"
	"github.com/datajobs/jobmarket/internal/report"
	"github.com/datajobs/jobmarket/internal/source"
	"github.com/datajobs/jobmarket/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full analysis",
	Long:  "Load the dataset, clean it, compute aggregates and a 6-month forecast,\nrender charts, and export CSV tables.",
	RunE:  runAnalysis,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"dataset", cfg.Dataset.URL,
		"charts_dir", cfg.Output.ChartsDir,
		"exports_dir", cfg.Output.ExportsDir,
		"sample_size", cfg.Sample.Size,
	)

	var cache model.PostingCache
	if cfg.Dataset.CachePath != "" {
		sqlCache, err := store.NewSQLiteCache(cfg.Dataset.CachePath)
		if err != nil {
			logger.Error("failed to open dataset cache", "error", err)
			os.Exit(1)
		}
		defer sqlCache.Close()
		cache = sqlCache
	}

	httpClient := &http.Client{Timeout: cfg.Dataset.Timeout}
	src := source.NewHTTPSource(cfg.Dataset.URL, httpClient)

	p := pipeline.New(
		src,
		cache,
		refresh,
		analyze.Limits{
			Categories: cfg.TopN.Categories,
			Companies:  cfg.TopN.Companies,
			Locations:  cfg.TopN.Locations,
		},
		chart.NewRenderer(cfg.Output.ChartsDir),
		export.NewExporter(cfg.Output.ExportsDir, cfg.Sample.Size, cfg.Sample.Seed),
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := p.Run(ctx)
	if err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	fmt.Println(report.Render(result.Cleaned, result.Summary, result.Forecast))
	logger.Info("analysis complete",
		"charts_dir", cfg.Output.ChartsDir,
		"exports", len(result.Exports),
	)
	return nil
}
