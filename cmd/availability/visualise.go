package main

import (
	"context"
	"path/filepath"

	"github.com/seisops/availability/internal/config"
	"github.com/seisops/availability/internal/domain"
	"github.com/seisops/availability/internal/observability"
	"github.com/seisops/availability/internal/viz"
	"github.com/spf13/cobra"
)

func newVisualiseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "visualise",
		Short: "Render persisted availability tables as an HTML bar chart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVisualise(cmd.Context())
		},
	}
}

func runVisualise(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateVisualise(); err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	start, end, err := cfg.Visualise.Window()
	if err != nil {
		return err
	}

	source := domain.SourceName(cfg.Visualise.Channel)
	store, closeStore, err := openStore(cfg, source)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("store close error", "error", err)
		}
	}()

	loader := viz.NewLoader(store, logger)
	series, err := loader.LoadSeries(ctx, cfg.Visualise.Stations, start, end)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.Product.Path, "plots", source, "availability",
		cfg.Visualise.Filename+".html")
	if err := viz.WriteHTML(viz.RenderBarChart(series, start, end), path); err != nil {
		return err
	}

	logger.Info("availability chart written", "path", path, "stations", len(series))
	return nil
}
