package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/seisops/availability/internal/adapter/http"
	kafkaadapter "github.com/seisops/availability/internal/adapter/kafka"
	"github.com/seisops/availability/internal/adapter/sds"
	"github.com/seisops/availability/internal/config"
	"github.com/seisops/availability/internal/domain"
	"github.com/seisops/availability/internal/observability"
	"github.com/seisops/availability/internal/scanner"
	"github.com/spf13/cobra"
)

func newComputeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compute",
		Short: "Scan the archive and write availability tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompute(cmd.Context())
		},
	}
}

func runCompute(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateCompute(); err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	metrics := observability.NewMetrics()

	archive := sds.New(cfg.Archive.Path, logger)
	store, closeStore, err := openStore(cfg, domain.SourceName(cfg.Compute.Channel))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("store close error", "error", err)
		}
	}()

	opts := scanner.Options{
		Pattern:     cfg.Compute.Channel,
		Workers:     cfg.Compute.Workers,
		UnitTimeout: cfg.Compute.ReadTimeout,
	}
	if len(cfg.Compute.Kafka.Brokers) > 0 {
		publisher := kafkaadapter.NewPublisher(cfg.Compute.Kafka.Brokers, cfg.Compute.Kafka.Topic, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		opts.Publisher = publisher
		logger.Info("kafka publishing enabled",
			"brokers", cfg.Compute.Kafka.Brokers, "topic", cfg.Compute.Kafka.Topic)
	}

	sc := scanner.New(archive, store, logger, metrics, opts)

	units, err := scanner.UnitsFor(cfg.Compute.Stations, cfg.Compute.Years)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Compute.MetricsAddr != "" {
		srv := httpadapter.NewServer(cfg.Compute.MetricsAddr, sc, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	summary, err := sc.Run(ctx, units)
	if err != nil {
		return err
	}
	if len(summary.Failed) > 0 && len(summary.Completed) == 0 {
		return fmt.Errorf("all %d scan units failed", len(summary.Failed))
	}
	return nil
}
