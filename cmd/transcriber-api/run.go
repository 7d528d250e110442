package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apiserver "github.com/voxjob/transcriber/internal/api_server"
	"github.com/voxjob/transcriber/internal/config"
	"github.com/voxjob/transcriber/internal/dispatch"
	"github.com/voxjob/transcriber/internal/events"
	handlers "github.com/voxjob/transcriber/internal/handlers/v1alpha1"
	"github.com/voxjob/transcriber/internal/service"
	"github.com/voxjob/transcriber/internal/store"
	"github.com/voxjob/transcriber/pkg/metrics"
)

const drainTimeout = 30 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the transcriber api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New(envFile)
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		defer initLogger(cfg)()

		zap.S().Info("Starting API service")
		defer zap.S().Info("API service stopped")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		zap.S().Infow("Initializing data store", "results", cfg.Storage.ResultsDir, "uploads", cfg.Storage.UploadsDir)
		s, err := store.NewStore(cfg.Storage.ResultsDir, cfg.Storage.UploadsDir)
		if err != nil {
			return fmt.Errorf("initializing data store: %w", err)
		}
		prometheus.MustRegister(metrics.NewJobsCollector(s))

		locator, err := newLocator(cfg)
		if err != nil {
			return err
		}

		w, err := newEventWriter(cfg)
		if err != nil {
			return fmt.Errorf("creating event writer: %w", err)
		}
		producer := events.NewEventProducer(w, events.WithOutputTopic(cfg.Kafka.Topic))
		defer func() {
			if err := producer.Close(); err != nil {
				zap.S().Warnw("failed to close event producer", "error", err)
			}
		}()

		opts, err := dispatcherOptions(cfg)
		if err != nil {
			return fmt.Errorf("configuring path mapping: %w", err)
		}
		opts = append(opts, dispatch.WithEventWriter(producer))

		if cfg.S3.Enabled() {
			m, err := newMirror(ctx, cfg, s)
			if err != nil {
				return fmt.Errorf("creating artifact mirror: %w", err)
			}
			opts = append(opts, dispatch.WithMirror(m))
			zap.S().Infow("mirroring artifacts", "endpoint", cfg.S3.Endpoint, "bucket", cfg.S3.Bucket)
		}

		pool := dispatch.NewPool(cfg.Worker.Concurrency, cfg.Worker.QueueSize)
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), drainTimeout)
			defer stopCancel()
			if err := pool.Stop(stopCtx); err != nil {
				zap.S().Warnw("dispatch pool did not drain", "error", err)
			}
		}()

		dispatcher := dispatch.NewDispatcher(locator, pool, s.Job(), opts...)
		h := handlers.NewServiceHandler(
			service.NewJobService(s, dispatcher, producer),
			service.NewStatusService(s),
			service.NewResultService(s),
			cfg.Service.MaxUploadSize,
		)

		errCh := make(chan error, 2)
		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				errCh <- fmt.Errorf("creating listener: %w", err)
				return
			}

			server := apiserver.New(cfg, h, listener)
			if err := server.Run(ctx); err != nil {
				errCh <- fmt.Errorf("running api server: %w", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				errCh <- fmt.Errorf("creating metrics listener: %w", err)
				return
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener)
			if err := metricsServer.Run(ctx); err != nil {
				errCh <- fmt.Errorf("running metrics server: %w", err)
			}
		}()

		<-ctx.Done()
		select {
		case err := <-errCh:
			return err
		default:
			return nil
		}
	},
}
