package main

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/voxjob/transcriber/internal/config"
	"github.com/voxjob/transcriber/internal/dispatch"
	"github.com/voxjob/transcriber/internal/events"
	"github.com/voxjob/transcriber/internal/mirror"
	"github.com/voxjob/transcriber/internal/store"
	"github.com/voxjob/transcriber/internal/worker"
	"github.com/voxjob/transcriber/internal/worker/docker"
	"github.com/voxjob/transcriber/internal/worker/local"
	"github.com/voxjob/transcriber/pkg/log"
)

// initLogger replaces the global zap logger and returns the undo func.
func initLogger(cfg *config.Config) func() {
	logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel), cfg.Service.LogFormat)
	undo := zap.ReplaceGlobals(logger)
	return func() {
		_ = logger.Sync()
		undo()
	}
}

func newLocator(cfg *config.Config) (worker.Locator, error) {
	switch cfg.Worker.Locator {
	case "local":
		return local.NewLocator(), nil
	case "container":
		cli, err := docker.NewClient()
		if err != nil {
			return nil, fmt.Errorf("creating docker client: %w", err)
		}
		return docker.NewStaticLocator(cli, cfg.Worker.Container), nil
	default:
		cli, err := docker.NewClient()
		if err != nil {
			return nil, fmt.Errorf("creating docker client: %w", err)
		}
		return docker.NewLabelLocator(cli, cfg.Worker.Project), nil
	}
}

func newEventWriter(cfg *config.Config) (events.Writer, error) {
	if !cfg.Kafka.Enabled() {
		return &events.StdoutWriter{}, nil
	}
	return events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.ClientID, cfg.Kafka.Version)
}

func newMirror(ctx context.Context, cfg *config.Config, s store.Store) (*mirror.MinioMirror, error) {
	m, err := mirror.NewMinioMirror(
		s.Artifact(),
		mirror.WithEndpoint(cfg.S3.Endpoint),
		mirror.WithBucket(cfg.S3.Bucket),
		mirror.WithCredentials(cfg.S3.AccessKey, cfg.S3.SecretAccessKey),
		mirror.WithPrefix(cfg.S3.Prefix),
		mirror.WithSSL(cfg.S3.UseSSL),
	)
	if err != nil {
		return nil, err
	}
	if err := m.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// dispatcherOptions maps the worker configuration onto the dispatcher.
// The local locator shares the orchestrator filesystem, so paths are not translated.
func dispatcherOptions(cfg *config.Config) ([]dispatch.DispatcherOption, error) {
	opts := []dispatch.DispatcherOption{
		dispatch.WithService(cfg.Worker.Service),
		dispatch.WithCommand(cfg.Worker.CommandArgs()),
		dispatch.WithExecutionTimeout(cfg.Worker.ExecutionTimeout),
	}
	if cfg.Worker.Locator == "local" {
		return opts, nil
	}

	inputs, err := dispatch.NewPathMapper(cfg.Storage.UploadsDir, cfg.Worker.VideosDir)
	if err != nil {
		return nil, err
	}
	results, err := dispatch.NewPathMapper(cfg.Storage.ResultsDir, cfg.Worker.ResultsDir)
	if err != nil {
		return nil, err
	}
	return append(opts, dispatch.WithInputMapping(inputs), dispatch.WithResultMapping(results)), nil
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
