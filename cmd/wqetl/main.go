package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/couchcryptid/water-quality-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/water-quality-etl/internal/adapter/excel"
	httpadapter "github.com/couchcryptid/water-quality-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/water-quality-etl/internal/adapter/kafka"
	"github.com/couchcryptid/water-quality-etl/internal/adapter/objectstore"
	"github.com/couchcryptid/water-quality-etl/internal/config"
	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/couchcryptid/water-quality-etl/internal/observability"
	"github.com/couchcryptid/water-quality-etl/internal/pipeline"
)

func main() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var publishers []pipeline.Publisher
	var kafkaPub *kafkaadapter.Publisher
	if cfg.KafkaEnabled() {
		kafkaPub = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		publishers = append(publishers, kafkaPub)
		logger.Info("run summaries will be published", "topic", cfg.KafkaTopic)
	}
	if cfg.ObjectStore.Enabled() {
		uploader, err := objectstore.NewUploader(cfg.ObjectStore, logger)
		if err != nil {
			logger.Error("failed to create object store client", "error", err)
			os.Exit(1)
		}
		publishers = append(publishers, uploader)
		logger.Info("artifact mirror enabled", "bucket", cfg.ObjectStore.Bucket, "key", cfg.ObjectStore.Key)
	}

	region := domain.DefaultRegion().WithLocality(cfg.TargetLocality)
	reader := excel.NewReader(cfg.InputPath, cfg.InputSheet, logger)
	writer := csvfile.NewWriter(cfg.OutputPath, logger)
	transformer := pipeline.NewTransformer(region, domain.DefaultRuleset(), logger, metrics)

	p := pipeline.New(reader, transformer, writer, region.Locality, logger, metrics, publishers...)

	var code int
	if cfg.Scheduled() {
		code = serve(ctx, cfg, p, logger)
	} else {
		code = runOnce(ctx, p, logger)
	}

	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	os.Exit(code)
}

func runOnce(ctx context.Context, p *pipeline.Pipeline, logger *slog.Logger) int {
	summary, err := p.Run(ctx)
	if err != nil {
		logger.Error("pipeline failed", "error", err)
		return 1
	}
	logger.Info("pipeline finished",
		"rows_read", summary.RowsRead,
		"rows_written", summary.RowsWritten,
		"approved", summary.Approved,
		"rejected", summary.Rejected,
		"duration", summary.Duration(),
	)
	return 0
}

// serve runs the pipeline on cfg.Schedule and exposes health, readiness,
// last-run and metrics endpoints until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, logger *slog.Logger) int {
	cronLogger := observability.NewCronLogger(logger)
	scheduler := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	job := func() {
		if _, err := p.Run(ctx); err != nil {
			logger.Error("scheduled run failed", "error", err)
		}
	}
	if _, err := scheduler.AddFunc(cfg.Schedule, job); err != nil {
		logger.Error("invalid schedule", "schedule", cfg.Schedule, "error", err)
		return 1
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	scheduler.Start()
	logger.Info("scheduler started", "schedule", cfg.Schedule, "addr", cfg.HTTPAddr)
	var startup sync.WaitGroup
	if cfg.RunOnStart {
		startup.Add(1)
		go func() {
			defer startup.Done()
			job()
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// Wait for in-flight runs to observe cancellation and return.
	select {
	case <-drain(scheduler, &startup):
	case <-shutdownCtx.Done():
		logger.Warn("run still in progress at shutdown deadline")
	}

	logger.Info("shutdown complete")
	return 0
}

// drain stops the scheduler and returns a channel that is closed once every
// scheduled run and every run tracked by inflight has returned.
func drain(scheduler *cron.Cron, inflight *sync.WaitGroup) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		<-scheduler.Stop().Done()
		inflight.Wait()
		close(done)
	}()
	return done
}
