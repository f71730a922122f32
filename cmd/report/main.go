package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/storm-harm-report/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/storm-harm-report/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-harm-report/internal/adapter/kafka"
	"github.com/couchcryptid/storm-harm-report/internal/config"
	"github.com/couchcryptid/storm-harm-report/internal/domain"
	"github.com/couchcryptid/storm-harm-report/internal/observability"
	"github.com/couchcryptid/storm-harm-report/internal/pipeline"
	"github.com/couchcryptid/storm-harm-report/internal/report"
)

func main() {
	input := flag.String("input", "", "path to the Storm Events CSV (plain or .bz2)")
	outDir := flag.String("out", "reports", "directory for the rendered report files")
	serve := flag.Bool("serve", false, "keep serving /metrics and /audit until SIGTERM after the run")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: report -input <storm_data.csv[.bz2]> [-out <dir>] [-serve]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	classifier, err := domain.NewClassifier()
	if err != nil {
		logger.Error("failed to load event vocabulary", "error", err)
		os.Exit(1)
	}

	reader, err := csvfile.Open(*input, logger)
	if err != nil {
		logger.Error("failed to open storm data", "error", err)
		os.Exit(1)
	}
	// Kafka publication is feature-flagged via KAFKA_SINK_ENABLED.
	var loader pipeline.BatchLoader
	var sink *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		sink = kafkaadapter.NewWriter(cfg, logger)
		loader = sink
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka sink disabled")
	}

	p := pipeline.New(reader, domain.NewNormalizer(classifier), loader, logger, metrics, pipeline.Options{
		BatchSize:           cfg.BatchSize,
		Workers:             cfg.Workers,
		AuditUnmappedLabels: cfg.AuditUnmappedLabels,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	exitCode := 0
	result, err := p.Run(ctx)
	if err != nil {
		logger.Error("pipeline error", "error", err)
		exitCode = 1
	} else {
		result.Audit.Log(logger)

		writer := report.NewWriter(*outDir, cfg.TopN, logger)
		if err := writer.WriteAll(result.Summary); err != nil {
			logger.Error("report write error", "error", err)
			exitCode = 1
		}
	}

	if *serve && exitCode == 0 {
		logger.Info("run complete, serving until signalled", "addr", cfg.HTTPAddr)
		<-ctx.Done()
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("storm data close error", "error", err)
	}
	if sink != nil {
		if err := sink.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	os.Exit(exitCode)
}
