package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spacesedan/sentiboard/config"
	"github.com/spacesedan/sentiboard/internal/clients"
	"github.com/spacesedan/sentiboard/internal/clients/kafka_client"
	"github.com/spacesedan/sentiboard/internal/consumers"
	"github.com/spacesedan/sentiboard/internal/dashboard"
	"github.com/spacesedan/sentiboard/internal/db"
	"github.com/spacesedan/sentiboard/internal/history"
	"github.com/spacesedan/sentiboard/internal/logging"
	"github.com/spacesedan/sentiboard/internal/monitoring"
	"github.com/spacesedan/sentiboard/internal/sentiment"
	"github.com/spacesedan/sentiboard/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Getenv("APP_ENV"))
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var analyzer sentiment.Analyzer = sentiment.NewVaderAnalyzer()
	if cfg.StripMarkdown {
		analyzer = sentiment.PlainTextAnalyzer{Next: analyzer}
	}

	clock := clockwork.NewRealClock()
	service := dashboard.NewService(analyzer, history.NewStore(clock), sentiment.DefaultThresholds)

	var opts []server.Option
	if cfg.AWS.ExportEnabled {
		dynamo, err := clients.GetDynamoDBClient(ctx, cfg.AWS)
		if err != nil {
			slog.Error("[Main] Failed to create DynamoDB client", slog.String("error", err.Error()))
			os.Exit(1)
		}
		opts = append(opts, server.WithExporter(db.NewHistoryTable(dynamo, cfg.AWS.HistoryTable)))
	}

	var wg sync.WaitGroup
	if cfg.Kafka.Enabled {
		ingestOpts, err := startIngest(ctx, &wg, cfg, service, clock)
		if err != nil {
			slog.Error("[Main] Failed to start Kafka ingestion", slog.String("error", err.Error()))
			os.Exit(1)
		}
		opts = append(opts, ingestOpts...)
	}

	srv := server.NewServer(cfg, service, opts...)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server stopped unexpectedly", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("[Main] HTTP shutdown incomplete", slog.String("error", err.Error()))
	}
	wg.Wait()
	clients.CloseValkey()
	slog.Info("[Main] Bye")
}

// startIngest wires the Kafka consumer loop and the Valkey health monitor.
// Both goroutines stop when ctx is done.
func startIngest(ctx context.Context, wg *sync.WaitGroup, cfg *config.Config, service *dashboard.Service, clock clockwork.Clock) ([]server.Option, error) {
	valkey, err := clients.InitValkey(cfg.Valkey)
	if err != nil {
		return nil, err
	}

	producer, err := kafka_client.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		return nil, err
	}
	consumer, err := kafka_client.NewConsumer(cfg.Kafka)
	if err != nil {
		producer.Close()
		return nil, err
	}

	analysis := consumers.NewAnalysisConsumer(service, valkey, producer, cfg.Kafka.ResultTopic, clock)
	valkeyHealthy := &atomic.Bool{}

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer producer.Close()
		defer consumer.Close()
		analysis.Run(ctx, consumer)
	}()
	go func() {
		defer wg.Done()
		monitoring.MonitorDependency(ctx, clock, "valkey", monitoring.HEALTHCHECK_INTERVAL, valkey.Ping, valkeyHealthy)
	}()

	return []server.Option{
		server.WithReadinessCheck("kafka_consumer", &analysis.Healthy),
		server.WithReadinessCheck("valkey", valkeyHealthy),
	}, nil
}
