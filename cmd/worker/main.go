package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aafiyacare/homecare-api/internal/config"
	"github.com/aafiyacare/homecare-api/internal/repository/postgres"
	eventService "github.com/aafiyacare/homecare-api/internal/service/event"
	"github.com/aafiyacare/homecare-api/pkg/logger"
	"github.com/aafiyacare/homecare-api/pkg/messaging"
	"github.com/aafiyacare/homecare-api/pkg/messaging/redis"
	"github.com/aafiyacare/homecare-api/pkg/metrics"
	"github.com/aafiyacare/homecare-api/pkg/worker"
)

// cleanupInterval is how often processed outbox rows are swept.
const cleanupInterval = time.Hour

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:   logger.ParseLevel(cfg.Logging.Level),
		Service: "aafiya-worker",
		Console: cfg.Logging.Console,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewBroker(cfg.Redis.ToBrokerConfig(), log)
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	publisher := messaging.NewEventPublisher(broker)
	m := metrics.NewMetrics("aafiya", "worker")
	processor := worker.NewOutboxProcessor(outboxRepo, publisher, cfg.Outbox.ToWorkerConfig(), log, m)

	events := eventService.NewService(outboxRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startHealthServer(cfg.Server.WorkerPort, db, log)
	go runCleanup(ctx, events, log)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("shutting down worker")
		cancel()
	}()

	processor.Start(ctx)
	log.Info("worker stopped")
}

// runCleanup periodically drops processed outbox rows past their
// retention window.
func runCleanup(ctx context.Context, events *eventService.Service, log *logger.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := events.CleanupProcessedEvents(ctx)
			if err != nil {
				log.Error(err, "outbox cleanup failed")
				continue
			}
			if removed > 0 {
				log.Info("outbox cleanup completed", "removed", removed)
			}
		}
	}
}

func startHealthServer(port int, db interface{ Ping() error }, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			log.Error(err, "health server failed")
		}
	}()
}
