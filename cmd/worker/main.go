package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/rodhonsys/saude-escolar-api/internal/config"
	"github.com/rodhonsys/saude-escolar-api/internal/repository/postgres"
	"github.com/rodhonsys/saude-escolar-api/pkg/logger"
	"github.com/rodhonsys/saude-escolar-api/pkg/messaging/redis"
	"github.com/rodhonsys/saude-escolar-api/pkg/metrics"
	"github.com/rodhonsys/saude-escolar-api/pkg/worker"
)

// WorkerConfig is read from the environment; the worker runs headless
// in its own container and carries no config file.
type WorkerConfig struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"saude_escolar"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379"`

	BatchSize       int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	PollInterval    time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"2s"`
	RetryAttempts   int           `envconfig:"OUTBOX_RETRY_ATTEMPTS" default:"3"`
	RetryDelay      time.Duration `envconfig:"OUTBOX_RETRY_DELAY" default:"5s"`
	SweepInterval   time.Duration `envconfig:"LICENSE_SWEEP_INTERVAL" default:"1h"`
	PruneInterval   time.Duration `envconfig:"RETENTION_INTERVAL" default:"24h"`
	HealthCheckAddr string        `envconfig:"HEALTH_ADDR" default:":8081"`
}

func main() {
	var cfg WorkerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker config")
	}

	lg := logger.NewLogger(nil)

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		Name:         cfg.DBName,
		SSLMode:      cfg.DBSSLMode,
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	})
	if err != nil {
		lg.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.RedisURL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
	}, lg.Zerolog())
	if err != nil {
		lg.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	baseRepo := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)
	accountRepo := postgres.NewAccountRepository(baseRepo, outboxRepo)
	auditRepo := postgres.NewAuditRepository(baseRepo)

	m := metrics.NewMetrics("saude_escolar", "worker")

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.BatchSize,
		PollInterval:  cfg.PollInterval,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
	}, lg, m)
	sweep := worker.NewLicenseSweep(accountRepo, cfg.SweepInterval, lg, m)
	retention := worker.NewRetention(outboxRepo, auditRepo, worker.RetentionConfig{
		Interval: cfg.PruneInterval,
	}, lg)

	setupHealthCheck(cfg.HealthCheckAddr, lg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		lg.Info("shutting down worker")
		cancel()
	}()

	go sweep.Start(ctx)
	go retention.Start(ctx)
	processor.Start(ctx)
}

func setupHealthCheck(addr string, lg *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			lg.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
}
