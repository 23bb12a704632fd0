package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/rodhonsys/saude-escolar-api/internal/config"
	"github.com/rodhonsys/saude-escolar-api/internal/email"
	"github.com/rodhonsys/saude-escolar-api/internal/handler"
	accountHandler "github.com/rodhonsys/saude-escolar-api/internal/handler/account"
	auditHandler "github.com/rodhonsys/saude-escolar-api/internal/handler/audit"
	authHandler "github.com/rodhonsys/saude-escolar-api/internal/handler/auth"
	maternityHandler "github.com/rodhonsys/saude-escolar-api/internal/handler/maternity"
	personHandler "github.com/rodhonsys/saude-escolar-api/internal/handler/person"
	unitHandler "github.com/rodhonsys/saude-escolar-api/internal/handler/unit"
	visitHandler "github.com/rodhonsys/saude-escolar-api/internal/handler/visit"
	"github.com/rodhonsys/saude-escolar-api/internal/middleware"
	"github.com/rodhonsys/saude-escolar-api/internal/repository/postgres"
	"github.com/rodhonsys/saude-escolar-api/internal/router"
	accountService "github.com/rodhonsys/saude-escolar-api/internal/service/account"
	auditService "github.com/rodhonsys/saude-escolar-api/internal/service/audit"
	authService "github.com/rodhonsys/saude-escolar-api/internal/service/auth"
	maternityService "github.com/rodhonsys/saude-escolar-api/internal/service/maternity"
	monitorService "github.com/rodhonsys/saude-escolar-api/internal/service/monitor"
	personService "github.com/rodhonsys/saude-escolar-api/internal/service/person"
	unitService "github.com/rodhonsys/saude-escolar-api/internal/service/unit"
	visitService "github.com/rodhonsys/saude-escolar-api/internal/service/visit"
	"github.com/rodhonsys/saude-escolar-api/pkg/access"
	"github.com/rodhonsys/saude-escolar-api/pkg/auth"
	"github.com/rodhonsys/saude-escolar-api/pkg/messaging/redis"
	"github.com/rodhonsys/saude-escolar-api/pkg/metrics"
	"github.com/rodhonsys/saude-escolar-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("saude_escolar", "api")

	// Repositories
	baseRepo := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)
	personRepo := postgres.NewPersonRepository(baseRepo)
	visitRepo := postgres.NewVisitRepository(baseRepo, personRepo, outboxRepo)
	maternityRepo := postgres.NewMaternityRepository(baseRepo)
	accountRepo := postgres.NewAccountRepository(baseRepo, outboxRepo)
	unitRepo := postgres.NewUnitRepository(baseRepo)
	tokenRepo := postgres.NewTokenRepository(baseRepo)
	auditRepo := postgres.NewAuditRepository(baseRepo)

	// Services
	guard := access.NewGuard(cfg.Access.RootEmail)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	hasher := security.NewBcryptHasher(0)
	mailer := email.NewSMTPService(cfg.SMTP)

	auditSvc := auditService.NewService(auditRepo, log.Logger)
	personSvc := personService.NewService(personRepo, auditSvc)
	visitSvc := visitService.NewService(visitRepo, personSvc, auditSvc)
	maternitySvc := maternityService.NewService(maternityRepo, auditSvc)
	accountSvc := accountService.NewService(accountRepo, unitRepo, hasher, auditSvc)
	unitSvc := unitService.NewService(unitRepo, auditSvc)
	authSvc := authService.NewService(accountRepo, tokenRepo, jwtSvc, hasher, guard, mailer, auditSvc, cfg.Access, log.Logger)
	monitorSvc := monitorService.NewService(broker, guard, m, log.Logger)

	// Handlers
	h := handler.NewHandler(db)
	authH := authHandler.NewHandler(authSvc, monitorSvc)
	personH := personHandler.NewHandler(personSvc)
	visitH := visitHandler.NewHandler(visitSvc, m)
	maternityH := maternityHandler.NewHandler(maternitySvc)
	accountH := accountHandler.NewHandler(accountSvc)
	unitH := unitHandler.NewHandler(unitSvc)
	auditH := auditHandler.NewHandler(auditSvc)

	authMw := middleware.NewAuthMiddleware(jwtSvc, accountRepo, guard)

	r := router.NewRouter(
		authMw,
		authH,
		personH,
		visitH,
		maternityH,
		accountH,
		unitH,
		auditH,
		h,
		router.RouterConfig{
			RateLimit:     rate.Limit(100),
			RateBurst:     200,
			CORSConfig:    middleware.CORSConfigForOrigins(cfg.Access.AppBaseURL),
			MetricsPrefix: "saude_escolar_http",
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
