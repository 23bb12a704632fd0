package worker

import (
	"context"
	"time"

	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	"github.com/rodhonsys/saude-escolar-api/pkg/logger"
)

type RetentionConfig struct {
	Interval      time.Duration
	OutboxKeepFor time.Duration
	AuditKeepFor  time.Duration
}

// Retention prunes processed outbox rows and old audit logs. Clinical
// data is never touched.
type Retention struct {
	outbox repository.OutboxRepository
	audits repository.AuditRepository
	config RetentionConfig
	logger *logger.Logger
}

func NewRetention(outbox repository.OutboxRepository, audits repository.AuditRepository, config RetentionConfig, logger *logger.Logger) *Retention {
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	if config.OutboxKeepFor <= 0 {
		config.OutboxKeepFor = 7 * 24 * time.Hour
	}
	if config.AuditKeepFor <= 0 {
		config.AuditKeepFor = 365 * 24 * time.Hour
	}
	return &Retention{outbox: outbox, audits: audits, config: config, logger: logger}
}

func (r *Retention) Start(ctx context.Context) {
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	r.logger.Info("starting retention worker")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down retention worker")
			return
		case <-ticker.C:
			r.prune(ctx)
		}
	}
}

func (r *Retention) prune(ctx context.Context) {
	now := time.Now()

	if n, err := r.outbox.DeleteProcessedBefore(ctx, now.Add(-r.config.OutboxKeepFor)); err != nil {
		r.logger.Error(err, "failed to prune outbox events")
	} else if n > 0 {
		r.logger.Info("pruned outbox events", "count", n)
	}

	if n, err := r.audits.DeleteBefore(ctx, now.Add(-r.config.AuditKeepFor)); err != nil {
		r.logger.Error(err, "failed to prune audit logs")
	} else if n > 0 {
		r.logger.Info("pruned audit logs", "count", n)
	}
}
