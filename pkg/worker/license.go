package worker

import (
	"context"
	"time"

	"github.com/rodhonsys/saude-escolar-api/internal/repository"
	"github.com/rodhonsys/saude-escolar-api/pkg/logger"
	"github.com/rodhonsys/saude-escolar-api/pkg/metrics"
)

// LicenseSweep periodically flips overdue licenses to expired. The
// repository emits one account event per flip in the same transaction,
// so affected sessions are pushed out through the normal relay path.
type LicenseSweep struct {
	accounts repository.AccountRepository
	interval time.Duration
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewLicenseSweep(accounts repository.AccountRepository, interval time.Duration, logger *logger.Logger, metrics *metrics.Metrics) *LicenseSweep {
	if interval <= 0 {
		interval = time.Hour
	}
	return &LicenseSweep{
		accounts: accounts,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *LicenseSweep) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("starting license sweep")
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down license sweep")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *LicenseSweep) sweep(ctx context.Context) {
	expired, err := s.accounts.ExpireOverdue(ctx, time.Now())
	if err != nil {
		s.logger.Error(err, "license sweep failed")
		return
	}
	if len(expired) == 0 {
		return
	}

	s.metrics.LicensesExpired.Add(float64(len(expired)))
	for _, acct := range expired {
		s.logger.Info("license expired", "uid", acct.UID.String(), "email", acct.Email)
	}
}
