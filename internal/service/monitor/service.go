package monitor

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/pkg/access"
	"github.com/rodhonsys/saude-escolar-api/pkg/messaging"
	"github.com/rodhonsys/saude-escolar-api/pkg/metrics"
)

// Signal is one verdict pushed to a watching client. ForceSignOut set
// means the session must end now; Reason says why.
type Signal struct {
	ForceSignOut          bool   `json:"force_sign_out"`
	RequirePasswordChange bool   `json:"require_password_change"`
	Reason                string `json:"reason,omitempty"`
}

// Service turns committed account changes into live session verdicts.
// Each watcher holds a broker subscription on its own account channel;
// every event is re-evaluated through the guard so block, license expiry
// and session replacement all push out within one relay cycle.
type Service struct {
	broker  messaging.Broker
	guard   *access.Guard
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewService(broker messaging.Broker, guard *access.Guard, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{broker: broker, guard: guard, metrics: m, logger: logger}
}

// Watch subscribes to the account's change channel and emits a Signal
// per event. The returned channel closes when ctx is cancelled. Root
// sessions receive no forced sign-outs.
func (s *Service) Watch(ctx context.Context, acct *model.UserAccount, sessionID string) (<-chan Signal, error) {
	events, err := s.broker.Subscribe(ctx, messaging.AccountChannel(acct.UID.String()))
	if err != nil {
		return nil, err
	}

	signals := make(chan Signal, 4)
	go func() {
		defer close(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-events:
				if !ok {
					return
				}
				var event model.AccountChangedEvent
				if err := json.Unmarshal(payload, &event); err != nil {
					s.logger.Warn().Err(err).Msg("malformed account event")
					continue
				}
				if sig, fire := s.evaluate(&event, sessionID); fire {
					signals <- sig
				}
			}
		}
	}()
	return signals, nil
}

func (s *Service) evaluate(event *model.AccountChangedEvent, sessionID string) (Signal, bool) {
	snapshot := &model.UserAccount{
		UID:                  event.UID,
		Email:                event.Email,
		Role:                 event.Role,
		Status:               event.Status,
		LicenseStatus:        event.LicenseStatus,
		LicenseExpiry:        event.LicenseExpiry,
		CurrentSessionID:     event.CurrentSessionID,
		MustChangePassword:   event.MustChangePassword,
		LastPasswordChangeAt: event.LastPasswordChangeAt,
	}

	if s.guard.IsRoot(snapshot) {
		return Signal{}, false
	}

	if s.guard.SessionSuperseded(snapshot, sessionID) {
		if s.metrics != nil {
			s.metrics.SessionsReplaced.Inc()
		}
		return Signal{ForceSignOut: true, Reason: access.ReasonSessionReplaced}, true
	}

	decision := s.guard.Evaluate(snapshot, access.Route{Name: "session_watch"})
	if decision.ForceSignOut {
		return Signal{ForceSignOut: true, Reason: decision.Reason}, true
	}
	if decision.RequirePasswordChange {
		return Signal{RequirePasswordChange: true, Reason: decision.Reason}, true
	}
	return Signal{}, false
}
