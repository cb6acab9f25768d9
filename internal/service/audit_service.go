package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/store-admin/internal/events"
)

// AuditService records session lifecycle events.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to session events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSessionStarted, a.handleSessionEvent)
	a.dispatcher.Subscribe(events.EventSessionRotated, a.handleSessionEvent)
	a.dispatcher.Subscribe(events.EventSessionRevoked, a.handleSessionEvent)
	a.dispatcher.Subscribe(events.EventRefreshReuseDetected, a.handleReuseDetected)
}

func (a *AuditService) handleSessionEvent(_ context.Context, event events.Event) error {
	a.logger.Info("session audit",
		zap.String("event", string(event.Type)),
		zap.String("event_id", event.ID),
		zap.String("account_id", event.AccountID),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleReuseDetected(_ context.Context, event events.Event) error {
	a.logger.Warn("refresh token reuse",
		zap.String("event_id", event.ID),
		zap.String("account_id", event.AccountID),
		zap.Time("timestamp", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}
