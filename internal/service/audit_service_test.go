package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/store-admin/internal/events"
)

func TestAuditServiceLogsSessionEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{ID: "e1", Type: events.EventSessionStarted, AccountID: "a1", Timestamp: now}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		ID: "e2", Type: events.EventRefreshReuseDetected, AccountID: "a1", Timestamp: now,
		Payload: events.ReusePayload{Reason: "rotated"},
	}))

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "session audit", entries[0].Message)
	require.Equal(t, "session_started", entries[0].ContextMap()["event"])
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.Equal(t, "a1", entries[1].ContextMap()["account_id"])
}
