package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-mentorship-api/internal/models"
	"github.com/noah-isme/alumni-mentorship-api/pkg/events"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type eventEmitter interface {
	Emit(ctx context.Context, evt events.Event) error
}

// sideEffects runs the best-effort work that follows a committed decision.
// Failures are logged and never reach the caller.
type sideEffects struct {
	audit  auditLogger
	events eventEmitter
	logger *zap.Logger
	source string
}

func (s sideEffects) emitAudit(ctx context.Context, actorID, action, resource, resourceID string, before, after interface{}) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     optionalString(actorID),
		Action:     action,
		Resource:   resource,
		ResourceID: optionalString(resourceID),
		OldValues:  marshalAuditValue(before),
		NewValues:  marshalAuditValue(after),
		IPAddress:  "system",
		UserAgent:  s.source,
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to persist audit log", zap.String("action", action), zap.Error(err))
	}
}

func (s sideEffects) emitEvent(ctx context.Context, eventType, key string, payload interface{}) {
	if s.events == nil {
		return
	}
	evt, err := events.New(eventType, key, payload)
	if err != nil {
		s.logger.Warn("failed to build event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.events.Emit(ctx, evt); err != nil {
		s.logger.Warn("failed to enqueue event", zap.String("type", eventType), zap.String("key", key), zap.Error(err))
	}
}

func marshalAuditValue(value interface{}) []byte {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return raw
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
