package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/events"
)

// AuditService records authentication and wishlist activity in the log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserLoggedIn, a.handleInfo)
	a.dispatcher.Subscribe(events.EventUserLoggedOut, a.handleInfo)
	a.dispatcher.Subscribe(events.EventTokenRefreshed, a.handleDebug)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventWishlistItemAdded, a.handleDebug)
	a.dispatcher.Subscribe(events.EventWishlistItemRemoved, a.handleDebug)
	a.dispatcher.Subscribe(events.EventWishlistCleared, a.handleInfo)
}

func (a *AuditService) handleInfo(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type), eventFields(event)...)
	return nil
}

func (a *AuditService) handleDebug(_ context.Context, event events.Event) error {
	a.logger.Debug(string(event.Type), eventFields(event)...)
	return nil
}

func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	a.logger.Warn(string(event.Type), eventFields(event)...)
	return nil
}

func eventFields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.Int64("user_id", event.UserID),
		zap.Time("at", event.Timestamp),
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	return fields
}
