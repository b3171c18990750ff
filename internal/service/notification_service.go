package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/config"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		logger: logger,
		cfg:    cfg,
	}
}

// EventTypes lists the events Handle understands.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{events.EventOrderPlaced, events.EventUserLoggedIn, events.EventSessionRevoked}
}

// Handle routes one event to its notification.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventOrderPlaced:
		return n.handleOrderPlaced(ctx, event)
	case events.EventUserLoggedIn, events.EventSessionRevoked:
		return n.handleSessionEvent(ctx, event)
	default:
		return nil
	}
}

func (n *NotificationService) handleOrderPlaced(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderPlaced", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSessionEvent(_ context.Context, event events.Event) error {
	n.logger.Debug("SessionEvent",
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
}
