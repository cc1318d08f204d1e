package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/agent-console/internal/config"
	"github.com/spec-kit/agent-console/internal/events"
)

// NotificationService emits operator-facing notifications for console events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventMutationRolledBack, n.handleMutationRolledBack)
	n.dispatcher.Subscribe(events.EventReplySubmitted, n.handleReplySubmitted)
	n.dispatcher.Subscribe(events.EventTicketsMerged, n.handleTicketsMerged)
}

func (n *NotificationService) handleMutationRolledBack(ctx context.Context, event events.Event) error {
	n.logger.Info("MutationRolledBack", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleReplySubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("ReplySubmitted", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketsMerged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketsMerged", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
