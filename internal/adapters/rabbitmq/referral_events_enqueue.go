package rabbitmq

import (
	"context"
	"easystay-service/internal/constants"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type jsonPublisher interface {
	PublishJSON(ctx context.Context, routingKey, messageID string, headers amqp.Table, payload interface{}) error
}

// ReferralEventsPublisherAdapter публикует ReferralClickedEvent для биллинга партнеров
type ReferralEventsPublisherAdapter struct {
	producer jsonPublisher
}

// NewReferralEventsPublisherAdapter принимает *rabbitmq_producer.Publisher
func NewReferralEventsPublisherAdapter(producer jsonPublisher) (*ReferralEventsPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return &ReferralEventsPublisherAdapter{producer: producer}, nil
}

func (a *ReferralEventsPublisherAdapter) PublishClick(ctx context.Context, click domain.ReferralClick) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ReferralEventsPublisherAdapter",
		"click_id":  click.ID.String(),
		"code":      click.Code,
	})

	headers := amqp.Table{
		constants.HeaderEventType:    constants.EventReferralClicked,
		constants.HeaderEventVersion: constants.EventVersionV1,
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		headers[constants.HeaderTraceID] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := a.producer.PublishJSON(publishCtx, constants.RoutingKeyReferralClicked, click.ID.String(), headers, toReferralClickedDTO(click))
	if err != nil {
		logger.Error("Failed to publish referral click", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish referral click: %w", err)
	}

	logger.Debug("Referral click published", nil)
	return nil
}
