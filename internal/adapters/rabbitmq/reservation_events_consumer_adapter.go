package rabbitmq

import (
	"context"
	"easystay-service/internal/constants"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/contracts"
	"easystay-service/internal/core/port"
	"easystay-service/internal/core/port/usecases_port"
	"easystay-service/pkg/rabbitmq/rabbitmq_common"
	"easystay-service/pkg/rabbitmq/rabbitmq_consumer"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ReservationEventsConsumerAdapter слушает изменения броней и сбрасывает кэш поиска
type ReservationEventsConsumerAdapter struct {
	consumer *rabbitmq_consumer.DistributingConsumer
	useCase  usecases_port.InvalidateSearchCacheUseCase
	logger   port.LoggerPort
	validate func(eventType, eventVersion string, body []byte) error
}

func NewReservationEventsConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.InvalidateSearchCacheUseCase,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*ReservationEventsConsumerAdapter, error) {
	adapter := newReservationEventsHandler(useCase, logger)

	consumerCfg.Logger = NewPkgLoggerBridge(logger.WithFields(port.Fields{
		"component":    "rabbitmq_distributing_consumer",
		"consumer_tag": consumerCfg.ConsumerTag,
	}))

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, adapter.handleMessage, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for reservation events: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

func newReservationEventsHandler(useCase usecases_port.InvalidateSearchCacheUseCase, logger port.LoggerPort) *ReservationEventsConsumerAdapter {
	return &ReservationEventsConsumerAdapter{
		useCase:  useCase,
		logger:   logger,
		validate: contracts.ValidateEvent,
	}
}

// handleMessage: ошибка отправляет сообщение в цикл повторов, а после них в DLQ
func (a *ReservationEventsConsumerAdapter) handleMessage(ctx context.Context, d amqp.Delivery) error {
	traceID, _ := d.Headers[constants.HeaderTraceID].(string)
	if traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"message_id":   d.MessageId,
		"adapter_name": "ReservationEventsConsumerAdapter",
	})
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	eventType, _ := d.Headers[constants.HeaderEventType].(string)
	if eventType == "" {
		eventType = constants.EventReservationChanged
	}
	eventVersion, _ := d.Headers[constants.HeaderEventVersion].(string)
	if eventVersion == "" {
		eventVersion = constants.EventVersionV1
	}

	if eventType != constants.EventReservationChanged {
		msgLogger.Warn("Unexpected event type on reservations queue. Rejecting.", port.Fields{"event_type": eventType})
		return fmt.Errorf("unexpected event type %q", eventType)
	}

	if err := a.validate(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation. Rejecting.", err, nil)
		return err
	}

	var dto reservationChangedDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		msgLogger.Error("Failed to unmarshal reservation event", err, nil)
		return fmt.Errorf("failed to unmarshal reservation event: %w", err)
	}

	event, err := dto.toDomain()
	if err != nil {
		msgLogger.Error("Invalid reservation event", err, nil)
		return err
	}

	if err := a.useCase.Execute(ctx, event); err != nil {
		return err
	}

	msgLogger.Debug("Reservation event processed", port.Fields{"property_id": event.PropertyID.String(), "action": event.Action})
	return nil
}

// Start блокируется до отмены ctx или потери соединения
func (a *ReservationEventsConsumerAdapter) Start(ctx context.Context) error {
	a.logger.Info("Starting reservation events consumer...", nil)
	return a.consumer.StartConsuming(ctx)
}

func (a *ReservationEventsConsumerAdapter) Close() error {
	a.logger.Info("Stopping reservation events consumer...", nil)
	return a.consumer.Close()
}
