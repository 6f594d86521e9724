package rabbitmq_consumer

import (
	"context"
	"easystay-service/pkg/rabbitmq/rabbitmq_common"
	"easystay-service/pkg/rabbitmq/rabbitmq_producer"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. Ack/nack/повтор решает пакет.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

type deadLetterPublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
	Close() error
}

// DistributingConsumer обрабатывает каждое сообщение в своей горутине.
// Параллелизм ограничивается PrefetchCount.
type DistributingConsumer struct {
	config     ConsumerConfig
	connection *amqp.Connection
	channel    *amqp.Channel
	handler    MessageHandler
	dlq        deadLetterPublisher
	wg         sync.WaitGroup

	Logger rabbitmq_common.Logger
}

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing Consumer: message handler is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("distributing Consumer: invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("distributing Consumer: failed to get channel from manager: %w", err)
	}

	c := &DistributingConsumer{
		config:     cfg,
		connection: conn,
		channel:    ch,
		handler:    handler,
		Logger:     logger,
	}

	if err := c.declareTopology(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("distributing Consumer: setup failed: %w", err)
	}

	if cfg.Retry.Enabled {
		dlq, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       cfg.Config,
			ExchangeName: cfg.Retry.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("distributing Consumer: failed to create final DLX publisher: %w", err)
		}
		c.dlq = dlq
	}

	return c, nil
}

// declareTopology объявляет очередь, ее привязку и инфраструктуру повторов
func (c *DistributingConsumer) declareTopology() error {
	cfg := c.config

	if cfg.PrefetchCount > 0 {
		if err := c.channel.Qos(cfg.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	if cfg.Retry.Enabled {
		r := cfg.Retry
		c.Logger.Debug("Declaring retry topology", "retry_exchange", r.RetryExchange, "retry_queue", r.RetryQueue, "dlq", r.FinalDLQ)

		if err := c.channel.ExchangeDeclare(r.FinalDLXExchange, "direct", true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare final DLX: %w", err)
		}
		if _, err := c.channel.QueueDeclare(r.FinalDLQ, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare final DLQ: %w", err)
		}
		if err := c.channel.QueueBind(r.FinalDLQ, r.FinalDLQRoutingKey, r.FinalDLXExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind final DLQ: %w", err)
		}
		if err := c.channel.ExchangeDeclare(r.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare retry exchange: %w", err)
		}
		if _, err := c.channel.QueueDeclare(r.RetryQueue, true, false, false, false, cfg.retryQueueArgs()); err != nil {
			return fmt.Errorf("failed to declare retry-wait queue: %w", err)
		}
		if err := c.channel.QueueBind(r.RetryQueue, "", r.RetryExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind retry-wait queue: %w", err)
		}
	}

	if cfg.DeclareExchange {
		if err := c.channel.ExchangeDeclare(cfg.ExchangeName, cfg.ExchangeType, cfg.DurableExchange, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange '%s': %w", cfg.ExchangeName, err)
		}
	}

	if _, err := c.channel.QueueDeclare(cfg.QueueName, cfg.DurableQueue, false, false, false, cfg.mainQueueArgs()); err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", cfg.QueueName, err)
	}

	if cfg.ExchangeName != "" {
		if err := c.channel.QueueBind(cfg.QueueName, cfg.RoutingKey, cfg.ExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", cfg.QueueName, cfg.ExchangeName, err)
		}
	}

	c.Logger.Debug("Setup complete", "queue", cfg.QueueName)
	return nil
}

// StartConsuming блокируется до отмены ctx или закрытия соединения
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("distributing Consumer: not connected")
	}

	msgs, err := c.channel.Consume(c.config.QueueName, c.config.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("distributing Consumer: failed to consume from '%s': %w", c.config.QueueName, err)
	}

	c.Logger.Info("Waiting for messages", "queue_name", c.config.QueueName)

	notifyClose := c.connection.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Context cancelled. Shutting down consumer.", "consumer_tag", c.config.ConsumerTag)
			return nil

		case amqpErr, ok := <-notifyClose:
			if !ok || amqpErr == nil {
				return fmt.Errorf("distributing Consumer: connection closed")
			}
			c.Logger.Error(amqpErr, "Connection closed for consumer.", "consumer_tag", c.config.ConsumerTag)
			return amqpErr

		case d, ok := <-msgs:
			if !ok {
				c.Logger.Info("Deliveries channel closed by RabbitMQ. Exiting loop.", "consumer_tag", c.config.ConsumerTag)
				return nil
			}
			c.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer c.wg.Done()
				c.process(ctx, delivery)
			}(d)
		}
	}
}

// process вызывает обработчик и подтверждает, повторяет или увозит сообщение в DLQ
func (c *DistributingConsumer) process(ctx context.Context, d amqp.Delivery) {
	handlerErr := c.handler(ctx, d)
	deaths := deathCount(d.Headers, c.config.QueueName)
	decision := decide(handlerErr, c.config.Retry, deaths)

	if handlerErr != nil {
		c.Logger.Error(handlerErr, "Handler error for message",
			"delivery_tag", d.DeliveryTag, "death_count", deaths, "decision", decision.String())
	}

	switch decision {
	case outcomeAck:
		_ = d.Ack(false)
	case outcomeDrop, outcomeRetry:
		_ = d.Nack(false, false)
	case outcomeDeadLetter:
		err := c.dlq.Publish(context.Background(), c.config.Retry.FinalDLQRoutingKey, amqp.Publishing{
			ContentType:  d.ContentType,
			Body:         d.Body,
			Headers:      d.Headers,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		})
		if err != nil {
			c.Logger.Error(err, "Failed to publish to final DLX. Nacking to retry again.", "delivery_tag", d.DeliveryTag)
			_ = d.Nack(false, false)
			return
		}
		_ = d.Ack(false)
	}
}

// Close дожидается обработчиков и закрывает канал
func (c *DistributingConsumer) Close() error {
	c.Logger.Debug("Waiting for message handlers to finish...")
	c.wg.Wait()

	var firstErr error
	if c.dlq != nil {
		if err := c.dlq.Close(); err != nil {
			c.Logger.Error(err, "Error closing final DLX publisher")
			firstErr = err
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			c.Logger.Error(err, "Error closing channel")
			firstErr = err
		}
		c.channel = nil
	}

	c.Logger.Info("Consumer closed")
	return firstErr
}
