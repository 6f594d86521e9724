package rabbitmq_consumer

import (
	"easystay-service/pkg/rabbitmq/rabbitmq_common"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig описывает очередь, ее привязку и цикл повторов
type ConsumerConfig struct {
	rabbitmq_common.Config

	QueueName    string
	DurableQueue bool
	QueueArgs    amqp.Table

	// Обменник, к которому привязывается очередь. Пустое имя - без привязки.
	ExchangeName    string
	ExchangeType    string
	DeclareExchange bool
	DurableExchange bool
	RoutingKey      string

	PrefetchCount int
	ConsumerTag   string

	Retry RetryConfig

	Logger rabbitmq_common.Logger
}

// RetryConfig - повторы через wait-очередь с TTL и финальная DLQ
type RetryConfig struct {
	Enabled            bool
	RetryExchange      string // fanout, принимает nack из основной очереди
	RetryQueue         string // wait-очередь, по TTL возвращает в основной обменник
	RetryTTLMillis     int
	FinalDLXExchange   string
	FinalDLQ           string
	FinalDLQRoutingKey string
	MaxRetries         int
}

func (c ConsumerConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.QueueName == "" {
		return fmt.Errorf("queue name is required")
	}
	if c.DeclareExchange && (c.ExchangeName == "" || c.ExchangeType == "") {
		return fmt.Errorf("exchange name and type are required to declare an exchange")
	}
	if c.Retry.Enabled {
		if c.ExchangeName == "" {
			return fmt.Errorf("retry requires the queue to be bound to an exchange")
		}
		if c.Retry.RetryExchange == "" || c.Retry.RetryQueue == "" {
			return fmt.Errorf("retry exchange and retry queue are required")
		}
		if c.Retry.FinalDLXExchange == "" || c.Retry.FinalDLQ == "" {
			return fmt.Errorf("final DLX exchange and DLQ are required")
		}
		if c.Retry.RetryTTLMillis <= 0 {
			return fmt.Errorf("retry TTL must be positive")
		}
		if c.Retry.MaxRetries < 0 {
			return fmt.Errorf("max retries cannot be negative")
		}
	}
	return nil
}

// mainQueueArgs добавляет к аргументам очереди DLX повторов
func (c ConsumerConfig) mainQueueArgs() amqp.Table {
	args := amqp.Table{}
	for k, v := range c.QueueArgs {
		args[k] = v
	}
	if c.Retry.Enabled {
		args["x-dead-letter-exchange"] = c.Retry.RetryExchange
	}
	return args
}

func (c ConsumerConfig) retryQueueArgs() amqp.Table {
	return amqp.Table{
		"x-message-ttl":          int32(c.Retry.RetryTTLMillis),
		"x-dead-letter-exchange": c.ExchangeName,
	}
}
