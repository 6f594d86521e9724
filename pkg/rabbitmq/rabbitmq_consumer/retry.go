package rabbitmq_consumer

import amqp "github.com/rabbitmq/amqp091-go"

type outcome int

const (
	outcomeAck outcome = iota
	outcomeDrop
	outcomeRetry
	outcomeDeadLetter
)

func (o outcome) String() string {
	switch o {
	case outcomeAck:
		return "ack"
	case outcomeDrop:
		return "drop"
	case outcomeRetry:
		return "retry"
	case outcomeDeadLetter:
		return "dead-letter"
	default:
		return "unknown"
	}
}

// decide выбирает судьбу сообщения по результату обработчика
func decide(handlerErr error, retry RetryConfig, deaths int64) outcome {
	if handlerErr == nil {
		return outcomeAck
	}
	if !retry.Enabled {
		return outcomeDrop
	}
	if deaths < int64(retry.MaxRetries) {
		return outcomeRetry
	}
	return outcomeDeadLetter
}

// deathCount возвращает, сколько раз сообщение отклонялось в основной очереди.
// Смерти в wait-очереди (по TTL) в x-death лежат отдельной записью и не учитываются.
func deathCount(headers amqp.Table, queueName string) int64 {
	if headers == nil {
		return 0
	}
	deaths, ok := headers["x-death"].([]interface{})
	if !ok {
		return 0
	}

	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, ok := tbl["queue"].(string); !ok || queue != queueName {
			continue
		}
		if reason, ok := tbl["reason"].(string); ok && reason != "rejected" {
			continue
		}
		switch count := tbl["count"].(type) {
		case int64:
			return count
		case int32:
			return int64(count)
		case int:
			return int64(count)
		}
	}
	return 0
}
