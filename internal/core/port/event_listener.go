package port

import "context"

// EventListenerPort - входящий адаптер брокера сообщений
type EventListenerPort interface {
	Start(ctx context.Context) error
	Close() error
}
