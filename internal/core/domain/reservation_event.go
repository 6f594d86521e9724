package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationChanged - событие об изменении брони, приходит из системы бронирования
type ReservationChanged struct {
	EventID    uuid.UUID
	PropertyID uuid.UUID
	Action     string // created, updated, cancelled
	Window     ReservationWindow
	OccurredAt time.Time
}
