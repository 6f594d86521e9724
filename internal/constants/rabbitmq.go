package constants

// Входящие события бронирований
const (
	ReservationsExchange        = "reservations_exchange"
	QueueSearchReservations     = "search_reservation_events"
	RoutingKeyReservationChange = "reservations.changed"

	ReservationsRetryExchange = "search_reservation_events_retry"
	ReservationsWaitQueue     = "search_reservation_events_wait"
	ReservationsRetryTTL      = 10000 // мс
	ReservationsMaxRetries    = 3

	ReservationsFinalDLX      = "search_reservation_events_final_dlx"
	ReservationsFinalDLQ      = "search_reservation_events_final_dlq"
	ReservationsDLQRoutingKey = "reservations.dlq.key"
)

// Исходящие события реферальной программы
const (
	ReferralsExchange         = "referrals_exchange"
	RoutingKeyReferralClicked = "referrals.clicked"
)

// Заголовки сообщений
const (
	HeaderEventType    = "event-type"
	HeaderEventVersion = "event-version"
	HeaderTraceID      = "x-trace-id"

	EventReservationChanged = "ReservationChangedEvent"
	EventReferralClicked    = "ReferralClickedEvent"
	EventVersionV1          = "1.0.0"
)
