package rabbitmq

import (
	"easystay-service/internal/core/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// reservationChangedDTO - тело ReservationChangedEvent/1.0.0
type reservationChangedDTO struct {
	EventID       uuid.UUID  `json:"event_id"`
	PropertyID    uuid.UUID  `json:"property_id"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
	Action        string     `json:"action"`
	StartDate     string     `json:"start_date"`
	EndDate       string     `json:"end_date"`
	OccurredAt    *time.Time `json:"occurred_at,omitempty"`
}

func (dto reservationChangedDTO) toDomain() (domain.ReservationChanged, error) {
	if dto.PropertyID == uuid.Nil {
		return domain.ReservationChanged{}, fmt.Errorf("property_id is required")
	}
	event := domain.ReservationChanged{
		EventID:    dto.EventID,
		PropertyID: dto.PropertyID,
		Action:     dto.Action,
		Window: domain.ReservationWindow{
			PropertyID: dto.PropertyID,
			Start:      dto.StartDate,
			End:        dto.EndDate,
		},
	}
	if dto.OccurredAt != nil {
		event.OccurredAt = dto.OccurredAt.UTC()
	}
	return event, nil
}

// referralClickedDTO - тело ReferralClickedEvent/1.0.0
type referralClickedDTO struct {
	ClickID    string `json:"click_id"`
	LinkID     string `json:"link_id"`
	Code       string `json:"code"`
	IPHash     string `json:"ip_hash"`
	UserAgent  string `json:"user_agent,omitempty"`
	Referer    string `json:"referer,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

func toReferralClickedDTO(click domain.ReferralClick) referralClickedDTO {
	return referralClickedDTO{
		ClickID:    click.ID.String(),
		LinkID:     click.LinkID.String(),
		Code:       click.Code,
		IPHash:     click.IPHash,
		UserAgent:  click.UserAgent,
		Referer:    click.Referer,
		OccurredAt: click.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
