package port

import (
	"context"
	"easystay-service/internal/core/domain"
)

// ReferralEventsPort публикует события переходов по реферальным ссылкам
type ReferralEventsPort interface {
	PublishClick(ctx context.Context, click domain.ReferralClick) error
}
