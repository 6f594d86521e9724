package usecases_port

import (
	"context"
	"easystay-service/internal/core/domain"
)

type TrackReferralClickUseCase interface {
	// Execute возвращает ссылку, по которой нужно сделать редирект
	Execute(ctx context.Context, click domain.ReferralClick) (*domain.ReferralLink, error)
}
