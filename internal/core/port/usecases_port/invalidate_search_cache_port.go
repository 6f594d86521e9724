package usecases_port

import (
	"context"
	"easystay-service/internal/core/domain"
)

type InvalidateSearchCacheUseCase interface {
	Execute(ctx context.Context, event domain.ReservationChanged) error
}
