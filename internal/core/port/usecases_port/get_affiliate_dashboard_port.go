package usecases_port

import (
	"context"
	"easystay-service/internal/core/domain"

	"github.com/google/uuid"
)

type GetAffiliateDashboardUseCase interface {
	Execute(ctx context.Context, affiliateID uuid.UUID) (*domain.AffiliateDashboard, error)
}
