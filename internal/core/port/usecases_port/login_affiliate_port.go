package usecases_port

import (
	"context"
	"easystay-service/internal/core/domain"
)

type LoginAffiliateUseCase interface {
	Execute(ctx context.Context, email, password string) (*domain.Affiliate, string, error)
}
