package usecases_port

import (
	"context"
	"easystay-service/internal/core/domain"
)

type GetPropertyBySlugUseCase interface {
	Execute(ctx context.Context, slug string) (*domain.Property, error)
}
