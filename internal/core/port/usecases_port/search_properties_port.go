package usecases_port

import (
	"context"
	"easystay-service/internal/core/domain"
)

type SearchPropertiesUseCase interface {
	Execute(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error)
}
