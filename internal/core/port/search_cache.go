package port

import (
	"context"
	"easystay-service/internal/core/domain"
)

// SearchCachePort - кэш готовых результатов поиска
type SearchCachePort interface {
	Get(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, bool)
	Set(ctx context.Context, query domain.SearchQuery, result *domain.SearchResult)
	// Invalidate сбрасывает все закэшированные результаты
	Invalidate(ctx context.Context) error
}
