package port

import (
	"context"
	"easystay-service/internal/core/domain"

	"github.com/google/uuid"
)

type PropertyStoragePort interface {
	// FindCandidates возвращает объекты по фильтрам запроса, по возрастанию цены за ночь
	FindCandidates(ctx context.Context, query domain.SearchQuery, limit int) ([]domain.Property, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Property, error)
}

type ReservationStoragePort interface {
	// ListWindows возвращает брони объектов, сгруппированные по property_id
	ListWindows(ctx context.Context, propertyIDs []uuid.UUID) (map[uuid.UUID][]domain.ReservationWindow, error)
}

type HealthCheckerPort interface {
	Ping(ctx context.Context) error
}
