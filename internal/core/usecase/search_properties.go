package usecase

import (
	"context"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"fmt"

	"github.com/google/uuid"
)

// DefaultSearchLimit - сколько строк берем из БД до фильтрации по датам
const DefaultSearchLimit = 200

type SearchPropertiesUseCase struct {
	properties   port.PropertyStoragePort
	reservations port.ReservationStoragePort
	cache        port.SearchCachePort // может быть nil
	limit        int
}

func NewSearchPropertiesUseCase(properties port.PropertyStoragePort,
	reservations port.ReservationStoragePort,
	cache port.SearchCachePort,
	limit int) *SearchPropertiesUseCase {

	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &SearchPropertiesUseCase{
		properties:   properties,
		reservations: reservations,
		cache:        cache,
		limit:        limit,
	}
}

func (uc *SearchPropertiesUseCase) Execute(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "SearchProperties",
		"q":         query.Text,
		"check_in":  query.CheckIn,
		"check_out": query.CheckOut,
	})

	ucLogger.Info("Use case started", nil)

	if uc.cache != nil {
		if cached, ok := uc.cache.Get(ctx, query); ok {
			ucLogger.Info("Use case finished from cache", port.Fields{"total": cached.Total})
			return cached, nil
		}
	}

	candidates, err := uc.properties.FindCandidates(ctx, query, uc.limit)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}
	ucLogger.Debug("Candidates loaded", port.Fields{"candidates": len(candidates)})

	// Брони нужны только если запрошены корректные даты
	if _, ok := query.Stay(); ok && len(candidates) > 0 {
		if err := uc.attachReservations(ctx, candidates); err != nil {
			ucLogger.Error("Failed to load reservation windows", err, nil)
			return nil, err
		}

		if malformed := domain.CountMalformedWindows(candidates); malformed > 0 {
			ucLogger.Warn("Reservations with unreadable dates are treated as free", port.Fields{
				"malformed_windows": malformed,
			})
		}
	}

	available := domain.FilterAvailable(candidates, query.CheckIn, query.CheckOut)

	result := &domain.SearchResult{
		Properties: available,
		Total:      len(available),
	}

	if uc.cache != nil {
		uc.cache.Set(ctx, query, result)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"candidates": len(candidates),
		"total":      result.Total,
	})

	return result, nil
}

func (uc *SearchPropertiesUseCase) attachReservations(ctx context.Context, candidates []domain.Property) error {
	ids := make([]uuid.UUID, len(candidates))
	for i, p := range candidates {
		ids[i] = p.ID
	}

	windows, err := uc.reservations.ListWindows(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to list reservation windows: %w", err)
	}

	for i := range candidates {
		candidates[i].Reservations = windows[candidates[i].ID]
	}
	return nil
}
