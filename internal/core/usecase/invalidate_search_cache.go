package usecase

import (
	"context"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"fmt"
)

// InvalidateSearchCacheUseCase сбрасывает кэш поиска при изменении броней
type InvalidateSearchCacheUseCase struct {
	cache port.SearchCachePort
}

func NewInvalidateSearchCacheUseCase(cache port.SearchCachePort) *InvalidateSearchCacheUseCase {
	return &InvalidateSearchCacheUseCase{cache: cache}
}

func (uc *InvalidateSearchCacheUseCase) Execute(ctx context.Context, event domain.ReservationChanged) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "InvalidateSearchCache",
		"event_id":    event.EventID.String(),
		"property_id": event.PropertyID.String(),
		"action":      event.Action,
	})

	if uc.cache == nil {
		ucLogger.Debug("Search cache disabled, nothing to invalidate", nil)
		return nil
	}

	if err := uc.cache.Invalidate(ctx); err != nil {
		ucLogger.Error("Failed to invalidate search cache", err, nil)
		return fmt.Errorf("failed to invalidate search cache: %w", err)
	}

	ucLogger.Info("Search cache invalidated", nil)
	return nil
}
