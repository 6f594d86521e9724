package usecase

import (
	"context"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"errors"
	"strings"
)

type GetPropertyBySlugUseCase struct {
	properties port.PropertyStoragePort
}

func NewGetPropertyBySlugUseCase(properties port.PropertyStoragePort) *GetPropertyBySlugUseCase {
	return &GetPropertyBySlugUseCase{properties: properties}
}

func (uc *GetPropertyBySlugUseCase) Execute(ctx context.Context, slug string) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetPropertyBySlug",
		"slug":     slug,
	})

	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		ucLogger.Warn("Empty slug requested", nil)
		return nil, domain.ErrPropertyNotFound
	}

	property, err := uc.properties.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrPropertyNotFound) {
			ucLogger.Warn("Property not found", nil)
		} else {
			ucLogger.Error("Storage returned an error", err, nil)
		}
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"property_id": property.ID.String()})
	return property, nil
}
