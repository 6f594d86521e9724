package usecase

import (
	"context"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"

	"github.com/google/uuid"
)

type GetAffiliateDashboardUseCase struct {
	repo port.AffiliateRepositoryPort
}

func NewGetAffiliateDashboardUseCase(repo port.AffiliateRepositoryPort) *GetAffiliateDashboardUseCase {
	return &GetAffiliateDashboardUseCase{repo: repo}
}

func (uc *GetAffiliateDashboardUseCase) Execute(ctx context.Context, affiliateID uuid.UUID) (*domain.AffiliateDashboard, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":     "GetAffiliateDashboard",
		"affiliate_id": affiliateID.String(),
	})

	// Токен может пережить удаленного партнера
	affiliate, err := uc.repo.FindByID(ctx, affiliateID)
	if err != nil {
		ucLogger.Error("Repository failed to find affiliate", err, nil)
		return nil, err
	}
	if affiliate == nil {
		ucLogger.Warn("Affiliate not found", nil)
		return nil, domain.ErrAffiliateNotFound
	}

	links, err := uc.repo.GetLinkPerformance(ctx, affiliateID)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err
	}

	dashboard := domain.NewAffiliateDashboard(affiliateID, links)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"links":            len(dashboard.Links),
		"total_referrals":  dashboard.TotalReferrals,
		"total_commission": dashboard.TotalCommission,
	})
	return dashboard, nil
}
