package port

import (
	"context"
	"easystay-service/internal/core/domain"

	"github.com/google/uuid"
)

type AffiliateRepositoryPort interface {
	// FindByEmail возвращает (nil, nil), если партнер не найден
	FindByEmail(ctx context.Context, email string) (*domain.Affiliate, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Affiliate, error)
	// FindLinkByCode возвращает (nil, nil), если ссылка не найдена
	FindLinkByCode(ctx context.Context, code string) (*domain.ReferralLink, error)
	SaveClick(ctx context.Context, click domain.ReferralClick) error
	GetLinkPerformance(ctx context.Context, affiliateID uuid.UUID) ([]domain.LinkPerformance, error)
}
