package port

import (
	"context"
	"easystay-service/internal/core/domain"
	"time"
)

type TokenServicePort interface {
	GenerateToken(ctx context.Context, affiliate *domain.Affiliate, ttl time.Duration) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error)
}
