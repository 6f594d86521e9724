package contextkeys

import (
	"context"
	"easystay-service/internal/core/domain"
)

type claimsKeyType struct{}

var claimsKey = claimsKeyType{}

func ContextWithClaims(ctx context.Context, claims *domain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext возвращает данные токена партнера, положенные auth-middleware
func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*domain.Claims)
	return claims, ok && claims != nil
}
