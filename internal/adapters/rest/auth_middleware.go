package rest

import (
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/port"
	"net/http"
	"strings"
)

type AuthMiddleware struct {
	tokens port.TokenServicePort
}

func NewAuthMiddleware(tokens port.TokenServicePort) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate проверяет Bearer-токен партнера и кладет claims в контекст
func (am *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			WriteJSONError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, tokenString, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			WriteJSONError(w, http.StatusUnauthorized, "Invalid token format")
			return
		}

		claims, err := am.tokens.ValidateToken(r.Context(), strings.TrimSpace(tokenString))
		if err != nil {
			WriteJSONError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
			"affiliate_id": claims.AffiliateID.String(),
		})
		ctx := contextkeys.ContextWithClaims(r.Context(), claims)
		ctx = contextkeys.ContextWithLogger(ctx, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
