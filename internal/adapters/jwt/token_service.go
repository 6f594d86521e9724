package token_adapter

import (
	"context"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "easystay-affiliates"

// TokenService выпускает и проверяет access-токены партнеров (HS256)
type TokenService struct {
	signingKey []byte
	now        func() time.Time
}

func NewTokenService(signingKey string) (*TokenService, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("JWT signing key cannot be empty")
	}
	return &TokenService{signingKey: []byte(signingKey), now: time.Now}, nil
}

type affiliateClaims struct {
	AffiliateID uuid.UUID `json:"affiliate_id"`
	Email       string    `json:"email"`
	jwt.RegisteredClaims
}

func (s *TokenService) GenerateToken(ctx context.Context, affiliate *domain.Affiliate, ttl time.Duration) (string, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":    "TokenService",
		"method":       "GenerateToken",
		"affiliate_id": affiliate.ID.String(),
	})

	now := s.now()
	claims := &affiliateClaims{
		AffiliateID: affiliate.ID,
		Email:       affiliate.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   affiliate.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.Error("Failed to sign token", err, nil)
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	logger.Debug("Token generated.", port.Fields{"ttl": ttl.String()})
	return signed, nil
}

// ValidateToken возвращает domain.ErrTokenInvalid на любую проблему с токеном
func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "TokenService",
		"method":    "ValidateToken",
	})

	token, err := jwt.ParseWithClaims(tokenString, &affiliateClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Warn("Token has expired", nil)
		} else {
			logger.Warn("Invalid token format or signature", port.Fields{"error": err.Error()})
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*affiliateClaims)
	if !ok || !token.Valid || claims.AffiliateID == uuid.Nil {
		logger.Warn("Token parsed but claims are unusable", nil)
		return nil, domain.ErrTokenInvalid
	}

	return &domain.Claims{AffiliateID: claims.AffiliateID, Email: claims.Email}, nil
}
