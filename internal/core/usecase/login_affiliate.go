package usecase

import (
	"context"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"fmt"
	"strings"
	"time"
)

type LoginAffiliateUseCase struct {
	repo           port.AffiliateRepositoryPort
	tokenSvc       port.TokenServicePort
	accessTokenTTL time.Duration
}

func NewLoginAffiliateUseCase(repo port.AffiliateRepositoryPort, tokenSvc port.TokenServicePort, accessTokenTTL time.Duration) *LoginAffiliateUseCase {
	return &LoginAffiliateUseCase{
		repo:           repo,
		tokenSvc:       tokenSvc,
		accessTokenTTL: accessTokenTTL,
	}
}

func (uc *LoginAffiliateUseCase) Execute(ctx context.Context, email, password string) (*domain.Affiliate, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "LoginAffiliate",
		"email":    email,
	})
	ucLogger.Info("Use case started: attempting to login affiliate", nil)

	affiliate, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		ucLogger.Error("Repository failed to find affiliate by email", err, nil)
		return nil, "", fmt.Errorf("internal server error: %w", err)
	}
	if affiliate == nil {
		ucLogger.Warn("Login failed: affiliate not found", nil)
		return nil, "", domain.ErrInvalidCredentials
	}

	ucLogger = ucLogger.WithFields(port.Fields{"affiliate_id": affiliate.ID.String()})

	if !affiliate.CheckPassword(password) {
		ucLogger.Warn("Login failed: invalid credentials", nil)
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := uc.tokenSvc.GenerateToken(ctx, affiliate, uc.accessTokenTTL)
	if err != nil {
		ucLogger.Error("Failed to generate token after successful login", err, nil)
		return nil, "", err
	}

	ucLogger.Info("Use case finished: affiliate logged in successfully", nil)
	return affiliate, token, nil
}
