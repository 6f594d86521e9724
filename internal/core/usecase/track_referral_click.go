package usecase

import (
	"context"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TrackReferralClickUseCase struct {
	repo   port.AffiliateRepositoryPort
	events port.ReferralEventsPort // может быть nil, если брокер выключен
	now    func() time.Time
}

func NewTrackReferralClickUseCase(repo port.AffiliateRepositoryPort, events port.ReferralEventsPort) *TrackReferralClickUseCase {
	return &TrackReferralClickUseCase{
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

func (uc *TrackReferralClickUseCase) Execute(ctx context.Context, click domain.ReferralClick) (*domain.ReferralLink, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "TrackReferralClick",
		"code":     click.Code,
	})

	code := strings.TrimSpace(click.Code)
	if code == "" {
		return nil, domain.ErrLinkNotFound
	}

	link, err := uc.repo.FindLinkByCode(ctx, code)
	if err != nil {
		ucLogger.Error("Repository failed to find link by code", err, nil)
		return nil, fmt.Errorf("internal server error: %w", err)
	}
	if link == nil {
		ucLogger.Warn("Referral link not found", nil)
		return nil, domain.ErrLinkNotFound
	}
	if !link.IsActive {
		ucLogger.Warn("Referral link is inactive", port.Fields{"link_id": link.ID.String()})
		return nil, domain.ErrLinkInactive
	}

	click.ID = uuid.New()
	click.LinkID = link.ID
	click.Code = link.Code
	click.CreatedAt = uc.now().UTC()

	if err := uc.repo.SaveClick(ctx, click); err != nil {
		ucLogger.Error("Failed to save referral click", err, nil)
		return nil, err
	}

	// Событие не критично для редиректа, ошибку только логируем
	if uc.events != nil {
		if err := uc.events.PublishClick(ctx, click); err != nil {
			ucLogger.Error("Failed to publish referral click event", err, port.Fields{"click_id": click.ID.String()})
		}
	}

	ucLogger.Info("Referral click tracked", port.Fields{
		"link_id":  link.ID.String(),
		"click_id": click.ID.String(),
	})
	return link, nil
}
