package rest

import (
	"context"
	"easystay-service/internal/core/domain"
	"time"

	"github.com/google/uuid"
)

type fakeSearchUC struct {
	gotQuery domain.SearchQuery
	result   *domain.SearchResult
	err      error
}

func (f *fakeSearchUC) Execute(_ context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	f.gotQuery = query
	return f.result, f.err
}

type fakeGetBySlugUC struct {
	property *domain.Property
	err      error
}

func (f *fakeGetBySlugUC) Execute(_ context.Context, _ string) (*domain.Property, error) {
	return f.property, f.err
}

type fakeTrackClickUC struct {
	gotClick domain.ReferralClick
	link     *domain.ReferralLink
	err      error
}

func (f *fakeTrackClickUC) Execute(_ context.Context, click domain.ReferralClick) (*domain.ReferralLink, error) {
	f.gotClick = click
	return f.link, f.err
}

type fakeLoginUC struct {
	affiliate *domain.Affiliate
	token     string
	err       error
}

func (f *fakeLoginUC) Execute(_ context.Context, _, _ string) (*domain.Affiliate, string, error) {
	return f.affiliate, f.token, f.err
}

type fakeDashboardUC struct {
	gotID     uuid.UUID
	dashboard *domain.AffiliateDashboard
	err       error
}

func (f *fakeDashboardUC) Execute(_ context.Context, affiliateID uuid.UUID) (*domain.AffiliateDashboard, error) {
	f.gotID = affiliateID
	return f.dashboard, f.err
}

type fakeTokens struct {
	claims *domain.Claims
}

func (f *fakeTokens) GenerateToken(context.Context, *domain.Affiliate, time.Duration) (string, error) {
	return "token", nil
}

func (f *fakeTokens) ValidateToken(_ context.Context, tokenString string) (*domain.Claims, error) {
	if tokenString != "valid" {
		return nil, domain.ErrTokenInvalid
	}
	return f.claims, nil
}

type fakeHealth struct {
	err error
}

func (f *fakeHealth) Ping(context.Context) error { return f.err }
