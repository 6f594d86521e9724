package usecase

import (
	"context"
	"easystay-service/internal/core/domain"
	"sync"
	"time"

	"github.com/google/uuid"
)

type fakePropertyStorage struct {
	properties []domain.Property
	err        error
	lastLimit  int
	calls      int
	bySlug     map[string]*domain.Property
}

func (f *fakePropertyStorage) FindCandidates(ctx context.Context, query domain.SearchQuery, limit int) ([]domain.Property, error) {
	f.calls++
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Property, len(f.properties))
	copy(out, f.properties)
	return out, nil
}

func (f *fakePropertyStorage) GetBySlug(ctx context.Context, slug string) (*domain.Property, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.bySlug[slug]; ok {
		return p, nil
	}
	return nil, domain.ErrPropertyNotFound
}

type fakeReservationStorage struct {
	windows map[uuid.UUID][]domain.ReservationWindow
	err     error
	calls   int
}

func (f *fakeReservationStorage) ListWindows(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.ReservationWindow, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.windows, nil
}

type fakeSearchCache struct {
	mu          sync.Mutex
	stored      map[string]*domain.SearchResult
	invalidated int
	err         error
}

func newFakeSearchCache() *fakeSearchCache {
	return &fakeSearchCache{stored: make(map[string]*domain.SearchResult)}
}

func cacheKey(q domain.SearchQuery) string {
	return q.Text + "|" + q.CheckIn + "|" + q.CheckOut
}

func (f *fakeSearchCache) Get(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.stored[cacheKey(q)]
	return r, ok
}

func (f *fakeSearchCache) Set(ctx context.Context, q domain.SearchQuery, r *domain.SearchResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored[cacheKey(q)] = r
}

func (f *fakeSearchCache) Invalidate(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.invalidated++
	f.stored = make(map[string]*domain.SearchResult)
	return nil
}

type fakeAffiliateRepo struct {
	affiliate *domain.Affiliate
	link      *domain.ReferralLink
	perf      []domain.LinkPerformance
	clicks    []domain.ReferralClick
	err       error
}

func (f *fakeAffiliateRepo) FindByEmail(ctx context.Context, email string) (*domain.Affiliate, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.affiliate != nil && f.affiliate.Email == email {
		return f.affiliate, nil
	}
	return nil, nil
}

func (f *fakeAffiliateRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Affiliate, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.affiliate != nil && f.affiliate.ID == id {
		return f.affiliate, nil
	}
	return nil, nil
}

func (f *fakeAffiliateRepo) FindLinkByCode(ctx context.Context, code string) (*domain.ReferralLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.link != nil && f.link.Code == code {
		return f.link, nil
	}
	return nil, nil
}

func (f *fakeAffiliateRepo) SaveClick(ctx context.Context, click domain.ReferralClick) error {
	if f.err != nil {
		return f.err
	}
	f.clicks = append(f.clicks, click)
	return nil
}

func (f *fakeAffiliateRepo) GetLinkPerformance(ctx context.Context, id uuid.UUID) ([]domain.LinkPerformance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.perf, nil
}

type fakeTokenService struct {
	token string
	err   error
	ttl   time.Duration
}

func (f *fakeTokenService) GenerateToken(ctx context.Context, a *domain.Affiliate, ttl time.Duration) (string, error) {
	f.ttl = ttl
	return f.token, f.err
}

func (f *fakeTokenService) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	return nil, domain.ErrTokenInvalid
}

type fakeReferralEvents struct {
	published []domain.ReferralClick
	err       error
}

func (f *fakeReferralEvents) PublishClick(ctx context.Context, click domain.ReferralClick) error {
	f.published = append(f.published, click)
	return f.err
}
