package cache

import (
	"context"
	"easystay-service/internal/core/domain"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeMemcache - in-memory memcached с семантикой Add/Increment
type fakeMemcache struct {
	mu      sync.Mutex
	items   map[string][]byte
	failGet error
}

func newFakeMemcache() *fakeMemcache {
	return &fakeMemcache{items: make(map[string][]byte)}
}

func (f *fakeMemcache) Get(key string) (*memcache.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	v, ok := f.items[key]
	if !ok {
		return nil, memcache.ErrCacheMiss
	}
	return &memcache.Item{Key: key, Value: v}, nil
}

func (f *fakeMemcache) Set(item *memcache.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.Key] = item.Value
	return nil
}

func (f *fakeMemcache) Add(item *memcache.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.Key]; ok {
		return memcache.ErrNotStored
	}
	f.items[item.Key] = item.Value
	return nil
}

func (f *fakeMemcache) Increment(key string, delta uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	if !ok {
		return 0, memcache.ErrCacheMiss
	}
	n, err := strconv.ParseUint(string(v), 10, 64)
	if err != nil {
		return 0, err
	}
	n += delta
	f.items[key] = []byte(strconv.FormatUint(n, 10))
	return n, nil
}

func intPtr(v int) *int { return &v }

func sampleResult() *domain.SearchResult {
	return &domain.SearchResult{
		Properties: []domain.Property{{ID: uuid.New(), Slug: "lake-cabin", Name: "Lake Cabin", NightlyPrice: 120}},
		Total:      1,
	}
}

func TestBuildKey_SameFilterSameKey(t *testing.T) {
	a := domain.SearchQuery{Text: "  Lake Tahoe ", Guests: intPtr(2), CheckIn: "2026-07-01", CheckOut: "2026-07-05"}
	b := domain.SearchQuery{Text: "Lake Tahoe", Guests: intPtr(2), CheckIn: "2026-07-01T00:00:00Z", CheckOut: "2026-07-05"}

	assert.Equal(t, buildKey(0, a), buildKey(0, b))
	assert.NotEqual(t, buildKey(0, a), buildKey(1, a), "generation is part of the key")
	assert.Len(t, buildKey(0, a), len(keyPrefix)+64)
}

// Разный текст для ILIKE - разные ключи, иначе кэш отдаст чужие строки
func TestBuildKey_DistinctSearchTextDistinctKeys(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.SearchQuery
	}{
		{"inner whitespace", domain.SearchQuery{Text: "beach house"}, domain.SearchQuery{Text: "beach  house"}},
		{"case folding ss", domain.SearchQuery{Text: "Straße"}, domain.SearchQuery{Text: "STRASSE"}},
		{"case", domain.SearchQuery{Text: "Lake"}, domain.SearchQuery{Text: "lake"}},
		{"separator in text", domain.SearchQuery{Text: "x|2"}, domain.SearchQuery{Text: "x", Guests: intPtr(2)}},
		{"literal null", domain.SearchQuery{Text: "null"}, domain.SearchQuery{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, buildKey(0, tt.a), buildKey(0, tt.b))
		})
	}
}

func TestBuildKey_BoundsUseExactCoordinates(t *testing.T) {
	a := domain.SearchQuery{Bounds: &domain.Bounds{North: 34.0000001, South: 33, East: -118, West: -119}}
	b := domain.SearchQuery{Bounds: &domain.Bounds{North: 34.0000002, South: 33, East: -118, West: -119}}
	same := domain.SearchQuery{Bounds: &domain.Bounds{North: 34.0000001, South: 33, East: -118, West: -119}}

	assert.NotEqual(t, buildKey(0, a), buildKey(0, b))
	assert.Equal(t, buildKey(0, a), buildKey(0, same))
}

func TestBuildKey_IgnoresDatesWhenStayInvalid(t *testing.T) {
	noDates := domain.SearchQuery{Text: "beach"}
	backwards := domain.SearchQuery{Text: "beach", CheckIn: "2026-07-05", CheckOut: "2026-07-01"}
	valid := domain.SearchQuery{Text: "beach", CheckIn: "2026-07-01", CheckOut: "2026-07-05"}

	assert.Equal(t, buildKey(0, noDates), buildKey(0, backwards))
	assert.NotEqual(t, buildKey(0, noDates), buildKey(0, valid))
}

func TestBuildKey_DistinguishesFilters(t *testing.T) {
	base := domain.SearchQuery{Text: "beach"}
	withGuests := domain.SearchQuery{Text: "beach", Guests: intPtr(4)}
	withBounds := domain.SearchQuery{Text: "beach", Bounds: &domain.Bounds{North: 34, South: 33, East: -118, West: -119}}
	otherBounds := domain.SearchQuery{Text: "beach", Bounds: &domain.Bounds{North: 35, South: 33, East: -118, West: -119}}

	keys := map[string]bool{
		buildKey(0, base):        true,
		buildKey(0, withGuests):  true,
		buildKey(0, withBounds):  true,
		buildKey(0, otherBounds): true,
	}
	assert.Len(t, keys, 4)
}

func TestSearchCache_LocalOnly(t *testing.T) {
	c := newSearchCache(Config{LocalMaxSize: 100, TTL: time.Minute}, nil)
	defer c.Close()
	ctx := context.Background()
	q := domain.SearchQuery{Text: "cabin"}

	_, ok := c.Get(ctx, q)
	assert.False(t, ok)

	c.Set(ctx, q, sampleResult())
	got, ok := c.Get(ctx, q)
	require.True(t, ok)
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, "lake-cabin", got.Properties[0].Slug)

	require.NoError(t, c.Invalidate(ctx))
	_, ok = c.Get(ctx, q)
	assert.False(t, ok)
}

func TestSearchCache_EmptyResultIsCached(t *testing.T) {
	c := newSearchCache(Config{}, nil)
	defer c.Close()
	ctx := context.Background()
	q := domain.SearchQuery{Text: "nowhere"}

	c.Set(ctx, q, &domain.SearchResult{Properties: nil, Total: 0})
	got, ok := c.Get(ctx, q)
	require.True(t, ok)
	assert.NotNil(t, got.Properties)
	assert.Empty(t, got.Properties)
}

func TestSearchCache_SharedThroughMemcached(t *testing.T) {
	remote := newFakeMemcache()
	writer := newSearchCache(Config{TTL: time.Minute}, remote)
	defer writer.Close()
	reader := newSearchCache(Config{TTL: time.Minute}, remote)
	defer reader.Close()
	ctx := context.Background()
	q := domain.SearchQuery{Text: "cabin", Guests: intPtr(2)}

	writer.Set(ctx, q, sampleResult())

	got, ok := reader.Get(ctx, q)
	require.True(t, ok)
	assert.Equal(t, "lake-cabin", got.Properties[0].Slug)

	// второй экземпляр сбрасывает кэш, первый тоже должен промахнуться
	require.NoError(t, reader.Invalidate(ctx))
	_, ok = writer.Get(ctx, q)
	assert.False(t, ok)

	require.NoError(t, writer.Invalidate(ctx))
	gen, ok := writer.currentGeneration(ctx)
	require.True(t, ok)
	assert.Equal(t, uint64(2), gen)
}

func TestSearchCache_BypassedWhenGenerationUnreadable(t *testing.T) {
	remote := newFakeMemcache()
	c := newSearchCache(Config{}, remote)
	defer c.Close()
	ctx := context.Background()
	q := domain.SearchQuery{Text: "cabin"}

	c.Set(ctx, q, sampleResult())
	remote.failGet = errors.New("connection refused")

	_, ok := c.Get(ctx, q)
	assert.False(t, ok)
}

func TestTTLSeconds(t *testing.T) {
	assert.Equal(t, int32(1), ttlSeconds(10*time.Millisecond))
	assert.Equal(t, int32(90), ttlSeconds(90*time.Second))
}
