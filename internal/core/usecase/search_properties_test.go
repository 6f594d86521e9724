package usecase

import (
	"context"
	"easystay-service/internal/core/domain"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchFixture() (*fakePropertyStorage, *fakeReservationStorage) {
	cheap := domain.Property{ID: uuid.New(), Slug: "cheap", NightlyPrice: 90}
	booked := domain.Property{ID: uuid.New(), Slug: "booked", NightlyPrice: 120}
	lux := domain.Property{ID: uuid.New(), Slug: "lux", NightlyPrice: 400}

	props := &fakePropertyStorage{properties: []domain.Property{cheap, booked, lux}}
	reservations := &fakeReservationStorage{windows: map[uuid.UUID][]domain.ReservationWindow{
		booked.ID: {{PropertyID: booked.ID, Start: "2024-06-01", End: "2024-06-10"}},
		lux.ID:    {{PropertyID: lux.ID, Start: "2024-06-10", End: "2024-06-12"}},
	}}
	return props, reservations
}

func slugs(props []domain.Property) []string {
	out := make([]string, 0, len(props))
	for _, p := range props {
		out = append(out, p.Slug)
	}
	return out
}

func TestSearchProperties_FiltersByStay(t *testing.T) {
	props, reservations := searchFixture()
	uc := NewSearchPropertiesUseCase(props, reservations, nil, 0)

	result, err := uc.Execute(context.Background(), domain.SearchQuery{CheckIn: "2024-06-05", CheckOut: "2024-06-10"})
	require.NoError(t, err)

	assert.Equal(t, []string{"cheap", "lux"}, slugs(result.Properties))
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, DefaultSearchLimit, props.lastLimit)
	assert.Equal(t, 1, reservations.calls)
}

func TestSearchProperties_SkipsReservationsWithoutStay(t *testing.T) {
	props, reservations := searchFixture()
	uc := NewSearchPropertiesUseCase(props, reservations, nil, 50)

	result, err := uc.Execute(context.Background(), domain.SearchQuery{CheckIn: "2024-06-10", CheckOut: "2024-06-05"})
	require.NoError(t, err)

	assert.Equal(t, []string{"cheap", "booked", "lux"}, slugs(result.Properties))
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 50, props.lastLimit)
	assert.Zero(t, reservations.calls)
}

func TestSearchProperties_StorageError(t *testing.T) {
	props := &fakePropertyStorage{err: errors.New("connection refused")}
	uc := NewSearchPropertiesUseCase(props, &fakeReservationStorage{}, nil, 0)

	_, err := uc.Execute(context.Background(), domain.SearchQuery{})
	assert.Error(t, err)
}

func TestSearchProperties_ReservationError(t *testing.T) {
	props, _ := searchFixture()
	reservations := &fakeReservationStorage{err: errors.New("timeout")}
	uc := NewSearchPropertiesUseCase(props, reservations, nil, 0)

	_, err := uc.Execute(context.Background(), domain.SearchQuery{CheckIn: "2024-06-05", CheckOut: "2024-06-08"})
	assert.Error(t, err)
}

func TestSearchProperties_UsesCache(t *testing.T) {
	props, reservations := searchFixture()
	cache := newFakeSearchCache()
	uc := NewSearchPropertiesUseCase(props, reservations, cache, 0)

	query := domain.SearchQuery{Text: "lake", CheckIn: "2024-06-05", CheckOut: "2024-06-08"}

	first, err := uc.Execute(context.Background(), query)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, props.calls, "second call must be served from cache")
}
