package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func propertyWith(name string, windows ...ReservationWindow) Property {
	return Property{ID: uuid.New(), Name: name, Reservations: windows}
}

func names(props []Property) []string {
	out := make([]string, 0, len(props))
	for _, p := range props {
		out = append(out, p.Name)
	}
	return out
}

func TestParseStay(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  string
		checkOut string
		ok       bool
	}{
		{"valid dates", "2024-06-05", "2024-06-08", true},
		{"rfc3339 timestamps", "2024-06-05T15:00:00Z", "2024-06-08T11:00:00Z", true},
		{"missing check-in", "", "2024-06-08", false},
		{"missing check-out", "2024-06-05", "", false},
		{"malformed check-in", "June 5th", "2024-06-08", false},
		{"equal dates", "2024-06-05", "2024-06-05", false},
		{"reversed dates", "2024-06-08", "2024-06-05", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseStay(tt.checkIn, tt.checkOut)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestReservationWindowOverlaps(t *testing.T) {
	window := ReservationWindow{Start: "2024-06-01", End: "2024-06-10"}

	tests := []struct {
		name     string
		checkIn  string
		checkOut string
		overlaps bool
	}{
		{"fully contained", "2024-06-05", "2024-06-08", true},
		{"covers whole window", "2024-05-20", "2024-06-20", true},
		{"overlaps start", "2024-05-28", "2024-06-02", true},
		{"overlaps end", "2024-06-09", "2024-06-12", true},
		{"touches end boundary", "2024-06-10", "2024-06-15", false},
		{"touches start boundary", "2024-05-01", "2024-06-01", false},
		{"entirely after", "2024-07-01", "2024-07-05", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stay, ok := ParseStay(tt.checkIn, tt.checkOut)
			require.True(t, ok)
			assert.Equal(t, tt.overlaps, window.Overlaps(stay))
		})
	}
}

func TestFilterAvailable_NoReservationsAlwaysIncluded(t *testing.T) {
	props := []Property{propertyWith("a"), propertyWith("b")}

	for _, dates := range [][2]string{
		{"2024-06-05", "2024-06-08"},
		{"", ""},
		{"2024-06-08", "2024-06-05"},
		{"garbage", "2024-06-05"},
	} {
		got := FilterAvailable(props, dates[0], dates[1])
		assert.Equal(t, []string{"a", "b"}, names(got), "dates %v", dates)
	}
}

func TestFilterAvailable_InvalidStayDisablesFiltering(t *testing.T) {
	booked := propertyWith("booked", ReservationWindow{Start: "2024-06-01", End: "2024-06-10"})
	free := propertyWith("free")
	props := []Property{booked, free}

	assert.Equal(t, []string{"booked", "free"}, names(FilterAvailable(props, "2024-06-08", "2024-06-05")))
	assert.Equal(t, []string{"booked", "free"}, names(FilterAvailable(props, "2024-06-05", "2024-06-05")))
	assert.Equal(t, []string{"booked", "free"}, names(FilterAvailable(props, "2024-06-05", "")))
}

func TestFilterAvailable_Boundaries(t *testing.T) {
	booked := propertyWith("booked", ReservationWindow{Start: "2024-06-01", End: "2024-06-10"})
	props := []Property{booked}

	assert.Empty(t, FilterAvailable(props, "2024-06-05", "2024-06-08"), "contained stay must exclude")
	assert.Equal(t, []string{"booked"}, names(FilterAvailable(props, "2024-06-10", "2024-06-15")), "checkout day is free")
	assert.Equal(t, []string{"booked"}, names(FilterAvailable(props, "2024-05-01", "2024-06-01")), "check-in day is free")
}

func TestFilterAvailable_MalformedReservationFailsOpen(t *testing.T) {
	broken := propertyWith("broken", ReservationWindow{Start: "not-a-date", End: "2024-06-10"})
	props := []Property{broken}

	got := FilterAvailable(props, "2024-06-05", "2024-06-08")
	assert.Equal(t, []string{"broken"}, names(got))
	assert.Equal(t, 1, CountMalformedWindows(props))
}

func TestFilterAvailable_PreservesOrder(t *testing.T) {
	props := []Property{
		propertyWith("cheap"),
		propertyWith("mid", ReservationWindow{Start: "2024-06-04", End: "2024-06-06"}),
		propertyWith("pricey", ReservationWindow{Start: "2024-07-01", End: "2024-07-03"}),
		propertyWith("lux", ReservationWindow{Start: "2024-06-07", End: "2024-06-09"}),
	}

	got := FilterAvailable(props, "2024-06-05", "2024-06-08")
	if diff := cmp.Diff([]string{"cheap", "pricey"}, names(got)); diff != "" {
		t.Errorf("FilterAvailable() mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterAvailable_DoesNotAliasInput(t *testing.T) {
	props := []Property{propertyWith("a")}
	got := FilterAvailable(props, "", "")
	got[0].Name = "changed"
	assert.Equal(t, "a", props[0].Name)
}
