package domain

import (
	"github.com/google/uuid"
)

// Property - объект размещения в том виде, в каком его отдает поиск.
type Property struct {
	ID           uuid.UUID
	Slug         string
	Name         string
	NightlyPrice float64
	Rating       *float64
	Capacity     int
	Bedrooms     int
	Bathrooms    float64
	ImageURL     *string

	Latitude  *float64
	Longitude *float64

	AddressLine string
	City        string
	State       string
	PostalCode  string
	Country     string

	// Заполняется только когда в запросе есть корректные даты заезда/выезда
	Reservations []ReservationWindow
}

// HasCoordinates - есть ли у объекта обе координаты
func (p Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
