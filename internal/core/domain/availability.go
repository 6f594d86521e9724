package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReservationWindow - занятый диапазон дат объекта, [Start, End).
// Даты храним строками: в таком виде они приходят из БД и из query-параметров.
type ReservationWindow struct {
	PropertyID uuid.UUID
	Start      string
	End        string
}

// StayInterval - запрошенное проживание, [CheckIn, CheckOut)
type StayInterval struct {
	CheckIn  time.Time
	CheckOut time.Time
}

var dateLayouts = []string{time.DateOnly, time.RFC3339, time.RFC3339Nano}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseStay разбирает даты заезда и выезда.
// ok == false означает, что фильтр по датам применять не нужно:
// одна из дат пустая, битая или checkIn не раньше checkOut.
func ParseStay(checkIn, checkOut string) (StayInterval, bool) {
	in, ok := parseDate(checkIn)
	if !ok {
		return StayInterval{}, false
	}
	out, ok := parseDate(checkOut)
	if !ok {
		return StayInterval{}, false
	}
	if !in.Before(out) {
		return StayInterval{}, false
	}
	return StayInterval{CheckIn: in, CheckOut: out}, true
}

// IsMalformed - хотя бы одна из дат брони не разбирается
func (w ReservationWindow) IsMalformed() bool {
	_, okStart := parseDate(w.Start)
	_, okEnd := parseDate(w.End)
	return !okStart || !okEnd
}

// Overlaps проверяет пересечение полуинтервалов:
// start < stay.CheckOut && end > stay.CheckIn.
// Бронь с битой датой не пересекается ни с чем.
func (w ReservationWindow) Overlaps(stay StayInterval) bool {
	start, ok := parseDate(w.Start)
	if !ok {
		return false
	}
	end, ok := parseDate(w.End)
	if !ok {
		return false
	}
	return start.Before(stay.CheckOut) && end.After(stay.CheckIn)
}

// IsAvailable - ни одна бронь объекта не пересекается с проживанием
func (p Property) IsAvailable(stay StayInterval) bool {
	for _, w := range p.Reservations {
		if w.Overlaps(stay) {
			return false
		}
	}
	return true
}

// FilterAvailable оставляет объекты без пересекающихся броней, порядок сохраняется.
// Если даты не заданы или некорректны, возвращаются все объекты.
func FilterAvailable(properties []Property, checkIn, checkOut string) []Property {
	result := make([]Property, 0, len(properties))

	stay, ok := ParseStay(checkIn, checkOut)
	if !ok {
		return append(result, properties...)
	}

	for _, p := range properties {
		if p.IsAvailable(stay) {
			result = append(result, p)
		}
	}
	return result
}

// CountMalformedWindows считает брони с нечитаемыми датами
func CountMalformedWindows(properties []Property) int {
	count := 0
	for _, p := range properties {
		for _, w := range p.Reservations {
			if w.IsMalformed() {
				count++
			}
		}
	}
	return count
}
