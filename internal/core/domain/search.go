package domain

import (
	"math"
	"strconv"
	"strings"
)

// Bounds - прямоугольник видимой области карты.
// West > East означает, что область пересекает 180-й меридиан.
type Bounds struct {
	North float64
	South float64
	East  float64
	West  float64
}

// CrossesAntimeridian - область переходит через 180-й меридиан
func (b Bounds) CrossesAntimeridian() bool {
	return b.West > b.East
}

// ParseBounds разбирает строку "north,south,east,west".
// Неполные или некорректные значения дают ok == false, фильтр тогда не применяется.
func ParseBounds(raw string) (*Bounds, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, false
	}

	values := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		values[i] = v
	}

	b := &Bounds{North: values[0], South: values[1], East: values[2], West: values[3]}

	if b.North > 90 || b.South < -90 || b.South > b.North {
		return nil, false
	}
	if b.East < -180 || b.East > 180 || b.West < -180 || b.West > 180 {
		return nil, false
	}
	return b, true
}

// ParseGuests - положительное целое число гостей, иначе nil
func ParseGuests(raw string) *int {
	guests, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || guests < 1 {
		return nil
	}
	return &guests
}

// SearchQuery - параметры одного поискового запроса, нигде не сохраняется
type SearchQuery struct {
	Text     string
	Guests   *int
	CheckIn  string
	CheckOut string
	Bounds   *Bounds
}

// SearchText - текст запроса в том виде, в каком он уходит в ILIKE.
// По этой же строке строится ключ кэша.
func (q SearchQuery) SearchText() string {
	return strings.TrimSpace(q.Text)
}

// Stay возвращает запрошенный интервал проживания, если он корректен
func (q SearchQuery) Stay() (StayInterval, bool) {
	return ParseStay(q.CheckIn, q.CheckOut)
}

// SearchResult - ответ поиска
type SearchResult struct {
	Properties []Property
	Total      int
}
