package cache

import (
	"crypto/sha256"
	"easystay-service/internal/core/domain"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const keyPrefix = "search:"

// buildKeyPayload собирает строку из тех же значений, что уходят в SQL-фильтр.
// Даты попадают в ключ только если интервал проживания валиден: иначе фильтр по датам не применяется.
func buildKeyPayload(generation uint64, q domain.SearchQuery) string {
	parts := []string{strconv.FormatUint(generation, 10)}

	if text := q.SearchText(); text != "" {
		parts = append(parts, "q="+strconv.Quote(text))
	} else {
		parts = append(parts, "null")
	}

	if q.Guests != nil {
		parts = append(parts, strconv.Itoa(*q.Guests))
	} else {
		parts = append(parts, "null")
	}

	if stay, ok := q.Stay(); ok {
		parts = append(parts, stay.CheckIn.UTC().Format(time.RFC3339Nano), stay.CheckOut.UTC().Format(time.RFC3339Nano))
	} else {
		parts = append(parts, "null", "null")
	}

	if b := q.Bounds; b != nil {
		parts = append(parts, formatCoord(b.North), formatCoord(b.South), formatCoord(b.East), formatCoord(b.West))
	} else {
		parts = append(parts, "null")
	}

	return strings.Join(parts, "|")
}

// buildKey - sha256 от payload, укладывается в ограничения ключей memcached
func buildKey(generation uint64, q domain.SearchQuery) string {
	sum := sha256.Sum256([]byte(buildKeyPayload(generation, q)))
	return fmt.Sprintf("%s%x", keyPrefix, sum)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
