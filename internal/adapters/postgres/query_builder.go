package postgres

import (
	"easystay-service/internal/core/domain"
	"fmt"
	"strings"
)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId:      1,
		conditions: []string{"p.is_active = true"},
		args:       make([]interface{}, 0),
	}
}

// nextArg регистрирует аргумент и возвращает его плейсхолдер
func (qb *queryBuilder) nextArg(arg interface{}) string {
	placeholder := fmt.Sprintf("$%d", qb.argId)
	qb.args = append(qb.args, arg)
	qb.argId++
	return placeholder
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.nextArg(arg)))
}

func (qb *queryBuilder) AddFloatRange(fieldName string, min, max float64) {
	qb.addCondition("%s >= %s", fieldName, min)
	qb.addCondition("%s <= %s", fieldName, max)
}

// AddTextSearch ищет подстроку без учета регистра в любом из полей
func (qb *queryBuilder) AddTextSearch(text string, fieldNames ...string) {
	pattern := qb.nextArg("%" + escapeLike(text) + "%")

	parts := make([]string, len(fieldNames))
	for i, field := range fieldNames {
		parts[i] = fmt.Sprintf("%s ILIKE %s", field, pattern)
	}
	qb.conditions = append(qb.conditions, "("+strings.Join(parts, " OR ")+")")
}

// build создает WHERE-часть запроса
func (qb *queryBuilder) build() (string, []interface{}) {
	whereClause := ""
	if len(qb.conditions) > 0 {
		whereClause = "WHERE " + strings.Join(qb.conditions, " AND ")
	}
	return whereClause, qb.args
}

// escapeLike экранирует спецсимволы шаблона ILIKE
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

// applySearchFilters разбирает параметры поиска и строит WHERE
func applySearchFilters(query domain.SearchQuery) (string, []interface{}) {
	qb := newQueryBuilder()

	if text := query.SearchText(); text != "" {
		qb.AddTextSearch(text, "p.name", "p.city", "p.state", "p.address_line")
	}

	if query.Guests != nil {
		qb.addCondition("%s >= %s", "p.capacity", *query.Guests)
	}

	if b := query.Bounds; b != nil {
		qb.AddFloatRange("p.latitude", b.South, b.North)

		if b.CrossesAntimeridian() {
			// Область через 180-й меридиан: долгота либо правее west, либо левее east
			condition := fmt.Sprintf("(p.longitude >= %s OR p.longitude <= %s)", qb.nextArg(b.West), qb.nextArg(b.East))
			qb.conditions = append(qb.conditions, condition)
		} else {
			qb.AddFloatRange("p.longitude", b.West, b.East)
		}
	}

	return qb.build()
}
