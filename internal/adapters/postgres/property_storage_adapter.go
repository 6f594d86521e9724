package postgres

import (
	"context"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const propertyColumns = `
	p.id, p.slug, p.name, p.nightly_price::float8, p.rating::float8, p.capacity,
	COALESCE(p.bedrooms, 0), COALESCE(p.bathrooms, 0)::float8, p.image_url,
	p.latitude, p.longitude,
	COALESCE(p.address_line, ''), COALESCE(p.city, ''), COALESCE(p.state, ''),
	COALESCE(p.postal_code, ''), COALESCE(p.country, '')`

// PostgresStorageAdapter - реализация PropertyStoragePort для PostgreSQL
type PostgresStorageAdapter struct {
	pool *pgxpool.Pool
}

func NewPostgresStorageAdapter(pool *pgxpool.Pool) (*PostgresStorageAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresStorageAdapter{pool: pool}, nil
}

func scanProperty(row pgx.Row, p *domain.Property) error {
	return row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.NightlyPrice, &p.Rating, &p.Capacity,
		&p.Bedrooms, &p.Bathrooms, &p.ImageURL,
		&p.Latitude, &p.Longitude,
		&p.AddressLine, &p.City, &p.State, &p.PostalCode, &p.Country,
	)
}

// FindCandidates ищет активные объекты по фильтрам, самые дешевые первыми
func (a *PostgresStorageAdapter) FindCandidates(ctx context.Context, query domain.SearchQuery, limit int) ([]domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresStorageAdapter",
		"method":    "FindCandidates",
		"limit":     limit,
	})

	whereClause, args := applySearchFilters(query)

	sql := fmt.Sprintf(`SELECT %s FROM properties p %s ORDER BY p.nightly_price ASC, p.id ASC LIMIT $%d`,
		propertyColumns, whereClause, len(args)+1)
	args = append(args, limit)

	repoLogger.Debug("Executing search query.", port.Fields{"args_count": len(args)})

	rows, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		repoLogger.Error("Failed to find properties with filters", err, port.Fields{"query": sql})
		return nil, fmt.Errorf("failed to find properties with filters: %w", err)
	}
	defer rows.Close()

	properties := make([]domain.Property, 0, limit)
	for rows.Next() {
		var p domain.Property
		if err := scanProperty(rows, &p); err != nil {
			repoLogger.Error("Failed to scan property row", err, nil)
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during property rows iteration", err, nil)
		return nil, fmt.Errorf("failed to iterate properties: %w", err)
	}

	repoLogger.Debug("Properties found", port.Fields{"count": len(properties)})
	return properties, nil
}

// GetBySlug возвращает активный объект по slug или domain.ErrPropertyNotFound
func (a *PostgresStorageAdapter) GetBySlug(ctx context.Context, slug string) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresStorageAdapter",
		"method":    "GetBySlug",
		"slug":      slug,
	})

	sql := fmt.Sprintf(`SELECT %s FROM properties p WHERE p.slug = $1 AND p.is_active = true`, propertyColumns)

	var p domain.Property
	if err := scanProperty(a.pool.QueryRow(ctx, sql, slug), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Debug("Property not found by slug.", nil)
			return nil, domain.ErrPropertyNotFound
		}
		repoLogger.Error("Failed to get property by slug", err, port.Fields{"query": sql})
		return nil, fmt.Errorf("failed to get property by slug: %w", err)
	}

	return &p, nil
}

// Ping проверяет доступность БД
func (a *PostgresStorageAdapter) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}
