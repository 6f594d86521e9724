package postgres

import (
	"context"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationStorageAdapter struct {
	pool *pgxpool.Pool
}

func NewReservationStorageAdapter(pool *pgxpool.Pool) (*ReservationStorageAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ReservationStorageAdapter{pool: pool}, nil
}

// ListWindows возвращает неотмененные брони для объектов.
// Даты отдаются текстом, разбор и проверка на совести домена.
func (a *ReservationStorageAdapter) ListWindows(ctx context.Context, propertyIDs []uuid.UUID) (map[uuid.UUID][]domain.ReservationWindow, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":      "ReservationStorageAdapter",
		"method":         "ListWindows",
		"property_count": len(propertyIDs),
	})

	result := make(map[uuid.UUID][]domain.ReservationWindow, len(propertyIDs))
	if len(propertyIDs) == 0 {
		return result, nil
	}

	ids := make([]string, len(propertyIDs))
	for i, id := range propertyIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT property_id, start_date::text, end_date::text
		FROM reservations
		WHERE property_id = ANY($1::uuid[]) AND status <> 'cancelled'
		ORDER BY property_id, start_date`

	rows, err := a.pool.Query(ctx, query, ids)
	if err != nil {
		repoLogger.Error("Failed to query reservation windows", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query reservation windows: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var w domain.ReservationWindow
		if err := rows.Scan(&w.PropertyID, &w.Start, &w.End); err != nil {
			repoLogger.Error("Failed to scan reservation window", err, nil)
			return nil, fmt.Errorf("failed to scan reservation window: %w", err)
		}
		result[w.PropertyID] = append(result[w.PropertyID], w)
		count++
	}

	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during reservation rows iteration", err, nil)
		return nil, err
	}

	repoLogger.Debug("Reservation windows loaded", port.Fields{"windows": count})
	return result, nil
}
