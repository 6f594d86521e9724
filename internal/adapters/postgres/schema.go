package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaDDL string

// SchemaDDL возвращает DDL всех таблиц сервиса
func SchemaDDL() string {
	return schemaDDL
}

// ApplySchema выполняет идемпотентный DDL (CREATE ... IF NOT EXISTS)
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
