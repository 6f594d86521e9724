package postgres

import (
	"context"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AffiliateRepository - реализация AffiliateRepositoryPort для PostgreSQL
type AffiliateRepository struct {
	pool *pgxpool.Pool
}

func NewAffiliateRepository(pool *pgxpool.Pool) (*AffiliateRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &AffiliateRepository{pool: pool}, nil
}

// FindByEmail находит партнера по email.
// Возвращает (nil, nil), если партнер не найден.
func (r *AffiliateRepository) FindByEmail(ctx context.Context, email string) (*domain.Affiliate, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "AffiliateRepository",
		"method":    "FindByEmail",
		"email":     email,
	})

	query := `SELECT id, email, name, password_hash, created_at FROM affiliates WHERE lower(email) = $1`

	var a domain.Affiliate
	err := r.pool.QueryRow(ctx, query, email).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Warn("Affiliate not found by email.", nil)
			return nil, nil
		}
		repoLogger.Error("Failed to find affiliate by email", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to find affiliate by email: %w", err)
	}

	return &a, nil
}

// FindByID возвращает (nil, nil), если партнера нет
func (r *AffiliateRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Affiliate, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":    "AffiliateRepository",
		"method":       "FindByID",
		"affiliate_id": id.String(),
	})

	query := `SELECT id, email, name, password_hash, created_at FROM affiliates WHERE id = $1`

	var a domain.Affiliate
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Warn("Affiliate not found by id.", nil)
			return nil, nil
		}
		repoLogger.Error("Failed to find affiliate by id", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to find affiliate by id: %w", err)
	}

	return &a, nil
}

// FindLinkByCode возвращает (nil, nil), если ссылки нет
func (r *AffiliateRepository) FindLinkByCode(ctx context.Context, code string) (*domain.ReferralLink, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "AffiliateRepository",
		"method":    "FindLinkByCode",
		"code":      code,
	})

	query := `
		SELECT id, affiliate_id, code, landing_path, commission_rate::float8, is_active
		FROM referral_links WHERE code = $1`

	var l domain.ReferralLink
	err := r.pool.QueryRow(ctx, query, code).Scan(&l.ID, &l.AffiliateID, &l.Code, &l.LandingPath, &l.CommissionRate, &l.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		repoLogger.Error("Failed to find referral link", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to find referral link: %w", err)
	}

	return &l, nil
}

func (r *AffiliateRepository) SaveClick(ctx context.Context, click domain.ReferralClick) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "AffiliateRepository",
		"method":    "SaveClick",
		"click_id":  click.ID.String(),
		"link_id":   click.LinkID.String(),
	})

	query := `
		INSERT INTO referral_clicks (id, link_id, ip_hash, user_agent, referer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.pool.Exec(ctx, query, click.ID, click.LinkID, click.IPHash, click.UserAgent, click.Referer, click.CreatedAt); err != nil {
		repoLogger.Error("Failed to save referral click", err, port.Fields{"query": query})
		return fmt.Errorf("failed to save referral click: %w", err)
	}

	repoLogger.Debug("Referral click saved.", nil)
	return nil
}

// GetLinkPerformance считает переходы, подтвержденные рефералы и комиссию по каждой ссылке
func (r *AffiliateRepository) GetLinkPerformance(ctx context.Context, affiliateID uuid.UUID) ([]domain.LinkPerformance, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":    "AffiliateRepository",
		"method":       "GetLinkPerformance",
		"affiliate_id": affiliateID.String(),
	})

	query := `
		SELECT
			l.id, l.code, l.landing_path, l.is_active,
			COALESCE(c.clicks, 0),
			COALESCE(rf.referrals, 0),
			(COALESCE(rf.amount, 0) * l.commission_rate)::float8
		FROM referral_links l
		LEFT JOIN (
			SELECT link_id, COUNT(*) AS clicks
			FROM referral_clicks
			GROUP BY link_id
		) c ON c.link_id = l.id
		LEFT JOIN (
			SELECT link_id, COUNT(*) AS referrals, SUM(booking_amount) AS amount
			FROM referrals
			WHERE status = 'confirmed'
			GROUP BY link_id
		) rf ON rf.link_id = l.id
		WHERE l.affiliate_id = $1
		ORDER BY l.created_at ASC, l.id ASC`

	rows, err := r.pool.Query(ctx, query, affiliateID)
	if err != nil {
		repoLogger.Error("Failed to query link performance", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query link performance: %w", err)
	}
	defer rows.Close()

	links := make([]domain.LinkPerformance, 0)
	for rows.Next() {
		var l domain.LinkPerformance
		if err := rows.Scan(&l.LinkID, &l.Code, &l.LandingPath, &l.IsActive, &l.Clicks, &l.Referrals, &l.Commission); err != nil {
			repoLogger.Error("Failed to scan link performance row", err, nil)
			return nil, fmt.Errorf("failed to scan link performance: %w", err)
		}
		links = append(links, l)
	}

	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during link performance rows iteration", err, nil)
		return nil, err
	}

	return links, nil
}
