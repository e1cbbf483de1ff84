package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/domain/repository"
	apperrors "github.com/lawn-quote-service/internal/pkg/errors"
)

type pricingSettingsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPricingSettingsRepository(db *DB) repository.PricingSettingsRepository {
	return &pricingSettingsRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

type pricingSettingsRow struct {
	AccountID            uuid.UUID                  `db:"account_id"`
	UseTieredSqftPricing bool                       `db:"use_tiered_sqft_pricing"`
	SqftPricingTiers     jsonb[[]domain.PricingTier] `db:"sqft_pricing_tiers"`
	FlatRatePerSqFt      float64                    `db:"flat_rate_per_sqft"`
	UpdatedAt            time.Time                  `db:"updated_at"`
}

func (r *pricingSettingsRepository) Get(ctx context.Context, accountID uuid.UUID) (*domain.PricingSettings, error) {
	query := `
		SELECT account_id, use_tiered_sqft_pricing, sqft_pricing_tiers,
			flat_rate_per_sqft::float8 AS flat_rate_per_sqft, updated_at
		FROM pricing_settings
		WHERE account_id = $1
	`

	var row pricingSettingsRow
	err := r.db.GetContext(ctx, &row, query, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get pricing settings",
			zap.String("account_id", accountID.String()),
			zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}

	return &domain.PricingSettings{
		AccountID:            row.AccountID,
		UseTieredSqftPricing: row.UseTieredSqftPricing,
		SqftPricingTiers:     row.SqftPricingTiers.V,
		FlatRatePerSqFt:      row.FlatRatePerSqFt,
		UpdatedAt:            row.UpdatedAt,
	}, nil
}

func (r *pricingSettingsRepository) Upsert(ctx context.Context, settings *domain.PricingSettings) error {
	query := `
		INSERT INTO pricing_settings (
			account_id, use_tiered_sqft_pricing, sqft_pricing_tiers, flat_rate_per_sqft, updated_at
		) VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (account_id) DO UPDATE SET
			use_tiered_sqft_pricing = EXCLUDED.use_tiered_sqft_pricing,
			sqft_pricing_tiers = EXCLUDED.sqft_pricing_tiers,
			flat_rate_per_sqft = EXCLUDED.flat_rate_per_sqft,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		settings.AccountID,
		settings.UseTieredSqftPricing,
		newJSONB(settings.SqftPricingTiers),
		settings.FlatRatePerSqFt,
	).Scan(&settings.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert pricing settings",
			zap.String("account_id", settings.AccountID.String()),
			zap.Error(err))
		return apperrors.ErrDatabaseError
	}

	return nil
}
