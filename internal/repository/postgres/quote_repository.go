package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/domain/repository"
	apperrors "github.com/lawn-quote-service/internal/pkg/errors"
)

const quoteColumns = `
	id, account_id, created_by_user_id, customer_name,
	COALESCE(customer_email, '') AS customer_email,
	COALESCE(customer_phone, '') AS customer_phone,
	COALESCE(property_address, '') AS property_address,
	property_type, area_sqft::float8 AS area_sqft, polygons,
	base_price_per_visit::float8 AS base_price_per_visit, addons,
	total_price_per_visit::float8 AS total_price_per_visit,
	frequency, monthly_estimate::float8 AS monthly_estimate,
	send_to_customer, email_sent_at, status, pricing_mode, tiers_snapshot,
	flat_rate_snapshot::float8 AS flat_rate_snapshot, price_breakdown,
	created_at, updated_at
`

type quoteRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewQuoteRepository(db *DB) repository.QuoteRepository {
	return &quoteRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// quoteRow - строка таблицы quotes
type quoteRow struct {
	ID                 uuid.UUID                           `db:"id"`
	AccountID          uuid.UUID                           `db:"account_id"`
	CreatedByUserID    *uuid.UUID                          `db:"created_by_user_id"`
	CustomerName       string                              `db:"customer_name"`
	CustomerEmail      string                              `db:"customer_email"`
	CustomerPhone      string                              `db:"customer_phone"`
	PropertyAddress    string                              `db:"property_address"`
	PropertyType       domain.PropertyType                 `db:"property_type"`
	AreaSqFt           float64                             `db:"area_sqft"`
	Polygons           jsonb[[]*domain.Polygon]            `db:"polygons"`
	BasePricePerVisit  float64                             `db:"base_price_per_visit"`
	Addons             jsonb[[]domain.Addon]               `db:"addons"`
	TotalPricePerVisit float64                             `db:"total_price_per_visit"`
	Frequency          domain.Frequency                    `db:"frequency"`
	MonthlyEstimate    float64                             `db:"monthly_estimate"`
	SendToCustomer     bool                                `db:"send_to_customer"`
	EmailSentAt        *time.Time                          `db:"email_sent_at"`
	Status             domain.QuoteStatus                  `db:"status"`
	PricingMode        domain.PricingMode                  `db:"pricing_mode"`
	TiersSnapshot      jsonb[[]domain.PricingTier]         `db:"tiers_snapshot"`
	FlatRateSnapshot   *float64                            `db:"flat_rate_snapshot"`
	PriceBreakdown     jsonb[[]domain.PriceBreakdownEntry] `db:"price_breakdown"`
	CreatedAt          time.Time                           `db:"created_at"`
	UpdatedAt          time.Time                           `db:"updated_at"`
}

func (row *quoteRow) toDomain() *domain.Quote {
	return &domain.Quote{
		ID:                 row.ID,
		AccountID:          row.AccountID,
		CreatedByUserID:    row.CreatedByUserID,
		CustomerName:       row.CustomerName,
		CustomerEmail:      row.CustomerEmail,
		CustomerPhone:      row.CustomerPhone,
		PropertyAddress:    row.PropertyAddress,
		PropertyType:       row.PropertyType,
		AreaSqFt:           row.AreaSqFt,
		Polygons:           row.Polygons.V,
		BasePricePerVisit:  row.BasePricePerVisit,
		Addons:             row.Addons.V,
		TotalPricePerVisit: row.TotalPricePerVisit,
		Frequency:          row.Frequency,
		MonthlyEstimate:    row.MonthlyEstimate,
		SendToCustomer:     row.SendToCustomer,
		EmailSentAt:        row.EmailSentAt,
		Status:             row.Status,
		Pricing: domain.PricingSnapshot{
			Mode:             row.PricingMode,
			TiersSnapshot:    row.TiersSnapshot.V,
			FlatRateSnapshot: row.FlatRateSnapshot,
			AreaSqFt:         row.AreaSqFt,
			TotalPrice:       row.BasePricePerVisit,
			Breakdown:        row.PriceBreakdown.V,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *quoteRepository) Create(ctx context.Context, q *domain.Quote) error {
	query := `
		INSERT INTO quotes (
			id, account_id, created_by_user_id, customer_name, customer_email,
			customer_phone, property_address, property_type, area_sqft, polygons,
			base_price_per_visit, addons, total_price_per_visit, frequency,
			monthly_estimate, send_to_customer, status, pricing_mode,
			tiers_snapshot, flat_rate_snapshot, price_breakdown
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)
		RETURNING created_at, updated_at
	`

	tiers := jsonb[[]domain.PricingTier]{}
	if q.Pricing.Mode == domain.PricingModeTiered {
		tiers = newJSONB(q.Pricing.TiersSnapshot)
	}

	err := r.db.QueryRowxContext(ctx, query,
		q.ID, q.AccountID, q.CreatedByUserID, q.CustomerName, nullString(q.CustomerEmail),
		nullString(q.CustomerPhone), nullString(q.PropertyAddress), q.PropertyType, q.AreaSqFt,
		newJSONB(nonNil(q.Polygons)),
		q.BasePricePerVisit, newJSONB(nonNil(q.Addons)), q.TotalPricePerVisit, q.Frequency,
		q.MonthlyEstimate, q.SendToCustomer, q.Status, q.Pricing.Mode,
		tiers, q.Pricing.FlatRateSnapshot, newJSONB(nonNil(q.Pricing.Breakdown)),
	).Scan(&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create quote",
			zap.String("quote_id", q.ID.String()),
			zap.Error(err))
		return apperrors.ErrDatabaseError
	}

	return nil
}

func (r *quoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`

	var row quoteRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrQuoteNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get quote", zap.String("quote_id", id.String()), zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}

	return row.toDomain(), nil
}

func (r *quoteRepository) List(ctx context.Context, filter domain.QuoteFilter) ([]*domain.Quote, int, error) {
	where := []string{"account_id = $1"}
	args := []interface{}{filter.AccountID}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	whereSQL := strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM quotes WHERE `+whereSQL, args...); err != nil {
		r.logger.Error("Failed to count quotes", zap.Error(err))
		return nil, 0, apperrors.ErrDatabaseError
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM quotes WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		quoteColumns, whereSQL, len(args)-1, len(args),
	)

	var rows []quoteRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.Error("Failed to list quotes",
			zap.String("account_id", filter.AccountID.String()),
			zap.Error(err))
		return nil, 0, apperrors.ErrDatabaseError
	}

	quotes := make([]*domain.Quote, 0, len(rows))
	for i := range rows {
		quotes = append(quotes, rows[i].toDomain())
	}
	return quotes, total, nil
}

func (r *quoteRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.QuoteStatus,
) (*domain.Quote, error) {
	query := `
		UPDATE quotes SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + quoteColumns

	var row quoteRow
	err := r.db.GetContext(ctx, &row, query, id, from, to)
	if errors.Is(err, sql.ErrNoRows) {
		// Квота исчезла или статус успели поменять
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, apperrors.ErrInvalidStatusTransition
	}
	if err != nil {
		r.logger.Error("Failed to update quote status", zap.String("quote_id", id.String()), zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}

	return row.toDomain(), nil
}

func (r *quoteRepository) MarkEmailSent(ctx context.Context, id uuid.UUID, sentAt time.Time) (*domain.Quote, error) {
	query := `
		UPDATE quotes SET email_sent_at = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + quoteColumns

	var row quoteRow
	err := r.db.GetContext(ctx, &row, query, id, sentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrQuoteNotFound
	}
	if err != nil {
		r.logger.Error("Failed to mark quote email sent", zap.String("quote_id", id.String()), zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}

	return row.toDomain(), nil
}

func (r *quoteRepository) CountCreatedBetween(
	ctx context.Context,
	accountID uuid.UUID,
	from, to time.Time,
) (int, error) {
	query := `
		SELECT COUNT(*) FROM quotes
		WHERE account_id = $1 AND created_at >= $2 AND created_at < $3
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, accountID, from, to); err != nil {
		r.logger.Error("Failed to count quotes for month",
			zap.String("account_id", accountID.String()),
			zap.Error(err))
		return 0, apperrors.ErrDatabaseError
	}
	return count, nil
}

func (r *quoteRepository) PipelineStages(ctx context.Context, accountID uuid.UUID) ([]domain.PipelineStage, error) {
	query := `
		SELECT status, COUNT(*) AS count,
			COALESCE(SUM(monthly_estimate), 0)::float8 AS total_value
		FROM quotes
		WHERE account_id = $1
		GROUP BY status
	`

	var stages []domain.PipelineStage
	if err := r.db.SelectContext(ctx, &stages, query, accountID); err != nil {
		r.logger.Error("Failed to load pipeline",
			zap.String("account_id", accountID.String()),
			zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}
	return stages, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
