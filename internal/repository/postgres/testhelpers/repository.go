package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/domain/repository"
	"github.com/lawn-quote-service/internal/repository/postgres"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewQuoteRepositoryForTest creates a quote repository with test database and logger
func NewQuoteRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.QuoteRepository {
	return postgres.NewQuoteRepository(NewDBForTest(db, logger))
}

// NewPricingSettingsRepositoryForTest creates a pricing settings repository with test database and logger
func NewPricingSettingsRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.PricingSettingsRepository {
	return postgres.NewPricingSettingsRepository(NewDBForTest(db, logger))
}
