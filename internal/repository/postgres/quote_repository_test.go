package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/domain/repository"
	"github.com/lawn-quote-service/internal/engine/pricing"
	apperrors "github.com/lawn-quote-service/internal/pkg/errors"
	"github.com/lawn-quote-service/internal/repository/postgres/testhelpers"
)

// QuoteRepositoryTestSuite тестирует QuoteRepository и PricingSettingsRepository на реальной БД
type QuoteRepositoryTestSuite struct {
	suite.Suite
	testDB   *testhelpers.TestDB
	quotes   repository.QuoteRepository
	settings repository.PricingSettingsRepository
	ctx      context.Context
}

func (s *QuoteRepositoryTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.testDB = testhelpers.SetupTestDB(s.T())

	s.Require().NoError(testhelpers.ApplyMigrations(s.ctx, s.testDB.DB, testhelpers.MigrationsDir))

	s.quotes = testhelpers.NewQuoteRepositoryForTest(s.testDB.DB, s.testDB.Logger)
	s.settings = testhelpers.NewPricingSettingsRepositoryForTest(s.testDB.DB, s.testDB.Logger)
}

func (s *QuoteRepositoryTestSuite) SetupTest() {
	s.NoError(s.testDB.Cleanup(s.ctx))
}

func (s *QuoteRepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

func (s *QuoteRepositoryTestSuite) newQuote(accountID uuid.UUID) *domain.Quote {
	settings := pricing.DefaultSettings(0.01, true)
	snapshot := pricing.NewSnapshot(settings, 10_000)

	return &domain.Quote{
		ID:                 uuid.New(),
		AccountID:          accountID,
		CustomerName:       "Jane Doe",
		CustomerEmail:      "jane@example.com",
		PropertyAddress:    "1100 Congress Ave, Austin, TX",
		PropertyType:       domain.PropertyTypeResidential,
		AreaSqFt:           10_000,
		Polygons:           []*domain.Polygon{{ID: "zone-1", Kind: domain.PolygonKindZone, Vertices: []domain.LatLng{{Lat: 1, Lng: 1}, {Lat: 1, Lng: 2}, {Lat: 2, Lng: 2}}}},
		BasePricePerVisit:  snapshot.TotalPrice,
		Addons:             []domain.Addon{{Name: "Edging", Price: 15}},
		TotalPricePerVisit: snapshot.TotalPrice + 15,
		Frequency:          domain.FrequencyWeekly,
		MonthlyEstimate:    497.95,
		Status:             domain.QuoteStatusPending,
		Pricing:            snapshot,
	}
}

func (s *QuoteRepositoryTestSuite) TestCreateAndGet() {
	q := s.newQuote(uuid.New())
	s.Require().NoError(s.quotes.Create(s.ctx, q))
	s.False(q.CreatedAt.IsZero())

	got, err := s.quotes.GetByID(s.ctx, q.ID)
	s.Require().NoError(err)

	s.Equal(q.CustomerName, got.CustomerName)
	s.Equal(domain.PricingModeTiered, got.Pricing.Mode)
	s.Require().Len(got.Pricing.TiersSnapshot, 3)
	s.Nil(got.Pricing.TiersSnapshot[2].UpToSqFt)
	s.Nil(got.Pricing.FlatRateSnapshot)
	s.Len(got.Pricing.Breakdown, 2)
	s.Len(got.Polygons, 1)
	s.Equal("Edging", got.Addons[0].Name)
	s.InDelta(100.0, got.BasePricePerVisit, 0.001)
	s.Empty(got.CustomerPhone)
}

func (s *QuoteRepositoryTestSuite) TestGetMissing() {
	_, err := s.quotes.GetByID(s.ctx, uuid.New())
	s.ErrorIs(err, apperrors.ErrQuoteNotFound)
}

func (s *QuoteRepositoryTestSuite) TestUpdateStatus() {
	q := s.newQuote(uuid.New())
	s.Require().NoError(s.quotes.Create(s.ctx, q))

	updated, err := s.quotes.UpdateStatus(s.ctx, q.ID, domain.QuoteStatusPending, domain.QuoteStatusWon)
	s.Require().NoError(err)
	s.Equal(domain.QuoteStatusWon, updated.Status)

	// Повторный переход из pending уже невозможен
	_, err = s.quotes.UpdateStatus(s.ctx, q.ID, domain.QuoteStatusPending, domain.QuoteStatusLost)
	s.ErrorIs(err, apperrors.ErrInvalidStatusTransition)

	_, err = s.quotes.UpdateStatus(s.ctx, uuid.New(), domain.QuoteStatusPending, domain.QuoteStatusLost)
	s.ErrorIs(err, apperrors.ErrQuoteNotFound)
}

func (s *QuoteRepositoryTestSuite) TestListCountAndPipeline() {
	accountID := uuid.New()
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.quotes.Create(s.ctx, s.newQuote(accountID)))
	}
	old := s.newQuote(accountID)
	s.Require().NoError(s.quotes.Create(s.ctx, old))
	s.Require().NoError(testhelpers.BackdateQuote(s.ctx, s.testDB.DB, old.ID, time.Now().AddDate(0, -2, 0)))

	_, err := s.quotes.UpdateStatus(s.ctx, old.ID, domain.QuoteStatusPending, domain.QuoteStatusLost)
	s.Require().NoError(err)

	// Чужой аккаунт не учитывается
	s.Require().NoError(s.quotes.Create(s.ctx, s.newQuote(uuid.New())))

	all, total, err := s.quotes.List(s.ctx, domain.QuoteFilter{AccountID: accountID, Limit: 2})
	s.Require().NoError(err)
	s.Equal(4, total)
	s.Len(all, 2)

	pending := domain.QuoteStatusPending
	_, total, err = s.quotes.List(s.ctx, domain.QuoteFilter{AccountID: accountID, Status: &pending, Limit: 10})
	s.Require().NoError(err)
	s.Equal(3, total)

	start, next := domain.MonthBoundariesUTC(time.Now())
	count, err := s.quotes.CountCreatedBetween(s.ctx, accountID, start, next)
	s.Require().NoError(err)
	s.Equal(3, count)

	stages, err := s.quotes.PipelineStages(s.ctx, accountID)
	s.Require().NoError(err)
	s.Len(stages, 2)
}

func (s *QuoteRepositoryTestSuite) TestMarkEmailSent() {
	q := s.newQuote(uuid.New())
	s.Require().NoError(s.quotes.Create(s.ctx, q))

	sentAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	updated, err := s.quotes.MarkEmailSent(s.ctx, q.ID, sentAt)
	s.Require().NoError(err)
	s.Require().NotNil(updated.EmailSentAt)
	s.True(sentAt.Equal(*updated.EmailSentAt))
}

func (s *QuoteRepositoryTestSuite) TestPricingSettingsUpsert() {
	accountID := uuid.New()

	missing, err := s.settings.Get(s.ctx, accountID)
	s.Require().NoError(err)
	s.Nil(missing)

	settings := pricing.DefaultSettings(0.015, true)
	settings.AccountID = accountID
	s.Require().NoError(s.settings.Upsert(s.ctx, &settings))

	settings.UseTieredSqftPricing = false
	s.Require().NoError(s.settings.Upsert(s.ctx, &settings))

	got, err := s.settings.Get(s.ctx, accountID)
	s.Require().NoError(err)
	s.False(got.UseTieredSqftPricing)
	s.InDelta(0.015, got.FlatRatePerSqFt, 1e-9)
	s.Equal(pricing.DefaultPricingTiers(), got.SqftPricingTiers)
}

func TestQuoteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(QuoteRepositoryTestSuite))
}
