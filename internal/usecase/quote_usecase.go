package usecase

import (
	"context"
	stderrors "errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/domain/repository"
	"github.com/lawn-quote-service/internal/pkg/errors"
	"github.com/lawn-quote-service/internal/pkg/metrics"
	"github.com/lawn-quote-service/internal/pkg/utils"
	"github.com/lawn-quote-service/internal/usecase/dto"
)

const defaultQuotesLimit = 20

// QuoteUseCase - сохранение квот, воронка продаж и использование тарифа
type QuoteUseCase struct {
	quoteRepo  repository.QuoteRepository
	streamRepo repository.StreamRepository
	sessions   *SessionUseCase
	pricing    *PricingUseCase
	metrics    *metrics.Collector
	logger     *zap.Logger
	now        func() time.Time
}

// NewQuoteUseCase - создание нового QuoteUseCase
func NewQuoteUseCase(
	quoteRepo repository.QuoteRepository,
	streamRepo repository.StreamRepository,
	sessions *SessionUseCase,
	pricing *PricingUseCase,
	collector *metrics.Collector,
	logger *zap.Logger,
) *QuoteUseCase {
	return &QuoteUseCase{
		quoteRepo:  quoteRepo,
		streamRepo: streamRepo,
		sessions:   sessions,
		pricing:    pricing,
		metrics:    collector,
		logger:     logger,
		now:        time.Now,
	}
}

// SetClock подменяет текущее время (границы месяца для лимитов, email_sent_at)
func (uc *QuoteUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// Create - сохранение квоты с замороженными ставками аккаунта
func (uc *QuoteUseCase) Create(ctx context.Context, req dto.CreateQuoteRequest) (*domain.Quote, error) {
	polygons, area, err := uc.resolveArea(ctx, req)
	if err != nil {
		return nil, err
	}

	snapshot, err := uc.pricing.Snapshot(ctx, req.AccountID, area)
	if err != nil {
		return nil, err
	}

	addonsTotal := lo.SumBy(req.Addons, func(a domain.Addon) float64 { return a.Price })
	total := roundCents(snapshot.TotalPrice + addonsTotal)

	quote := &domain.Quote{
		ID:                 uuid.New(),
		AccountID:          req.AccountID,
		CreatedByUserID:    req.CreatedByUserID,
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		CustomerPhone:      req.CustomerPhone,
		PropertyAddress:    req.PropertyAddress,
		PropertyType:       req.PropertyType,
		AreaSqFt:           area,
		Polygons:           polygons,
		BasePricePerVisit:  snapshot.TotalPrice,
		Addons:             req.Addons,
		TotalPricePerVisit: total,
		Frequency:          req.Frequency,
		MonthlyEstimate:    roundCents(total * req.Frequency.VisitsPerMonth()),
		SendToCustomer:     req.SendToCustomer,
		Status:             domain.QuoteStatusPending,
		Pricing:            snapshot,
	}

	if err := uc.quoteRepo.Create(ctx, quote); err != nil {
		uc.logger.Error("Failed to create quote",
			zap.String("account_id", req.AccountID.String()),
			zap.Error(err),
		)
		return nil, errors.ErrDatabaseError
	}

	uc.metrics.ObserveQuoteCreated(snapshot.Mode)
	uc.publishCreated(ctx, quote)

	uc.logger.Info("Quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("account_id", quote.AccountID.String()),
		zap.String("pricing_mode", string(snapshot.Mode)),
		zap.Float64("area_sqft", area),
		zap.Float64("total_price_per_visit", total),
	)

	return quote, nil
}

// Get - квота по идентификатору
func (uc *QuoteUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	quote, err := uc.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, uc.repoError("Failed to get quote", id, err)
	}
	return quote, nil
}

// List - квоты аккаунта, новые первыми
func (uc *QuoteUseCase) List(ctx context.Context, req dto.ListQuotesRequest) (*dto.ListQuotesResponse, error) {
	if req.Limit == 0 {
		req.Limit = defaultQuotesLimit
	}

	quotes, total, err := uc.quoteRepo.List(ctx, domain.QuoteFilter{
		AccountID: req.AccountID,
		Status:    req.Status,
		Limit:     req.Limit,
		Offset:    req.Offset,
	})
	if err != nil {
		uc.logger.Error("Failed to list quotes",
			zap.String("account_id", req.AccountID.String()),
			zap.Error(err),
		)
		return nil, errors.ErrDatabaseError
	}

	return &dto.ListQuotesResponse{Quotes: quotes, Total: total}, nil
}

// UpdateStatus - перевод квоты из pending в won или lost
func (uc *QuoteUseCase) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) (*domain.Quote, error) {
	current, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !current.Status.CanTransitionTo(status) {
		return nil, errors.ErrInvalidStatusTransition.WithDetails(map[string]interface{}{
			"from": current.Status,
			"to":   status,
		})
	}

	updated, err := uc.quoteRepo.UpdateStatus(ctx, id, current.Status, status)
	if err != nil {
		return nil, uc.repoError("Failed to update quote status", id, err)
	}

	uc.logger.Info("Quote status changed",
		zap.String("quote_id", id.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(status)),
	)
	return updated, nil
}

// MarkEmailSent - отметка об отправке квоты клиенту
func (uc *QuoteUseCase) MarkEmailSent(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	quote, err := uc.quoteRepo.MarkEmailSent(ctx, id, uc.now().UTC())
	if err != nil {
		return nil, uc.repoError("Failed to mark quote email", id, err)
	}
	return quote, nil
}

// Pipeline - сводка по статусам и доля выигранных среди закрытых квот
func (uc *QuoteUseCase) Pipeline(ctx context.Context, accountID uuid.UUID) (*domain.PipelineSummary, error) {
	stages, err := uc.quoteRepo.PipelineStages(ctx, accountID)
	if err != nil {
		uc.logger.Error("Failed to load pipeline", zap.String("account_id", accountID.String()), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	statuses := []domain.QuoteStatus{domain.QuoteStatusPending, domain.QuoteStatusWon, domain.QuoteStatusLost}
	all := lo.Map(statuses, func(status domain.QuoteStatus, _ int) domain.PipelineStage {
		stage, ok := lo.Find(stages, func(s domain.PipelineStage) bool { return s.Status == status })
		return lo.Ternary(ok, stage, domain.PipelineStage{Status: status})
	})

	won, lost := all[1].Count, all[2].Count
	winRate := 0.0
	if closed := won + lost; closed > 0 {
		winRate = math.Round(float64(won)/float64(closed)*1000) / 10
	}

	return &domain.PipelineSummary{
		AccountID: accountID,
		Stages:    all,
		WinRate:   winRate,
	}, nil
}

// Usage - число квот за текущий календарный месяц (UTC) относительно лимита тарифа
func (uc *QuoteUseCase) Usage(ctx context.Context, accountID uuid.UUID, plan domain.PlanTier) (*domain.OverageInfo, error) {
	start, next := domain.MonthBoundariesUTC(uc.now())

	count, err := uc.quoteRepo.CountCreatedBetween(ctx, accountID, start, next)
	if err != nil {
		uc.logger.Error("Failed to count quotes", zap.String("account_id", accountID.String()), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	info := domain.CalculateOverage(count, plan)
	return &info, nil
}

// resolveArea - площадь всегда пересчитывается из вершин, если они есть
func (uc *QuoteUseCase) resolveArea(ctx context.Context, req dto.CreateQuoteRequest) ([]*domain.Polygon, float64, error) {
	if req.SessionID != "" {
		return uc.sessions.Polygons(ctx, req.SessionID)
	}

	if len(req.Polygons) > 0 {
		polygons := lo.Map(req.Polygons, func(p *domain.Polygon, _ int) *domain.Polygon { return p.Clone() })
		return polygons, utils.RecomputeTotalArea(polygons), nil
	}

	return nil, req.AreaSqFt, nil
}

// publishCreated - ошибка публикации не отменяет сохранённую квоту
func (uc *QuoteUseCase) publishCreated(ctx context.Context, quote *domain.Quote) {
	event := domain.QuoteCreatedEvent{
		QuoteID:            quote.ID,
		AccountID:          quote.AccountID,
		Status:             quote.Status,
		PricingMode:        quote.Pricing.Mode,
		AreaSqFt:           quote.AreaSqFt,
		TotalPricePerVisit: quote.TotalPricePerVisit,
		SendToCustomer:     quote.SendToCustomer,
		CreatedAt:          quote.CreatedAt,
	}
	if err := uc.streamRepo.PublishToStream(ctx, domain.StreamQuoteCreated, event); err != nil {
		uc.logger.Warn("Failed to publish quote created event",
			zap.String("quote_id", quote.ID.String()),
			zap.Error(err),
		)
	}
}

func (uc *QuoteUseCase) repoError(msg string, id uuid.UUID, err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	if stderrors.Is(err, context.Canceled) {
		return err
	}
	uc.logger.Error(msg, zap.String("quote_id", id.String()), zap.Error(err))
	return errors.ErrDatabaseError
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
