package usecase

import (
	"context"
	"time"

	olc "github.com/google/open-location-code/go"
	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/domain/repository"
	"github.com/lawn-quote-service/internal/engine/estimation"
	"github.com/lawn-quote-service/internal/pkg/errors"
	"github.com/lawn-quote-service/internal/pkg/metrics"
	"github.com/lawn-quote-service/internal/pkg/utils"
	"github.com/lawn-quote-service/internal/usecase/dto"
)

// plusCodeLength - 10 символов plus code, ячейка около 14x14 м
const plusCodeLength = 10

// EstimationUseCase - оценка площади газона и генерация стартовых полигонов
type EstimationUseCase struct {
	estimator *estimation.Estimator
	generator *estimation.Generator
	cacheRepo repository.CacheRepository
	sessions  *SessionUseCase
	pricing   *PricingUseCase
	metrics   *metrics.Collector
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewEstimationUseCase - создание нового EstimationUseCase
func NewEstimationUseCase(
	estimator *estimation.Estimator,
	generator *estimation.Generator,
	cacheRepo repository.CacheRepository,
	sessions *SessionUseCase,
	pricing *PricingUseCase,
	collector *metrics.Collector,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *EstimationUseCase {
	return &EstimationUseCase{
		estimator: estimator,
		generator: generator,
		cacheRepo: cacheRepo,
		sessions:  sessions,
		pricing:   pricing,
		metrics:   collector,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// Estimate - оценка площади по месту, полигоны и (опционально) цена и сессия
func (uc *EstimationUseCase) Estimate(ctx context.Context, req dto.EstimateRequest) (*dto.EstimateResponse, error) {
	center, ok := req.Place.Center()
	if !ok || !utils.ValidateCoordinates(center.Lat, center.Lng) {
		return nil, errors.ErrInvalidCoordinates
	}
	if !req.PropertyType.IsValid() {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"property_type": "oneof=residential commercial",
		})
	}

	plusCode := olc.Encode(center.Lat, center.Lng, plusCodeLength)

	placeKey := EstimatePlaceKey(plusCode, req.Place)

	estimate, cached := uc.cachedEstimate(ctx, placeKey, req.PropertyType)
	if estimate == nil {
		e := uc.estimator.Estimate(req.Place, req.PropertyType)
		estimate = &e
		uc.metrics.ObserveEstimate(e)

		if err := uc.cacheRepo.SetEstimate(ctx, placeKey, req.PropertyType, estimate, uc.cacheTTL); err != nil {
			uc.logger.Warn("Failed to cache estimate", zap.String("place_key", placeKey), zap.Error(err))
		}
	}

	var opts []estimation.GenerateOption
	if req.Place.RoadPoint != nil {
		opts = append(opts, estimation.WithFrontBearing(utils.InitialBearing(center, *req.Place.RoadPoint)))
	}
	polygons := uc.generator.Generate(center, estimate.EstimatedAreaSqFt, req.PropertyType, opts...)
	total := utils.RecomputeTotalArea(polygons)

	resp := &dto.EstimateResponse{
		Estimate:      *estimate,
		Polygons:      polygons,
		TotalAreaSqFt: total,
		PlusCode:      plusCode,
		Cached:        cached,
	}

	if req.AccountID != nil {
		snapshot, err := uc.pricing.Snapshot(ctx, *req.AccountID, total)
		if err != nil {
			return nil, err
		}
		resp.Pricing = &snapshot
	}

	if req.SessionID != "" {
		session, err := uc.sessions.ReplacePolygons(ctx, req.SessionID, polygons)
		if err != nil {
			return nil, err
		}
		resp.Session = session
	}

	uc.logger.Debug("Lawn area estimated",
		zap.String("plus_code", plusCode),
		zap.String("property_type", string(req.PropertyType)),
		zap.String("confidence", string(estimate.Confidence)),
		zap.Float64("area_sqft", total),
		zap.Bool("cached", cached),
	)

	return resp, nil
}

// EstimatePlaceKey - ключ кеша оценки: plus code центра и входы оценщика.
// Один центр с разными viewport или точностью адреса даёт разные ключи.
func EstimatePlaceKey(plusCode string, place domain.Place) string {
	return plusCode + "/" + place.EstimateInputsKey()
}

// cachedEstimate - ошибки кеша не прерывают оценку
func (uc *EstimationUseCase) cachedEstimate(
	ctx context.Context,
	placeKey string,
	propertyType domain.PropertyType,
) (*domain.Estimate, bool) {
	estimate, err := uc.cacheRepo.GetEstimate(ctx, placeKey, propertyType)
	if err != nil {
		uc.metrics.ObserveCacheLookup(metrics.CacheError)
		uc.logger.Warn("Failed to read cached estimate", zap.String("place_key", placeKey), zap.Error(err))
		return nil, false
	}
	if estimate == nil {
		uc.metrics.ObserveCacheLookup(metrics.CacheMiss)
		return nil, false
	}
	uc.metrics.ObserveCacheLookup(metrics.CacheHit)
	return estimate, true
}
