package estimation

import (
	"math"

	"github.com/lawn-quote-service/internal/config"
	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/pkg/utils"
)

// Сообщения для UI по уровню уверенности
const (
	MessageHighConfidence   = "Estimated from the street address. Adjust the outlines if they don't match your lawn."
	MessageMediumConfidence = "Approximate estimate for this area. Outline your lawn on the map for a precise quote."
	MessageLowConfidence    = "Rough estimate only. Please draw your lawn on the map for an accurate quote."
)

// Estimator оценивает площадь газона по размеру viewport геокодера.
// Не выполняет сетевых вызовов: place уже разрешён вызывающей стороной.
type Estimator struct {
	cfg config.EstimationConfig
}

func NewEstimator(cfg config.EstimationConfig) *Estimator {
	return &Estimator{cfg: cfg}
}

// Estimate возвращает оценку площади газона для места.
// Тип участка на площадь не влияет, он определяет форму полигонов в Generator.
func (e *Estimator) Estimate(place domain.Place, propertyType domain.PropertyType) domain.Estimate {
	extent, source := place.Extent()
	if extent == nil {
		return e.fallback()
	}

	bbox := utils.BoundsAreaSqFt(*extent)

	confidence := domain.ConfidenceMedium
	ratio := e.cfg.AreaLevelRatio
	if place.HasStreetAddress() {
		confidence = domain.ConfidenceHigh
		ratio = e.cfg.StreetAddressRatio
	}

	switch {
	case bbox > e.cfg.LargeViewportThresholdSqFt:
		// viewport целого района или города, а не участка
		ratio *= e.cfg.LargeViewportRatioFactor
		confidence = domain.ConfidenceLow
	case bbox < e.cfg.SmallViewportThresholdSqFt:
		ratio = math.Min(ratio*e.cfg.SmallViewportMultiplier, e.cfg.SmallViewportRatioCeiling)
	}

	return domain.Estimate{
		EstimatedAreaSqFt: e.clampAndRound(bbox * ratio),
		Confidence:        confidence,
		Source:            source,
		BoundingBoxSqFt:   bbox,
		AppliedRatio:      ratio,
		Message:           MessageFor(confidence),
	}
}

func (e *Estimator) fallback() domain.Estimate {
	r := e.cfg.FallbackRadiusMeters
	circleSqFt := math.Pi * r * r * utils.SqFtPerSqMeter

	return domain.Estimate{
		EstimatedAreaSqFt: e.clampAndRound(circleSqFt * e.cfg.FallbackLawnRatio),
		Confidence:        domain.ConfidenceLow,
		Source:            domain.EstimateSourceFallback,
		BoundingBoxSqFt:   circleSqFt,
		AppliedRatio:      e.cfg.FallbackLawnRatio,
		Message:           MessageFor(domain.ConfidenceLow),
	}
}

func (e *Estimator) clampAndRound(sqft float64) float64 {
	clamped := math.Max(e.cfg.MinLawnSqFt, math.Min(e.cfg.MaxLawnSqFt, sqft))
	step := e.cfg.RoundingStepSqFt
	return math.Round(clamped/step) * step
}

// MessageFor возвращает текст бейджа для уровня уверенности
func MessageFor(c domain.Confidence) string {
	switch c {
	case domain.ConfidenceHigh:
		return MessageHighConfidence
	case domain.ConfidenceMedium:
		return MessageMediumConfidence
	default:
		return MessageLowConfidence
	}
}
