package pricing

import (
	"github.com/lawn-quote-service/internal/domain"
)

// NewSnapshot замораживает ставки аккаунта для квоты.
// Таблица уровней копируется: изменение настроек потом не меняет сохранённую цену.
func NewSnapshot(settings domain.PricingSettings, totalSqFt float64) domain.PricingSnapshot {
	if settings.Mode() == domain.PricingModeTiered {
		tiers := domain.CloneTiers(settings.SqftPricingTiers)
		price := CalculateTieredPrice(totalSqFt, tiers)
		return domain.PricingSnapshot{
			Mode:          domain.PricingModeTiered,
			TiersSnapshot: tiers,
			AreaSqFt:      totalSqFt,
			TotalPrice:    price.TotalPrice,
			Breakdown:     price.Breakdown,
		}
	}

	rate := settings.FlatRatePerSqFt
	return domain.PricingSnapshot{
		Mode:             domain.PricingModeFlat,
		FlatRateSnapshot: &rate,
		AreaSqFt:         totalSqFt,
		TotalPrice:       CalculateFlatPrice(totalSqFt, rate).TotalPrice,
	}
}

// DefaultSettings - настройки аккаунта, пока он не сохранил свои
func DefaultSettings(flatRate float64, useTiered bool) domain.PricingSettings {
	return domain.PricingSettings{
		UseTieredSqftPricing: useTiered,
		SqftPricingTiers:     DefaultPricingTiers(),
		FlatRatePerSqFt:      flatRate,
	}
}
