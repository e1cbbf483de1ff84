package domain

import (
	"time"

	"github.com/google/uuid"
)

// PricingMode - режим расчёта цены
type PricingMode string

const (
	PricingModeFlat   PricingMode = "flat"
	PricingModeTiered PricingMode = "tiered"
)

// PricingTier - одна полоса маржинальной шкалы.
// UpToSqFt == nil означает безлимитный (последний) уровень.
type PricingTier struct {
	UpToSqFt    *float64 `json:"up_to_sqft"`
	RatePerSqFt float64  `json:"rate_per_sqft"`
}

// IsUnlimited проверяет, является ли уровень безлимитным
func (t PricingTier) IsUnlimited() bool {
	return t.UpToSqFt == nil
}

// CloneTiers возвращает независимую копию таблицы уровней
func CloneTiers(tiers []PricingTier) []PricingTier {
	if tiers == nil {
		return nil
	}
	out := make([]PricingTier, len(tiers))
	for i, t := range tiers {
		out[i] = PricingTier{RatePerSqFt: t.RatePerSqFt}
		if t.UpToSqFt != nil {
			v := *t.UpToSqFt
			out[i].UpToSqFt = &v
		}
	}
	return out
}

// PriceBreakdownEntry - вклад одного уровня в итоговую цену
type PriceBreakdownEntry struct {
	RangeStart float64  `json:"range_start"`
	RangeEnd   *float64 `json:"range_end"`
	SqFtInTier float64  `json:"sqft_in_tier"`
	Rate       float64  `json:"rate"`
	Price      float64  `json:"price"`
	Label      string   `json:"label"`
}

// PricingSettings - настройки цен аккаунта
type PricingSettings struct {
	AccountID            uuid.UUID     `json:"account_id" db:"account_id"`
	UseTieredSqftPricing bool          `json:"use_tiered_sqft_pricing" db:"use_tiered_sqft_pricing"`
	SqftPricingTiers     []PricingTier `json:"sqft_pricing_tiers" db:"-"`
	FlatRatePerSqFt      float64       `json:"flat_rate_per_sqft" db:"flat_rate_per_sqft"`
	UpdatedAt            time.Time     `json:"updated_at" db:"updated_at"`
}

// Mode возвращает режим, который действует для этих настроек
func (s *PricingSettings) Mode() PricingMode {
	if s.UseTieredSqftPricing {
		return PricingModeTiered
	}
	return PricingModeFlat
}

// PricingSnapshot - неизменяемая копия ставок на момент создания квоты.
// Последующие изменения настроек аккаунта не влияют на сохранённую цену.
type PricingSnapshot struct {
	Mode             PricingMode           `json:"mode"`
	TiersSnapshot    []PricingTier         `json:"tiers_snapshot,omitempty"`
	FlatRateSnapshot *float64              `json:"flat_rate_snapshot,omitempty"`
	AreaSqFt         float64               `json:"area_sqft"`
	TotalPrice       float64               `json:"total_price"`
	Breakdown        []PriceBreakdownEntry `json:"breakdown,omitempty"`
}
