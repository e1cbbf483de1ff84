package pricing

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/lawn-quote-service/internal/domain"
)

// TieredPrice - итог маржинального расчёта
type TieredPrice struct {
	TotalPrice float64                      `json:"total_price"`
	Breakdown  []domain.PriceBreakdownEntry `json:"breakdown"`
}

// FlatPrice - итог расчёта по единой ставке
type FlatPrice struct {
	TotalPrice  float64 `json:"total_price"`
	RatePerSqFt float64 `json:"rate_per_sqft"`
}

// Comparison - сравнение шкалы с единой ставкой для одной площади
type Comparison struct {
	AreaSqFt       float64            `json:"area_sqft"`
	Tiered         TieredPrice        `json:"tiered"`
	Flat           FlatPrice          `json:"flat"`
	EffectiveRate  float64            `json:"effective_rate"`
	Savings        float64            `json:"savings"`
	SavingsPercent float64            `json:"savings_percent"`
	Cheaper        domain.PricingMode `json:"cheaper"`
}

// DefaultPricingTiers - шкала для новых аккаунтов
func DefaultPricingTiers() []domain.PricingTier {
	return []domain.PricingTier{
		{UpToSqFt: bound(5_000), RatePerSqFt: 0.012},
		{UpToSqFt: bound(20_000), RatePerSqFt: 0.008},
		{UpToSqFt: nil, RatePerSqFt: 0.005},
	}
}

// CalculateTieredPrice считает цену по маржинальной шкале.
// Шкала должна пройти ValidatePricingTiers: на невалидной результат не гарантирован.
// Итог округляется до центов один раз, а не по уровням.
func CalculateTieredPrice(totalSqFt float64, tiers []domain.PricingTier) TieredPrice {
	result := TieredPrice{Breakdown: []domain.PriceBreakdownEntry{}}
	if totalSqFt <= 0 || len(tiers) == 0 {
		return result
	}

	remaining := totalSqFt
	rangeStart := 0.0
	var total float64

	for _, tier := range sortTiers(tiers) {
		if remaining <= 0 {
			break
		}

		tierSize := remaining
		if !tier.IsUnlimited() {
			tierSize = *tier.UpToSqFt - rangeStart
		}
		if tierSize <= 0 {
			continue
		}

		inTier := math.Min(remaining, tierSize)
		price := inTier * tier.RatePerSqFt
		total += price

		entry := domain.PriceBreakdownEntry{
			RangeStart: rangeStart,
			SqFtInTier: inTier,
			Rate:       tier.RatePerSqFt,
			Price:      roundCents(price),
			Label:      tierLabel(rangeStart, tier.UpToSqFt),
		}
		if !tier.IsUnlimited() {
			entry.RangeEnd = bound(*tier.UpToSqFt)
		}
		result.Breakdown = append(result.Breakdown, entry)

		remaining -= inTier
		if tier.IsUnlimited() {
			break
		}
		rangeStart = *tier.UpToSqFt
	}

	result.TotalPrice = roundCents(total)
	return result
}

// CalculateFlatPrice - площадь, умноженная на единую ставку
func CalculateFlatPrice(totalSqFt, ratePerSqFt float64) FlatPrice {
	if totalSqFt <= 0 {
		return FlatPrice{RatePerSqFt: ratePerSqFt}
	}
	return FlatPrice{
		TotalPrice:  roundCents(totalSqFt * ratePerSqFt),
		RatePerSqFt: ratePerSqFt,
	}
}

// CalculateEffectiveRate - средняя ставка за ft² по шкале (4 знака)
func CalculateEffectiveRate(totalSqFt float64, tiers []domain.PricingTier) float64 {
	if totalSqFt <= 0 {
		return 0
	}
	price := CalculateTieredPrice(totalSqFt, tiers).TotalPrice
	return math.Round(price/totalSqFt*10_000) / 10_000
}

// ComparePricing сравнивает шкалу с единой ставкой
func ComparePricing(totalSqFt float64, tiers []domain.PricingTier, flatRate float64) Comparison {
	tiered := CalculateTieredPrice(totalSqFt, tiers)
	flat := CalculateFlatPrice(totalSqFt, flatRate)

	savings := roundCents(flat.TotalPrice - tiered.TotalPrice)
	percent := 0.0
	if flat.TotalPrice > 0 {
		percent = math.Round(savings/flat.TotalPrice*1000) / 10
	}

	cheaper := domain.PricingModeFlat
	if tiered.TotalPrice < flat.TotalPrice {
		cheaper = domain.PricingModeTiered
	}

	return Comparison{
		AreaSqFt:       totalSqFt,
		Tiered:         tiered,
		Flat:           flat,
		EffectiveRate:  CalculateEffectiveRate(totalSqFt, tiers),
		Savings:        savings,
		SavingsPercent: percent,
		Cheaper:        cheaper,
	}
}

// sortTiers возвращает отсортированную копию, безлимитный уровень в конце
func sortTiers(tiers []domain.PricingTier) []domain.PricingTier {
	sorted := domain.CloneTiers(tiers)
	slices.SortStableFunc(sorted, func(a, b domain.PricingTier) int {
		switch {
		case a.IsUnlimited() && b.IsUnlimited():
			return 0
		case a.IsUnlimited():
			return 1
		case b.IsUnlimited():
			return -1
		}
		return cmp.Compare(*a.UpToSqFt, *b.UpToSqFt)
	})
	return sorted
}

func tierLabel(start float64, end *float64) string {
	if end == nil {
		return fmt.Sprintf("%s+ sq ft", humanize.Commaf(start))
	}
	return fmt.Sprintf("%s - %s sq ft", humanize.Commaf(start), humanize.Commaf(*end))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func bound(v float64) *float64 {
	return &v
}
