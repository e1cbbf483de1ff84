package dto

import (
	"github.com/google/uuid"

	"github.com/lawn-quote-service/internal/domain"
)

// CalculatePriceRequest - цена площади по настройкам аккаунта
type CalculatePriceRequest struct {
	AccountID uuid.UUID `json:"account_id" validate:"required"`
	AreaSqFt  float64   `json:"area_sqft" validate:"gte=0"`
}

// ValidateTiersRequest - проверка шкалы перед сохранением
type ValidateTiersRequest struct {
	Tiers []domain.PricingTier `json:"tiers"`
}

// ComparePricingRequest - сравнение шкалы и единой ставки.
// Без Tiers/FlatRate берутся настройки аккаунта.
type ComparePricingRequest struct {
	AccountID *uuid.UUID           `json:"account_id,omitempty"`
	AreaSqFt  float64              `json:"area_sqft" validate:"gte=0"`
	Tiers     []domain.PricingTier `json:"tiers,omitempty"`
	FlatRate  *float64             `json:"flat_rate,omitempty" validate:"omitempty,gt=0"`
}

// UpdatePricingSettingsRequest - изменение настроек цен аккаунта
type UpdatePricingSettingsRequest struct {
	UseTieredSqftPricing *bool                `json:"use_tiered_sqft_pricing,omitempty"`
	SqftPricingTiers     []domain.PricingTier `json:"sqft_pricing_tiers,omitempty"`
	FlatRatePerSqFt      *float64             `json:"flat_rate_per_sqft,omitempty" validate:"omitempty,gt=0"`
}
