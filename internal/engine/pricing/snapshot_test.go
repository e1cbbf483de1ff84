package pricing_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/engine/pricing"
)

func TestNewSnapshot_TieredIsFrozen(t *testing.T) {
	settings := pricing.DefaultSettings(0.01, true)
	settings.AccountID = uuid.New()

	snap := pricing.NewSnapshot(settings, 25_000)

	assert.Equal(t, domain.PricingModeTiered, snap.Mode)
	assert.Equal(t, 205.0, snap.TotalPrice)
	assert.Nil(t, snap.FlatRateSnapshot)
	require.Len(t, snap.TiersSnapshot, 3)

	// Изменение настроек после создания квоты не трогает снимок
	*settings.SqftPricingTiers[0].UpToSqFt = 1
	settings.SqftPricingTiers[0].RatePerSqFt = 99

	assert.Equal(t, ptr(5_000), snap.TiersSnapshot[0].UpToSqFt)
	assert.Equal(t, 0.012, snap.TiersSnapshot[0].RatePerSqFt)
}

func TestNewSnapshot_Flat(t *testing.T) {
	settings := pricing.DefaultSettings(0.015, false)

	snap := pricing.NewSnapshot(settings, 10_000)

	assert.Equal(t, domain.PricingModeFlat, snap.Mode)
	require.NotNil(t, snap.FlatRateSnapshot)
	assert.Equal(t, 0.015, *snap.FlatRateSnapshot)
	assert.Equal(t, 150.0, snap.TotalPrice)
	assert.Empty(t, snap.TiersSnapshot)
}

func TestNewSnapshot_DefaultModeIsFlat(t *testing.T) {
	snap := pricing.NewSnapshot(domain.PricingSettings{FlatRatePerSqFt: 0.02}, 1_000)
	assert.Equal(t, domain.PricingModeFlat, snap.Mode)
	assert.Equal(t, 20.0, snap.TotalPrice)
}
