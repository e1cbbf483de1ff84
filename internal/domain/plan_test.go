package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateOverage(t *testing.T) {
	t.Run("under the included limit", func(t *testing.T) {
		info := CalculateOverage(10, PlanStarter)

		assert.Equal(t, "Starter", info.PlanName)
		assert.Equal(t, 25, info.IncludedLimit)
		assert.Equal(t, 0, info.OverageCount)
		assert.False(t, info.IsOverLimit)
		assert.Equal(t, 15, info.RemainingIncluded)
		assert.Equal(t, 40.0, info.UsagePercentage)
	})

	t.Run("over the included limit", func(t *testing.T) {
		info := CalculateOverage(130, PlanProfessional)

		assert.Equal(t, 30, info.OverageCount)
		assert.True(t, info.IsOverLimit)
		assert.Equal(t, 0, info.RemainingIncluded)
		assert.Equal(t, 100.0, info.UsagePercentage, "usage percentage is capped")
	})

	t.Run("unknown plan falls back to default", func(t *testing.T) {
		info := CalculateOverage(1, PlanTier("gold"))
		assert.Equal(t, PlanLimits[DefaultPlanTier].IncludedQuotesPerMonth, info.IncludedLimit)
	})
}

func TestMonthBoundariesUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 31 Dec 22:00 local is already 1 Jan in UTC
	now := time.Date(2025, time.December, 31, 22, 0, 0, 0, loc)

	start, next := MonthBoundariesUTC(now)

	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), next)
}

func TestQuoteStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, QuoteStatusPending.CanTransitionTo(QuoteStatusWon))
	assert.True(t, QuoteStatusPending.CanTransitionTo(QuoteStatusLost))
	assert.False(t, QuoteStatusPending.CanTransitionTo(QuoteStatusPending))
	assert.False(t, QuoteStatusWon.CanTransitionTo(QuoteStatusLost))
	assert.False(t, QuoteStatusLost.CanTransitionTo(QuoteStatusWon))
}

func TestFrequency_VisitsPerMonth(t *testing.T) {
	assert.Equal(t, 4.33, FrequencyWeekly.VisitsPerMonth())
	assert.Equal(t, 2.17, FrequencyBiweekly.VisitsPerMonth())
	assert.Equal(t, 1.0, FrequencyMonthly.VisitsPerMonth())
	assert.Equal(t, 0.0, Frequency("yearly").VisitsPerMonth())
}

func TestCloneTiers_IsDeepCopy(t *testing.T) {
	limit := 5000.0
	tiers := []PricingTier{{UpToSqFt: &limit, RatePerSqFt: 0.012}, {RatePerSqFt: 0.005}}

	cloned := CloneTiers(tiers)
	*tiers[0].UpToSqFt = 9999
	tiers[1].RatePerSqFt = 1

	assert.Equal(t, 5000.0, *cloned[0].UpToSqFt)
	assert.Equal(t, 0.005, cloned[1].RatePerSqFt)
	assert.True(t, cloned[1].IsUnlimited())
	assert.Nil(t, CloneTiers(nil))
}
