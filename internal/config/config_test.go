package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/lawn-quote-service/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())
	assert.Equal(t, time.Hour, cfg.Cache.EstimateCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.SessionTTL)
	assert.Equal(t, config.DefaultEstimationConfig(), cfg.Estimation)
	assert.Equal(t, 0.01, cfg.Pricing.DefaultFlatRatePerSqFt)
	assert.True(t, cfg.Pricing.DefaultUseTiered)
	assert.False(t, cfg.Worker.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Worker.ClaimIdle)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("SESSION_TTL", "600")
	t.Setenv("WORKER_ENABLED", "true")
	t.Setenv("ESTIMATE_MAX_LAWN_SQFT", "80000")
	t.Setenv("PRICING_DEFAULT_USE_TIERED", "false")
	t.Setenv("WORKER_CLAIM_IDLE", "5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.Cache.SessionTTL)
	assert.True(t, cfg.Worker.Enabled)
	assert.Equal(t, 80000.0, cfg.Estimation.MaxLawnSqFt)
	assert.False(t, cfg.Pricing.DefaultUseTiered)
	assert.Equal(t, 5*time.Second, cfg.Worker.ClaimIdle)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("ESTIMATE_MAX_LAWN_SQFT", "500")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxLawnSqFt")
}

func TestEstimationConfig_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, config.DefaultEstimationConfig().Validate())
	})

	t.Run("yard ratios must fit the lot", func(t *testing.T) {
		cfg := config.DefaultEstimationConfig()
		cfg.FrontYardRatio = 0.6
		cfg.BackYardRatio = 0.6

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sum to 1.20")
	})
}

func TestConfig_ValidateCollectsAllProblems(t *testing.T) {
	cfg := &config.Config{
		Worker:     config.WorkerConfig{BatchSize: 0, Concurrency: 1},
		Estimation: config.DefaultEstimationConfig(),
		Pricing:    config.PricingConfig{DefaultFlatRatePerSqFt: 0.01},
	}
	cfg.Estimation.FrontYardRatio = 0.9
	cfg.Estimation.BackYardRatio = 0.9

	err := cfg.Validate()
	require.Error(t, err)
	// теги полей одной ошибкой, сумма долей второй
	assert.Len(t, multierr.Errors(err), 2)
}

func TestConfig_ValidateReportsEstimationTagsOnce(t *testing.T) {
	cfg := &config.Config{
		Worker:     config.WorkerConfig{BatchSize: 10, Concurrency: 1},
		Estimation: config.DefaultEstimationConfig(),
		Pricing:    config.PricingConfig{DefaultFlatRatePerSqFt: 0.01},
	}
	cfg.Estimation.MaxLawnSqFt = 500

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Equal(t, 1, strings.Count(err.Error(), "MaxLawnSqFt"))
}
