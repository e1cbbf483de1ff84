package estimation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawn-quote-service/internal/config"
	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/engine/estimation"
	"github.com/lawn-quote-service/internal/pkg/utils"
)

var austin = domain.LatLng{Lat: 30.2672, Lng: -97.7431}

// squareViewport строит viewport с заданной площадью bounding box
func squareViewport(center domain.LatLng, areaSqFt float64) *domain.Bounds {
	side := math.Sqrt(areaSqFt / utils.SqFtPerSqMeter)
	dLat := utils.MetersToLatOffset(side) / 2
	dLng := utils.MetersToLngOffset(side, center.Lat) / 2
	return &domain.Bounds{
		South: center.Lat - dLat,
		North: center.Lat + dLat,
		West:  center.Lng - dLng,
		East:  center.Lng + dLng,
	}
}

func streetAddress() []domain.AddressComponent {
	return []domain.AddressComponent{
		{LongName: "1100", Types: []string{domain.AddressTypeStreetNumber}},
		{LongName: "Congress Avenue", Types: []string{domain.AddressTypeRoute}},
		{LongName: "Austin", Types: []string{"locality", "political"}},
	}
}

func TestEstimator_Estimate(t *testing.T) {
	estimator := estimation.NewEstimator(config.DefaultEstimationConfig())

	tests := []struct {
		name           string
		place          domain.Place
		wantArea       float64
		wantConfidence domain.Confidence
		wantSource     domain.EstimateSource
	}{
		{
			name: "street address uses street ratio",
			place: domain.Place{
				Viewport:          squareViewport(austin, 40_000),
				AddressComponents: streetAddress(),
			},
			wantArea:       14_000,
			wantConfidence: domain.ConfidenceHigh,
			wantSource:     domain.EstimateSourceViewport,
		},
		{
			name:           "area level place uses area ratio",
			place:          domain.Place{Viewport: squareViewport(austin, 40_000)},
			wantArea:       6_000,
			wantConfidence: domain.ConfidenceMedium,
			wantSource:     domain.EstimateSourceViewport,
		},
		{
			name:           "bounds used when viewport missing",
			place:          domain.Place{Bounds: squareViewport(austin, 40_000)},
			wantArea:       6_000,
			wantConfidence: domain.ConfidenceMedium,
			wantSource:     domain.EstimateSourceBounds,
		},
		{
			name:           "no extent falls back to circle",
			place:          domain.Place{Location: &austin},
			wantArea:       12_200,
			wantConfidence: domain.ConfidenceLow,
			wantSource:     domain.EstimateSourceFallback,
		},
		{
			name: "zero span clamps up to minimum",
			place: domain.Place{
				Viewport:          &domain.Bounds{South: austin.Lat, North: austin.Lat, West: austin.Lng, East: austin.Lng},
				AddressComponents: streetAddress(),
			},
			wantArea:       1_000,
			wantConfidence: domain.ConfidenceHigh,
			wantSource:     domain.EstimateSourceViewport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimator.Estimate(tt.place, domain.PropertyTypeResidential)

			assert.Equal(t, tt.wantArea, got.EstimatedAreaSqFt)
			assert.Equal(t, tt.wantConfidence, got.Confidence)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, estimation.MessageFor(tt.wantConfidence), got.Message)
		})
	}
}

func TestEstimator_LargeViewportGuardrail(t *testing.T) {
	cfg := config.DefaultEstimationConfig()
	estimator := estimation.NewEstimator(cfg)

	got := estimator.Estimate(domain.Place{
		Viewport:          squareViewport(austin, 2_000_000),
		AddressComponents: streetAddress(),
	}, domain.PropertyTypeResidential)

	assert.Equal(t, domain.ConfidenceLow, got.Confidence)
	assert.Less(t, got.AppliedRatio, cfg.StreetAddressRatio)
	assert.InDelta(t, cfg.StreetAddressRatio*cfg.LargeViewportRatioFactor, got.AppliedRatio, 1e-12)
	assert.Equal(t, cfg.MaxLawnSqFt, got.EstimatedAreaSqFt)
	assert.InEpsilon(t, 2_000_000, got.BoundingBoxSqFt, 1e-9)
}

func TestEstimator_SmallViewportGuardrail(t *testing.T) {
	t.Run("ratio inflated by multiplier", func(t *testing.T) {
		cfg := config.DefaultEstimationConfig()
		got := estimation.NewEstimator(cfg).Estimate(domain.Place{
			Viewport:          squareViewport(austin, 5_000),
			AddressComponents: streetAddress(),
		}, domain.PropertyTypeResidential)

		assert.Equal(t, domain.ConfidenceHigh, got.Confidence)
		assert.Greater(t, got.AppliedRatio, cfg.StreetAddressRatio)
		assert.InDelta(t, cfg.StreetAddressRatio*cfg.SmallViewportMultiplier, got.AppliedRatio, 1e-12)
		assert.Equal(t, 2_600.0, got.EstimatedAreaSqFt)
	})

	t.Run("ratio capped at ceiling", func(t *testing.T) {
		cfg := config.DefaultEstimationConfig()
		cfg.SmallViewportMultiplier = 3
		got := estimation.NewEstimator(cfg).Estimate(domain.Place{
			Viewport:          squareViewport(austin, 5_000),
			AddressComponents: streetAddress(),
		}, domain.PropertyTypeResidential)

		assert.Equal(t, cfg.SmallViewportRatioCeiling, got.AppliedRatio)
		assert.Equal(t, 4_000.0, got.EstimatedAreaSqFt)
	})
}

func TestEstimator_ResultBoundedAndRounded(t *testing.T) {
	cfg := config.DefaultEstimationConfig()
	estimator := estimation.NewEstimator(cfg)

	for _, bbox := range []float64{0, 1, 3_333, 9_999, 10_001, 77_777, 500_000, 999_999, 5_000_000} {
		got := estimator.Estimate(domain.Place{Viewport: squareViewport(austin, bbox)}, domain.PropertyTypeCommercial)

		require.GreaterOrEqual(t, got.EstimatedAreaSqFt, cfg.MinLawnSqFt, "bbox %v", bbox)
		require.LessOrEqual(t, got.EstimatedAreaSqFt, cfg.MaxLawnSqFt, "bbox %v", bbox)
		assert.Zero(t, math.Mod(got.EstimatedAreaSqFt, 100), "bbox %v", bbox)
	}
}
