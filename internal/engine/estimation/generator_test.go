package estimation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawn-quote-service/internal/config"
	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/engine/estimation"
	"github.com/lawn-quote-service/internal/pkg/utils"
)

func fixedClock() time.Time {
	return time.UnixMilli(1_700_000_000_000)
}

func TestGenerator_Residential(t *testing.T) {
	gen := estimation.NewGenerator(config.DefaultEstimationConfig())

	polygons := gen.Generate(austin, 10_000, domain.PropertyTypeResidential, estimation.WithClock(fixedClock))
	require.Len(t, polygons, 2)

	assert.Equal(t, "front-yard-1700000000000", polygons[0].ID)
	assert.Equal(t, domain.PolygonKindFrontYard, polygons[0].Kind)
	assert.Equal(t, "back-yard-1700000000000", polygons[1].ID)
	assert.Equal(t, domain.PolygonKindBackYard, polygons[1].Kind)

	for _, p := range polygons {
		assert.Len(t, p.Vertices, 4)
		assert.Zero(t, p.AreaSqFt, "generator must not set area")
	}

	front := utils.RecomputePolygonArea(polygons[0])
	back := utils.RecomputePolygonArea(polygons[1])
	assert.InEpsilon(t, 3_000, front, 0.001)
	assert.InEpsilon(t, 7_000, back, 0.001)
}

func TestGenerator_RoundTrip(t *testing.T) {
	gen := estimation.NewGenerator(config.DefaultEstimationConfig())

	for _, area := range []float64{1_000, 8_500, 50_000} {
		for _, pt := range []domain.PropertyType{domain.PropertyTypeResidential, domain.PropertyTypeCommercial} {
			polygons := gen.Generate(austin, area, pt)
			assert.InEpsilon(t, area, utils.RecomputeTotalArea(polygons), 0.01, "%s %v", pt, area)
		}
	}
}

func TestGenerator_Commercial(t *testing.T) {
	gen := estimation.NewGenerator(config.DefaultEstimationConfig())

	polygons := gen.Generate(austin, 20_000, domain.PropertyTypeCommercial, estimation.WithClock(fixedClock))
	require.Len(t, polygons, 1)
	assert.True(t, strings.HasPrefix(polygons[0].ID, "commercial-"))
	assert.Equal(t, domain.PolygonKindCommercial, polygons[0].Kind)
	assert.Equal(t, fixedClock(), polygons[0].CreatedAt)
}

func TestGenerator_FrontFacesRoad(t *testing.T) {
	gen := estimation.NewGenerator(config.DefaultEstimationConfig())

	t.Run("default road to the south", func(t *testing.T) {
		polygons := gen.Generate(austin, 10_000, domain.PropertyTypeResidential)
		front, back := centroid(polygons[0].Vertices), centroid(polygons[1].Vertices)

		assert.Less(t, front.Lat, austin.Lat)
		assert.Greater(t, back.Lat, austin.Lat)
	})

	t.Run("road to the east", func(t *testing.T) {
		polygons := gen.Generate(austin, 10_000, domain.PropertyTypeResidential, estimation.WithFrontBearing(90))
		front, back := centroid(polygons[0].Vertices), centroid(polygons[1].Vertices)

		assert.Greater(t, front.Lng, austin.Lng)
		assert.Less(t, back.Lng, austin.Lng)
		assert.InDelta(t, austin.Lat, front.Lat, 1e-7)
	})
}

func TestGenerator_ZeroArea(t *testing.T) {
	gen := estimation.NewGenerator(config.DefaultEstimationConfig())

	polygons := gen.Generate(austin, 0, domain.PropertyTypeResidential)
	require.Len(t, polygons, 2)
	assert.Zero(t, utils.RecomputeTotalArea(polygons))
}

func centroid(vertices []domain.LatLng) domain.LatLng {
	var c domain.LatLng
	for _, v := range vertices {
		c.Lat += v.Lat
		c.Lng += v.Lng
	}
	n := float64(len(vertices))
	return domain.LatLng{Lat: c.Lat / n, Lng: c.Lng / n}
}
