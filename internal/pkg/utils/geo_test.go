package utils_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/pkg/utils"
)

var austin = domain.LatLng{Lat: 30.2672, Lng: -97.7431}

func TestPolygonAreaSqFt_OneDegreeBoxAtEquator(t *testing.T) {
	box := []domain.LatLng{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1},
		{Lat: 1, Lng: 1},
		{Lat: 1, Lng: 0},
	}

	planar := utils.BoundsAreaSqFt(domain.Bounds{South: 0, West: 0, North: 1, East: 1})
	area := utils.PolygonAreaSqFt(box)

	assert.InEpsilon(t, planar, area, 0.001)
}

func TestPolygonAreaSqFt_TooFewVertices(t *testing.T) {
	assert.Zero(t, utils.PolygonAreaSqFt(nil))
	assert.Zero(t, utils.PolygonAreaSqFt([]domain.LatLng{austin}))
	assert.Zero(t, utils.PolygonAreaSqFt([]domain.LatLng{austin, {Lat: 30.27, Lng: -97.74}}))
}

func TestPolygonAreaSqFt_OrientationIndependent(t *testing.T) {
	triangle := []domain.LatLng{
		{Lat: 30.2672, Lng: -97.7431},
		{Lat: 30.2675, Lng: -97.7431},
		{Lat: 30.2672, Lng: -97.7426},
	}
	reversed := []domain.LatLng{triangle[2], triangle[1], triangle[0]}

	cw := utils.PolygonAreaSqFt(triangle)
	ccw := utils.PolygonAreaSqFt(reversed)

	assert.Greater(t, cw, 0.0)
	assert.InDelta(t, cw, ccw, 1e-6)

	// Прямоугольный треугольник: катеты в метрах через те же коэффициенты
	legNorth := 0.0003 * utils.MetersPerDegreeLat
	legEast := 0.0005 * utils.MetersPerDegreeLat * math.Cos(30.2672*math.Pi/180)
	expected := legNorth * legEast / 2 * utils.SqFtPerSqMeter
	assert.InEpsilon(t, expected, cw, 0.005)
}

func TestPolygonAreaSqFt_CollinearIsZero(t *testing.T) {
	line := []domain.LatLng{
		{Lat: 30.0, Lng: -97.0},
		{Lat: 30.001, Lng: -97.0},
		{Lat: 30.002, Lng: -97.0},
	}
	assert.InDelta(t, 0, utils.PolygonAreaSqFt(line), 1)
}

func TestMetersOffsets(t *testing.T) {
	assert.InDelta(t, 1.0, utils.MetersToLatOffset(utils.MetersPerDegreeLat), 1e-12)

	// На экваторе градус долготы равен градусу широты
	assert.InDelta(t, 1.0, utils.MetersToLngOffset(utils.MetersPerDegreeLat, 0), 1e-12)

	// На 60° долгота в два раза "короче"
	assert.InDelta(t, 2.0, utils.MetersToLngOffset(utils.MetersPerDegreeLat, 60), 1e-9)

	// Около полюса результат конечен
	assert.False(t, math.IsInf(utils.MetersToLngOffset(10, 90), 0))
}

func TestBuildRectangle(t *testing.T) {
	const areaSqM = 1000.0

	t.Run("area and shape", func(t *testing.T) {
		rect := utils.BuildRectangle(austin, areaSqM, 2, 0, 0)
		require.Len(t, rect, 4)

		assert.InEpsilon(t, areaSqM*utils.SqFtPerSqMeter, utils.PolygonAreaSqFt(rect), 0.001)

		widthKm := utils.HaversineDistance(rect[0].Lat, rect[0].Lng, rect[1].Lat, rect[1].Lng)
		depthKm := utils.HaversineDistance(rect[1].Lat, rect[1].Lng, rect[2].Lat, rect[2].Lng)
		assert.InEpsilon(t, 2.0, widthKm/depthKm, 0.01)
	})

	t.Run("rotation and offset preserve area", func(t *testing.T) {
		rect := utils.BuildRectangle(austin, areaSqM, 2, 37, 25)
		require.Len(t, rect, 4)
		assert.InEpsilon(t, areaSqM*utils.SqFtPerSqMeter, utils.PolygonAreaSqFt(rect), 0.001)
	})

	t.Run("offset follows rotation", func(t *testing.T) {
		north := centroid(utils.BuildRectangle(austin, areaSqM, 1, 0, 50))
		assert.Greater(t, north.Lat, austin.Lat)
		assert.InDelta(t, austin.Lng, north.Lng, 1e-9)

		east := centroid(utils.BuildRectangle(austin, areaSqM, 1, 90, 50))
		assert.Greater(t, east.Lng, austin.Lng)
		assert.InDelta(t, austin.Lat, east.Lat, 1e-9)
	})

	t.Run("degenerate input", func(t *testing.T) {
		assert.Nil(t, utils.BuildRectangle(austin, 0, 2, 0, 0))
		assert.Nil(t, utils.BuildRectangle(austin, 100, 0, 0, 0))
	})
}

func TestInitialBearing(t *testing.T) {
	assert.InDelta(t, 0, utils.InitialBearing(austin, domain.LatLng{Lat: 30.3, Lng: austin.Lng}), 1e-6)
	assert.InDelta(t, 180, utils.InitialBearing(austin, domain.LatLng{Lat: 30.2, Lng: austin.Lng}), 1e-6)
	assert.InDelta(t, 90, utils.InitialBearing(austin, domain.LatLng{Lat: austin.Lat, Lng: -97.7}), 0.1)
	assert.InDelta(t, 270, utils.InitialBearing(austin, domain.LatLng{Lat: austin.Lat, Lng: -97.8}), 0.1)
}

func TestRecomputeTotalArea_Idempotent(t *testing.T) {
	polygons := []*domain.Polygon{
		{ID: "a", Vertices: utils.BuildRectangle(austin, 500, 1.5, 0, 0)},
		{ID: "b", Vertices: utils.BuildRectangle(austin, 300, 2, 45, 40)},
	}

	first := utils.RecomputeTotalArea(polygons)
	second := utils.RecomputeTotalArea(polygons)

	assert.Equal(t, first, second)
	assert.InEpsilon(t, 800*utils.SqFtPerSqMeter, first, 0.001)
	assert.Equal(t, first, polygons[0].AreaSqFt+polygons[1].AreaSqFt)
}

func TestHaversineDistance(t *testing.T) {
	// Один градус широты ~111.2 км
	d := utils.HaversineDistance(0, 0, 1, 0)
	assert.InDelta(t, 111.19, d, 0.05)
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
