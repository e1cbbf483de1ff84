package utils

import (
	"math"

	"github.com/lawn-quote-service/internal/domain"
)

const (
	earthRadiusKm = 6371.0

	// earthRadiusMeters - экваториальный радиус, как в геометрии Google Maps
	earthRadiusMeters = 6378137.0

	// MetersPerDegreeLat - длина одного градуса широты
	MetersPerDegreeLat = 111320.0

	// SqFtPerSqMeter - перевод м² в ft²
	SqFtPerSqMeter = 10.7639104

	minCosLatitude = 1e-6
)

// HaversineDistance вычисляет расстояние между двумя точками в километрах
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// PolygonAreaSqFt вычисляет площадь сферического полигона в квадратных футах.
// Меньше 3 вершин - площадь 0. Самопересечения не проверяются.
func PolygonAreaSqFt(vertices []domain.LatLng) float64 {
	return polygonAreaSqMeters(vertices) * SqFtPerSqMeter
}

// polygonAreaSqMeters - сферический избыток через сумму полярных треугольников
func polygonAreaSqMeters(vertices []domain.LatLng) float64 {
	if len(vertices) < domain.MinPolygonVertices {
		return 0
	}

	prev := vertices[len(vertices)-1]
	prevTanLat := math.Tan((math.Pi/2 - toRadians(prev.Lat)) / 2)
	prevLng := toRadians(prev.Lng)

	var total float64
	for _, v := range vertices {
		tanLat := math.Tan((math.Pi/2 - toRadians(v.Lat)) / 2)
		lng := toRadians(v.Lng)
		total += polarTriangleArea(tanLat, lng, prevTanLat, prevLng)
		prevTanLat = tanLat
		prevLng = lng
	}

	return math.Abs(total * earthRadiusMeters * earthRadiusMeters)
}

func polarTriangleArea(tan1, lng1, tan2, lng2 float64) float64 {
	deltaLng := lng1 - lng2
	t := tan1 * tan2
	return 2 * math.Atan2(t*math.Sin(deltaLng), 1+t*math.Cos(deltaLng))
}

// MetersToLatOffset переводит расстояние по меридиану в градусы широты
func MetersToLatOffset(meters float64) float64 {
	return meters / MetersPerDegreeLat
}

// MetersToLngOffset переводит расстояние по параллели в градусы долготы.
// Меридианы сходятся к полюсам, поэтому делим на cos(широты).
func MetersToLngOffset(meters, atLatitude float64) float64 {
	return meters / (MetersPerDegreeLat * cosLatitude(atLatitude))
}

// BoundsAreaSqFt - плоская площадь прямоугольника viewport в ft²
func BoundsAreaSqFt(b domain.Bounds) float64 {
	center := b.Center()
	heightM := b.LatSpan() * MetersPerDegreeLat
	widthM := b.LngSpan() * MetersPerDegreeLat * cosLatitude(center.Lat)
	return math.Abs(heightM*widthM) * SqFtPerSqMeter
}

// BuildRectangle строит прямоугольник заданной площади и пропорций.
// Локальная система: x - восток, y - север. Прямоугольник центрирован в (0, verticalOffsetMeters),
// затем вершины поворачиваются по часовой стрелке на rotationDegrees вокруг center.
func BuildRectangle(
	center domain.LatLng,
	areaSqM float64,
	aspectRatio float64,
	rotationDegrees float64,
	verticalOffsetMeters float64,
) []domain.LatLng {
	if areaSqM <= 0 || aspectRatio <= 0 {
		return nil
	}

	width := math.Sqrt(areaSqM * aspectRatio)
	depth := areaSqM / width
	halfW, halfD := width/2, depth/2

	corners := [4][2]float64{
		{-halfW, verticalOffsetMeters + halfD},
		{halfW, verticalOffsetMeters + halfD},
		{halfW, verticalOffsetMeters - halfD},
		{-halfW, verticalOffsetMeters - halfD},
	}

	theta := toRadians(rotationDegrees)
	sin, cos := math.Sin(theta), math.Cos(theta)

	vertices := make([]domain.LatLng, 0, len(corners))
	for _, c := range corners {
		x := c[0]*cos + c[1]*sin
		y := -c[0]*sin + c[1]*cos
		vertices = append(vertices, domain.LatLng{
			Lat: center.Lat + MetersToLatOffset(y),
			Lng: center.Lng + MetersToLngOffset(x, center.Lat),
		})
	}

	return vertices
}

// InitialBearing - начальный азимут from -> to в градусах [0, 360)
func InitialBearing(from, to domain.LatLng) float64 {
	lat1 := toRadians(from.Lat)
	lat2 := toRadians(to.Lat)
	dLng := toRadians(to.Lng - from.Lng)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	bearing := math.Mod(toDegrees(math.Atan2(y, x))+360, 360)
	return bearing
}

// RecomputePolygonArea пересчитывает кэшированную площадь полигона из вершин
func RecomputePolygonArea(p *domain.Polygon) float64 {
	if p == nil {
		return 0
	}
	p.AreaSqFt = PolygonAreaSqFt(p.Vertices)
	return p.AreaSqFt
}

// RecomputeTotalArea пересчитывает каждый полигон и возвращает сумму
func RecomputeTotalArea(polygons []*domain.Polygon) float64 {
	var total float64
	for _, p := range polygons {
		total += RecomputePolygonArea(p)
	}
	return total
}

func cosLatitude(lat float64) float64 {
	return math.Max(math.Cos(toRadians(lat)), minCosLatitude)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
