package estimation

import (
	"fmt"
	"math"
	"time"

	"github.com/lawn-quote-service/internal/config"
	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/pkg/utils"
)

// defaultFrontBearing - дорога считается к югу от дома, если направление неизвестно
const defaultFrontBearing = 180.0

// Generator строит прямоугольные полигоны по оценке площади.
// Генерирует только форму: AreaSqFt остаётся нулевой до пересчёта.
type Generator struct {
	cfg config.EstimationConfig
	now func() time.Time
}

func NewGenerator(cfg config.EstimationConfig) *Generator {
	return &Generator{cfg: cfg, now: time.Now}
}

type generateOptions struct {
	frontBearing float64
	now          func() time.Time
}

// GenerateOption настраивает один вызов Generate
type GenerateOption func(*generateOptions)

// WithFrontBearing задаёт азимут от центра участка к дороге в градусах
func WithFrontBearing(bearing float64) GenerateOption {
	return func(o *generateOptions) {
		o.frontBearing = bearing
	}
}

// WithClock подменяет время для идентификаторов полигонов
func WithClock(now func() time.Time) GenerateOption {
	return func(o *generateOptions) {
		o.now = now
	}
}

// Generate возвращает 2 полигона для жилого участка и 1 для коммерческого
func (g *Generator) Generate(
	center domain.LatLng,
	estimatedAreaSqFt float64,
	propertyType domain.PropertyType,
	opts ...GenerateOption,
) []*domain.Polygon {
	o := generateOptions{frontBearing: defaultFrontBearing, now: g.now}
	for _, opt := range opts {
		opt(&o)
	}

	createdAt := o.now()
	stamp := createdAt.UnixMilli()
	areaSqM := estimatedAreaSqFt / utils.SqFtPerSqMeter

	if propertyType == domain.PropertyTypeCommercial {
		return []*domain.Polygon{{
			ID:        fmt.Sprintf("commercial-%d", stamp),
			Kind:      domain.PolygonKindCommercial,
			Vertices:  utils.BuildRectangle(center, areaSqM, g.cfg.CommercialAspectRatio, 0, 0),
			CreatedAt: createdAt,
		}}
	}

	// Поворот так, чтобы локальная ось "юг" смотрела на дорогу
	rotation := math.Mod(o.frontBearing-defaultFrontBearing+360, 360)

	frontSqM := areaSqM * g.cfg.FrontYardRatio
	backSqM := areaSqM * g.cfg.BackYardRatio
	halfHouse := g.cfg.HouseDepthMeters / 2

	frontOffset := -(halfHouse + rectDepth(frontSqM, g.cfg.FrontAspectRatio)/2)
	backOffset := halfHouse + rectDepth(backSqM, g.cfg.BackAspectRatio)/2

	return []*domain.Polygon{
		{
			ID:        fmt.Sprintf("front-yard-%d", stamp),
			Kind:      domain.PolygonKindFrontYard,
			Vertices:  utils.BuildRectangle(center, frontSqM, g.cfg.FrontAspectRatio, rotation, frontOffset),
			CreatedAt: createdAt,
		},
		{
			ID:        fmt.Sprintf("back-yard-%d", stamp),
			Kind:      domain.PolygonKindBackYard,
			Vertices:  utils.BuildRectangle(center, backSqM, g.cfg.BackAspectRatio, rotation, backOffset),
			CreatedAt: createdAt,
		},
	}
}

func rectDepth(areaSqM, aspect float64) float64 {
	if areaSqM <= 0 || aspect <= 0 {
		return 0
	}
	return areaSqM / math.Sqrt(areaSqM*aspect)
}
