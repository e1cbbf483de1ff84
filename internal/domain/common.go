package domain

import "fmt"

// LatLng представляет координаты точки
type LatLng struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

// Bounds - прямоугольник в координатах (viewport или bounds геокодера)
type Bounds struct {
	South float64 `json:"south" validate:"min=-90,max=90"`
	West  float64 `json:"west" validate:"min=-180,max=180"`
	North float64 `json:"north" validate:"min=-90,max=90,gtefield=South"`
	East  float64 `json:"east" validate:"min=-180,max=180"`
}

// Center возвращает центр прямоугольника
func (b Bounds) Center() LatLng {
	return LatLng{
		Lat: (b.South + b.North) / 2,
		Lng: b.West + b.LngSpan()/2,
	}
}

// LatSpan - высота прямоугольника в градусах
func (b Bounds) LatSpan() float64 {
	return b.North - b.South
}

// LngSpan - ширина прямоугольника в градусах (учитывает переход через антимеридиан)
func (b Bounds) LngSpan() float64 {
	span := b.East - b.West
	if span < 0 {
		span += 360
	}
	return span
}

// Address component types, как их отдаёт геокодер
const (
	AddressTypeStreetNumber = "street_number"
	AddressTypeRoute        = "route"
)

// AddressComponent - типизированная часть адреса
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// HasType проверяет, содержит ли компонент указанный тип
func (c AddressComponent) HasType(t string) bool {
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}

// Place - уже разрешённый результат геокодирования.
// Сетевые вызовы к геокодеру выполняет вызывающая сторона.
type Place struct {
	FormattedAddress  string             `json:"formatted_address,omitempty"`
	Location          *LatLng            `json:"location,omitempty" validate:"omitempty"`
	Viewport          *Bounds            `json:"viewport,omitempty" validate:"omitempty"`
	Bounds            *Bounds            `json:"bounds,omitempty" validate:"omitempty"`
	AddressComponents []AddressComponent `json:"address_components,omitempty"`
	// RoadPoint - ближайшая точка дороги, если геокодер её вернул
	RoadPoint *LatLng `json:"road_point,omitempty" validate:"omitempty"`
}

// Extent возвращает viewport (приоритетно) или bounds места
func (p Place) Extent() (*Bounds, EstimateSource) {
	if p.Viewport != nil {
		return p.Viewport, EstimateSourceViewport
	}
	if p.Bounds != nil {
		return p.Bounds, EstimateSourceBounds
	}
	return nil, EstimateSourceFallback
}

// Center возвращает точку, вокруг которой строятся полигоны
func (p Place) Center() (LatLng, bool) {
	if p.Location != nil {
		return *p.Location, true
	}
	if extent, _ := p.Extent(); extent != nil {
		return extent.Center(), true
	}
	return LatLng{}, false
}

// HasStreetAddress проверяет наличие точного адреса (номер дома + улица)
func (p Place) HasStreetAddress() bool {
	var hasNumber, hasRoute bool
	for _, c := range p.AddressComponents {
		if c.HasType(AddressTypeStreetNumber) {
			hasNumber = true
		}
		if c.HasType(AddressTypeRoute) {
			hasRoute = true
		}
	}
	return hasNumber && hasRoute
}

// EstimateInputsKey - всё, кроме центра, от чего зависит оценка площади:
// источник экстента, его углы (6 знаков, ~0.1 м) и точность адреса.
// Вместе с plus code центра однозначно определяет результат оценщика.
func (p Place) EstimateInputsKey() string {
	extent, source := p.Extent()
	if extent == nil {
		return string(source)
	}

	precision := "area"
	if p.HasStreetAddress() {
		precision = "street"
	}
	return fmt.Sprintf("%s:%.6f,%.6f,%.6f,%.6f:%s",
		source, extent.South, extent.West, extent.North, extent.East, precision)
}
