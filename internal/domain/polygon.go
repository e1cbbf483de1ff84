package domain

import "time"

// MinPolygonVertices - минимальное число вершин валидного полигона
const MinPolygonVertices = 3

// PolygonKind - происхождение полигона
type PolygonKind string

const (
	PolygonKindFrontYard  PolygonKind = "front_yard"
	PolygonKindBackYard   PolygonKind = "back_yard"
	PolygonKindCommercial PolygonKind = "commercial"
	PolygonKindZone       PolygonKind = "zone"
)

// Polygon - граница зоны обслуживания (сгенерированная или нарисованная вручную).
// AreaSqFt - производное значение, всегда пересчитывается из Vertices.
type Polygon struct {
	ID        string      `json:"id"`
	Kind      PolygonKind `json:"kind"`
	Vertices  []LatLng    `json:"vertices"`
	AreaSqFt  float64     `json:"area_sqft"`
	CreatedAt time.Time   `json:"created_at"`
}

// IsValid проверяет минимальное число вершин
func (p *Polygon) IsValid() bool {
	return len(p.Vertices) >= MinPolygonVertices
}

// Clone возвращает глубокую копию полигона
func (p *Polygon) Clone() *Polygon {
	if p == nil {
		return nil
	}
	c := *p
	c.Vertices = append([]LatLng(nil), p.Vertices...)
	return &c
}
