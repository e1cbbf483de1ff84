package dto

import (
	"time"

	"github.com/lawn-quote-service/internal/domain"
	"github.com/lawn-quote-service/internal/engine/drawing"
)

// SessionResponse - состояние сессии рисования
type SessionResponse struct {
	ID            string            `json:"id"`
	State         drawing.State     `json:"state"`
	InProgress    []domain.LatLng   `json:"in_progress"`
	Polygons      []*domain.Polygon `json:"polygons"`
	TotalAreaSqFt float64           `json:"total_area_sqft"`
	UpdatedAt     time.Time         `json:"updated_at"`

	// Committed - полигон, сохранённый этим вызовом (finish / zones)
	Committed *domain.Polygon `json:"committed,omitempty"`
	// Accepted - принят ли клик (false в состоянии idle)
	Accepted *bool `json:"accepted,omitempty"`
}

// NewSessionResponse собирает ответ из сессии
func NewSessionResponse(s *drawing.Session) *SessionResponse {
	return &SessionResponse{
		ID:            s.ID(),
		State:         s.State(),
		InProgress:    s.InProgress(),
		Polygons:      s.Polygons(),
		TotalAreaSqFt: s.TotalAreaSqFt(),
		UpdatedAt:     s.UpdatedAt(),
	}
}

// MapClickRequest - клик по карте
type MapClickRequest struct {
	Point domain.LatLng `json:"point"`
}

// VertexRequest - новая позиция вершины
type VertexRequest struct {
	Point domain.LatLng `json:"point"`
}
