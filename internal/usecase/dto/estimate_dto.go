package dto

import (
	"github.com/google/uuid"

	"github.com/lawn-quote-service/internal/domain"
)

// EstimateRequest - оценка площади по уже разрешённому месту
type EstimateRequest struct {
	Place        domain.Place        `json:"place"`
	PropertyType domain.PropertyType `json:"property_type" validate:"required,oneof=residential commercial"`
	// AccountID - если задан, к ответу добавляется цена по настройкам аккаунта
	AccountID *uuid.UUID `json:"account_id,omitempty"`
	// SessionID - если задан, сгенерированные полигоны заменяют зоны сессии
	SessionID string `json:"session_id,omitempty"`
}

// EstimateResponse - оценка, полигоны с пересчитанной площадью и цена
type EstimateResponse struct {
	Estimate      domain.Estimate         `json:"estimate"`
	Polygons      []*domain.Polygon       `json:"polygons"`
	TotalAreaSqFt float64                 `json:"total_area_sqft"`
	PlusCode      string                  `json:"plus_code"`
	Cached        bool                    `json:"cached"`
	Pricing       *domain.PricingSnapshot `json:"pricing,omitempty"`
	Session       *SessionResponse        `json:"session,omitempty"`
}
