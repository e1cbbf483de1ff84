package dto

import (
	"github.com/google/uuid"

	"github.com/lawn-quote-service/internal/domain"
)

// CreateQuoteRequest - сохранение квоты.
// Площадь берётся из полигонов сессии, затем из Polygons, затем из AreaSqFt.
type CreateQuoteRequest struct {
	AccountID       uuid.UUID           `json:"account_id" validate:"required"`
	CreatedByUserID *uuid.UUID          `json:"created_by_user_id,omitempty"`
	CustomerName    string              `json:"customer_name" validate:"required,max=200"`
	CustomerEmail   string              `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerPhone   string              `json:"customer_phone,omitempty" validate:"omitempty,max=40"`
	PropertyAddress string              `json:"property_address,omitempty" validate:"omitempty,max=500"`
	PropertyType    domain.PropertyType `json:"property_type" validate:"required,oneof=residential commercial"`
	SessionID       string              `json:"session_id,omitempty"`
	Polygons        []*domain.Polygon   `json:"polygons,omitempty" validate:"omitempty,dive,required"`
	AreaSqFt        float64             `json:"area_sqft,omitempty" validate:"gte=0"`
	Addons          []domain.Addon      `json:"addons,omitempty" validate:"omitempty,dive"`
	Frequency       domain.Frequency    `json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
	SendToCustomer  bool                `json:"send_to_customer"`
}

// UpdateQuoteStatusRequest - закрытие квоты
type UpdateQuoteStatusRequest struct {
	Status domain.QuoteStatus `json:"status" validate:"required,oneof=won lost"`
}

// ListQuotesRequest - выборка квот аккаунта
type ListQuotesRequest struct {
	AccountID uuid.UUID           `validate:"required"`
	Status    *domain.QuoteStatus `query:"status" validate:"omitempty,oneof=pending won lost"`
	Limit     int                 `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset    int                 `query:"offset" validate:"omitempty,min=0"`
}

// ListQuotesResponse - страница квот
type ListQuotesResponse struct {
	Quotes []*domain.Quote `json:"quotes"`
	Total  int             `json:"total"`
}
