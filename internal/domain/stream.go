package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stream names (должны совпадать с backend виджетов)
const (
	StreamQuoteEstimate  = "stream:quote:estimate"
	StreamQuoteEstimated = "stream:quote:estimated"
	StreamQuoteCreated   = "stream:quote:created"
)

// EstimateRequestedEvent - входящий запрос на оценку от встраиваемого виджета
type EstimateRequestedEvent struct {
	RequestID    uuid.UUID    `json:"request_id"`
	AccountID    *uuid.UUID   `json:"account_id,omitempty"`
	Place        Place        `json:"place"`
	PropertyType PropertyType `json:"property_type"`
}

// EstimateCompletedEvent - результат оценки для виджета
type EstimateCompletedEvent struct {
	RequestID     uuid.UUID        `json:"request_id"`
	AccountID     *uuid.UUID       `json:"account_id,omitempty"`
	Estimate      *Estimate        `json:"estimate,omitempty"`
	Polygons      []*Polygon       `json:"polygons,omitempty"`
	TotalAreaSqFt float64          `json:"total_area_sqft"`
	PlusCode      string           `json:"plus_code,omitempty"`
	Pricing       *PricingSnapshot `json:"pricing,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// QuoteCreatedEvent - уведомление о сохранённой квоте
type QuoteCreatedEvent struct {
	QuoteID            uuid.UUID   `json:"quote_id"`
	AccountID          uuid.UUID   `json:"account_id"`
	Status             QuoteStatus `json:"status"`
	PricingMode        PricingMode `json:"pricing_mode"`
	AreaSqFt           float64     `json:"area_sqft"`
	TotalPricePerVisit float64     `json:"total_price_per_visit"`
	SendToCustomer     bool        `json:"send_to_customer"`
	CreatedAt          time.Time   `json:"created_at"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
