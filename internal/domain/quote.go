package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuoteStatus - стадия квоты в воронке продаж
type QuoteStatus string

const (
	QuoteStatusPending QuoteStatus = "pending"
	QuoteStatusWon     QuoteStatus = "won"
	QuoteStatusLost    QuoteStatus = "lost"
)

// IsValid проверяет, что статус известен
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusWon, QuoteStatusLost:
		return true
	}
	return false
}

// CanTransitionTo - из pending можно перейти в won или lost, закрытые квоты не меняются
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	return s == QuoteStatusPending && (next == QuoteStatusWon || next == QuoteStatusLost)
}

// Frequency - частота обслуживания
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// VisitsPerMonth - среднее число визитов в месяц
func (f Frequency) VisitsPerMonth() float64 {
	switch f {
	case FrequencyWeekly:
		return 4.33
	case FrequencyBiweekly:
		return 2.17
	case FrequencyMonthly:
		return 1
	}
	return 0
}

// Addon - дополнительная услуга к визиту
type Addon struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gte=0"`
}

// Quote - сохранённая квота
type Quote struct {
	ID                 uuid.UUID       `json:"id"`
	AccountID          uuid.UUID       `json:"account_id"`
	CreatedByUserID    *uuid.UUID      `json:"created_by_user_id,omitempty"`
	CustomerName       string          `json:"customer_name"`
	CustomerEmail      string          `json:"customer_email,omitempty"`
	CustomerPhone      string          `json:"customer_phone,omitempty"`
	PropertyAddress    string          `json:"property_address,omitempty"`
	PropertyType       PropertyType    `json:"property_type"`
	AreaSqFt           float64         `json:"area_sqft"`
	Polygons           []*Polygon      `json:"polygons,omitempty"`
	BasePricePerVisit  float64         `json:"base_price_per_visit"`
	Addons             []Addon         `json:"addons,omitempty"`
	TotalPricePerVisit float64         `json:"total_price_per_visit"`
	Frequency          Frequency       `json:"frequency"`
	MonthlyEstimate    float64         `json:"monthly_estimate"`
	SendToCustomer     bool            `json:"send_to_customer"`
	EmailSentAt        *time.Time      `json:"email_sent_at,omitempty"`
	Status             QuoteStatus     `json:"status"`
	Pricing            PricingSnapshot `json:"pricing"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// QuoteFilter - параметры выборки квот аккаунта
type QuoteFilter struct {
	AccountID uuid.UUID
	Status    *QuoteStatus
	Limit     int
	Offset    int
}

// PipelineStage - агрегат по одному статусу
type PipelineStage struct {
	Status     QuoteStatus `json:"status" db:"status"`
	Count      int         `json:"count" db:"count"`
	TotalValue float64     `json:"total_value" db:"total_value"`
}

// PipelineSummary - сводка воронки продаж аккаунта
type PipelineSummary struct {
	AccountID uuid.UUID       `json:"account_id"`
	Stages    []PipelineStage `json:"stages"`
	WinRate   float64         `json:"win_rate"`
}
