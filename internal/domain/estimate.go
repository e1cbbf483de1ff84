package domain

// PropertyType - тип участка
type PropertyType string

const (
	PropertyTypeResidential PropertyType = "residential"
	PropertyTypeCommercial  PropertyType = "commercial"
)

// IsValid проверяет, что тип участка известен
func (t PropertyType) IsValid() bool {
	return t == PropertyTypeResidential || t == PropertyTypeCommercial
}

// Confidence - рекомендательная метка точности оценки.
// Влияет только на сообщение в UI, но не на расчёт.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// EstimateSource - откуда взят размер места
type EstimateSource string

const (
	EstimateSourceViewport EstimateSource = "viewport"
	EstimateSourceBounds   EstimateSource = "bounds"
	EstimateSourceFallback EstimateSource = "fallback"
)

// Estimate - результат оценки площади газона по viewport.
// Не сохраняется: сохраняются только полигоны и итоговая площадь.
type Estimate struct {
	EstimatedAreaSqFt float64        `json:"estimated_area_sqft"`
	Confidence        Confidence     `json:"confidence"`
	Source            EstimateSource `json:"source"`
	BoundingBoxSqFt   float64        `json:"bounding_box_sqft"`
	AppliedRatio      float64        `json:"applied_ratio"`
	Message           string         `json:"message"`
}
