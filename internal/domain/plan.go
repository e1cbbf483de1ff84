package domain

import (
	"math"
	"time"
)

// PlanTier - тарифный план аккаунта
type PlanTier string

const (
	PlanStarter      PlanTier = "starter"
	PlanProfessional PlanTier = "professional"
	PlanEnterprise   PlanTier = "enterprise"

	DefaultPlanTier = PlanStarter
)

// PlanLimit - лимиты тарифа
type PlanLimit struct {
	Name                   string `json:"name"`
	IncludedQuotesPerMonth int    `json:"included_quotes_per_month"`
}

// PlanLimits - включённые квоты по тарифам
var PlanLimits = map[PlanTier]PlanLimit{
	PlanStarter:      {Name: "Starter", IncludedQuotesPerMonth: 25},
	PlanProfessional: {Name: "Professional", IncludedQuotesPerMonth: 100},
	PlanEnterprise:   {Name: "Enterprise", IncludedQuotesPerMonth: 999999},
}

// LimitFor возвращает лимит тарифа, для неизвестного тарифа - лимит по умолчанию
func LimitFor(plan PlanTier) PlanLimit {
	if l, ok := PlanLimits[plan]; ok {
		return l
	}
	return PlanLimits[DefaultPlanTier]
}

// OverageInfo - использование квот за текущий месяц
type OverageInfo struct {
	PlanName          string  `json:"plan_name"`
	IncludedLimit     int     `json:"included_limit"`
	QuotesThisMonth   int     `json:"quotes_this_month"`
	OverageCount      int     `json:"overage_count"`
	IsOverLimit       bool    `json:"is_over_limit"`
	RemainingIncluded int     `json:"remaining_included"`
	UsagePercentage   float64 `json:"usage_percentage"`
}

// CalculateOverage считает перерасход квот по тарифу
func CalculateOverage(quotesThisMonth int, plan PlanTier) OverageInfo {
	limit := LimitFor(plan)
	included := limit.IncludedQuotesPerMonth

	overage := max(0, quotesThisMonth-included)
	remaining := max(0, included-quotesThisMonth)

	usage := 0.0
	if included > 0 {
		usage = math.Min(100, math.Round(float64(quotesThisMonth)/float64(included)*100))
	}

	return OverageInfo{
		PlanName:          limit.Name,
		IncludedLimit:     included,
		QuotesThisMonth:   quotesThisMonth,
		OverageCount:      overage,
		IsOverLimit:       overage > 0,
		RemainingIncluded: remaining,
		UsagePercentage:   usage,
	}
}

// MonthBoundariesUTC возвращает начало текущего и следующего месяца в UTC
func MonthBoundariesUTC(now time.Time) (start, next time.Time) {
	now = now.UTC()
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	next = start.AddDate(0, 1, 0)
	return start, next
}
