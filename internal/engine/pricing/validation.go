package pricing

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/lawn-quote-service/internal/domain"
)

// IssueCode - машиночитаемый код проблемы в шкале
type IssueCode string

const (
	IssueNoTiers            IssueCode = "NO_TIERS"
	IssueNonPositiveRate    IssueCode = "NON_POSITIVE_RATE"
	IssueNonPositiveBound   IssueCode = "NON_POSITIVE_BOUND"
	IssueNonIncreasingBound IssueCode = "NON_INCREASING_BOUND"
	IssueMissingUnlimited   IssueCode = "MISSING_UNLIMITED_TIER"
	IssueDuplicateUnlimited IssueCode = "DUPLICATE_UNLIMITED_TIER"
	IssueUnlimitedNotLast   IssueCode = "UNLIMITED_TIER_NOT_LAST"
)

// Issue - одна найденная проблема. Tier - номер уровня с 1, 0 если относится ко всей шкале.
type Issue struct {
	Code    IssueCode `json:"code"`
	Tier    int       `json:"tier,omitempty"`
	Message string    `json:"message"`
}

// ValidationResult - все проблемы шкалы сразу, чтобы UI показал их вместе
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
	Issues []Issue  `json:"issues"`
}

// Err объединяет проблемы в одну ошибку, nil для валидной шкалы
func (r ValidationResult) Err() error {
	var err error
	for _, msg := range r.Errors {
		err = multierr.Append(err, errors.New(msg))
	}
	return err
}

// ValidatePricingTiers проверяет шкалу в порядке ввода и собирает все проблемы.
// Шкала не сортируется: границы должны строго возрастать так, как их прислал клиент,
// иначе каждый уровень не по порядку получает IssueNonIncreasingBound.
func ValidatePricingTiers(tiers []domain.PricingTier) ValidationResult {
	var issues []Issue
	add := func(code IssueCode, tier int, format string, args ...interface{}) {
		issues = append(issues, Issue{Code: code, Tier: tier, Message: fmt.Sprintf(format, args...)})
	}

	if len(tiers) == 0 {
		add(IssueNoTiers, 0, "At least one pricing tier is required")
		return newResult(issues)
	}

	unlimited := 0
	var prev *float64
	for i, tier := range tiers {
		n := i + 1

		if !(tier.RatePerSqFt > 0) {
			add(IssueNonPositiveRate, n, "Tier %d: rate_per_sqft must be a positive number", n)
		}

		if tier.IsUnlimited() {
			unlimited++
			switch {
			case unlimited > 1:
				add(IssueDuplicateUnlimited, n, "Only one unlimited tier is allowed")
			case i != len(tiers)-1:
				add(IssueUnlimitedNotLast, n, "Tier %d: the unlimited tier must be the last tier", n)
			}
			continue
		}

		bound := *tier.UpToSqFt
		if !(bound > 0) {
			add(IssueNonPositiveBound, n, "Tier %d: up_to_sqft must be a positive number", n)
		} else if prev != nil && bound <= *prev {
			add(IssueNonIncreasingBound, n, "Tier %d: up_to_sqft must be greater than the previous tier", n)
		}
		prev = tier.UpToSqFt
	}

	if unlimited == 0 {
		add(IssueMissingUnlimited, 0, "An unlimited tier (up_to_sqft = null) is required as the last tier")
	}

	return newResult(issues)
}

func newResult(issues []Issue) ValidationResult {
	result := ValidationResult{
		Valid:  len(issues) == 0,
		Errors: make([]string, 0, len(issues)),
		Issues: issues,
	}
	if result.Issues == nil {
		result.Issues = []Issue{}
	}
	for _, is := range issues {
		result.Errors = append(result.Errors, is.Message)
	}
	return result
}
