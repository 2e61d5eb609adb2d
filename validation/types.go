// Package validation holds the deterministic rule modules and the decision
// aggregator. Every function here is pure: entities and rule configuration go
// in, a result comes out. No I/O, no shared state.
package validation

import (
	"bitbucket.org/mmdatafocus/apvalidation_backend/models"
	"github.com/shopspring/decimal"
)

// Exception is one rule violation with remediation guidance.
type Exception struct {
	RuleId              string                   `json:"rule_id"`
	Severity            models.Severity          `json:"severity"`
	Category            models.ExceptionCategory `json:"category"`
	Message             string                   `json:"message"`
	Evidence            map[string]any           `json:"evidence"`
	SuggestedResolution string                   `json:"suggested_resolution"`
}

// Result of one rule module. Passed means "zero exceptions" for three-way
// match, tax, and bank; compliance overrides this with a critical-only gate.
type Result struct {
	Passed     bool        `json:"passed"`
	Exceptions []Exception `json:"exceptions"`
}

// TaxResult additionally exposes the computed amounts for downstream use
// (net-payable computation, narrative prompt).
type TaxResult struct {
	Result
	CalculatedGST decimal.Decimal `json:"calculated_gst"`
	CalculatedTDS decimal.Decimal `json:"calculated_tds"`
}

// RunContext is the approval/budget context supplied with a run request.
type RunContext struct {
	RequesterUserId string          `json:"requester_user_id"`
	ApproverUserId  string          `json:"approver_user_id"`
	BudgetAvailable decimal.Decimal `json:"budget_available"`
}

var oneHundred = decimal.NewFromInt(100)

// variancePercent computes |actual-base|/base*100. ok is false when base is
// zero; callers treat that as an automatic tolerance violation rather than a
// runtime fault.
func variancePercent(actual, base decimal.Decimal) (decimal.Decimal, bool) {
	if base.IsZero() {
		return decimal.Zero, false
	}
	return actual.Sub(base).Abs().Div(base).Mul(oneHundred), true
}
