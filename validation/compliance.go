package validation

import (
	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
	"bitbucket.org/mmdatafocus/apvalidation_backend/models"
	"github.com/shopspring/decimal"
)

var ten = decimal.NewFromInt(10)

// ValidateCompliance runs the policy checks: segregation of duties, budget,
// PO ceiling, and the high-value approval requirement.
//
// Unlike the other modules, Passed here means "no critical exception": major
// and minor compliance findings do not block the module from passing.
func ValidateCompliance(runCtx RunContext, invoice *models.Invoice, po *models.PurchaseOrder, rules config.ComplianceRules) Result {
	var exceptions []Exception

	if rules.RequireSeparationOfDuties && runCtx.RequesterUserId == runCtx.ApproverUserId {
		exceptions = append(exceptions, Exception{
			RuleId:   "COMP_SOD_VIOLATION",
			Severity: models.SeverityCritical,
			Category: models.ExceptionCategoryCompliance,
			Message:  "Requester and Approver cannot be same",
			Evidence: map[string]any{
				"requester": runCtx.RequesterUserId,
				"approver":  runCtx.ApproverUserId,
			},
			SuggestedResolution: "Assign a different approver",
		})
	}

	invoiceAmount := invoice.InvoiceJson.Header.Total

	// Budget check. Overage beyond 10% of budget escalates to critical.
	if invoiceAmount.GreaterThan(runCtx.BudgetAvailable) {
		exceedPercent, ok := variancePercent(invoiceAmount, runCtx.BudgetAvailable)
		severity := models.SeverityMajor
		if !ok || exceedPercent.GreaterThan(ten) {
			severity = models.SeverityCritical
		}
		exceptions = append(exceptions, Exception{
			RuleId:   "COMP_BUDGET_EXCEEDED",
			Severity: severity,
			Category: models.ExceptionCategoryCompliance,
			Message:  "Invoice exceeds available budget",
			Evidence: map[string]any{
				"invoice_amount":   invoiceAmount,
				"budget_available": runCtx.BudgetAvailable,
				"exceed_percent":   exceedPercent.StringFixed(2),
			},
			SuggestedResolution: "Request budget reallocation or split invoice",
		})
	}

	// PO ceiling check, independent of the budget check.
	poCeiling := po.PoJson.Header.Ceiling
	if invoiceAmount.GreaterThan(poCeiling) {
		exceptions = append(exceptions, Exception{
			RuleId:   "COMP_PO_CEILING_EXCEEDED",
			Severity: models.SeverityCritical,
			Category: models.ExceptionCategoryCompliance,
			Message:  "Invoice exceeds PO ceiling",
			Evidence: map[string]any{
				"invoice_amount": invoiceAmount,
				"po_ceiling":     poCeiling,
				"excess":         invoiceAmount.Sub(poCeiling),
			},
			SuggestedResolution: "Amend PO or reject invoice",
		})
	}

	if invoiceAmount.GreaterThan(rules.MaxInvoiceAmountWithoutApproval) {
		exceptions = append(exceptions, Exception{
			RuleId:   "COMP_HIGH_VALUE_APPROVAL_REQUIRED",
			Severity: models.SeverityMinor,
			Category: models.ExceptionCategoryCompliance,
			Message:  "High value invoice needs additional approval",
			Evidence: map[string]any{
				"invoice_amount": invoiceAmount,
				"threshold":      rules.MaxInvoiceAmountWithoutApproval,
			},
			SuggestedResolution: "Route to senior management",
		})
	}

	passed := true
	for _, ex := range exceptions {
		if ex.Severity == models.SeverityCritical {
			passed = false
			break
		}
	}

	return Result{
		Passed:     passed,
		Exceptions: exceptions,
	}
}
