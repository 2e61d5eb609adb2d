package validation

import (
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
	"bitbucket.org/mmdatafocus/apvalidation_backend/models"
)

// ValidateBankDetails checks the vendor's IFSC format, the account-holder name
// against the vendor legal name, and recent bank changes on high-value
// invoices. now is injected so the lookback window stays deterministic.
func ValidateBankDetails(vendor *models.Vendor, invoice *models.Invoice, rules config.BankRules, now time.Time) Result {
	var exceptions []Exception

	if !rules.IfscRegex().MatchString(vendor.Ifsc) {
		exceptions = append(exceptions, Exception{
			RuleId:   "BANK_IFSC_INVALID",
			Severity: models.SeverityCritical,
			Category: models.ExceptionCategoryBank,
			Message:  "Invalid IFSC code format",
			Evidence: map[string]any{
				"ifsc":             vendor.Ifsc,
				"expected_pattern": rules.IfscPattern,
			},
			SuggestedResolution: "Verify and correct IFSC code",
		})
	}

	similarity := NameMatchScore(vendor.AccountHolderName, vendor.VendorName)
	if similarity < rules.MinNameMatchScore {
		exceptions = append(exceptions, Exception{
			RuleId:   "BANK_NAME_MISMATCH",
			Severity: models.SeverityMajor,
			Category: models.ExceptionCategoryBank,
			Message:  "Account holder name does not match vendor name",
			Evidence: map[string]any{
				"vendor_name":         vendor.VendorName,
				"account_holder_name": vendor.AccountHolderName,
				"match_score":         fmt.Sprintf("%.2f", similarity),
				"threshold":           rules.MinNameMatchScore,
			},
			SuggestedResolution: "Verify account holder name or update vendor master",
		})
	}

	// Bank change risk. No recorded change date skips the check entirely.
	if vendor.BankLastChangedAt != nil {
		daysSinceChange := now.Sub(*vendor.BankLastChangedAt).Hours() / 24
		invoiceAmount := invoice.InvoiceJson.Header.Total

		if daysSinceChange <= float64(rules.BankChangeLookbackDays) &&
			invoiceAmount.GreaterThanOrEqual(rules.HighValueThreshold) {
			exceptions = append(exceptions, Exception{
				RuleId:   "BANK_RECENT_CHANGE_HIGH_VALUE",
				Severity: models.SeverityMajor,
				Category: models.ExceptionCategoryBank,
				Message:  "Bank details changed recently for high-value transaction",
				Evidence: map[string]any{
					"days_since_change": int(daysSinceChange),
					"invoice_amount":    invoiceAmount,
					"threshold":         rules.HighValueThreshold,
					"bank_changed_at":   vendor.BankLastChangedAt.Format(time.RFC3339),
				},
				SuggestedResolution: "Initiate vendor callback verification",
			})
		}
	}

	return Result{
		Passed:     len(exceptions) == 0,
		Exceptions: exceptions,
	}
}
