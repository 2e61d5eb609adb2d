package validation

import (
	"fmt"

	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
	"bitbucket.org/mmdatafocus/apvalidation_backend/models"
	"github.com/shopspring/decimal"
)

// ValidateTax accumulates taxable amount and expected GST per invoice line,
// then reconciles the declared GST and TDS amounts against the expected ones.
func ValidateTax(invoice *models.Invoice, rules config.TaxRules) TaxResult {
	var exceptions []Exception

	expectedGST := decimal.Zero
	taxableAmount := decimal.Zero

	for _, item := range invoice.InvoiceJson.LineItems {
		lineTotal := item.Qty.Mul(item.UnitPrice)
		taxableAmount = taxableAmount.Add(lineTotal)
		expectedGST = expectedGST.Add(lineTotal.Mul(item.GstRate).Div(oneHundred))

		if rules.RequireHSN && item.Hsn == "" {
			exceptions = append(exceptions, Exception{
				RuleId:   "TAX_HSN_MISSING",
				Severity: models.SeverityMajor,
				Category: models.ExceptionCategoryTax,
				Message:  fmt.Sprintf("HSN code missing on line %d", item.LineNo),
				Evidence: map[string]any{
					"line_no":  item.LineNo,
					"material": item.Material,
				},
				SuggestedResolution: "Add valid HSN/SAC code to invoice line",
			})
		}

		if !containsRate(rules.GstRates, item.GstRate) {
			exceptions = append(exceptions, Exception{
				RuleId:   "TAX_GST_RATE_INVALID",
				Severity: models.SeverityMajor,
				Category: models.ExceptionCategoryTax,
				Message:  fmt.Sprintf("Invalid GST rate %s%% on line %d", item.GstRate.String(), item.LineNo),
				Evidence: map[string]any{
					"line_no":     item.LineNo,
					"gst_rate":    item.GstRate,
					"valid_rates": rules.GstRates,
				},
				SuggestedResolution: "Correct GST rate according to HSN classification",
			})
		}
	}

	taxes := invoice.InvoiceJson.Taxes

	// GST amount validation. Zero expected GST with a non-zero declared amount
	// is an uncomputable variance, treated as a violation.
	gstVariance, gstOk := variancePercent(taxes.GstAmount, expectedGST)
	if (!gstOk && !taxes.GstAmount.IsZero()) || (gstOk && gstVariance.GreaterThan(rules.GstTolerancePercent)) {
		exceptions = append(exceptions, Exception{
			RuleId:   "TAX_GST_AMOUNT_MISMATCH",
			Severity: models.SeverityMajor,
			Category: models.ExceptionCategoryTax,
			Message:  "GST amount calculation mismatch",
			Evidence: map[string]any{
				"expected_gst":      expectedGST.Round(0),
				"actual_gst":        taxes.GstAmount,
				"tolerance_percent": rules.GstTolerancePercent,
				"variance_percent":  gstVariance.StringFixed(2),
			},
			SuggestedResolution: "Recalculate GST based on taxable amount and rates",
		})
	}

	// TDS validation.
	expectedTDS := taxableAmount.Mul(rules.TdsRatePercent).Div(oneHundred)
	tdsVariance, tdsOk := variancePercent(taxes.TdsAmount, expectedTDS)
	if (!tdsOk && !taxes.TdsAmount.IsZero()) || (tdsOk && tdsVariance.GreaterThan(rules.GstTolerancePercent)) {
		exceptions = append(exceptions, Exception{
			RuleId:   "TAX_TDS_AMOUNT_MISMATCH",
			Severity: models.SeverityMinor,
			Category: models.ExceptionCategoryTax,
			Message:  "TDS amount calculation mismatch",
			Evidence: map[string]any{
				"expected_tds":     expectedTDS.Round(0),
				"actual_tds":       taxes.TdsAmount,
				"tds_rate":         rules.TdsRatePercent,
				"variance_percent": tdsVariance.StringFixed(2),
			},
			SuggestedResolution: "Verify TDS rate and calculation",
		})
	}

	return TaxResult{
		Result: Result{
			Passed:     len(exceptions) == 0,
			Exceptions: exceptions,
		},
		CalculatedGST: expectedGST.Round(0),
		CalculatedTDS: expectedTDS.Round(0),
	}
}

func containsRate(rates []decimal.Decimal, rate decimal.Decimal) bool {
	for _, r := range rates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}
