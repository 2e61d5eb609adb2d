package validation

import (
	"fmt"

	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
	"bitbucket.org/mmdatafocus/apvalidation_backend/models"
)

// Validate3WayMatch reconciles invoice, purchase order, and goods receipt line
// items for price, quantity, and material agreement.
func Validate3WayMatch(invoice *models.Invoice, po *models.PurchaseOrder, grn *models.GoodsReceipt, rules config.ToleranceRules) Result {
	var exceptions []Exception

	if len(grn.GrnJson.LineItems) == 0 && !rules.AllowMissingGRN {
		exceptions = append(exceptions, Exception{
			RuleId:   "3WAY_GRN_MISSING",
			Severity: models.SeverityCritical,
			Category: models.ExceptionCategory3WayMatch,
			Message:  "GRN is missing",
			Evidence: map[string]any{
				"invoice_id": invoice.InvoiceId,
				"grn_id":     grn.GrnId,
			},
			SuggestedResolution: "Create GRN before processing invoice",
		})
	}

	for _, invLine := range invoice.InvoiceJson.LineItems {
		poLine := po.PoJson.LineByNo(invLine.LineNo)
		grnLine := grn.GrnJson.LineByNo(invLine.LineNo)

		if poLine == nil {
			exceptions = append(exceptions, Exception{
				RuleId:   "3WAY_PO_LINE_MISSING",
				Severity: models.SeverityCritical,
				Category: models.ExceptionCategory3WayMatch,
				Message:  fmt.Sprintf("PO line %d not found", invLine.LineNo),
				Evidence: map[string]any{
					"line_no": invLine.LineNo,
				},
				SuggestedResolution: "Verify invoice line items match PO",
			})
			continue
		}

		// Price validation. A zero PO price makes the variance uncomputable;
		// that counts as an automatic tolerance violation, never a fault.
		priceVariance, ok := variancePercent(invLine.UnitPrice, poLine.UnitPrice)
		if !ok || priceVariance.GreaterThan(rules.PriceTolerancePercent) {
			exceptions = append(exceptions, Exception{
				RuleId:   "3WAY_PRICE_TOL_01",
				Severity: models.SeverityMajor,
				Category: models.ExceptionCategory3WayMatch,
				Message:  fmt.Sprintf("Price exceeds tolerance on line %d", invLine.LineNo),
				Evidence: map[string]any{
					"line_no":           invLine.LineNo,
					"invoice_price":     invLine.UnitPrice,
					"po_price":          poLine.UnitPrice,
					"tolerance_percent": rules.PriceTolerancePercent,
					"variance_percent":  priceVariance.StringFixed(2),
				},
				SuggestedResolution: "Create debit note for excess price or verify pricing",
			})
		}

		// Quantity validation only applies when a matching receipt line exists.
		if grnLine != nil {
			qtyVariance, ok := variancePercent(invLine.Qty, grnLine.ReceivedQty)
			if !ok || qtyVariance.GreaterThan(rules.QtyTolerancePercent) {
				exceptions = append(exceptions, Exception{
					RuleId:   "3WAY_QTY_TOL_01",
					Severity: models.SeverityMajor,
					Category: models.ExceptionCategory3WayMatch,
					Message:  fmt.Sprintf("Quantity exceeds GRN tolerance on line %d", invLine.LineNo),
					Evidence: map[string]any{
						"line_no":           invLine.LineNo,
						"invoice_qty":       invLine.Qty,
						"grn_qty":           grnLine.ReceivedQty,
						"tolerance_percent": rules.QtyTolerancePercent,
						"variance_percent":  qtyVariance.StringFixed(2),
					},
					SuggestedResolution: "Confirm partial receipt or update GRN if additional qty received",
				})
			}
		}

		// Material match is exact and case-sensitive.
		if invLine.Material != poLine.Material {
			exceptions = append(exceptions, Exception{
				RuleId:   "3WAY_MATERIAL_MISMATCH",
				Severity: models.SeverityMajor,
				Category: models.ExceptionCategory3WayMatch,
				Message:  fmt.Sprintf("Material description mismatch on line %d", invLine.LineNo),
				Evidence: map[string]any{
					"line_no":          invLine.LineNo,
					"invoice_material": invLine.Material,
					"po_material":      poLine.Material,
				},
				SuggestedResolution: "Verify material codes and descriptions",
			})
		}
	}

	return Result{
		Passed:     len(exceptions) == 0,
		Exceptions: exceptions,
	}
}
