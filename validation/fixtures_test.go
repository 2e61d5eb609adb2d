package validation

import (
	"time"

	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
	"bitbucket.org/mmdatafocus/apvalidation_backend/models"
	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. Rule modules are pure functions
// over entity documents, so fixtures are built in memory.

func testRules() config.RuleConfig {
	rc := config.DefaultRuleConfig()
	if err := rc.Compile(); err != nil {
		panic(err)
	}
	return rc
}

// fixtureInvoice mirrors the development seed set: 1000 Cement Bags at 4500
// with 28% GST and 2% TDS declared exactly.
func fixtureInvoice() *models.Invoice {
	return &models.Invoice{
		InvoiceId: "INV-7788",
		VendorId:  "VEND-22",
		PoId:      "PO-10091",
		GrnId:     "GRN-0091",
		InvoiceJson: models.InvoiceDocument{
			Header: models.InvoiceHeader{InvoiceNo: "INV-7788", Total: decimal.NewFromInt(5000000)},
			LineItems: []models.InvoiceLine{
				{
					LineNo:    1,
					Material:  "Cement Bags",
					Qty:       decimal.NewFromInt(1000),
					UnitPrice: decimal.NewFromInt(4500),
					Hsn:       "252329",
					GstRate:   decimal.NewFromInt(28),
				},
			},
			Taxes: models.InvoiceTaxes{
				GstAmount: decimal.NewFromInt(1260000),
				TdsAmount: decimal.NewFromInt(90000),
			},
		},
	}
}

func fixturePurchaseOrder() *models.PurchaseOrder {
	return &models.PurchaseOrder{
		PoId:     "PO-10091",
		VendorId: "VEND-22",
		PoJson: models.PurchaseOrderDocument{
			Header: models.PurchaseOrderHeader{Ceiling: decimal.NewFromInt(5200000)},
			LineItems: []models.PurchaseOrderLine{
				{LineNo: 1, Material: "Cement Bags", Qty: decimal.NewFromInt(1000), UnitPrice: decimal.NewFromInt(4500)},
			},
		},
	}
}

func fixtureGoodsReceipt() *models.GoodsReceipt {
	return &models.GoodsReceipt{
		GrnId: "GRN-0091",
		PoId:  "PO-10091",
		GrnJson: models.GoodsReceiptDocument{
			LineItems: []models.GoodsReceiptLine{
				{LineNo: 1, Material: "Cement Bags", ReceivedQty: decimal.NewFromInt(980)},
			},
		},
	}
}

func fixtureVendor() *models.Vendor {
	changed := time.Now().AddDate(0, 0, -40)
	return &models.Vendor{
		VendorId:          "VEND-22",
		VendorName:        "ABC Construction Ltd",
		BankAccount:       "1234567890",
		Ifsc:              "HDFC0001234",
		AccountHolderName: "ABC Construction Limited",
		BankLastChangedAt: &changed,
	}
}

func ruleIds(exceptions []Exception) []string {
	ids := make([]string, 0, len(exceptions))
	for _, ex := range exceptions {
		ids = append(ids, ex.RuleId)
	}
	return ids
}

func hasRule(exceptions []Exception, ruleId string) bool {
	for _, ex := range exceptions {
		if ex.RuleId == ruleId {
			return true
		}
	}
	return false
}
