// seed-dev loads the development fixture set: one vendor, PO, GRN, invoice
// and entitlement wired together so a validation run works out of the box.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-dev
//
// Re-running is safe: rows are upserted by their business ids.
package main

import (
	"fmt"
	"os"
	"time"

	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
	"bitbucket.org/mmdatafocus/apvalidation_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

func main() {
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	bankChanged := time.Now().AddDate(0, 0, -40)

	vendor := models.Vendor{
		VendorId:          "VEND-22",
		VendorName:        "ABC Construction Ltd",
		BankAccount:       "1234567890",
		Ifsc:              "HDFC0001234",
		AccountHolderName: "ABC Construction Limited",
		BankLastChangedAt: &bankChanged,
		RiskFlags:         []string{},
	}
	upsert(db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vendor_id"}},
		UpdateAll: true,
	}).Create(&vendor).Error, "vendor "+vendor.VendorId)

	po := models.PurchaseOrder{
		PoId:     "PO-10091",
		VendorId: "VEND-22",
		PoJson: models.PurchaseOrderDocument{
			Header: models.PurchaseOrderHeader{Ceiling: decimal.NewFromInt(5200000)},
			LineItems: []models.PurchaseOrderLine{
				{LineNo: 1, Material: "Cement Bags", Qty: decimal.NewFromInt(1000), UnitPrice: decimal.NewFromInt(4500)},
			},
		},
	}
	upsert(db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "po_id"}},
		UpdateAll: true,
	}).Create(&po).Error, "purchase order "+po.PoId)

	grn := models.GoodsReceipt{
		GrnId: "GRN-0091",
		PoId:  "PO-10091",
		GrnJson: models.GoodsReceiptDocument{
			LineItems: []models.GoodsReceiptLine{
				{LineNo: 1, Material: "Cement Bags", ReceivedQty: decimal.NewFromInt(980)},
			},
		},
	}
	upsert(db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "grn_id"}},
		UpdateAll: true,
	}).Create(&grn).Error, "goods receipt "+grn.GrnId)

	invoice := models.Invoice{
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
	upsert(db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "invoice_id"}},
		UpdateAll: true,
	}).Create(&invoice).Error, "invoice "+invoice.InvoiceId)

	ent := models.Entitlement{
		EntitlementId: "ENT-001",
		ModelId:       "CPM-001",
		PoId:          "PO-10091",
		InvoiceId:     "INV-7788",
		EntitlementJson: models.EntitlementDocument{
			NetPayable: decimal.NewFromInt(3700000),
		},
	}
	upsert(db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entitlement_id"}},
		UpdateAll: true,
	}).Create(&ent).Error, "entitlement "+ent.EntitlementId)

	fmt.Println("Seeding completed")
}

func upsert(err error, what string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed %s: %v\n", what, err)
		os.Exit(1)
	}
	fmt.Println("seeded", what)
}
