package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
	"bitbucket.org/mmdatafocus/apvalidation_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is an externally supplied read-only document. The core only reads
// declared fields; it never mutates the row.
type Invoice struct {
	ID          int             `gorm:"primary_key" json:"id"`
	InvoiceId   string          `gorm:"uniqueIndex;size:64;not null" json:"invoice_id"`
	VendorId    string          `gorm:"index;size:64" json:"vendor_id"`
	PoId        string          `gorm:"index;size:64" json:"po_id"`
	GrnId       string          `gorm:"size:64" json:"grn_id"`
	InvoiceDate *time.Time      `gorm:"default:null" json:"invoice_date"`
	Currency    string          `gorm:"size:8;default:INR" json:"currency"`
	InvoiceJson InvoiceDocument `gorm:"serializer:json;type:json" json:"invoice_json"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceDocument struct {
	Header    InvoiceHeader `json:"header"`
	LineItems []InvoiceLine `json:"line_items"`
	Taxes     InvoiceTaxes  `json:"taxes"`
}

type InvoiceHeader struct {
	InvoiceNo string          `json:"invoice_no"`
	Total     decimal.Decimal `json:"total"`
}

type InvoiceLine struct {
	LineNo    int             `json:"line_no"`
	Material  string          `json:"material"`
	Qty       decimal.Decimal `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Hsn       string          `json:"hsn"`
	GstRate   decimal.Decimal `json:"gst_rate"`
}

type InvoiceTaxes struct {
	GstAmount decimal.Decimal `json:"gst_amount"`
	TdsAmount decimal.Decimal `json:"tds_amount"`
}

func GetInvoice(ctx context.Context, invoiceId string) (*Invoice, error) {
	db := config.GetDB()
	var invoice Invoice
	err := db.WithContext(ctx).Where("invoice_id = ?", invoiceId).Take(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &invoice, nil
}
