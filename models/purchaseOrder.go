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

type PurchaseOrder struct {
	ID        int                   `gorm:"primary_key" json:"id"`
	PoId      string                `gorm:"uniqueIndex;size:64;not null" json:"po_id"`
	VendorId  string                `gorm:"index;size:64" json:"vendor_id"`
	PoJson    PurchaseOrderDocument `gorm:"serializer:json;type:json" json:"po_json"`
	CreatedAt time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseOrderDocument struct {
	Header    PurchaseOrderHeader `json:"header"`
	LineItems []PurchaseOrderLine `json:"line_items"`
}

type PurchaseOrderHeader struct {
	Ceiling decimal.Decimal `json:"ceiling"`
}

type PurchaseOrderLine struct {
	LineNo    int             `json:"line_no"`
	Material  string          `json:"material"`
	Qty       decimal.Decimal `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineByNo returns the PO line with the given line number, or nil.
func (d PurchaseOrderDocument) LineByNo(lineNo int) *PurchaseOrderLine {
	for i := range d.LineItems {
		if d.LineItems[i].LineNo == lineNo {
			return &d.LineItems[i]
		}
	}
	return nil
}

func GetPurchaseOrder(ctx context.Context, poId string) (*PurchaseOrder, error) {
	db := config.GetDB()
	var po PurchaseOrder
	err := db.WithContext(ctx).Where("po_id = ?", poId).Take(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &po, nil
}
