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

// GoodsReceipt (GRN) records what was actually received against a PO.
type GoodsReceipt struct {
	ID        int                  `gorm:"primary_key" json:"id"`
	GrnId     string               `gorm:"uniqueIndex;size:64;not null" json:"grn_id"`
	PoId      string               `gorm:"index;size:64" json:"po_id"`
	GrnJson   GoodsReceiptDocument `gorm:"serializer:json;type:json" json:"grn_json"`
	CreatedAt time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type GoodsReceiptDocument struct {
	LineItems []GoodsReceiptLine `json:"line_items"`
}

type GoodsReceiptLine struct {
	LineNo      int             `json:"line_no"`
	Material    string          `json:"material"`
	ReceivedQty decimal.Decimal `json:"received_qty"`
}

// LineByNo returns the receipt line with the given line number, or nil.
func (d GoodsReceiptDocument) LineByNo(lineNo int) *GoodsReceiptLine {
	for i := range d.LineItems {
		if d.LineItems[i].LineNo == lineNo {
			return &d.LineItems[i]
		}
	}
	return nil
}

func GetGoodsReceipt(ctx context.Context, grnId string) (*GoodsReceipt, error) {
	db := config.GetDB()
	var grn GoodsReceipt
	err := db.WithContext(ctx).Where("grn_id = ?", grnId).Take(&grn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &grn, nil
}
