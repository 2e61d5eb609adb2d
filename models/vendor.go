package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
	"bitbucket.org/mmdatafocus/apvalidation_backend/utils"
	"gorm.io/gorm"
)

// Vendor master record. Bank fields feed the bank-detail risk checks.
type Vendor struct {
	ID                int        `gorm:"primary_key" json:"id"`
	VendorId          string     `gorm:"uniqueIndex;size:64;not null" json:"vendor_id"`
	VendorName        string     `gorm:"size:255;not null" json:"vendor_name"`
	BankAccount       string     `gorm:"size:64" json:"bank_account"`
	Ifsc              string     `gorm:"size:16" json:"ifsc"`
	AccountHolderName string     `gorm:"size:255" json:"account_holder_name"`
	BankLastChangedAt *time.Time `gorm:"default:null" json:"bank_last_changed_at"`
	RiskFlags         []string   `gorm:"serializer:json;type:json" json:"risk_flags"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetVendor(ctx context.Context, vendorId string) (*Vendor, error) {
	db := config.GetDB()
	var vendor Vendor
	err := db.WithContext(ctx).Where("vendor_id = ?", vendorId).Take(&vendor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &vendor, nil
}
