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

// Entitlement is a precomputed net-payable amount for a PO/invoice pair,
// produced by an upstream model run.
type Entitlement struct {
	ID              int                 `gorm:"primary_key" json:"id"`
	EntitlementId   string              `gorm:"uniqueIndex;size:64;not null" json:"entitlement_id"`
	ModelId         string              `gorm:"size:64" json:"model_id"`
	PoId            string              `gorm:"index;size:64" json:"po_id"`
	InvoiceId       string              `gorm:"index;size:64" json:"invoice_id"`
	EntitlementJson EntitlementDocument `gorm:"serializer:json;type:json" json:"entitlement_json"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type EntitlementDocument struct {
	NetPayable decimal.Decimal `json:"net_payable"`
}

func GetEntitlement(ctx context.Context, entitlementId string) (*Entitlement, error) {
	db := config.GetDB()
	var ent Entitlement
	err := db.WithContext(ctx).Where("entitlement_id = ?", entitlementId).Take(&ent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &ent, nil
}

// NetPayable returns the entitlement's net payable, zero when unset.
func (e *Entitlement) NetPayable() decimal.Decimal {
	return e.EntitlementJson.NetPayable
}
