package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
)

// ValidationRun is created once per validation request and is immutable after
// creation except for late status/decision correction.
type ValidationRun struct {
	ID        int       `gorm:"primary_key" json:"id"`
	RunId     string    `gorm:"uniqueIndex;size:64;not null" json:"run_id"`
	InvoiceId string    `gorm:"index;size:64;not null" json:"invoice_id"`
	PoId      string    `gorm:"size:64" json:"po_id"`
	GrnId     string    `gorm:"size:64" json:"grn_id"`
	VendorId  string    `gorm:"size:64" json:"vendor_id"`
	ModelId   string    `gorm:"size:64" json:"model_id"`
	Status    RunStatus `gorm:"size:16" json:"status"`
	Decision  Decision  `gorm:"size:16" json:"decision"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewRunId mints the external run identifier. The millisecond timestamp keeps
// ids monotonic per instance; uniqueness is enforced by the run_id index.
func NewRunId() string {
	return fmt.Sprintf("VAL-%d", time.Now().UnixMilli())
}

func CreateValidationRun(ctx context.Context, run *ValidationRun) error {
	db := config.GetDB()
	return db.WithContext(ctx).Create(run).Error
}
