package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
)

// ValidationException persists one rule violation of a run. Immutable once
// written; severity is whatever the raising rule assigned.
type ValidationException struct {
	ID                  int               `gorm:"primary_key" json:"id"`
	RunId               string            `gorm:"index;size:64;not null" json:"run_id"`
	RuleId              string            `gorm:"size:64;not null" json:"rule_id"`
	Severity            Severity          `gorm:"size:16;not null" json:"severity"`
	Category            ExceptionCategory `gorm:"size:32;not null" json:"category"`
	Message             string            `gorm:"size:512" json:"message"`
	Evidence            map[string]any    `gorm:"serializer:json;type:json" json:"evidence"`
	SuggestedResolution string            `gorm:"size:512" json:"suggested_resolution"`
	CreatedAt           time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func InsertValidationExceptions(ctx context.Context, rows []*ValidationException) error {
	if len(rows) == 0 {
		return nil
	}
	db := config.GetDB()
	return db.WithContext(ctx).Create(rows).Error
}
