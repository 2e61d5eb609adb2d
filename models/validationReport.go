package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
	"bitbucket.org/mmdatafocus/apvalidation_backend/utils"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportDocument is the progressively-enriched report for one run. Sections
// arrive as partial payloads merged at top-level-key granularity.
type ReportDocument map[string]any

// ComputedAmounts is the computed_amounts report section.
type ComputedAmounts struct {
	NetPayable    decimal.Decimal `json:"net_payable"`
	GstCalculated decimal.Decimal `json:"gst_calculated"`
	TdsCalculated decimal.Decimal `json:"tds_calculated"`
}

type ValidationReport struct {
	ID         int            `gorm:"primary_key" json:"id"`
	RunId      string         `gorm:"uniqueIndex;size:64;not null" json:"run_id"`
	ReportJson ReportDocument `gorm:"serializer:json;type:json" json:"report_json"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

const reportCacheTTL = 5 * time.Minute

func reportCacheKey(runId string) string {
	return "ValidationReport:" + runId
}

// MergeReportDocuments overlays partial onto current: a key present in both is
// fully replaced by partial's value (top-level overwrite, not deep merge).
// Neither input is mutated.
func MergeReportDocuments(current ReportDocument, partial ReportDocument) ReportDocument {
	merged := make(ReportDocument, len(current)+len(partial))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return merged
}

// MergeReport performs the read-modify-write for one run's report: the first
// write creates the row (empty-base merge), later writes (including detached
// enrichment) merge into whatever is current. The row lock makes the RMW
// atomic; the Redis lock is a best-effort optimization on top, never a
// correctness dependency.
func MergeReport(ctx context.Context, runId string, partial ReportDocument) (ReportDocument, error) {
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "ReportMerge:"+runId, 10*time.Second, &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 10),
		})
		if err == nil {
			defer lock.Release(context.WithoutCancel(ctx))
		}
	}

	db := config.GetDB()
	var merged ReportDocument
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report := ValidationReport{RunId: runId}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("run_id = ?", runId).
			FirstOrCreate(&report).Error; err != nil {
			return err
		}

		merged = MergeReportDocuments(report.ReportJson, partial)
		return tx.Model(&ValidationReport{}).
			Where("run_id = ?", runId).
			Update("report_json", merged).Error
	})
	if err != nil {
		return nil, err
	}

	// Refresh the read cache. On a failed set, drop the key too so a stale
	// document cannot outlive the merge for the rest of its TTL.
	if cerr := config.SetRedisObject(reportCacheKey(runId), merged, reportCacheTTL); cerr != nil {
		config.LogError(ctx, config.GetLogger(), "validationReport.go", "MergeReport", "SetRedisObject", runId, cerr)
		_ = config.DeleteRedisKey(reportCacheKey(runId))
	}

	return merged, nil
}

// GetReport returns the current merged report document for a run.
func GetReport(ctx context.Context, runId string) (ReportDocument, error) {
	var cached ReportDocument
	if ok, err := config.GetRedisObject(reportCacheKey(runId), &cached); err == nil && ok {
		return cached, nil
	}

	db := config.GetDB()
	var report ValidationReport
	err := db.WithContext(ctx).Where("run_id = ?", runId).Take(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	if cerr := config.SetRedisObject(reportCacheKey(runId), report.ReportJson, reportCacheTTL); cerr != nil {
		config.LogError(ctx, config.GetLogger(), "validationReport.go", "GetReport", "SetRedisObject", runId, cerr)
	}
	return report.ReportJson, nil
}
