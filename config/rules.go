package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// RuleConfig carries the full rule configuration for one validation run.
// It is loaded once at process start and passed by value into the workflow;
// rule modules never read ambient state, so tests can supply arbitrary values.
type RuleConfig struct {
	Tolerance  ToleranceRules  `json:"tolerance"`
	Tax        TaxRules        `json:"tax"`
	Bank       BankRules       `json:"bank"`
	Compliance ComplianceRules `json:"compliance"`
}

type ToleranceRules struct {
	PriceTolerancePercent decimal.Decimal `json:"price_tolerance_percent"`
	QtyTolerancePercent   decimal.Decimal `json:"qty_tolerance_percent"`
	AllowMissingGRN       bool            `json:"allow_missing_grn"`
}

type TaxRules struct {
	RequireHSN          bool              `json:"require_hsn"`
	GstRates            []decimal.Decimal `json:"gst_rates"`
	GstTolerancePercent decimal.Decimal   `json:"gst_tolerance_percent"`
	TdsRatePercent      decimal.Decimal   `json:"tds_rate_percent"`
}

type BankRules struct {
	IfscPattern            string          `json:"ifsc_pattern"`
	MinNameMatchScore      float64         `json:"min_name_match_score"`
	BankChangeLookbackDays int             `json:"bank_change_lookback_days"`
	HighValueThreshold     decimal.Decimal `json:"high_value_threshold"`

	ifscRegex *regexp.Regexp
}

type ComplianceRules struct {
	RequireSeparationOfDuties       bool            `json:"require_separation_of_duties"`
	MaxInvoiceAmountWithoutApproval decimal.Decimal `json:"max_invoice_amount_without_approval"`
}

// IfscRegex returns the compiled IFSC pattern. Compile must have been called.
func (b *BankRules) IfscRegex() *regexp.Regexp {
	return b.ifscRegex
}

// Compile validates and compiles the regex patterns held by the config.
func (rc *RuleConfig) Compile() error {
	re, err := regexp.Compile(rc.Bank.IfscPattern)
	if err != nil {
		return fmt.Errorf("invalid ifsc_pattern %q: %w", rc.Bank.IfscPattern, err)
	}
	rc.Bank.ifscRegex = re
	return nil
}

// DefaultRuleConfig mirrors the rule files shipped with the original service.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		Tolerance: ToleranceRules{
			PriceTolerancePercent: decimal.NewFromInt(2),
			QtyTolerancePercent:   decimal.NewFromInt(5),
			AllowMissingGRN:       false,
		},
		Tax: TaxRules{
			RequireHSN: true,
			GstRates: []decimal.Decimal{
				decimal.NewFromInt(0),
				decimal.NewFromInt(5),
				decimal.NewFromInt(12),
				decimal.NewFromInt(18),
				decimal.NewFromInt(28),
			},
			GstTolerancePercent: decimal.NewFromInt(2),
			TdsRatePercent:      decimal.NewFromInt(2),
		},
		Bank: BankRules{
			IfscPattern:            `^[A-Z]{4}0[A-Z0-9]{6}$`,
			MinNameMatchScore:      0.8,
			BankChangeLookbackDays: 30,
			HighValueThreshold:     decimal.NewFromInt(1000000),
		},
		Compliance: ComplianceRules{
			RequireSeparationOfDuties:       true,
			MaxInvoiceAmountWithoutApproval: decimal.NewFromInt(10000000),
		},
	}
}

// LoadRuleConfig returns the defaults, overlaid with RULES_CONFIG_PATH (JSON)
// when set. Patterns are compiled before returning.
func LoadRuleConfig() (RuleConfig, error) {
	rc := DefaultRuleConfig()

	if path := strings.TrimSpace(os.Getenv("RULES_CONFIG_PATH")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return rc, fmt.Errorf("read rules config: %w", err)
		}
		if err := json.Unmarshal(raw, &rc); err != nil {
			return rc, fmt.Errorf("parse rules config %s: %w", path, err)
		}
	}

	if err := rc.Compile(); err != nil {
		return rc, err
	}
	return rc, nil
}
