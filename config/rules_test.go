package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultRuleConfigCompiles(t *testing.T) {
	rc := DefaultRuleConfig()
	if err := rc.Compile(); err != nil {
		t.Fatal(err)
	}

	re := rc.Bank.IfscRegex()
	if !re.MatchString("HDFC0001234") {
		t.Fatal("valid IFSC rejected")
	}
	if re.MatchString("HDFC123456") || re.MatchString("hdfc0001234") {
		t.Fatal("invalid IFSC accepted")
	}
}

func TestLoadRuleConfig_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	overlay := `{
		"tolerance": {"price_tolerance_percent": "3", "qty_tolerance_percent": "10", "allow_missing_grn": true},
		"bank": {"ifsc_pattern": "^[A-Z]{4}0[A-Z0-9]{6}$", "min_name_match_score": 0.9, "bank_change_lookback_days": 30, "high_value_threshold": "1000000"}
	}`
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RULES_CONFIG_PATH", path)

	rc, err := LoadRuleConfig()
	if err != nil {
		t.Fatal(err)
	}
	if !rc.Tolerance.PriceTolerancePercent.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("price tolerance = %s", rc.Tolerance.PriceTolerancePercent)
	}
	if !rc.Tolerance.AllowMissingGRN {
		t.Fatal("allow_missing_grn overlay lost")
	}
	if rc.Bank.MinNameMatchScore != 0.9 {
		t.Fatalf("min name match = %v", rc.Bank.MinNameMatchScore)
	}
	// Sections absent from the overlay keep their defaults.
	if !rc.Compliance.MaxInvoiceAmountWithoutApproval.Equal(decimal.NewFromInt(10000000)) {
		t.Fatalf("approval ceiling = %s", rc.Compliance.MaxInvoiceAmountWithoutApproval)
	}
	if rc.Bank.IfscRegex() == nil {
		t.Fatal("regex not compiled after load")
	}
}

func TestLoadRuleConfig_BadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte(`{"bank": {"ifsc_pattern": "["}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RULES_CONFIG_PATH", path)

	if _, err := LoadRuleConfig(); err == nil {
		t.Fatal("unparseable pattern must fail the load")
	}
}
