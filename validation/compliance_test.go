package validation

import (
	"testing"

	"bitbucket.org/mmdatafocus/apvalidation_backend/models"
	"github.com/shopspring/decimal"
)

func fixtureRunContext() RunContext {
	return RunContext{
		RequesterUserId: "USR-101",
		ApproverUserId:  "USR-202",
		BudgetAvailable: decimal.NewFromInt(6000000),
	}
}

func TestValidateCompliance_CleanFixturePasses(t *testing.T) {
	rules := testRules()
	res := ValidateCompliance(fixtureRunContext(), fixtureInvoice(), fixturePurchaseOrder(), rules.Compliance)

	if !res.Passed {
		t.Fatalf("expected pass, got %v", ruleIds(res.Exceptions))
	}
	if len(res.Exceptions) != 0 {
		t.Fatalf("expected no exceptions, got %v", ruleIds(res.Exceptions))
	}
}

func TestValidateCompliance_SeparationOfDuties(t *testing.T) {
	rules := testRules()
	runCtx := fixtureRunContext()
	runCtx.ApproverUserId = runCtx.RequesterUserId

	res := ValidateCompliance(runCtx, fixtureInvoice(), fixturePurchaseOrder(), rules.Compliance)
	if !hasRule(res.Exceptions, "COMP_SOD_VIOLATION") {
		t.Fatalf("same requester and approver must be flagged, got %v", ruleIds(res.Exceptions))
	}
	if res.Passed {
		t.Fatal("critical compliance exception must fail the module")
	}

	relaxed := rules.Compliance
	relaxed.RequireSeparationOfDuties = false
	res = ValidateCompliance(runCtx, fixtureInvoice(), fixturePurchaseOrder(), relaxed)
	if hasRule(res.Exceptions, "COMP_SOD_VIOLATION") {
		t.Fatal("disabled SoD rule must not fire")
	}
}

// Overage within 10% of budget is major; beyond that it escalates to critical.
func TestValidateCompliance_BudgetSeverityEscalation(t *testing.T) {
	rules := testRules()

	runCtx := fixtureRunContext()
	runCtx.BudgetAvailable = decimal.NewFromInt(4800000) // 4.17% over
	res := ValidateCompliance(runCtx, fixtureInvoice(), fixturePurchaseOrder(), rules.Compliance)
	if !hasRule(res.Exceptions, "COMP_BUDGET_EXCEEDED") {
		t.Fatalf("over-budget invoice must be flagged, got %v", ruleIds(res.Exceptions))
	}
	for _, ex := range res.Exceptions {
		if ex.RuleId == "COMP_BUDGET_EXCEEDED" && ex.Severity != models.SeverityMajor {
			t.Fatalf("4.17%% overage should be major, got %s", ex.Severity)
		}
	}
	// Major-only compliance findings do not fail the module.
	if !res.Passed {
		t.Fatal("module passes when no critical exception exists")
	}

	runCtx.BudgetAvailable = decimal.NewFromInt(4000000) // 25% over
	res = ValidateCompliance(runCtx, fixtureInvoice(), fixturePurchaseOrder(), rules.Compliance)
	for _, ex := range res.Exceptions {
		if ex.RuleId == "COMP_BUDGET_EXCEEDED" && ex.Severity != models.SeverityCritical {
			t.Fatalf("25%% overage should escalate to critical, got %s", ex.Severity)
		}
	}
	if res.Passed {
		t.Fatal("critical budget exception must fail the module")
	}
}

func TestValidateCompliance_PoCeilingExceeded(t *testing.T) {
	rules := testRules()
	po := fixturePurchaseOrder()
	po.PoJson.Header.Ceiling = decimal.NewFromInt(4500000)

	res := ValidateCompliance(fixtureRunContext(), fixtureInvoice(), po, rules.Compliance)
	if !hasRule(res.Exceptions, "COMP_PO_CEILING_EXCEEDED") {
		t.Fatalf("invoice above PO ceiling must be flagged, got %v", ruleIds(res.Exceptions))
	}
	if res.Passed {
		t.Fatal("ceiling breach is critical and must fail the module")
	}
}

func TestValidateCompliance_HighValueApprovalIsMinor(t *testing.T) {
	rules := testRules()
	tight := rules.Compliance
	tight.MaxInvoiceAmountWithoutApproval = decimal.NewFromInt(1000000)

	res := ValidateCompliance(fixtureRunContext(), fixtureInvoice(), fixturePurchaseOrder(), tight)
	if !hasRule(res.Exceptions, "COMP_HIGH_VALUE_APPROVAL_REQUIRED") {
		t.Fatalf("invoice above approval threshold must be flagged, got %v", ruleIds(res.Exceptions))
	}
	// Minor findings never fail compliance.
	if !res.Passed {
		t.Fatal("minor-only compliance result must pass")
	}
}
