package workflow

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
	"bitbucket.org/mmdatafocus/apvalidation_backend/models"
	"bitbucket.org/mmdatafocus/apvalidation_backend/validation"
	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. Evaluate and the payload
// builders are pure over an in-memory entity bundle; the persistence path
// needs MySQL + Redis and belongs to an integration environment.

func testRules(t *testing.T) config.RuleConfig {
	t.Helper()
	rc := config.DefaultRuleConfig()
	if err := rc.Compile(); err != nil {
		t.Fatal(err)
	}
	return rc
}

// fixtureBundle mirrors the development seed set. Against the default rules
// every module passes.
func fixtureBundle() EntityBundle {
	changed := time.Now().AddDate(0, 0, -40)
	return EntityBundle{
		Invoice: &models.Invoice{
			InvoiceId: "INV-7788",
			VendorId:  "VEND-22",
			PoId:      "PO-10091",
			GrnId:     "GRN-0091",
			InvoiceJson: models.InvoiceDocument{
				Header: models.InvoiceHeader{InvoiceNo: "INV-7788", Total: decimal.NewFromInt(5000000)},
				LineItems: []models.InvoiceLine{
					{
						LineNo:    1,
						Material:  "Cement Bags",
						Qty:       decimal.NewFromInt(1000),
						UnitPrice: decimal.NewFromInt(4500),
						Hsn:       "252329",
						GstRate:   decimal.NewFromInt(28),
					},
				},
				Taxes: models.InvoiceTaxes{
					GstAmount: decimal.NewFromInt(1260000),
					TdsAmount: decimal.NewFromInt(90000),
				},
			},
		},
		PurchaseOrder: &models.PurchaseOrder{
			PoId:     "PO-10091",
			VendorId: "VEND-22",
			PoJson: models.PurchaseOrderDocument{
				Header: models.PurchaseOrderHeader{Ceiling: decimal.NewFromInt(5200000)},
				LineItems: []models.PurchaseOrderLine{
					{LineNo: 1, Material: "Cement Bags", Qty: decimal.NewFromInt(1000), UnitPrice: decimal.NewFromInt(4500)},
				},
			},
		},
		GoodsReceipt: &models.GoodsReceipt{
			GrnId: "GRN-0091",
			PoId:  "PO-10091",
			GrnJson: models.GoodsReceiptDocument{
				LineItems: []models.GoodsReceiptLine{
					{LineNo: 1, Material: "Cement Bags", ReceivedQty: decimal.NewFromInt(980)},
				},
			},
		},
		Vendor: &models.Vendor{
			VendorId:          "VEND-22",
			VendorName:        "ABC Construction Ltd",
			BankAccount:       "1234567890",
			Ifsc:              "HDFC0001234",
			AccountHolderName: "ABC Construction Limited",
			BankLastChangedAt: &changed,
		},
		Entitlement: &models.Entitlement{
			EntitlementId: "ENT-001",
			ModelId:       "CPM-001",
			EntitlementJson: models.EntitlementDocument{
				NetPayable: decimal.NewFromInt(3700000),
			},
		},
	}
}

func fixtureRunContext() validation.RunContext {
	return validation.RunContext{
		RequesterUserId: "USR-101",
		ApproverUserId:  "USR-202",
		BudgetAvailable: decimal.NewFromInt(6000000),
	}
}

func TestEvaluate_CleanBundleIsOkay(t *testing.T) {
	result := Evaluate(fixtureBundle(), fixtureRunContext(), testRules(t), time.Now())

	if result.Decision.Decision != models.DecisionOkay {
		t.Fatalf("decision = %s, exceptions %+v", result.Decision.Decision, result.Exceptions)
	}
	if len(result.Exceptions) != 0 {
		t.Fatalf("expected no exceptions, got %d", len(result.Exceptions))
	}
	if !result.ThreeWayMatch.Passed || !result.Tax.Passed || !result.Bank.Passed || !result.Compliance.Passed {
		t.Fatalf("all modules should pass: %+v", result)
	}

	if !result.ComputedAmounts.NetPayable.Equal(decimal.NewFromInt(3700000)) {
		t.Fatalf("net payable = %s", result.ComputedAmounts.NetPayable)
	}
	if !result.ComputedAmounts.GstCalculated.Equal(decimal.NewFromInt(1260000)) {
		t.Fatalf("gst calculated = %s", result.ComputedAmounts.GstCalculated)
	}
	if !result.ComputedAmounts.TdsCalculated.Equal(decimal.NewFromInt(90000)) {
		t.Fatalf("tds calculated = %s", result.ComputedAmounts.TdsCalculated)
	}
}

func TestEvaluate_SodViolationRejects(t *testing.T) {
	runCtx := fixtureRunContext()
	runCtx.ApproverUserId = runCtx.RequesterUserId

	result := Evaluate(fixtureBundle(), runCtx, testRules(t), time.Now())

	if result.Decision.Decision != models.DecisionReject {
		t.Fatalf("decision = %s, want REJECT", result.Decision.Decision)
	}
	if len(result.Exceptions) != 1 || result.Exceptions[0].RuleId != "COMP_SOD_VIOLATION" {
		t.Fatalf("exceptions = %+v", result.Exceptions)
	}
	if result.Decision.Summary.Critical != 1 {
		t.Fatalf("summary = %+v", result.Decision.Summary)
	}
}

func TestEvaluate_MajorExceptionHolds(t *testing.T) {
	bundle := fixtureBundle()
	bundle.Invoice.InvoiceJson.LineItems[0].Hsn = ""

	result := Evaluate(bundle, fixtureRunContext(), testRules(t), time.Now())

	if result.Decision.Decision != models.DecisionHold {
		t.Fatalf("decision = %s, want HOLD", result.Decision.Decision)
	}
}

// Exceptions keep a fixed module order regardless of which goroutine finishes
// first: three-way match, tax, bank, compliance.
func TestEvaluate_ExceptionOrderIsStable(t *testing.T) {
	// One exception per module.
	bundle := fixtureBundle()
	bundle.Invoice.InvoiceJson.LineItems[0].Hsn = ""
	bundle.Vendor.Ifsc = "BAD"
	bundle.GoodsReceipt.GrnJson.LineItems = nil
	runCtx := fixtureRunContext()
	runCtx.ApproverUserId = runCtx.RequesterUserId

	rules := testRules(t)
	var firstOrder []string
	for i := 0; i < 10; i++ {
		result := Evaluate(bundle, runCtx, rules, time.Now())
		order := make([]string, 0, len(result.Exceptions))
		for _, ex := range result.Exceptions {
			order = append(order, ex.RuleId)
		}
		if i == 0 {
			firstOrder = order
			if order[0] != "3WAY_GRN_MISSING" {
				t.Fatalf("three-way exceptions must come first, got %v", order)
			}
			if order[len(order)-1] != "COMP_SOD_VIOLATION" {
				t.Fatalf("compliance exceptions must come last, got %v", order)
			}
			continue
		}
		for j := range order {
			if order[j] != firstOrder[j] {
				t.Fatalf("iteration %d reordered exceptions: %v vs %v", i, order, firstOrder)
			}
		}
	}
}

func TestRecommendationsFor(t *testing.T) {
	okay := RecommendationsFor(models.DecisionOkay)
	if len(okay) != 2 || okay[0] != "Proceed with payment processing" {
		t.Fatalf("okay recommendations = %v", okay)
	}
	hold := RecommendationsFor(models.DecisionHold)
	if len(hold) != 3 || hold[0] != "Resolve flagged exceptions before proceeding" {
		t.Fatalf("hold recommendations = %v", hold)
	}
	reject := RecommendationsFor(models.DecisionReject)
	if len(reject) != 3 || reject[1] != "Do not process payment" {
		t.Fatalf("reject recommendations = %v", reject)
	}
}

func TestBuildReportPayload_Keys(t *testing.T) {
	result := Evaluate(fixtureBundle(), fixtureRunContext(), testRules(t), time.Now())
	payload := BuildReportPayload("VAL-123", result)

	wantKeys := []string{
		"run_id", "decision", "summary", "computed_amounts",
		"three_way_match", "tax", "bank", "compliance",
		"exceptions", "reasoning", "routing_suggestions", "recommendations",
	}
	for _, k := range wantKeys {
		if _, ok := payload[k]; !ok {
			t.Errorf("payload missing key %q", k)
		}
	}
	if len(payload) != len(wantKeys) {
		t.Fatalf("payload has %d keys, want %d", len(payload), len(wantKeys))
	}

	// Enrichment sections only ever arrive through a later merge.
	if _, ok := payload["ai_agents"]; ok {
		t.Fatal("deterministic payload must not contain ai_agents")
	}
	if payload["run_id"] != "VAL-123" {
		t.Fatalf("run_id = %v", payload["run_id"])
	}
	if payload["decision"] != models.DecisionOkay {
		t.Fatalf("decision = %v", payload["decision"])
	}
}

func TestRunRequestValidate(t *testing.T) {
	valid := RunRequest{
		InvoiceId:      "INV-7788",
		PoId:           "PO-10091",
		GrnId:          "GRN-0091",
		VendorId:       "VEND-22",
		EntitlementRef: EntitlementRef{ModelId: "CPM-001", EntitlementId: "ENT-001"},
		Context: RunRequestContext{
			RequesterUserId: "USR-101",
			ApproverUserId:  "USR-202",
			BudgetAvailable: decimal.NewFromInt(6000000),
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	missing := valid
	missing.InvoiceId = ""
	if err := missing.Validate(); err == nil {
		t.Fatal("missing invoice_id must be rejected")
	}

	zeroBudget := valid
	zeroBudget.Context.BudgetAvailable = decimal.Zero
	if err := zeroBudget.Validate(); err == nil {
		t.Fatal("non-positive budget must be rejected")
	}

	negativeBudget := valid
	negativeBudget.Context.BudgetAvailable = decimal.NewFromInt(-1)
	if err := negativeBudget.Validate(); err == nil {
		t.Fatal("negative budget must be rejected")
	}
}
