package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/apvalidation_backend/ai"
	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
	"bitbucket.org/mmdatafocus/apvalidation_backend/models"
	"bitbucket.org/mmdatafocus/apvalidation_backend/utils"
	"bitbucket.org/mmdatafocus/apvalidation_backend/validation"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("apvalidation-backend")

type EntitlementRef struct {
	ModelId       string `json:"model_id" binding:"required" validate:"required"`
	EntitlementId string `json:"entitlement_id" binding:"required" validate:"required"`
}

type RunRequestContext struct {
	RequesterUserId string          `json:"requester_user_id" binding:"required" validate:"required"`
	ApproverUserId  string          `json:"approver_user_id" binding:"required" validate:"required"`
	BudgetAvailable decimal.Decimal `json:"budget_available"`
}

// RunRequest is the synchronous validation request boundary.
type RunRequest struct {
	InvoiceId      string            `json:"invoice_id" binding:"required" validate:"required"`
	PoId           string            `json:"po_id" binding:"required" validate:"required"`
	GrnId          string            `json:"grn_id" binding:"required" validate:"required"`
	VendorId       string            `json:"vendor_id" binding:"required" validate:"required"`
	EntitlementRef EntitlementRef    `json:"entitlement_ref" binding:"required" validate:"required"`
	Context        RunRequestContext `json:"context" binding:"required" validate:"required"`
}

// Validate covers what the struct tags cannot express.
func (r *RunRequest) Validate() error {
	if err := utils.ValidateStruct(r); err != nil {
		return err
	}
	if !r.Context.BudgetAvailable.IsPositive() {
		return errors.New("context.budget_available must be positive")
	}
	return nil
}

// RunResponse is the primary response: always present even when enrichment
// never completes.
type RunResponse struct {
	RunId              string                 `json:"run_id"`
	Decision           models.Decision        `json:"decision"`
	Summary            validation.Summary     `json:"summary"`
	Exceptions         []validation.Exception `json:"exceptions"`
	Reasoning          []string               `json:"reasoning"`
	RoutingSuggestions []string               `json:"routing_suggestions"`
}

// EntityBundle holds the five read-only documents fetched for one run.
type EntityBundle struct {
	Invoice       *models.Invoice
	PurchaseOrder *models.PurchaseOrder
	GoodsReceipt  *models.GoodsReceipt
	Vendor        *models.Vendor
	Entitlement   *models.Entitlement
}

// EvaluationResult is the deterministic outcome of one run before any
// persistence or enrichment.
type EvaluationResult struct {
	ThreeWayMatch   validation.Result
	Tax             validation.TaxResult
	Bank            validation.Result
	Compliance      validation.Result
	Exceptions      []validation.Exception
	Decision        validation.DecisionResult
	ComputedAmounts models.ComputedAmounts
	Recommendations []string
}

// Evaluate runs the four rule modules over the bundle and aggregates the
// decision. The modules are pure and independent, so they run concurrently;
// their exceptions are concatenated in a fixed module order afterwards.
func Evaluate(bundle EntityBundle, runCtx validation.RunContext, rules config.RuleConfig, now time.Time) EvaluationResult {
	var (
		threeWay   validation.Result
		tax        validation.TaxResult
		bank       validation.Result
		compliance validation.Result
	)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		threeWay = validation.Validate3WayMatch(bundle.Invoice, bundle.PurchaseOrder, bundle.GoodsReceipt, rules.Tolerance)
	}()
	go func() {
		defer wg.Done()
		tax = validation.ValidateTax(bundle.Invoice, rules.Tax)
	}()
	go func() {
		defer wg.Done()
		bank = validation.ValidateBankDetails(bundle.Vendor, bundle.Invoice, rules.Bank, now)
	}()
	go func() {
		defer wg.Done()
		compliance = validation.ValidateCompliance(runCtx, bundle.Invoice, bundle.PurchaseOrder, rules.Compliance)
	}()
	wg.Wait()

	exceptions := make([]validation.Exception, 0,
		len(threeWay.Exceptions)+len(tax.Exceptions)+len(bank.Exceptions)+len(compliance.Exceptions))
	exceptions = append(exceptions, threeWay.Exceptions...)
	exceptions = append(exceptions, tax.Exceptions...)
	exceptions = append(exceptions, bank.Exceptions...)
	exceptions = append(exceptions, compliance.Exceptions...)

	decision := validation.MakeDecision(exceptions)

	return EvaluationResult{
		ThreeWayMatch: threeWay,
		Tax:           tax,
		Bank:          bank,
		Compliance:    compliance,
		Exceptions:    exceptions,
		Decision:      decision,
		ComputedAmounts: models.ComputedAmounts{
			NetPayable:    bundle.Entitlement.NetPayable(),
			GstCalculated: tax.CalculatedGST,
			TdsCalculated: tax.CalculatedTDS,
		},
		Recommendations: RecommendationsFor(decision.Decision),
	}
}

// RecommendationsFor returns the fixed guidance list per decision.
func RecommendationsFor(decision models.Decision) []string {
	switch decision {
	case models.DecisionOkay:
		return []string{
			"Proceed with payment processing",
			"Archive validation report for audit",
		}
	case models.DecisionHold:
		return []string{
			"Resolve flagged exceptions before proceeding",
			"Coordinate with relevant teams",
			"Update master data if required",
		}
	default:
		return []string{
			"Return invoice to vendor for correction",
			"Do not process payment",
			"Document rejection reason",
		}
	}
}

// FetchEntities loads the five documents concurrently. Any missing entity
// aborts the run before a single rule executes.
func FetchEntities(ctx context.Context, req RunRequest) (EntityBundle, error) {
	var bundle EntityBundle

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		invoice, err := models.GetInvoice(gctx, req.InvoiceId)
		if err != nil {
			return fmt.Errorf("invoice %s: %w", req.InvoiceId, err)
		}
		bundle.Invoice = invoice
		return nil
	})
	g.Go(func() error {
		po, err := models.GetPurchaseOrder(gctx, req.PoId)
		if err != nil {
			return fmt.Errorf("purchase order %s: %w", req.PoId, err)
		}
		bundle.PurchaseOrder = po
		return nil
	})
	g.Go(func() error {
		grn, err := models.GetGoodsReceipt(gctx, req.GrnId)
		if err != nil {
			return fmt.Errorf("grn %s: %w", req.GrnId, err)
		}
		bundle.GoodsReceipt = grn
		return nil
	})
	g.Go(func() error {
		vendor, err := models.GetVendor(gctx, req.VendorId)
		if err != nil {
			return fmt.Errorf("vendor %s: %w", req.VendorId, err)
		}
		bundle.Vendor = vendor
		return nil
	})
	g.Go(func() error {
		ent, err := models.GetEntitlement(gctx, req.EntitlementRef.EntitlementId)
		if err != nil {
			return fmt.Errorf("entitlement %s: %w", req.EntitlementRef.EntitlementId, err)
		}
		bundle.Entitlement = ent
		return nil
	})

	if err := g.Wait(); err != nil {
		return EntityBundle{}, err
	}
	return bundle, nil
}

// RunValidation is the orchestrator: fetch entities, evaluate, persist run +
// exceptions + report, then launch detached enrichment. The returned response
// never depends on the enrichment outcome.
func RunValidation(ctx context.Context, logger *logrus.Logger, rules config.RuleConfig, gen ai.NarrativeGenerator, req RunRequest) (*RunResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "RunValidation")
	defer span.End()

	runId := models.NewRunId()
	ctx = utils.SetRunIdInContext(ctx, runId)

	bundle, err := FetchEntities(ctx, req)
	if err != nil {
		config.LogError(ctx, logger, "validationWorkflow.go", "RunValidation", "FetchEntities", req, err)
		return nil, err
	}

	runCtx := validation.RunContext{
		RequesterUserId: req.Context.RequesterUserId,
		ApproverUserId:  req.Context.ApproverUserId,
		BudgetAvailable: req.Context.BudgetAvailable,
	}
	result := Evaluate(bundle, runCtx, rules, time.Now())

	run := &models.ValidationRun{
		RunId:     runId,
		InvoiceId: req.InvoiceId,
		PoId:      req.PoId,
		GrnId:     req.GrnId,
		VendorId:  req.VendorId,
		ModelId:   req.EntitlementRef.ModelId,
		Status:    models.RunStatusCompleted,
		Decision:  result.Decision.Decision,
	}
	if err := models.CreateValidationRun(ctx, run); err != nil {
		config.LogError(ctx, logger, "validationWorkflow.go", "RunValidation", "CreateValidationRun", run, err)
		return nil, err
	}

	if err := models.InsertValidationExceptions(ctx, exceptionRows(runId, result.Exceptions)); err != nil {
		config.LogError(ctx, logger, "validationWorkflow.go", "RunValidation", "InsertValidationExceptions", runId, err)
		return nil, err
	}

	if _, err := models.MergeReport(ctx, runId, BuildReportPayload(runId, result)); err != nil {
		config.LogError(ctx, logger, "validationWorkflow.go", "RunValidation", "MergeReport", runId, err)
		return nil, err
	}

	launchEnrichment(logger, gen, runId, ai.AnalysisInput{
		RunId:           runId,
		Decision:        result.Decision.Decision,
		Summary:         result.Decision.Summary,
		ThreeWayMatch:   result.ThreeWayMatch,
		Tax:             result.Tax,
		Bank:            result.Bank,
		Compliance:      result.Compliance,
		ComputedAmounts: result.ComputedAmounts,
		Exceptions:      result.Exceptions,
	})

	return &RunResponse{
		RunId:              runId,
		Decision:           result.Decision.Decision,
		Summary:            result.Decision.Summary,
		Exceptions:         result.Exceptions,
		Reasoning:          result.Decision.Reasoning,
		RoutingSuggestions: result.Decision.RoutingSuggestions,
	}, nil
}

// BuildReportPayload assembles the deterministic report sections. The
// ai_agents / validation_reasoning sections are deliberately absent here;
// they arrive through a later merge.
func BuildReportPayload(runId string, result EvaluationResult) models.ReportDocument {
	return models.ReportDocument{
		"run_id":              runId,
		"decision":            result.Decision.Decision,
		"summary":             result.Decision.Summary,
		"computed_amounts":    result.ComputedAmounts,
		"three_way_match":     result.ThreeWayMatch,
		"tax":                 result.Tax,
		"bank":                result.Bank,
		"compliance":          result.Compliance,
		"exceptions":          result.Exceptions,
		"reasoning":           result.Decision.Reasoning,
		"routing_suggestions": result.Decision.RoutingSuggestions,
		"recommendations":     result.Recommendations,
	}
}

func exceptionRows(runId string, exceptions []validation.Exception) []*models.ValidationException {
	rows := make([]*models.ValidationException, 0, len(exceptions))
	for _, ex := range exceptions {
		rows = append(rows, &models.ValidationException{
			RunId:               runId,
			RuleId:              ex.RuleId,
			Severity:            ex.Severity,
			Category:            ex.Category,
			Message:             ex.Message,
			Evidence:            ex.Evidence,
			SuggestedResolution: ex.SuggestedResolution,
		})
	}
	return rows
}

const defaultEnrichmentTimeoutSeconds = 45

// launchEnrichment fires the narrative enrichment detached from the request:
// the caller never awaits it, its failures collapse to a fallback payload, and
// it talks to the rest of the system only through a report merge.
func launchEnrichment(logger *logrus.Logger, gen ai.NarrativeGenerator, runId string, input ai.AnalysisInput) {
	timeout := time.Duration(config.IntFromEnv("ENRICHMENT_TIMEOUT_SECONDS", defaultEnrichmentTimeoutSeconds)) * time.Second

	go func() {
		// Detached from the request context on purpose: the response has
		// already been sent by the time this runs.
		genCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		genCtx = utils.SetRunIdInContext(genCtx, runId)

		defer func() {
			if r := recover(); r != nil {
				config.LogError(genCtx, logger, "validationWorkflow.go", "launchEnrichment", "panic", runId, fmt.Errorf("enrichment panic: %v", r))
			}
		}()

		partial := models.ReportDocument{}
		if gen == nil {
			partial["ai_agents"] = ai.FallbackAnalysis()
		} else {
			partial["ai_agents"] = ai.RunAgenticAnalysis(genCtx, gen, input)
			if narrative, err := ai.RunValidationReasoning(genCtx, gen, input); err == nil {
				partial["validation_reasoning"] = narrative
			} else {
				config.LogError(genCtx, logger, "validationWorkflow.go", "launchEnrichment", "RunValidationReasoning", runId, err)
			}
		}

		// Merge under its own deadline so a generation timeout still lets the
		// fallback payload land.
		mergeCtx, cancelMerge := context.WithTimeout(utils.SetRunIdInContext(context.Background(), runId), 10*time.Second)
		defer cancelMerge()
		if _, err := models.MergeReport(mergeCtx, runId, partial); err != nil {
			config.LogError(mergeCtx, logger, "validationWorkflow.go", "launchEnrichment", "MergeReport", runId, err)
		}
	}()
}
