package ai

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/apvalidation_backend/utils"
	"bitbucket.org/mmdatafocus/apvalidation_backend/validation"
)

// FallbackNarrativeText explains an enrichment failure inside the report while
// the deterministic outcome stands.
const FallbackNarrativeText = "AI reasoning could not be generated. Deterministic validation remains authoritative."

type KeyFinding struct {
	Issue             string `json:"issue"`
	Impact            string `json:"impact"`
	RecommendedAction string `json:"recommended_action"`
}

// DomainInsight is one domain agent's structured read of a module result.
type DomainInsight struct {
	Status      string       `json:"status"`
	Severity    string       `json:"severity"`
	KeyFindings []KeyFinding `json:"key_findings"`
	Confidence  float64      `json:"confidence"`
}

type RiskInsight struct {
	OverallRisk               string   `json:"overall_risk"`
	RiskScore                 int      `json:"risk_score"`
	FinancialExposureEstimate string   `json:"financial_exposure_estimate"`
	PrimaryDrivers            []string `json:"primary_drivers"`
}

type FinalNarrative struct {
	DecisionJustification string   `json:"decision_justification"`
	ImmediateActions      []string `json:"immediate_actions"`
	ExpectedOutcome       string   `json:"expected_outcome"`
}

// AgenticAnalysis is the ai_agents section of the report. On failure only
// Error and FallbackNarrative are set. A decision field is deliberately
// absent from this type: enrichment output can never feed back into it.
type AgenticAnalysis struct {
	TaxInsight        *DomainInsight  `json:"tax_insight,omitempty"`
	ComplianceInsight *DomainInsight  `json:"compliance_insight,omitempty"`
	RiskInsight       *RiskInsight    `json:"risk_insight,omitempty"`
	FinalNarrative    *FinalNarrative `json:"final_narrative,omitempty"`
	Error             string          `json:"error,omitempty"`
	FallbackNarrative string          `json:"fallback_narrative,omitempty"`
}

// FallbackAnalysis is merged into the report when enrichment fails.
func FallbackAnalysis() AgenticAnalysis {
	return AgenticAnalysis{
		Error:             "Agentic analysis unavailable",
		FallbackNarrative: FallbackNarrativeText,
	}
}

// RunAgenticAnalysis orchestrates the domain agents (tax, compliance, risk)
// and a reflection pass that synthesizes their output. It never returns an
// error: any failure collapses to the fallback payload so the detached
// enrichment step stays isolated from the primary decision path.
func RunAgenticAnalysis(ctx context.Context, gen NarrativeGenerator, input AnalysisInput) AgenticAnalysis {
	taxInsight, err := runDomainAgent(ctx, gen, "tax", input.Tax.Result, fmt.Sprintf(
		"Computed GST is %s and computed TDS is %s.",
		input.ComputedAmounts.GstCalculated.String(),
		input.ComputedAmounts.TdsCalculated.String(),
	))
	if err != nil {
		return FallbackAnalysis()
	}

	complianceInsight, err := runDomainAgent(ctx, gen, "compliance", input.Compliance, "")
	if err != nil {
		return FallbackAnalysis()
	}

	riskInsight, err := runRiskAgent(ctx, gen, input)
	if err != nil {
		return FallbackAnalysis()
	}

	finalNarrative, err := runReflectionAgent(ctx, gen, input, taxInsight, complianceInsight, riskInsight)
	if err != nil {
		return FallbackAnalysis()
	}

	return AgenticAnalysis{
		TaxInsight:        taxInsight,
		ComplianceInsight: complianceInsight,
		RiskInsight:       riskInsight,
		FinalNarrative:    finalNarrative,
	}
}

func runDomainAgent(ctx context.Context, gen NarrativeGenerator, domain string, result validation.Result, extra string) (*DomainInsight, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a %s analysis agent for accounts-payable invoice validation.\n\n", domain)
	fmt.Fprintf(&b, "The deterministic %s checks %s.\n", domain, passedWord(result.Passed))
	fmt.Fprintf(&b, "Findings:\n%s\n", exceptionLines(result.Exceptions))
	if extra != "" {
		b.WriteString(extra + "\n")
	}
	b.WriteString("\nRespond ONLY in JSON with keys: status (PASSED or FAILED), severity (CRITICAL, MAJOR, MINOR or NONE), ")
	b.WriteString("key_findings (array of objects with issue, impact, recommended_action), confidence (number between 0 and 1).\n")

	raw, err := gen.Generate(ctx, b.String())
	if err != nil {
		return nil, err
	}

	var insight DomainInsight
	if err := decodeJSONResponse(raw, &insight); err != nil {
		return nil, err
	}
	return &insight, nil
}

func runRiskAgent(ctx context.Context, gen NarrativeGenerator, input AnalysisInput) (*RiskInsight, error) {
	var b strings.Builder
	b.WriteString("You are a financial risk assessment agent for accounts-payable invoice validation.\n\n")
	fmt.Fprintf(&b, "The deterministic decision is %s.\n", input.Decision)
	fmt.Fprintf(&b, "Exception counts: %d critical, %d major, %d minor.\n",
		input.Summary.Critical, input.Summary.Major, input.Summary.Minor)
	fmt.Fprintf(&b, "All exceptions:\n%s\n", exceptionLines(input.Exceptions))
	b.WriteString("\nRespond ONLY in JSON with keys: overall_risk (LOW, MODERATE or HIGH), risk_score (integer 1-10), ")
	b.WriteString("financial_exposure_estimate (string), primary_drivers (array of strings).\n")

	raw, err := gen.Generate(ctx, b.String())
	if err != nil {
		return nil, err
	}

	var insight RiskInsight
	if err := decodeJSONResponse(raw, &insight); err != nil {
		return nil, err
	}
	return &insight, nil
}

func runReflectionAgent(ctx context.Context, gen NarrativeGenerator, input AnalysisInput, tax, compliance *DomainInsight, risk *RiskInsight) (*FinalNarrative, error) {
	taxJson, err := utils.MarshalToJSON(tax)
	if err != nil {
		return nil, err
	}
	complianceJson, err := utils.MarshalToJSON(compliance)
	if err != nil {
		return nil, err
	}
	riskJson, err := utils.MarshalToJSON(risk)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("You are a reflection agent synthesizing domain agent insights into a final narrative.\n\n")
	fmt.Fprintf(&b, "The deterministic decision is %s and must be taken as given.\n\n", input.Decision)
	fmt.Fprintf(&b, "Tax insight: %s\n", taxJson)
	fmt.Fprintf(&b, "Compliance insight: %s\n", complianceJson)
	fmt.Fprintf(&b, "Risk insight: %s\n", riskJson)
	b.WriteString("\nRespond ONLY in JSON with keys: decision_justification (string), ")
	b.WriteString("immediate_actions (array of strings), expected_outcome (string).\n")

	raw, err := gen.Generate(ctx, b.String())
	if err != nil {
		return nil, err
	}

	var narrative FinalNarrative
	if err := decodeJSONResponse(raw, &narrative); err != nil {
		return nil, err
	}
	return &narrative, nil
}

func passedWord(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}
