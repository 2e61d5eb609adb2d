package ai

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/apvalidation_backend/models"
	"bitbucket.org/mmdatafocus/apvalidation_backend/validation"
)

// AnalysisInput is the structured summary of one run handed to the narrative
// capability. It is derived entirely from deterministic outputs.
type AnalysisInput struct {
	RunId           string                 `json:"run_id"`
	Decision        models.Decision        `json:"decision"`
	Summary         validation.Summary     `json:"summary"`
	ThreeWayMatch   validation.Result      `json:"three_way_match"`
	Tax             validation.TaxResult   `json:"tax"`
	Bank            validation.Result      `json:"bank"`
	Compliance      validation.Result      `json:"compliance"`
	ComputedAmounts models.ComputedAmounts `json:"computed_amounts"`
	Exceptions      []validation.Exception `json:"exceptions"`
}

// ReasoningNarrative is the single-pass narrative section of the report.
type ReasoningNarrative struct {
	Confidence     float64  `json:"confidence"`
	Narrative      string   `json:"narrative"`
	KeyFindings    []string `json:"key_findings"`
	RiskLevel      string   `json:"risk_level"`
	Recommendation string   `json:"recommendation"`
}

// Confidence degrades with the exception load: max(0.5, 1 - major*0.15 - critical*0.25).
func Confidence(summary validation.Summary) float64 {
	c := 1 - (float64(summary.Major)*0.15 + float64(summary.Critical)*0.25)
	if c < 0.5 {
		return 0.5
	}
	return c
}

// RunValidationReasoning asks the generator for a consolidated narrative over
// the whole run. Errors are returned for the caller's fallback handling; the
// decision is never part of the response contract.
func RunValidationReasoning(ctx context.Context, gen NarrativeGenerator, input AnalysisInput) (*ReasoningNarrative, error) {
	prompt := buildReasoningPrompt(input)

	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var narrative ReasoningNarrative
	if err := decodeJSONResponse(raw, &narrative); err != nil {
		return nil, err
	}

	narrative.Confidence = Confidence(input.Summary)
	return &narrative, nil
}

func buildReasoningPrompt(input AnalysisInput) string {
	var b strings.Builder

	b.WriteString("You are a senior Finance & Compliance Officer AI.\n\n")
	b.WriteString("Invoice validation summary:\n")
	fmt.Fprintf(&b, "Decision: %s\n", input.Decision)
	fmt.Fprintf(&b, "Critical issues: %d\n", input.Summary.Critical)
	fmt.Fprintf(&b, "Major issues: %d\n", input.Summary.Major)
	fmt.Fprintf(&b, "Minor issues: %d\n\n", input.Summary.Minor)

	fmt.Fprintf(&b, "Tax issues:\n%s\n\n", exceptionLines(input.Tax.Exceptions))
	fmt.Fprintf(&b, "Compliance issues:\n%s\n\n", exceptionLines(input.Compliance.Exceptions))
	fmt.Fprintf(&b, "Bank issues:\n%s\n\n", exceptionLines(input.Bank.Exceptions))
	fmt.Fprintf(&b, "3-Way match issues:\n%s\n\n", exceptionLines(input.ThreeWayMatch.Exceptions))

	b.WriteString("Computed values:\n")
	fmt.Fprintf(&b, "GST Calculated: %s\n", input.ComputedAmounts.GstCalculated.String())
	fmt.Fprintf(&b, "TDS Calculated: %s\n", input.ComputedAmounts.TdsCalculated.String())
	fmt.Fprintf(&b, "Net Payable: %s\n\n", input.ComputedAmounts.NetPayable.String())

	b.WriteString("Respond ONLY in JSON with keys:\n")
	b.WriteString("narrative (string), key_findings (array of strings), risk_level (string), recommendation (string).\n")

	return b.String()
}

func exceptionLines(exceptions []validation.Exception) string {
	if len(exceptions) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(exceptions))
	for _, ex := range exceptions {
		lines = append(lines, "- "+ex.Message)
	}
	return strings.Join(lines, "\n")
}
