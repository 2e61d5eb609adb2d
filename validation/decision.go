package validation

import (
	"fmt"

	"bitbucket.org/mmdatafocus/apvalidation_backend/models"
)

// Summary counts exceptions by severity across all modules.
type Summary struct {
	Critical int `json:"critical"`
	Major    int `json:"major"`
	Minor    int `json:"minor"`
}

// DecisionResult is the aggregate outcome with routing guidance.
type DecisionResult struct {
	Decision           models.Decision `json:"decision"`
	Summary            Summary         `json:"summary"`
	Reasoning          []string        `json:"reasoning"`
	RoutingSuggestions []string        `json:"routing_suggestions"`
}

// MakeDecision applies the strict three-tier severity gate over the
// concatenated exception set: any critical forces REJECT, otherwise any major
// forces HOLD, otherwise OKAY. Order-independent, no weighting.
func MakeDecision(exceptions []Exception) DecisionResult {
	var summary Summary
	for _, ex := range exceptions {
		switch ex.Severity {
		case models.SeverityCritical:
			summary.Critical++
		case models.SeverityMajor:
			summary.Major++
		case models.SeverityMinor:
			summary.Minor++
		}
	}

	if summary.Critical > 0 {
		return DecisionResult{
			Decision:           models.DecisionReject,
			Summary:            summary,
			Reasoning:          []string{fmt.Sprintf("%d critical exception(s) found", summary.Critical)},
			RoutingSuggestions: []string{"Route to Compliance Officer"},
		}
	}

	if summary.Major > 0 {
		return DecisionResult{
			Decision:           models.DecisionHold,
			Summary:            summary,
			Reasoning:          []string{fmt.Sprintf("%d major exception(s) require resolution", summary.Major)},
			RoutingSuggestions: []string{"Route to Procurement / Finance"},
		}
	}

	return DecisionResult{
		Decision:           models.DecisionOkay,
		Summary:            summary,
		Reasoning:          []string{"All validations passed"},
		RoutingSuggestions: []string{},
	}
}
