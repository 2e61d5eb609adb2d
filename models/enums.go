package models

// Severity of a validation exception. Assigned by the rule that raises it and
// never recomputed downstream.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// ExceptionCategory groups exceptions by the rule module that produced them.
type ExceptionCategory string

const (
	ExceptionCategory3WayMatch  ExceptionCategory = "3way_match"
	ExceptionCategoryTax        ExceptionCategory = "tax"
	ExceptionCategoryBank       ExceptionCategory = "bank"
	ExceptionCategoryCompliance ExceptionCategory = "compliance"
)

// Decision is the aggregate outcome of one validation run.
type Decision string

const (
	DecisionOkay   Decision = "OKAY"
	DecisionHold   Decision = "HOLD"
	DecisionReject Decision = "REJECT"
)

type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)
