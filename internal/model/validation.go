package model

import "time"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Outcome codes carried on failed rule outcomes.
const (
	OutcomeCodeMissingRequired = "missing_required_field"
	OutcomeCodeInvalidFormat   = "invalid_format"
	OutcomeCodeCrossField      = "cross_field_inconsistency"
	OutcomeCodeEvaluation      = "rule_evaluation_error"
)

// RuleOutcome is the result of applying one rule to one record. It is
// never mutated after creation.
type RuleOutcome struct {
	RuleID     string   `json:"rule_id"`
	Field      string   `json:"field"`
	Passed     bool     `json:"passed"`
	Severity   Severity `json:"severity"`
	Category   string   `json:"category"`
	Code       string   `json:"code,omitempty"`
	Message    string   `json:"message,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Completeness reports how much of the required demographic data a
// record carries.
type Completeness struct {
	Percentage     int      `json:"percentage"`
	MissingFields  []string `json:"missing_fields"`
	OptionalFields []string `json:"optional_fields"`
}

// ValidationResult is the scored report for a single record. LastValidated
// is stamped by the caller at invocation time, never by the validator
// itself, so the validator stays deterministic.
type ValidationResult struct {
	IsValid       bool            `json:"is_valid"`
	Errors        []RuleOutcome   `json:"errors"`
	Warnings      []RuleOutcome   `json:"warnings"`
	Completeness  Completeness    `json:"completeness"`
	Compliance    map[string]bool `json:"compliance"`
	LastValidated *time.Time      `json:"last_validated,omitempty"`
}

// InfrastructureFailure marks a record that could not be fetched during a
// batch run, as opposed to one that failed validation.
type InfrastructureFailure struct {
	Reason string `json:"reason"`
}

// BatchEntry holds exactly one of a validation result or an
// infrastructure failure for a record in a batch.
type BatchEntry struct {
	Result  *ValidationResult      `json:"result,omitempty"`
	Failure *InfrastructureFailure `json:"infrastructure_failure,omitempty"`
}

// BatchSummary aggregates one batch run. ComplianceRates maps each
// regulatory category to the share of successfully validated records
// compliant in it; it is empty when no record validated.
type BatchSummary struct {
	Total                int                `json:"total"`
	Valid                int                `json:"valid"`
	Invalid              int                `json:"invalid"`
	InfrastructureFailed int                `json:"infrastructure_failed"`
	ComplianceRates      map[string]float64 `json:"compliance_rates"`
}

// BatchValidationResult is returned complete, once per batch call.
type BatchValidationResult struct {
	Results map[string]BatchEntry `json:"results"`
	Summary BatchSummary          `json:"summary"`
}
