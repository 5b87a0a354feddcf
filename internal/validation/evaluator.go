package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/aafiyacare/homecare-api/internal/model"
)

// evaluate applies one rule to one record and returns at most one
// outcome. applicable is false only for ConditionallyRequired rules
// whose predicate does not hold; those are excluded from the report
// entirely rather than counted as passed.
//
// The function is pure with respect to its inputs. A panic inside a
// predicate or accessor is recovered here and converted into a failed
// error outcome in the engine_internal category, so one defective rule
// cannot take down a whole validation run.
func evaluate(r *Rule, access FieldAccessor, p *model.Patient, now time.Time) (out model.RuleOutcome, applicable bool) {
	defer func() {
		if rec := recover(); rec != nil {
			out = model.RuleOutcome{
				RuleID:     r.ID,
				Field:      r.Field,
				Passed:     false,
				Severity:   model.SeverityError,
				Category:   CategoryEngineInternal,
				Code:       model.OutcomeCodeEvaluation,
				Message:    fmt.Sprintf("rule %s failed to evaluate: %v", r.ID, rec),
				Suggestion: "Report this record to the engineering team",
			}
			applicable = true
		}
	}()

	switch r.Kind {
	case RuleKindRequired:
		return requiredOutcome(r, access(p)), true

	case RuleKindConditionallyRequired:
		if !r.Predicate(p, now) {
			return model.RuleOutcome{}, false
		}
		return requiredOutcome(r, access(p)), true

	case RuleKindFormatPattern:
		value := strings.TrimSpace(access(p))
		// An absent value is the requiredness rules' concern; format
		// rules only judge values that are present.
		if value == "" || r.compiled.MatchString(value) {
			return passedOutcome(r), true
		}
		return failedOutcome(r, model.OutcomeCodeInvalidFormat), true

	case RuleKindCrossField:
		if r.Predicate(p, now) {
			return passedOutcome(r), true
		}
		return failedOutcome(r, model.OutcomeCodeCrossField), true
	}

	// Unreachable for a validated catalog.
	panic(fmt.Sprintf("unknown rule kind %q", r.Kind))
}

func requiredOutcome(r *Rule, value string) model.RuleOutcome {
	if strings.TrimSpace(value) == "" {
		return failedOutcome(r, model.OutcomeCodeMissingRequired)
	}
	return passedOutcome(r)
}

func passedOutcome(r *Rule) model.RuleOutcome {
	return model.RuleOutcome{
		RuleID:   r.ID,
		Field:    r.Field,
		Passed:   true,
		Severity: r.Severity,
		Category: r.Category,
	}
}

func failedOutcome(r *Rule, code string) model.RuleOutcome {
	return model.RuleOutcome{
		RuleID:     r.ID,
		Field:      r.Field,
		Passed:     false,
		Severity:   r.Severity,
		Category:   r.Category,
		Code:       code,
		Message:    r.Message,
		Suggestion: r.Suggestion,
	}
}
