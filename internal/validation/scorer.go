package validation

import (
	"math"

	"github.com/aafiyacare/homecare-api/internal/model"
)

// score turns the raw tally into the reported completeness and
// compliance blocks.
//
// Percentage is round(100 * satisfied / applied) over Error-severity
// required-kind rules, clamped to [0,100], and 100 when nothing applies.
// Compliance carries one boolean per declared category, vacuously true
// when no rule of that category failed at Error severity.
func (v *Validator) score(t *tally) *model.ValidationResult {
	percentage := 100
	if t.appliedRequired > 0 {
		satisfied := t.appliedRequired - t.failedRequired
		percentage = int(math.Round(100 * float64(satisfied) / float64(t.appliedRequired)))
		if percentage < 0 {
			percentage = 0
		}
		if percentage > 100 {
			percentage = 100
		}
	}

	compliance := make(map[string]bool, len(v.catalog.categories))
	for _, cat := range v.catalog.categories {
		compliance[cat] = t.categoryErrors[cat] == 0
	}

	return &model.ValidationResult{
		IsValid:  len(t.errors) == 0,
		Errors:   t.errors,
		Warnings: t.warnings,
		Completeness: model.Completeness{
			Percentage:     percentage,
			MissingFields:  dedupeOrdered(t.missingFields),
			OptionalFields: dedupeOrdered(t.optionalFields),
		},
		Compliance: compliance,
	}
}

// dedupeOrdered drops repeated field names while keeping first-seen
// order, so two rules on one field report the field once.
func dedupeOrdered(fields []string) []string {
	out := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
