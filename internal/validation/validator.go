package validation

import (
	"time"

	"github.com/aafiyacare/homecare-api/internal/model"
)

// Validator runs a catalog against single records. It holds no mutable
// state beyond the injected clock, so one instance serves any number of
// goroutines concurrently.
type Validator struct {
	catalog *Catalog
	now     func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the reference time source. Tests use it to pin
// "today" for the date rules.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// NewValidator wires a validator to an already-built catalog.
func NewValidator(catalog *Catalog, opts ...Option) *Validator {
	v := &Validator{
		catalog: catalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Catalog returns the catalog this validator evaluates.
func (v *Validator) Catalog() *Catalog {
	return v.catalog
}

// tally is the raw count sheet handed to the scorer. Only Error-severity
// Required and ConditionallyRequired rules feed the completeness figures;
// warning-level recommendations never move the percentage.
type tally struct {
	appliedRequired int
	failedRequired  int
	missingFields   []string
	optionalFields  []string
	categoryErrors  map[string]int
	errors          []model.RuleOutcome
	warnings        []model.RuleOutcome
}

// Validate evaluates every applicable rule in catalog order and returns
// the scored report. The result is built fresh on every call and carries
// no timestamp; callers stamp LastValidated themselves.
func (v *Validator) Validate(p *model.Patient) *model.ValidationResult {
	return v.score(v.run(p, v.now()))
}

func (v *Validator) run(p *model.Patient, now time.Time) *tally {
	t := &tally{
		missingFields:  []string{},
		optionalFields: []string{},
		categoryErrors: make(map[string]int),
		errors:         []model.RuleOutcome{},
		warnings:       []model.RuleOutcome{},
	}

	for i := range v.catalog.rules {
		r := &v.catalog.rules[i]
		out, applicable := evaluate(r, v.catalog.accessor(r.Field), p, now)
		if !applicable {
			continue
		}

		internal := out.Category == CategoryEngineInternal
		requiredKind := r.Kind == RuleKindRequired || r.Kind == RuleKindConditionallyRequired
		countsTowardScore := requiredKind && r.Severity == model.SeverityError && !internal
		if countsTowardScore {
			t.appliedRequired++
		}

		if out.Passed {
			continue
		}

		switch out.Severity {
		case model.SeverityError:
			t.errors = append(t.errors, out)
			if !internal {
				t.categoryErrors[out.Category]++
			}
			if countsTowardScore {
				t.failedRequired++
				t.missingFields = append(t.missingFields, r.Field)
			}
		case model.SeverityWarning:
			t.warnings = append(t.warnings, out)
		}

		if !internal && v.catalog.IsOptionalCategory(r.Category) {
			t.optionalFields = append(t.optionalFields, r.Field)
		}
	}
	return t
}
