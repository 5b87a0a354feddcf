package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aafiyacare/homecare-api/internal/model"
)

// RuleKind is the closed set of rule behaviors the evaluator switches over.
type RuleKind string

const (
	RuleKindRequired              RuleKind = "required"
	RuleKindConditionallyRequired RuleKind = "conditionally_required"
	RuleKindFormatPattern         RuleKind = "format_pattern"
	RuleKindCrossField            RuleKind = "cross_field"
)

// Predicate decides applicability for ConditionallyRequired rules and
// pass/fail for CrossField rules. Predicates must be pure: no I/O, no
// mutation, the reference time always injected.
type Predicate func(p *model.Patient, now time.Time) bool

// FieldAccessor reads one named field off the record snapshot as a string.
type FieldAccessor func(p *model.Patient) string

// Rule is one validation unit. Rules are immutable once the catalog is
// built.
type Rule struct {
	ID         string
	Field      string
	Kind       RuleKind
	Severity   model.Severity
	Category   string
	Pattern    string
	Predicate  Predicate
	Message    string
	Suggestion string

	compiled *regexp.Regexp
}

// Catalog is the ordered, immutable rule set. Construction validates
// every rule and fails on the first defect; a partially valid catalog is
// never served. Reloading means building a new catalog and swapping it
// in at process level, so readers always see a stable snapshot.
type Catalog struct {
	rules      []Rule
	accessors  map[string]FieldAccessor
	categories []string
	optional   map[string]bool
}

// NewCatalog validates and compiles the rule set. The accessor registry
// must cover every referenced field; optionalCategories marks the
// categories whose failures count as optional-field gaps rather than
// compliance problems.
func NewCatalog(rules []Rule, accessors map[string]FieldAccessor, optionalCategories []string) (*Catalog, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("catalog: no rules declared")
	}

	optional := make(map[string]bool, len(optionalCategories))
	for _, cat := range optionalCategories {
		optional[cat] = true
	}

	c := &Catalog{
		rules:     make([]Rule, 0, len(rules)),
		accessors: accessors,
		optional:  optional,
	}

	seen := make(map[string]bool, len(rules))
	seenCategory := make(map[string]bool)
	for i, r := range rules {
		if err := c.checkRule(i, r, seen); err != nil {
			return nil, err
		}
		seen[r.ID] = true
		if r.Kind == RuleKindFormatPattern {
			compiled, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("catalog: rule %s: invalid pattern %q: %w", r.ID, r.Pattern, err)
			}
			r.compiled = compiled
		}
		if !seenCategory[r.Category] {
			seenCategory[r.Category] = true
			c.categories = append(c.categories, r.Category)
		}
		c.rules = append(c.rules, r)
	}
	return c, nil
}

func (c *Catalog) checkRule(i int, r Rule, seen map[string]bool) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("catalog: rule %d: empty id", i)
	}
	if seen[r.ID] {
		return fmt.Errorf("catalog: rule %s: duplicate id", r.ID)
	}
	if strings.TrimSpace(r.Field) == "" {
		return fmt.Errorf("catalog: rule %s: empty field", r.ID)
	}
	if _, ok := c.accessors[r.Field]; !ok {
		return fmt.Errorf("catalog: rule %s: unknown field %q", r.ID, r.Field)
	}
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("catalog: rule %s: empty message", r.ID)
	}
	if strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("catalog: rule %s: empty category", r.ID)
	}
	if r.Category == CategoryEngineInternal {
		return fmt.Errorf("catalog: rule %s: category %s is reserved", r.ID, CategoryEngineInternal)
	}
	if r.Severity != model.SeverityError && r.Severity != model.SeverityWarning {
		return fmt.Errorf("catalog: rule %s: unknown severity %q", r.ID, r.Severity)
	}

	switch r.Kind {
	case RuleKindRequired:
		if r.Predicate != nil || r.Pattern != "" {
			return fmt.Errorf("catalog: rule %s: required rules take neither predicate nor pattern", r.ID)
		}
	case RuleKindConditionallyRequired:
		if r.Predicate == nil {
			return fmt.Errorf("catalog: rule %s: conditionally required rules need a predicate", r.ID)
		}
		if r.Pattern != "" {
			return fmt.Errorf("catalog: rule %s: conditionally required rules take no pattern", r.ID)
		}
	case RuleKindFormatPattern:
		if strings.TrimSpace(r.Pattern) == "" {
			return fmt.Errorf("catalog: rule %s: format rules need a pattern", r.ID)
		}
		if r.Predicate != nil {
			return fmt.Errorf("catalog: rule %s: format rules take no predicate", r.ID)
		}
	case RuleKindCrossField:
		if r.Predicate == nil {
			return fmt.Errorf("catalog: rule %s: cross-field rules need a predicate", r.ID)
		}
		if r.Pattern != "" {
			return fmt.Errorf("catalog: rule %s: cross-field rules take no pattern", r.ID)
		}
	default:
		return fmt.Errorf("catalog: rule %s: unknown kind %q", r.ID, r.Kind)
	}
	return nil
}

// Rules returns the rule set in declaration order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// RulesByCategory returns the rules of one category in declaration order.
func (c *Catalog) RulesByCategory(category string) []Rule {
	var out []Rule
	for _, r := range c.rules {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// Categories lists the declared regulatory categories in first-seen
// order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// IsOptionalCategory reports whether failures in this category count as
// optional-field gaps.
func (c *Catalog) IsOptionalCategory(category string) bool {
	return c.optional[category]
}

// Size returns the number of declared rules.
func (c *Catalog) Size() int {
	return len(c.rules)
}

func (c *Catalog) accessor(field string) FieldAccessor {
	return c.accessors[field]
}
