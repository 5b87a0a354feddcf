package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aafiyacare/homecare-api/internal/model"
)

func TestDefaultCatalogBuilds(t *testing.T) {
	catalog, err := NewDefaultCatalog(nil)
	require.NoError(t, err)

	rules := catalog.Rules()
	assert.Equal(t, 26, catalog.Size())
	assert.Equal(t, "name_en.required", rules[0].ID)
	assert.Equal(t, "insurance_expiry.recommended_when_insured", rules[len(rules)-1].ID)

	assert.Equal(t, []string{
		CategoryIdentity,
		CategoryContact,
		CategoryInsurance,
		CategoryHomebound,
		CategoryOptionalDemographics,
		CategoryInsuranceDocs,
	}, catalog.Categories())

	assert.True(t, catalog.IsOptionalCategory(CategoryOptionalDemographics))
	assert.True(t, catalog.IsOptionalCategory(CategoryInsuranceDocs))
	assert.False(t, catalog.IsOptionalCategory(CategoryIdentity))
}

func TestDefaultCatalogDisablesRules(t *testing.T) {
	catalog, err := NewDefaultCatalog([]string{"email.format", "gender.recommended"})
	require.NoError(t, err)

	assert.Equal(t, 24, catalog.Size())
	for _, r := range catalog.Rules() {
		assert.NotEqual(t, "email.format", r.ID)
		assert.NotEqual(t, "gender.recommended", r.ID)
	}
}

func TestRulesByCategoryKeepsDeclarationOrder(t *testing.T) {
	catalog, err := NewDefaultCatalog(nil)
	require.NoError(t, err)

	homebound := catalog.RulesByCategory(CategoryHomebound)
	require.Len(t, homebound, 5)
	assert.Equal(t, "homebound_status.required", homebound[0].ID)
	assert.Equal(t, "homebound_status.format", homebound[1].ID)
	assert.Equal(t, "homebound_justification.required_when_qualified", homebound[2].ID)
	assert.Equal(t, "assessment_date.required_when_qualified", homebound[3].ID)
	assert.Equal(t, "assessor_name.required_when_qualified", homebound[4].ID)

	assert.Empty(t, catalog.RulesByCategory("no_such_category"))
}

func TestCatalogRejectsDefectiveRules(t *testing.T) {
	valid := Rule{
		ID:       "name_en.required",
		Field:    "name_en",
		Kind:     RuleKindRequired,
		Severity: model.SeverityError,
		Category: CategoryIdentity,
		Message:  "Legal name (English) is required",
	}
	truthy := func(*model.Patient, time.Time) bool { return true }

	tests := []struct {
		name string
		rule Rule
	}{
		{
			name: "empty id",
			rule: Rule{Field: "phone", Kind: RuleKindRequired, Severity: model.SeverityError, Category: CategoryContact, Message: "m"},
		},
		{
			name: "duplicate id",
			rule: valid,
		},
		{
			name: "unknown field",
			rule: Rule{ID: "x", Field: "blood_type", Kind: RuleKindRequired, Severity: model.SeverityError, Category: CategoryIdentity, Message: "m"},
		},
		{
			name: "empty message",
			rule: Rule{ID: "x", Field: "phone", Kind: RuleKindRequired, Severity: model.SeverityError, Category: CategoryContact},
		},
		{
			name: "unknown severity",
			rule: Rule{ID: "x", Field: "phone", Kind: RuleKindRequired, Severity: "fatal", Category: CategoryContact, Message: "m"},
		},
		{
			name: "unknown kind",
			rule: Rule{ID: "x", Field: "phone", Kind: "advisory", Severity: model.SeverityError, Category: CategoryContact, Message: "m"},
		},
		{
			name: "reserved category",
			rule: Rule{ID: "x", Field: "phone", Kind: RuleKindRequired, Severity: model.SeverityError, Category: CategoryEngineInternal, Message: "m"},
		},
		{
			name: "malformed pattern",
			rule: Rule{ID: "x", Field: "phone", Kind: RuleKindFormatPattern, Severity: model.SeverityError, Category: CategoryContact, Pattern: "([", Message: "m"},
		},
		{
			name: "format rule without pattern",
			rule: Rule{ID: "x", Field: "phone", Kind: RuleKindFormatPattern, Severity: model.SeverityError, Category: CategoryContact, Message: "m"},
		},
		{
			name: "conditional rule without predicate",
			rule: Rule{ID: "x", Field: "phone", Kind: RuleKindConditionallyRequired, Severity: model.SeverityError, Category: CategoryContact, Message: "m"},
		},
		{
			name: "cross-field rule without predicate",
			rule: Rule{ID: "x", Field: "phone", Kind: RuleKindCrossField, Severity: model.SeverityError, Category: CategoryContact, Message: "m"},
		},
		{
			name: "required rule with predicate",
			rule: Rule{ID: "x", Field: "phone", Kind: RuleKindRequired, Severity: model.SeverityError, Category: CategoryContact, Predicate: truthy, Message: "m"},
		},
		{
			name: "required rule with pattern",
			rule: Rule{ID: "x", Field: "phone", Kind: RuleKindRequired, Severity: model.SeverityError, Category: CategoryContact, Pattern: ".*", Message: "m"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog([]Rule{valid, tt.rule}, FieldAccessors(), nil)
			assert.Error(t, err)
		})
	}
}

func TestCatalogRejectsEmptyRuleSet(t *testing.T) {
	_, err := NewCatalog(nil, FieldAccessors(), nil)
	assert.Error(t, err)
}

func TestCatalogRulesAreACopy(t *testing.T) {
	catalog, err := NewDefaultCatalog(nil)
	require.NoError(t, err)

	rules := catalog.Rules()
	rules[0].Message = "tampered"

	assert.Equal(t, "Legal name (English) is required", catalog.Rules()[0].Message)
}
