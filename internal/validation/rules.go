package validation

import (
	"strings"
	"time"

	"github.com/aafiyacare/homecare-api/internal/model"
)

// Regulatory categories used by the built-in DOH rule set.
const (
	CategoryIdentity             = "identity_verification"
	CategoryContact              = "contact_completeness"
	CategoryInsurance            = "insurance_coverage"
	CategoryHomebound            = "homebound_compliance"
	CategoryOptionalDemographics = "optional_demographics"
	CategoryInsuranceDocs        = "insurance_documentation"

	// CategoryEngineInternal tags outcomes produced when a rule itself
	// fails to evaluate. It is never declared by a rule and never part
	// of the compliance map.
	CategoryEngineInternal = "engine_internal"
)

// Format patterns enforced by the built-in rules. EmiratesIDPattern is
// shared with the request-binding validator so the API and the engine
// agree on what an Emirates ID looks like.
const (
	EmiratesIDPattern      = `^784-\d{4}-\d{7}-\d$`
	UAEPhonePattern        = `^\+971[\s-]?\d{1,2}[\s-]?\d{3}[\s-]?\d{4}$`
	EmailPattern           = `^[^@\s]+@[^@\s]+\.[^@\s]+$`
	InsuranceTypePattern   = `^(private|public|self_pay)$`
	HomeboundStatusPattern = `^(qualified|not_qualified|pending_assessment)$`
)

const dateLayout = "2006-01-02"

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// FieldAccessors is the registry of snapshot fields the rules may
// reference. Catalog construction rejects any rule naming a field
// outside it.
func FieldAccessors() map[string]FieldAccessor {
	return map[string]FieldAccessor{
		"name_en":                 func(p *model.Patient) string { return p.NameEN },
		"name_ar":                 func(p *model.Patient) string { return p.NameAR },
		"emirates_id":             func(p *model.Patient) string { return p.EmiratesID },
		"date_of_birth":           func(p *model.Patient) string { return formatDate(p.DateOfBirth) },
		"gender":                  func(p *model.Patient) string { return p.Gender },
		"nationality":             func(p *model.Patient) string { return p.Nationality },
		"phone":                   func(p *model.Patient) string { return p.Phone },
		"email":                   func(p *model.Patient) string { return p.Email },
		"address":                 func(p *model.Patient) string { return p.Address },
		"emergency_contact_name":  func(p *model.Patient) string { return p.EmergencyContactName },
		"emergency_contact_phone": func(p *model.Patient) string { return p.EmergencyContactPhone },
		"insurance_provider":      func(p *model.Patient) string { return p.InsuranceProvider },
		"insurance_type":          func(p *model.Patient) string { return p.InsuranceType },
		"insurance_policy_number": func(p *model.Patient) string { return p.InsurancePolicyNumber },
		"insurance_expiry_date":   func(p *model.Patient) string { return formatDate(p.InsuranceExpiryDate) },
		"homebound_status":        func(p *model.Patient) string { return p.HomeboundStatus },
		"homebound_justification": func(p *model.Patient) string { return p.HomeboundJustification },
		"assessment_date":         func(p *model.Patient) string { return formatDate(p.AssessmentDate) },
		"assessor_name":           func(p *model.Patient) string { return p.AssessorName },
	}
}

// OptionalCategories marks the categories whose failed rules surface as
// optional-field gaps instead of compliance problems.
func OptionalCategories() []string {
	return []string{CategoryOptionalDemographics, CategoryInsuranceDocs}
}

func homeboundQualified(p *model.Patient, _ time.Time) bool {
	return p.HomeboundStatus == model.HomeboundQualified
}

func insuredNonSelfPay(p *model.Patient, _ time.Time) bool {
	t := strings.TrimSpace(p.InsuranceType)
	return t != "" && t != model.InsuranceTypeSelfPay
}

func dobNotFuture(p *model.Patient, now time.Time) bool {
	if p.DateOfBirth == nil {
		return true
	}
	return !p.DateOfBirth.After(now)
}

// insuranceNotLapsed passes unless a non-self-pay policy carries an
// expiry date strictly before today. Missing dates are the
// documentation rules' concern, not a coverage inconsistency.
func insuranceNotLapsed(p *model.Patient, now time.Time) bool {
	if !insuredNonSelfPay(p, now) || p.InsuranceExpiryDate == nil {
		return true
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !p.InsuranceExpiryDate.Before(today)
}

// DefaultRules is the built-in DOH demographics rule set. Declaration
// order is evaluation order and is preserved in every report.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:         "name_en.required",
			Field:      "name_en",
			Kind:       RuleKindRequired,
			Severity:   model.SeverityError,
			Category:   CategoryIdentity,
			Message:    "Legal name (English) is required",
			Suggestion: "Enter the patient's full legal name as printed on the Emirates ID",
		},
		{
			ID:         "name_ar.required",
			Field:      "name_ar",
			Kind:       RuleKindRequired,
			Severity:   model.SeverityWarning,
			Category:   CategoryIdentity,
			Message:    "Legal name (Arabic) is missing",
			Suggestion: "Capture the Arabic-script name from the Emirates ID for DOH filings",
		},
		{
			ID:         "emirates_id.required",
			Field:      "emirates_id",
			Kind:       RuleKindRequired,
			Severity:   model.SeverityError,
			Category:   CategoryIdentity,
			Message:    "Emirates ID is required",
			Suggestion: "Scan or enter the 15-digit Emirates ID number",
		},
		{
			ID:         "emirates_id.format",
			Field:      "emirates_id",
			Kind:       RuleKindFormatPattern,
			Severity:   model.SeverityError,
			Category:   CategoryIdentity,
			Pattern:    EmiratesIDPattern,
			Message:    "Emirates ID must match the format 784-YYYY-NNNNNNN-C",
			Suggestion: "Check the hyphens and digit groups against the physical card",
		},
		{
			ID:         "date_of_birth.required",
			Field:      "date_of_birth",
			Kind:       RuleKindRequired,
			Severity:   model.SeverityError,
			Category:   CategoryIdentity,
			Message:    "Date of birth is required",
			Suggestion: "Enter the date of birth shown on the Emirates ID",
		},
		{
			ID:         "date_of_birth.not_future",
			Field:      "date_of_birth",
			Kind:       RuleKindCrossField,
			Severity:   model.SeverityError,
			Category:   CategoryIdentity,
			Predicate:  dobNotFuture,
			Message:    "Date of birth cannot be in the future",
			Suggestion: "Correct the date of birth; it must not be after today",
		},
		{
			ID:         "nationality.required",
			Field:      "nationality",
			Kind:       RuleKindRequired,
			Severity:   model.SeverityError,
			Category:   CategoryIdentity,
			Message:    "Nationality is required",
			Suggestion: "Select the patient's nationality",
		},
		{
			ID:         "phone.required",
			Field:      "phone",
			Kind:       RuleKindRequired,
			Severity:   model.SeverityError,
			Category:   CategoryContact,
			Message:    "Contact phone number is required",
			Suggestion: "Enter a reachable UAE phone number",
		},
		{
			ID:         "phone.format",
			Field:      "phone",
			Kind:       RuleKindFormatPattern,
			Severity:   model.SeverityError,
			Category:   CategoryContact,
			Pattern:    UAEPhonePattern,
			Message:    "Phone number must be in international UAE format (+971 XX XXX XXXX)",
			Suggestion: "Prefix the number with +971 and drop the leading zero",
		},
		{
			ID:         "insurance_provider.required",
			Field:      "insurance_provider",
			Kind:       RuleKindRequired,
			Severity:   model.SeverityError,
			Category:   CategoryInsurance,
			Message:    "Insurance provider is required",
			Suggestion: "Select the insurance provider, or Self Pay if uninsured",
		},
		{
			ID:         "insurance_type.required",
			Field:      "insurance_type",
			Kind:       RuleKindRequired,
			Severity:   model.SeverityError,
			Category:   CategoryInsurance,
			Message:    "Insurance type is required",
			Suggestion: "Choose private, public or self_pay",
		},
		{
			ID:         "insurance_type.format",
			Field:      "insurance_type",
			Kind:       RuleKindFormatPattern,
			Severity:   model.SeverityError,
			Category:   CategoryInsurance,
			Pattern:    InsuranceTypePattern,
			Message:    "Insurance type must be one of private, public or self_pay",
			Suggestion: "Choose private, public or self_pay",
		},
		{
			ID:         "insurance_expiry.not_lapsed",
			Field:      "insurance_expiry_date",
			Kind:       RuleKindCrossField,
			Severity:   model.SeverityError,
			Category:   CategoryInsurance,
			Predicate:  insuranceNotLapsed,
			Message:    "Insurance policy has expired",
			Suggestion: "Renew the policy or change the insurance type to self_pay",
		},
		{
			ID:         "homebound_status.required",
			Field:      "homebound_status",
			Kind:       RuleKindRequired,
			Severity:   model.SeverityError,
			Category:   CategoryHomebound,
			Message:    "Homebound status is required",
			Suggestion: "Record the homebound assessment outcome",
		},
		{
			ID:         "homebound_status.format",
			Field:      "homebound_status",
			Kind:       RuleKindFormatPattern,
			Severity:   model.SeverityError,
			Category:   CategoryHomebound,
			Pattern:    HomeboundStatusPattern,
			Message:    "Homebound status must be qualified, not_qualified or pending_assessment",
			Suggestion: "Use one of the recognized homebound status values",
		},
		{
			ID:         "homebound_justification.required_when_qualified",
			Field:      "homebound_justification",
			Kind:       RuleKindConditionallyRequired,
			Severity:   model.SeverityError,
			Category:   CategoryHomebound,
			Predicate:  homeboundQualified,
			Message:    "Clinical justification is required for qualified homebound patients",
			Suggestion: "Document why the patient meets the DOH homebound criteria",
		},
		{
			ID:         "assessment_date.required_when_qualified",
			Field:      "assessment_date",
			Kind:       RuleKindConditionallyRequired,
			Severity:   model.SeverityWarning,
			Category:   CategoryHomebound,
			Predicate:  homeboundQualified,
			Message:    "Homebound assessment date is missing",
			Suggestion: "Record when the qualifying assessment took place",
		},
		{
			ID:         "assessor_name.required_when_qualified",
			Field:      "assessor_name",
			Kind:       RuleKindConditionallyRequired,
			Severity:   model.SeverityWarning,
			Category:   CategoryHomebound,
			Predicate:  homeboundQualified,
			Message:    "Assessor name is missing",
			Suggestion: "Record the clinician who performed the homebound assessment",
		},
		{
			ID:         "gender.recommended",
			Field:      "gender",
			Kind:       RuleKindRequired,
			Severity:   model.SeverityWarning,
			Category:   CategoryOptionalDemographics,
			Message:    "Gender is not recorded",
			Suggestion: "Record the patient's gender",
		},
		{
			ID:         "email.recommended",
			Field:      "email",
			Kind:       RuleKindRequired,
			Severity:   model.SeverityWarning,
			Category:   CategoryOptionalDemographics,
			Message:    "Email address is not recorded",
			Suggestion: "Add an email address for appointment notifications",
		},
		{
			ID:         "email.format",
			Field:      "email",
			Kind:       RuleKindFormatPattern,
			Severity:   model.SeverityWarning,
			Category:   CategoryOptionalDemographics,
			Pattern:    EmailPattern,
			Message:    "Email address is not valid",
			Suggestion: "Correct the email address",
		},
		{
			ID:         "address.recommended",
			Field:      "address",
			Kind:       RuleKindRequired,
			Severity:   model.SeverityWarning,
			Category:   CategoryOptionalDemographics,
			Message:    "Home address is not recorded",
			Suggestion: "Add the home address; field teams need it for visit routing",
		},
		{
			ID:         "emergency_contact.recommended",
			Field:      "emergency_contact_name",
			Kind:       RuleKindRequired,
			Severity:   model.SeverityWarning,
			Category:   CategoryOptionalDemographics,
			Message:    "No emergency contact on file",
			Suggestion: "Add at least one emergency contact and mark it primary",
		},
		{
			ID:         "emergency_contact_phone.format",
			Field:      "emergency_contact_phone",
			Kind:       RuleKindFormatPattern,
			Severity:   model.SeverityWarning,
			Category:   CategoryOptionalDemographics,
			Pattern:    UAEPhonePattern,
			Message:    "Emergency contact phone is not in international UAE format",
			Suggestion: "Prefix the number with +971 and drop the leading zero",
		},
		{
			ID:         "policy_number.required_when_insured",
			Field:      "insurance_policy_number",
			Kind:       RuleKindConditionallyRequired,
			Severity:   model.SeverityWarning,
			Category:   CategoryInsuranceDocs,
			Predicate:  insuredNonSelfPay,
			Message:    "Policy number is missing for an insured patient",
			Suggestion: "Copy the policy number from the insurance card",
		},
		{
			ID:         "insurance_expiry.recommended_when_insured",
			Field:      "insurance_expiry_date",
			Kind:       RuleKindConditionallyRequired,
			Severity:   model.SeverityWarning,
			Category:   CategoryInsuranceDocs,
			Predicate:  insuredNonSelfPay,
			Message:    "Policy expiry date is missing for an insured patient",
			Suggestion: "Record the policy expiry date to catch lapses early",
		},
	}
}

// NewDefaultCatalog builds the built-in DOH catalog, skipping any rule
// ids listed in disabled.
func NewDefaultCatalog(disabled []string) (*Catalog, error) {
	skip := make(map[string]bool, len(disabled))
	for _, id := range disabled {
		skip[strings.TrimSpace(id)] = true
	}

	all := DefaultRules()
	rules := make([]Rule, 0, len(all))
	for _, r := range all {
		if skip[r.ID] {
			continue
		}
		rules = append(rules, r)
	}
	return NewCatalog(rules, FieldAccessors(), OptionalCategories())
}
