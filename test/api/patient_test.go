package api_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aafiyacare/homecare-api/internal/model"
)

func TestPatientFlow(t *testing.T) {
	payload := validPatientPayload()
	createResp := makeRequest("POST", "/patients", payload, authToken)
	require.True(t, createResp.IsSuccess(), createResp.Message)
	assert.Equal(t, 201, createResp.Code)

	patientID := createResp.GetString("id")
	require.NotEmpty(t, patientID)
	assert.Equal(t, "active", createResp.GetString("status"))

	getResp := makeRequest("GET", fmt.Sprintf("/patients/%s", patientID), nil, authToken)
	require.True(t, getResp.IsSuccess())
	assert.Equal(t, payload["name_en"], getResp.Data["name_en"])
	assert.Equal(t, payload["emirates_id"], getResp.Data["emirates_id"])
	assert.Equal(t, "Emirati", getResp.GetString("nationality"))

	updateResp := makeRequest("PUT", fmt.Sprintf("/patients/%s", patientID), map[string]interface{}{
		"phone": "+971509998877",
		"notes": "prefers morning visits",
	}, authToken)
	require.True(t, updateResp.IsSuccess(), updateResp.Message)
	assert.Equal(t, "+971509998877", updateResp.GetString("phone"))
	assert.Equal(t, payload["name_en"], updateResp.Data["name_en"])

	listResp := makeRequest("GET", "/patients?page_size=100", nil, authToken)
	require.True(t, listResp.IsSuccess())
	assert.GreaterOrEqual(t, listResp.Data["total"].(float64), float64(1))

	deleteResp := makeRequest("DELETE", fmt.Sprintf("/patients/%s", patientID), nil, authToken)
	require.True(t, deleteResp.IsSuccess())

	goneResp := makeRequest("GET", fmt.Sprintf("/patients/%s", patientID), nil, authToken)
	assert.Equal(t, 404, goneResp.Code)

	assert.Contains(t, stores.outbox.eventTypes(), model.EventTypePatientCreated)
	assert.Contains(t, stores.outbox.eventTypes(), model.EventTypePatientDeleted)
}

func TestPatientDuplicateEmiratesIDRejected(t *testing.T) {
	payload := validPatientPayload()
	first := makeRequest("POST", "/patients", payload, authToken)
	require.True(t, first.IsSuccess(), first.Message)

	dup := validPatientPayload()
	dup["emirates_id"] = payload["emirates_id"]
	second := makeRequest("POST", "/patients", dup, authToken)
	assert.Equal(t, 409, second.Code)
	assert.Contains(t, second.Message, "emirates id")
}

func TestPatientMalformedEmiratesIDRejected(t *testing.T) {
	payload := validPatientPayload()
	payload["emirates_id"] = "784-1985-123-9"
	resp := makeRequest("POST", "/patients", payload, authToken)
	assert.Equal(t, 400, resp.Code)
}

func TestPatientSearchFilters(t *testing.T) {
	payload := validPatientPayload()
	payload["nationality"] = "Jordanian"
	created := makeRequest("POST", "/patients", payload, authToken)
	require.True(t, created.IsSuccess())

	listResp := makeRequest("GET", "/patients?nationality=Jordanian", nil, authToken)
	require.True(t, listResp.IsSuccess())

	items, ok := listResp.Data["items"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, items)
	for _, item := range items {
		row := item.(map[string]interface{})
		assert.Equal(t, "Jordanian", row["nationality"])
	}
}

func TestPatientContacts(t *testing.T) {
	patientID := createTestPatient(t)

	first := makeRequest("POST", fmt.Sprintf("/patients/%s/contacts", patientID), map[string]interface{}{
		"name":         "Omar Al Mansouri",
		"relationship": "spouse",
		"phone":        "+971504445566",
		"is_primary":   true,
	}, authToken)
	require.True(t, first.IsSuccess(), first.Message)
	assert.Equal(t, 201, first.Code)
	firstID := first.GetString("id")

	// Promoting a second contact demotes the first.
	second := makeRequest("POST", fmt.Sprintf("/patients/%s/contacts", patientID), map[string]interface{}{
		"name":         "Laila Al Mansouri",
		"relationship": "daughter",
		"phone":        "+971507778899",
		"is_primary":   true,
	}, authToken)
	require.True(t, second.IsSuccess(), second.Message)

	listResp := makeRequest("GET", fmt.Sprintf("/patients/%s/contacts", patientID), nil, authToken)
	require.True(t, listResp.IsSuccess())

	var contacts []model.EmergencyContact
	require.NoError(t, json.Unmarshal([]byte(listResp.RawData), &contacts))
	require.Len(t, contacts, 2)

	primaries := 0
	for _, c := range contacts {
		if c.IsPrimary {
			primaries++
			assert.Equal(t, "Laila Al Mansouri", c.Name)
		}
	}
	assert.Equal(t, 1, primaries)

	updateResp := makeRequest("PUT", fmt.Sprintf("/patients/%s/contacts/%s", patientID, firstID), map[string]interface{}{
		"phone": "+971501112233",
	}, authToken)
	require.True(t, updateResp.IsSuccess(), updateResp.Message)
	assert.Equal(t, "+971501112233", updateResp.GetString("phone"))

	deleteResp := makeRequest("DELETE", fmt.Sprintf("/patients/%s/contacts/%s", patientID, firstID), nil, authToken)
	require.True(t, deleteResp.IsSuccess())

	// A contact reached through the wrong patient is not found.
	otherPatient := createTestPatient(t)
	crossResp := makeRequest("DELETE", fmt.Sprintf("/patients/%s/contacts/%s", otherPatient, second.GetString("id")), nil, authToken)
	assert.Equal(t, 404, crossResp.Code)
}

func TestPatientValidateCompliantRecord(t *testing.T) {
	patientID := createTestPatient(t)

	resp := makeRequest("POST", fmt.Sprintf("/patients/%s/validate", patientID), nil, authToken)
	require.True(t, resp.IsSuccess(), resp.Message)

	var result model.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(resp.RawData), &result))

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 100, result.Completeness.Percentage)
	require.NotNil(t, result.LastValidated)

	for _, category := range []string{
		"identity_verification", "contact_completeness",
		"insurance_coverage", "homebound_compliance",
	} {
		assert.True(t, result.Compliance[category], category)
	}

	// No emergency contact on file yet, so the optional-demographics
	// rules leave a warning but not an error.
	assert.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Completeness.OptionalFields, "emergency_contact_name")

	getResp := makeRequest("GET", fmt.Sprintf("/patients/%s", patientID), nil, authToken)
	require.True(t, getResp.IsSuccess())
	assert.NotEmpty(t, getResp.GetString("last_validated_at"))
}

func TestPatientValidateIncompleteRecord(t *testing.T) {
	created := makeRequest("POST", "/patients", map[string]interface{}{
		"name_en": uniqueName("Incomplete Record"),
	}, authToken)
	require.True(t, created.IsSuccess(), created.Message)
	patientID := created.GetString("id")

	resp := makeRequest("POST", fmt.Sprintf("/patients/%s/validate", patientID), nil, authToken)
	require.True(t, resp.IsSuccess(), resp.Message)

	var result model.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(resp.RawData), &result))

	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.Errors)
	assert.Less(t, result.Completeness.Percentage, 100)
	assert.Contains(t, result.Completeness.MissingFields, "emirates_id")
	assert.False(t, result.Compliance["identity_verification"])

	for _, e := range result.Errors {
		assert.False(t, e.Passed)
		assert.Equal(t, model.SeverityError, e.Severity)
		assert.NotEmpty(t, e.Suggestion)
	}
}

func TestPatientValidatePrimaryContactCountsTowardScore(t *testing.T) {
	patientID := createTestPatient(t)

	addResp := makeRequest("POST", fmt.Sprintf("/patients/%s/contacts", patientID), map[string]interface{}{
		"name":         "Hamad Al Suwaidi",
		"relationship": "son",
		"phone":        "+971506667788",
		"is_primary":   true,
	}, authToken)
	require.True(t, addResp.IsSuccess(), addResp.Message)

	resp := makeRequest("POST", fmt.Sprintf("/patients/%s/validate", patientID), nil, authToken)
	require.True(t, resp.IsSuccess())

	var result model.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(resp.RawData), &result))
	assert.True(t, result.IsValid)
	assert.NotContains(t, result.Completeness.OptionalFields, "emergency_contact_name")
}

func TestPatientValidateNotFound(t *testing.T) {
	resp := makeRequest("POST", fmt.Sprintf("/patients/%s/validate", uuid.NewString()), nil, authToken)
	assert.Equal(t, 404, resp.Code)
}

func TestValidateBatch(t *testing.T) {
	compliantID := createTestPatient(t)

	incomplete := makeRequest("POST", "/patients", map[string]interface{}{
		"name_en": uniqueName("Batch Incomplete"),
	}, authToken)
	require.True(t, incomplete.IsSuccess())
	incompleteID := incomplete.GetString("id")

	missingID := uuid.NewString()

	resp := makeRequest("POST", "/patients/validate-batch", map[string]interface{}{
		"patient_ids": []string{compliantID, incompleteID, missingID},
	}, authToken)
	require.True(t, resp.IsSuccess(), resp.Message)

	var result model.BatchValidationResult
	require.NoError(t, json.Unmarshal([]byte(resp.RawData), &result))

	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.Valid)
	assert.Equal(t, 1, result.Summary.Invalid)
	assert.Equal(t, 1, result.Summary.InfrastructureFailed)

	require.Contains(t, result.Results, compliantID)
	require.NotNil(t, result.Results[compliantID].Result)
	assert.True(t, result.Results[compliantID].Result.IsValid)

	require.Contains(t, result.Results, incompleteID)
	require.NotNil(t, result.Results[incompleteID].Result)
	assert.False(t, result.Results[incompleteID].Result.IsValid)

	require.Contains(t, result.Results, missingID)
	require.NotNil(t, result.Results[missingID].Failure)
	assert.Contains(t, result.Results[missingID].Failure.Reason, "not found")

	// Rates are over the two validated records only.
	assert.InDelta(t, 0.5, result.Summary.ComplianceRates["identity_verification"], 0.01)
}

func TestValidateBatchRejectsEmptyList(t *testing.T) {
	resp := makeRequest("POST", "/patients/validate-batch", map[string]interface{}{
		"patient_ids": []string{},
	}, authToken)
	assert.Equal(t, 400, resp.Code)
}
