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

func TestConsentFlow(t *testing.T) {
	patientID := createTestPatient(t)

	createResp := makeRequest("POST", fmt.Sprintf("/patients/%s/consents", patientID), map[string]interface{}{
		"consent_type": "treatment",
		"granted":      true,
		"granted_by":   "patient",
		"notes":        "verbal consent witnessed by daughter",
	}, authToken)
	require.True(t, createResp.IsSuccess(), createResp.Message)
	assert.Equal(t, 201, createResp.Code)

	consentID := createResp.GetString("id")
	require.NotEmpty(t, consentID)
	assert.True(t, createResp.GetBool("granted"))
	assert.NotEmpty(t, createResp.GetString("granted_at"))
	assert.Empty(t, createResp.GetString("revoked_at"))

	// The recording staff member comes from the token, not the body
	recordedBy, err := uuid.Parse(createResp.GetString("recorded_by"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, recordedBy)

	// A second consent of a different type
	secondResp := makeRequest("POST", fmt.Sprintf("/patients/%s/consents", patientID), map[string]interface{}{
		"consent_type": "data_sharing",
		"granted":      true,
		"granted_by":   "legal guardian",
	}, authToken)
	require.True(t, secondResp.IsSuccess())

	listResp := makeRequest("GET", fmt.Sprintf("/patients/%s/consents", patientID), nil, authToken)
	require.True(t, listResp.IsSuccess())

	var consents []*model.Consent
	require.NoError(t, json.Unmarshal([]byte(listResp.RawData), &consents))
	assert.Len(t, consents, 2)

	// Revoke stamps the original row rather than deleting it
	revokeResp := makeRequest("POST", fmt.Sprintf("/patients/%s/consents/%s/revoke", patientID, consentID), nil, authToken)
	require.True(t, revokeResp.IsSuccess(), revokeResp.Message)
	assert.NotEmpty(t, revokeResp.GetString("revoked_at"))
	assert.Equal(t, "treatment", revokeResp.GetString("consent_type"))

	// Revoking twice is a conflict
	againResp := makeRequest("POST", fmt.Sprintf("/patients/%s/consents/%s/revoke", patientID, consentID), nil, authToken)
	assert.Equal(t, 409, againResp.Code)
	assert.Contains(t, againResp.Message, "already revoked")

	assert.Contains(t, stores.outbox.eventTypes(), model.EventTypeConsentRecorded)
}

func TestConsentValidation(t *testing.T) {
	patientID := createTestPatient(t)

	// Unsupported consent type
	resp := makeRequest("POST", fmt.Sprintf("/patients/%s/consents", patientID), map[string]interface{}{
		"consent_type": "telepathy",
		"granted":      true,
		"granted_by":   "patient",
	}, authToken)
	assert.Equal(t, 400, resp.Code)

	// granted_by is mandatory
	resp = makeRequest("POST", fmt.Sprintf("/patients/%s/consents", patientID), map[string]interface{}{
		"consent_type": "treatment",
		"granted":      true,
	}, authToken)
	assert.Equal(t, 400, resp.Code)

	// Unknown patient
	resp = makeRequest("POST", fmt.Sprintf("/patients/%s/consents", uuid.NewString()), map[string]interface{}{
		"consent_type": "treatment",
		"granted":      true,
		"granted_by":   "patient",
	}, authToken)
	assert.Equal(t, 404, resp.Code)
}

func TestConsentBelongsToPatient(t *testing.T) {
	ownerID := createTestPatient(t)
	otherID := createTestPatient(t)

	createResp := makeRequest("POST", fmt.Sprintf("/patients/%s/consents", ownerID), map[string]interface{}{
		"consent_type": "home_access",
		"granted":      true,
		"granted_by":   "patient",
	}, authToken)
	require.True(t, createResp.IsSuccess())
	consentID := createResp.GetString("id")

	resp := makeRequest("POST", fmt.Sprintf("/patients/%s/consents/%s/revoke", otherID, consentID), nil, authToken)
	assert.Equal(t, 404, resp.Code)
}
