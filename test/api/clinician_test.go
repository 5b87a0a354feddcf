package api_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClinicianFlow(t *testing.T) {
	email := fmt.Sprintf("physio_%d@aafiyacare.test", nameSeq.Add(1))
	createResp := makeRequest("POST", "/clinicians", map[string]interface{}{
		"name":           uniqueName("Physiotherapist"),
		"email":          email,
		"phone":          "+971504445566",
		"discipline":     "physiotherapy",
		"license_number": fmt.Sprintf("DOH-PT-%06d", nameSeq.Add(1)),
	}, authToken)
	require.True(t, createResp.IsSuccess(), createResp.Message)
	assert.Equal(t, 201, createResp.Code)

	clinicianID := createResp.GetString("id")
	require.NotEmpty(t, clinicianID)
	assert.Equal(t, "active", createResp.GetString("status"))

	// Get clinician
	getResp := makeRequest("GET", fmt.Sprintf("/clinicians/%s", clinicianID), nil, authToken)
	require.True(t, getResp.IsSuccess())
	assert.Equal(t, createResp.Data["name"], getResp.Data["name"])
	assert.Equal(t, "physiotherapy", getResp.GetString("discipline"))

	// Update name and set the clinician on leave of absence
	newName := uniqueName("Senior Physiotherapist")
	updateResp := makeRequest("PUT", fmt.Sprintf("/clinicians/%s", clinicianID), map[string]interface{}{
		"name":   newName,
		"status": "inactive",
	}, authToken)
	require.True(t, updateResp.IsSuccess(), updateResp.Message)

	// Verify update
	verifyResp := makeRequest("GET", fmt.Sprintf("/clinicians/%s", clinicianID), nil, authToken)
	require.True(t, verifyResp.IsSuccess())
	assert.Equal(t, newName, verifyResp.GetString("name"))
	assert.Equal(t, "inactive", verifyResp.GetString("status"))

	// List clinicians
	listResp := makeRequest("GET", "/clinicians?page_size=100", nil, authToken)
	require.True(t, listResp.IsSuccess())
	items, ok := listResp.Data["items"].([]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, items)
	assert.GreaterOrEqual(t, listResp.Data["total"].(float64), float64(1))

	// Delete and verify the record is gone
	deleteResp := makeRequest("DELETE", fmt.Sprintf("/clinicians/%s", clinicianID), nil, authToken)
	require.True(t, deleteResp.IsSuccess())

	goneResp := makeRequest("GET", fmt.Sprintf("/clinicians/%s", clinicianID), nil, authToken)
	assert.Equal(t, 404, goneResp.Code)
}

func TestClinicianValidation(t *testing.T) {
	// Discipline outside the licensed set
	resp := makeRequest("POST", "/clinicians", map[string]interface{}{
		"name":           uniqueName("Dietician"),
		"email":          fmt.Sprintf("diet_%d@aafiyacare.test", nameSeq.Add(1)),
		"discipline":     "dietetics",
		"license_number": "DOH-D-000001",
	}, authToken)
	assert.Equal(t, 400, resp.Code)

	// License number is mandatory
	resp = makeRequest("POST", "/clinicians", map[string]interface{}{
		"name":       uniqueName("Nurse"),
		"email":      fmt.Sprintf("nurse_%d@aafiyacare.test", nameSeq.Add(1)),
		"discipline": "nursing",
	}, authToken)
	assert.Equal(t, 400, resp.Code)
}
