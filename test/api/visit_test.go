package api_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aafiyacare/homecare-api/internal/model"
)

func scheduleVisit(t *testing.T, patientID, clinicianID string, start, end time.Time) TestResponse {
	t.Helper()
	return makeRequest("POST", "/visits", map[string]interface{}{
		"patient_id":   patientID,
		"clinician_id": clinicianID,
		"discipline":   "nursing",
		"start_time":   start.Format(time.RFC3339),
		"end_time":     end.Format(time.RFC3339),
	}, authToken)
}

func TestVisitFlow(t *testing.T) {
	patientID := createTestPatient(t)
	clinicianID := createTestClinician(t)
	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)

	createResp := scheduleVisit(t, patientID, clinicianID, start, start.Add(time.Hour))
	require.True(t, createResp.IsSuccess(), createResp.Message)
	assert.Equal(t, 201, createResp.Code)

	visitID := createResp.GetString("id")
	require.NotEmpty(t, visitID)
	assert.Equal(t, "scheduled", createResp.GetString("status"))

	// Record visit notes
	updateResp := makeRequest("PUT", fmt.Sprintf("/visits/%s", visitID), map[string]interface{}{
		"notes": "Wound dressing changed, no signs of infection",
	}, authToken)
	require.True(t, updateResp.IsSuccess(), updateResp.Message)
	assert.Equal(t, "Wound dressing changed, no signs of infection", updateResp.GetString("notes"))

	// Complete the visit
	completeResp := makeRequest("POST", fmt.Sprintf("/visits/%s/complete", visitID), nil, authToken)
	require.True(t, completeResp.IsSuccess(), completeResp.Message)
	assert.Equal(t, "completed", completeResp.GetString("status"))

	// Completing twice is a conflict
	againResp := makeRequest("POST", fmt.Sprintf("/visits/%s/complete", visitID), nil, authToken)
	assert.Equal(t, 409, againResp.Code)
	assert.Contains(t, againResp.Message, "scheduled visits")

	// Status transitions are closed off once the visit is completed
	reviveResp := makeRequest("PUT", fmt.Sprintf("/visits/%s", visitID), map[string]interface{}{
		"status": "scheduled",
	}, authToken)
	assert.Equal(t, 409, reviveResp.Code)

	assert.Contains(t, stores.outbox.eventTypes(), model.EventTypeVisitScheduled)
}

func TestVisitClinicianConflicts(t *testing.T) {
	patientID := createTestPatient(t)
	clinicianID := createTestClinician(t)
	start := time.Now().Add(72 * time.Hour).Truncate(time.Hour)

	first := scheduleVisit(t, patientID, clinicianID, start, start.Add(time.Hour))
	require.True(t, first.IsSuccess(), first.Message)

	// Overlapping window for the same clinician
	overlap := scheduleVisit(t, patientID, clinicianID, start.Add(30*time.Minute), start.Add(90*time.Minute))
	assert.Equal(t, 409, overlap.Code)
	assert.Contains(t, overlap.Message, "time window")

	// Back to back visits are allowed
	adjacent := scheduleVisit(t, patientID, clinicianID, start.Add(time.Hour), start.Add(2*time.Hour))
	assert.True(t, adjacent.IsSuccess(), adjacent.Message)

	// A different clinician is free to take the same window
	otherClinicianID := createTestClinician(t)
	other := scheduleVisit(t, patientID, otherClinicianID, start, start.Add(time.Hour))
	assert.True(t, other.IsSuccess(), other.Message)

	// Cancelled visits release the window
	cancelResp := makeRequest("POST", fmt.Sprintf("/visits/%s/cancel", first.GetString("id")), map[string]interface{}{
		"reason": "patient admitted to hospital",
	}, authToken)
	require.True(t, cancelResp.IsSuccess(), cancelResp.Message)

	replacement := scheduleVisit(t, patientID, clinicianID, start, start.Add(time.Hour))
	assert.True(t, replacement.IsSuccess(), replacement.Message)
}

func TestVisitCancel(t *testing.T) {
	patientID := createTestPatient(t)
	clinicianID := createTestClinician(t)
	start := time.Now().Add(96 * time.Hour).Truncate(time.Hour)

	createResp := scheduleVisit(t, patientID, clinicianID, start, start.Add(time.Hour))
	require.True(t, createResp.IsSuccess())
	visitID := createResp.GetString("id")

	// Reason is mandatory
	resp := makeRequest("POST", fmt.Sprintf("/visits/%s/cancel", visitID), map[string]interface{}{}, authToken)
	assert.Equal(t, 400, resp.Code)

	resp = makeRequest("POST", fmt.Sprintf("/visits/%s/cancel", visitID), map[string]interface{}{
		"reason": "family requested reschedule",
	}, authToken)
	require.True(t, resp.IsSuccess(), resp.Message)

	getResp := makeRequest("GET", fmt.Sprintf("/visits/%s", visitID), nil, authToken)
	require.True(t, getResp.IsSuccess())
	assert.Equal(t, "cancelled", getResp.GetString("status"))
	assert.Equal(t, "family requested reschedule", getResp.GetString("cancel_reason"))

	// Cancelling twice is a conflict
	resp = makeRequest("POST", fmt.Sprintf("/visits/%s/cancel", visitID), map[string]interface{}{
		"reason": "again",
	}, authToken)
	assert.Equal(t, 409, resp.Code)
}

func TestVisitValidation(t *testing.T) {
	patientID := createTestPatient(t)
	clinicianID := createTestClinician(t)
	start := time.Now().Add(120 * time.Hour).Truncate(time.Hour)

	// End before start fails request binding
	resp := scheduleVisit(t, patientID, clinicianID, start, start.Add(-time.Hour))
	assert.Equal(t, 400, resp.Code)

	// Unknown patient
	resp = scheduleVisit(t, uuid.NewString(), clinicianID, start, start.Add(time.Hour))
	assert.Equal(t, 404, resp.Code)

	// Unknown clinician
	resp = scheduleVisit(t, patientID, uuid.NewString(), start, start.Add(time.Hour))
	assert.Equal(t, 404, resp.Code)
}

func TestVisitEpisodeOwnership(t *testing.T) {
	ownerID := createTestPatient(t)
	otherID := createTestPatient(t)
	clinicianID := createTestClinician(t)

	episodeResp := makeRequest("POST", fmt.Sprintf("/patients/%s/episodes", ownerID), map[string]interface{}{
		"referral_source":   "SEHA discharge",
		"diagnosis_summary": "Stroke rehabilitation",
	}, authToken)
	require.True(t, episodeResp.IsSuccess())
	episodeID := episodeResp.GetString("id")

	start := time.Now().Add(144 * time.Hour).Truncate(time.Hour)
	resp := makeRequest("POST", "/visits", map[string]interface{}{
		"patient_id":   otherID,
		"clinician_id": clinicianID,
		"episode_id":   episodeID,
		"discipline":   "physiotherapy",
		"start_time":   start.Format(time.RFC3339),
		"end_time":     start.Add(time.Hour).Format(time.RFC3339),
	}, authToken)
	assert.Equal(t, 400, resp.Code)
	assert.Contains(t, resp.Message, "does not belong")
}

func TestVisitListFilters(t *testing.T) {
	patientID := createTestPatient(t)
	clinicianID := createTestClinician(t)
	start := time.Now().Add(168 * time.Hour).Truncate(time.Hour)

	first := scheduleVisit(t, patientID, clinicianID, start, start.Add(time.Hour))
	require.True(t, first.IsSuccess())
	second := scheduleVisit(t, patientID, clinicianID, start.Add(2*time.Hour), start.Add(3*time.Hour))
	require.True(t, second.IsSuccess())

	completeResp := makeRequest("POST", fmt.Sprintf("/visits/%s/complete", first.GetString("id")), nil, authToken)
	require.True(t, completeResp.IsSuccess())

	listResp := makeRequest("GET", fmt.Sprintf("/visits?clinician_id=%s&status=scheduled", clinicianID), nil, authToken)
	require.True(t, listResp.IsSuccess())

	var visits []*model.TherapyVisit
	require.NoError(t, json.Unmarshal([]byte(listResp.RawData), &visits))
	require.Len(t, visits, 1)
	assert.Equal(t, second.GetString("id"), visits[0].ID.String())
}
