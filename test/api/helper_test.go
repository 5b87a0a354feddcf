package api_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

var nameSeq atomic.Int64

// uniqueName generates collision-free names for test records.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, nameSeq.Add(1))
}

// uniqueEmiratesID generates a distinct, format-valid Emirates ID.
func uniqueEmiratesID() string {
	return fmt.Sprintf("784-1985-%07d-1", nameSeq.Add(1))
}

// validPatientPayload is a record that passes every error-severity rule:
// full identity, UAE phone, unexpired private insurance and a justified
// homebound qualification.
func validPatientPayload() map[string]interface{} {
	expiry := time.Now().AddDate(1, 0, 0).UTC().Format(time.RFC3339)
	return map[string]interface{}{
		"name_en":                 uniqueName("Fatima Al Mansouri"),
		"name_ar":                 "فاطمة المنصوري",
		"emirates_id":             uniqueEmiratesID(),
		"date_of_birth":           "1984-03-02T00:00:00Z",
		"gender":                  "female",
		"nationality":             "Emirati",
		"phone":                   "+971501234567",
		"email":                   "fatima@example.ae",
		"address":                 "Villa 12, Al Wasl Road, Dubai",
		"insurance_provider":      "Daman",
		"insurance_type":          "private",
		"insurance_policy_number": "POL-99812",
		"insurance_expiry_date":   expiry,
		"homebound_status":        "qualified",
		"homebound_justification": "Post-surgical recovery, cannot leave home without assistance",
	}
}

// createTestPatient registers a fully compliant patient and returns its id.
func createTestPatient(t *testing.T) string {
	t.Helper()
	resp := makeRequest("POST", "/patients", validPatientPayload(), authToken)
	if !resp.IsSuccess() {
		t.Fatalf("failed to create test patient: %s", resp.Message)
	}
	return resp.GetString("id")
}

// createTestClinician registers a clinician and returns its id.
func createTestClinician(t *testing.T) string {
	t.Helper()
	resp := makeRequest("POST", "/clinicians", map[string]interface{}{
		"name":           uniqueName("Noura Hassan"),
		"email":          fmt.Sprintf("clinician_%d@aafiyacare.test", nameSeq.Add(1)),
		"phone":          "+971502223344",
		"discipline":     "nursing",
		"license_number": fmt.Sprintf("DOH-N-%05d", nameSeq.Add(1)),
	}, authToken)
	if !resp.IsSuccess() {
		t.Fatalf("failed to create test clinician: %s", resp.Message)
	}
	return resp.GetString("id")
}
