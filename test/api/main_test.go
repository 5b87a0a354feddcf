package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	authHandler "github.com/aafiyacare/homecare-api/internal/handler/auth"
	clinicianHandler "github.com/aafiyacare/homecare-api/internal/handler/clinician"
	consentHandler "github.com/aafiyacare/homecare-api/internal/handler/consent"
	episodeHandler "github.com/aafiyacare/homecare-api/internal/handler/episode"
	healthHandler "github.com/aafiyacare/homecare-api/internal/handler/health"
	patientHandler "github.com/aafiyacare/homecare-api/internal/handler/patient"
	reportHandler "github.com/aafiyacare/homecare-api/internal/handler/report"
	visitHandler "github.com/aafiyacare/homecare-api/internal/handler/visit"
	"github.com/aafiyacare/homecare-api/internal/middleware"
	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/internal/router"
	authService "github.com/aafiyacare/homecare-api/internal/service/auth"
	clinicianService "github.com/aafiyacare/homecare-api/internal/service/clinician"
	consentService "github.com/aafiyacare/homecare-api/internal/service/consent"
	episodeService "github.com/aafiyacare/homecare-api/internal/service/episode"
	eventService "github.com/aafiyacare/homecare-api/internal/service/event"
	patientService "github.com/aafiyacare/homecare-api/internal/service/patient"
	reportService "github.com/aafiyacare/homecare-api/internal/service/report"
	visitService "github.com/aafiyacare/homecare-api/internal/service/visit"
	"github.com/aafiyacare/homecare-api/internal/validation"
	"github.com/aafiyacare/homecare-api/pkg/auth"
	"github.com/aafiyacare/homecare-api/pkg/logger"
	"github.com/aafiyacare/homecare-api/pkg/metrics"
	"github.com/aafiyacare/homecare-api/pkg/security"
	pkgvalidator "github.com/aafiyacare/homecare-api/pkg/validator"
)

// The suite runs the real router, middleware and services over in-memory
// stores; only postgres, redis and SMTP are faked out.

const (
	adminEmail    = "admin@aafiyacare.test"
	adminPassword = "admin-secret-1"

	reportRecipient = "compliance@aafiyacare.test"
)

var (
	baseURL   string
	authToken string
	stores    *memStores
)

// APIResponse is the wire envelope every endpoint answers with.
type APIResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// TestResponse wraps the API response for assertions.
type TestResponse struct {
	Code    int
	Status  string
	Message string
	Data    map[string]interface{}
	RawData string
}

func (r TestResponse) IsSuccess() bool {
	return r.Status == "success"
}

func (r TestResponse) GetString(key string) string {
	if r.Data == nil {
		return ""
	}
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

func (r TestResponse) GetBool(key string) bool {
	if r.Data == nil {
		return false
	}
	if v, ok := r.Data[key].(bool); ok {
		return v
	}
	return false
}

func TestMain(m *testing.M) {
	if err := pkgvalidator.RegisterCustomValidators(); err != nil {
		fmt.Printf("failed to register validators: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Service: "aafiya-test", Console: true})

	catalog, err := validation.NewDefaultCatalog(nil)
	if err != nil {
		fmt.Printf("failed to build rule catalog: %v\n", err)
		os.Exit(1)
	}
	v := validation.NewValidator(catalog)

	encryptor, err := security.NewAESEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		fmt.Printf("failed to build encryptor: %v\n", err)
		os.Exit(1)
	}

	jwtSvc := auth.NewJWTService(auth.Config{Secret: "test-signing-secret", Issuer: "aafiya-test"})
	apiMetrics := metrics.NewMetrics("aafiya", "apitest")

	stores = newMemStores()
	events := eventService.NewService(stores.outbox)

	patientSvc := patientService.NewService(stores.patients, stores.contacts, v, events, apiMetrics, log,
		patientService.Options{CacheTTL: time.Minute, BatchConcurrency: 4})
	episodeSvc := episodeService.NewService(stores.episodes, stores.patients, encryptor, events, log)
	visitSvc := visitService.NewService(stores.visits, stores.patients, stores.clinicians, stores.episodes, events, log)
	clinicianSvc := clinicianService.NewService(stores.clinicians)
	consentSvc := consentService.NewService(stores.consents, stores.patients, events, log)
	authSvc := authService.NewService(stores.users, jwtSvc, log)
	reportSvc := reportService.NewService(stores.reports, patientSvc, stores.mailer, events, []string{reportRecipient}, log)

	r := router.New(log,
		middleware.NewAuthMiddleware(jwtSvc),
		authHandler.NewHandler(authSvc),
		healthHandler.NewHandler(nil),
		[]router.Handler{
			patientHandler.NewHandler(patientSvc),
			episodeHandler.NewHandler(episodeSvc),
			visitHandler.NewHandler(visitSvc),
			clinicianHandler.NewHandler(clinicianSvc),
			consentHandler.NewHandler(consentSvc),
			reportHandler.NewHandler(reportSvc),
		},
		router.Config{MetricsPath: "/metrics"},
	)

	server := httptest.NewServer(r.Engine())
	baseURL = server.URL + "/api/v1"

	if _, err := authSvc.Register(context.Background(), &model.CreateUserRequest{
		Email:    adminEmail,
		Name:     "Test Admin",
		Password: adminPassword,
		Role:     model.UserRoleAdmin,
	}); err != nil {
		fmt.Printf("failed to seed admin user: %v\n", err)
		server.Close()
		os.Exit(1)
	}
	setupAuth()

	code := m.Run()

	server.Close()
	os.Exit(code)
}

func setupAuth() {
	loginResp := makeRequest("POST", "/auth/login", map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	}, "")
	if !loginResp.IsSuccess() {
		fmt.Printf("failed to login: %s\n", loginResp.Message)
		os.Exit(1)
	}

	authToken = loginResp.GetString("access_token")
	if authToken == "" {
		fmt.Println("failed to get auth token")
		os.Exit(1)
	}
}

func makeRequest(method, path string, body interface{}, token string) TestResponse {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return TestResponse{Status: "error", Message: err.Error()}
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return TestResponse{Status: "error", Message: err.Error()}
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := http.DefaultClient.Do(req)
	if err != nil {
		return TestResponse{Status: "error", Message: err.Error()}
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return TestResponse{Code: response.StatusCode, Status: "error", Message: err.Error()}
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return TestResponse{
			Code:    response.StatusCode,
			Status:  "error",
			Message: fmt.Sprintf("failed to parse response: %v\nraw: %s", err, string(respBody)),
		}
	}

	testResp := TestResponse{
		Code:    response.StatusCode,
		Status:  apiResp.Status,
		Message: apiResp.Message,
		RawData: string(apiResp.Data),
	}
	if len(apiResp.Data) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(apiResp.Data, &data); err == nil {
			testResp.Data = data
		}
	}
	return testResp
}
