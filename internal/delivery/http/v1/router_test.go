package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"job-tracker-backend/config"
	v1 "job-tracker-backend/internal/delivery/http/v1"
	"job-tracker-backend/internal/domain"
	sqliterepo "job-tracker-backend/internal/repository/sqlite"
	"job-tracker-backend/internal/usecase"
	"job-tracker-backend/pkg/database"
	"job-tracker-backend/pkg/security"
	"job-tracker-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	router *gin.Engine
	creds  domain.CredentialRepository
	token  string
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AuthMode:                 config.AuthModePerUser,
		RequireAuth:              false,
		AllowedOrigins:           []string{"http://localhost:3000"},
		RateLimitWindowSeconds:   60,
		RateLimitAuthThreshold:   100,
		RateLimitGlobalThreshold: 1000,
	}
	if mutate != nil {
		mutate(cfg)
	}

	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	schema := sqliterepo.NewSchemaManager(db, cfg.SharedSecret())
	require.NoError(t, schema.EnsureSchema(context.Background()))

	validate := validator.New()
	validation.RegisterValidators(validate)

	tokens, err := security.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	creds := sqliterepo.NewCredentialRepository(db)
	authUC := usecase.NewAuthUsecase(creds, security.NewPasswordHasher(bcrypt.MinCost), tokens, security.NopSecurityLogger(), cfg.SharedSecret())

	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:   authUC,
		JobUC:    usecase.NewJobUsecase(sqliterepo.NewJobRepository(db), validate),
		HealthUC: usecase.NewHealthUsecase(schema, nil),
		Tokens:   tokens,
		SecLog:   security.NopSecurityLogger(),
		Config:   cfg,
	})
	return &testServer{router: router, creds: creds}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func sampleJob() map[string]interface{} {
	return map[string]interface{}{
		"title":             "Software Engineer",
		"companyName":       "Google",
		"applicationDate":   "2025-01-01",
		"applicationStatus": "Submitted",
		"interviewDate":     "2025-01-10",
		"skills":            []string{"JavaScript", "React", "Node.js"},
		"contact_name":      "George Harrison",
		"contact_email":     "GeorgeHarrison@gmail.com",
		"contact_phone":     "555-1234-6666",
	}
}

func decodeJob(t *testing.T, w *httptest.ResponseRecorder) domain.JobApplication {
	t.Helper()
	var job domain.JobApplication
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	return job
}

func listJobs(t *testing.T, s *testServer) []domain.JobApplication {
	t.Helper()
	w := s.do(t, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var jobs []domain.JobApplication
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jobs))
	return jobs
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestCreateThenList(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/jobs", sampleJob())
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeJob(t, w)
	assert.NotZero(t, created.ID)

	jobs := listJobs(t, s)
	require.Len(t, jobs, 1)
	got := jobs[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Software Engineer", got.Title)
	assert.Equal(t, "Google", got.CompanyName)
	assert.Equal(t, "2025-01-01", got.ApplicationDate)
	assert.Equal(t, "Submitted", got.ApplicationStatus)
	require.NotNil(t, got.InterviewDate)
	assert.Equal(t, "2025-01-10", *got.InterviewDate)
	assert.Equal(t, []string{"JavaScript", "React", "Node.js"}, got.Skills)
	assert.Equal(t, "555-1234-6666", got.ContactPhone)

	w = s.do(t, http.MethodGet, "/api/jobs/"+jsonID(created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decodeJob(t, w))
}

func TestEmptyListIsArray(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestMissingFieldsDoNotWrite(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/jobs", sampleJob()).Code)

	for _, field := range []string{"title", "companyName", "applicationDate", "applicationStatus"} {
		body := sampleJob()
		delete(body, field)

		w := s.do(t, http.MethodPost, "/api/jobs", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, field)
		assert.Equal(t, usecase.MsgRequiredFields, errorMessage(t, w), field)
	}

	blank := sampleJob()
	blank["title"] = "   "
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/jobs", blank).Code)

	// an empty body is an empty object
	for _, method := range []string{http.MethodPost, http.MethodPut} {
		path := "/api/jobs"
		if method == http.MethodPut {
			path += "/1"
		}
		w := s.do(t, method, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, method)
		assert.Equal(t, usecase.MsgRequiredFields, errorMessage(t, w), method)

		w = s.do(t, method, path, map[string]string{})
		assert.Equal(t, usecase.MsgRequiredFields, errorMessage(t, w), method)
	}

	assert.Len(t, listJobs(t, s), 1)
}

func TestOptionalFieldsNormalized(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/jobs", map[string]interface{}{
		"title":             "Data Scientist",
		"companyName":       "Meta",
		"applicationDate":   "2025-01-03",
		"applicationStatus": "In Review",
		"interviewDate":     "",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"skills":[]`)
	assert.Contains(t, w.Body.String(), `"interviewDate":null`)

	jobs := listJobs(t, s)
	require.Len(t, jobs, 1)
	assert.Equal(t, []string{}, jobs[0].Skills)
	assert.Nil(t, jobs[0].InterviewDate)
	assert.Equal(t, "", jobs[0].ContactName)
}

func TestSkillsRoundTrip(t *testing.T) {
	s := newTestServer(t, nil)

	skills := []string{"Go", "a,b", `quote"d`, "Go", "日本語"}
	body := sampleJob()
	body["skills"] = skills

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/jobs", body).Code)
	jobs := listJobs(t, s)
	require.Len(t, jobs, 1)
	assert.Equal(t, skills, jobs[0].Skills)
}

func TestUpdateAndDelete(t *testing.T) {
	s := newTestServer(t, nil)

	created := decodeJob(t, s.do(t, http.MethodPost, "/api/jobs", sampleJob()))
	path := "/api/jobs/" + jsonID(created.ID)

	body := sampleJob()
	body["applicationStatus"] = "Offer Received"
	body["skills"] = []string{"Go"}
	body["id"] = 999

	w := s.do(t, http.MethodPut, path, body)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeJob(t, w)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Offer Received", updated.ApplicationStatus)

	jobs := listJobs(t, s)
	require.Len(t, jobs, 1)
	assert.Equal(t, []string{"Go"}, jobs[0].Skills)

	w = s.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Job deleted successfully"}`, w.Body.String())
	assert.Empty(t, listJobs(t, s))
}

func TestMissingIDs(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/jobs", sampleJob()).Code)

	w := s.do(t, http.MethodPut, "/api/jobs/4242", sampleJob())
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodDelete, "/api/jobs/4242", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodGet, "/api/jobs/4242", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/jobs/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid ID format", errorMessage(t, w))

	assert.Len(t, listJobs(t, s), 1)
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/jobs", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestExport(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/jobs", sampleJob()).Code)

	w := s.do(t, http.MethodGet, "/api/export/jobs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	// XLSX is a zip archive
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, w.Body.String())
}

func TestPasswordFlowOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/register", map[string]string{"email": "a@b.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, w.Code)

	cred, err := s.creds.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", cred.PasswordHash)

	w = s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@b.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, w.Code)
	var login v1.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.True(t, login.Success)
	assert.NotEmpty(t, login.Token)

	w = s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@b.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Equal(t, usecase.MsgInvalidCredentials, errorMessage(t, w))

	w = s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "ghost@b.com", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, usecase.MsgInvalidCredentials, errorMessage(t, w))

	w = s.do(t, http.MethodPut, "/api/password", map[string]string{"email": "a@b.com", "currentPassword": "nope", "password": "pw2"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, "/api/password", map[string]string{"email": "a@b.com", "currentPassword": "pw1", "password": "pw2"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "token")

	w = s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@b.com", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@b.com", "password": "pw2"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/verify-password", map[string]string{"email": "a@b.com", "password": "pw2"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	w = s.do(t, http.MethodPost, "/api/verify-password", map[string]string{"email": "a@b.com", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterTrimsEmail(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/register", map[string]string{"email": " C@D.com ", "password": "pw1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "c@d.com", "password": "pw1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPasswordChangeInputErrors(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/register", map[string]string{"email": "a@b.com", "password": "pw1"}).Code)

	w := s.do(t, http.MethodPut, "/api/password", map[string]string{"email": "a@b.com", "currentPassword": "pw1", "password": strings.Repeat("x", 80)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, usecase.MsgPasswordTooLong, errorMessage(t, w))
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = s.do(t, http.MethodPut, "/api/password", map[string]string{"email": "a@b.com", "password": "pw2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Current password is required", errorMessage(t, w))

	// the old password still works
	w = s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@b.com", "password": "pw1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterFailures(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/register", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Password is required", errorMessage(t, w))

	w = s.do(t, http.MethodPost, "/api/register", map[string]string{"email": "not-an-email", "password": "pw1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/register", map[string]string{"email": "a@b.com", "password": "pw1"}).Code)
	w = s.do(t, http.MethodPost, "/api/register", map[string]string{"email": "a@b.com", "password": "pw9"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, usecase.MsgAccountCreation, errorMessage(t, w))
}

func TestSharedSecretOverHTTP(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.AuthMode = config.AuthModeSharedSecret })

	w := s.do(t, http.MethodPost, "/api/register", map[string]string{"email": "a@b.com", "password": "pw1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/password", map[string]string{"currentPassword": "x", "password": "y"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/login", map[string]string{"password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.RequireAuth = true })

	w := s.do(t, http.MethodGet, "/api/jobs", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// credential routes stay open
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/register", map[string]string{"email": "a@b.com", "password": "pw1"}).Code)
	w = s.do(t, http.MethodPost, "/api/login", map[string]string{"email": "a@b.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, w.Code)
	var login v1.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	s.token = login.Token
	assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/jobs", sampleJob()).Code)
	assert.Len(t, listJobs(t, s), 1)
}

func jsonID(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
