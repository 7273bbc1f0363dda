package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadrisk/roadrisk/internal/api/middleware"
	"github.com/roadrisk/roadrisk/internal/api/models"
	"github.com/roadrisk/roadrisk/internal/api/response"
)

// requestWithContext creates an HTTP request that has been processed by the
// RequestID middleware to populate the context with a request ID.
func requestWithContext(t *testing.T, method, path string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, path, http.NoBody)
	rec := httptest.NewRecorder()

	var processedReq *http.Request
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		processedReq = r
	}))
	handler.ServeHTTP(rec, req)

	return processedReq, httptest.NewRecorder()
}

func TestJSON_IncludesRequestID(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/test")

	response.JSON(rec, req, http.StatusOK, map[string]string{"message": "hello"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("X-Request-Id"), "req_")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestJSON_WithoutRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, map[string]string{"message": "hello"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Request-Id"))
}

func TestJSON_NilBody(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/test")

	response.JSON(rec, req, http.StatusOK, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestBadRequest(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodPost, "/v1/routes:score")

	response.BadRequest(rec, req, "invalid input", []models.FieldError{
		{Field: "startLat", Message: "required"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.Equal(t, "/v1/routes:score", problem.Instance)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "startLat", problem.Errors[0].Field)
}

func TestNotFound(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/v1/dataset")

	response.NotFound(rec, req, "dataset not loaded")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeNotFound, problem.Type)
	assert.Equal(t, "dataset not loaded", problem.Detail)
	assert.Equal(t, "/v1/dataset", problem.Instance)
}

func TestUnauthorized(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodPost, "/v1/admin/dataset:reload")

	response.Unauthorized(rec, req, "invalid admin token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeUnauthorized, problem.Type)
}

func TestServiceUnavailable(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodPost, "/v1/admin/dataset:reload")

	response.ServiceUnavailable(rec, req, "dataset source unreachable")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeUnavailable, problem.Type)
}

func TestInternalError(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/v1/risk-areas")

	response.InternalError(rec, req, "unexpected failure")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeInternal, problem.Type)
}
