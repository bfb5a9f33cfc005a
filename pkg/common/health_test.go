package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performHealthCheck(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/healthz", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	w := performHealthCheck(HealthCheck("predictor", "1.0.0"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "predictor", resp.Service)
	assert.Equal(t, "1.0.0", resp.Version)
}

func TestHealthCheckWithDepsAllHealthy(t *testing.T) {
	checks := map[string]func() error{
		"artifacts": func() error { return nil },
		"redis":     func() error { return nil },
	}

	w := performHealthCheck(HealthCheckWithDeps("predictor", "1.0.0", checks))
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Checks["artifacts"])
	assert.Equal(t, "healthy", resp.Checks["redis"])
}

func TestHealthCheckWithDepsFailure(t *testing.T) {
	checks := map[string]func() error{
		"artifacts": func() error { return nil },
		"redis":     func() error { return errors.New("connection refused") },
	}

	w := performHealthCheck(HealthCheckWithDeps("predictor", "1.0.0", checks))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "healthy", resp.Checks["artifacts"])
	assert.Equal(t, "unhealthy: connection refused", resp.Checks["redis"])
}
