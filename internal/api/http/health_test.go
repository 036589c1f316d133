package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name       string
		db, redis  Pinger
		wantCode   int
		wantStatus string
		wantRedis  string
	}{
		{"all up", up, up, http.StatusOK, "healthy", "up"},
		{"redis disabled", up, nil, http.StatusOK, "healthy", "disabled"},
		{"redis down", up, down, http.StatusOK, "degraded", "down"},
		{"db down", down, up, http.StatusServiceUnavailable, "unhealthy", "up"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			NewHealthHandler("deployd", "1.0.0", tt.db, tt.redis).RegisterRoutes(r)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tt.wantCode, w.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantRedis, resp.Redis)
			assert.Equal(t, "deployd", resp.Service)
		})
	}
}
