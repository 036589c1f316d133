package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kenz1481/web-deployment-website/config"
	projecthttp "github.com/Kenz1481/web-deployment-website/internal/projects/http"
)

func TestOpenRedis(t *testing.T) {
	client, err := OpenRedis(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)

	mr := miniredis.RunT(t)
	client, err = OpenRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = OpenRedis(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestBuildRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := BuildRouter(RouterDeps{
		ServiceName: "deployd",
		Version:     "test",
		AdminAPIKey: "k",
		Projects:    projecthttp.New(nil, t.TempDir()),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
