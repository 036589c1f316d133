package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	DB        string    `json:"db,omitempty"`
	Redis     string    `json:"redis,omitempty"`
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain function, e.g. a redis client's Ping, to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	serviceName string
	version     string
	db          Pinger
	redis       Pinger
}

func NewHealthHandler(serviceName, version string, db, redis Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		db:          db,
		redis:       redis,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := probe(c.Request.Context(), h.db)
	redisStatus := probe(c.Request.Context(), h.redis)

	status, code := "healthy", http.StatusOK
	if dbStatus == "down" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	} else if redisStatus == "down" {
		status = "degraded"
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        dbStatus,
		Redis:     redisStatus,
	})
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()
	if err := p.PingContext(pingCtx); err != nil {
		return "down"
	}
	return "up"
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
