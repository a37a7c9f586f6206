package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pantryshelf/products-service/internal/api/dto"
	"github.com/pantryshelf/products-service/internal/api/middleware"
	"github.com/pantryshelf/products-service/internal/core/docdb"
)

// Component statuses reported by Health.
const (
	StatusHealthy      = "healthy"
	StatusUnhealthy    = "unhealthy"
	StatusNotConnected = "not connected"
)

// ConnectionChecker reports on the document database connection.
type ConnectionChecker interface {
	IsConnected() bool
	EnsureConnected(ctx context.Context) error
	Verify(ctx context.Context) error
	Client() (docdb.Client, error)
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	connection ConnectionChecker
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(connection ConnectionChecker) *HealthHandler {
	return &HealthHandler{
		connection: connection,
	}
}

// Health handles the /health endpoint. It never dials; a connection that has not
// been opened yet is reported but does not make the service unhealthy. A verified
// connection also reports the database it serves.
// @Summary Health check
// @Description Returns the overall health status and component statuses
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service healthy"
// @Failure 503 {object} dto.HealthResponse "Service unhealthy"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	components := make(map[string]string)
	healthy := true
	database := ""

	switch {
	case !h.connection.IsConnected():
		components["docdb"] = StatusNotConnected
	case h.connection.Verify(c.Request.Context()) != nil:
		components["docdb"] = StatusUnhealthy
		healthy = false
	default:
		components["docdb"] = StatusHealthy
		if client, err := h.connection.Client(); err == nil {
			database = client.Database().Name()
		}
	}

	status := StatusHealthy
	statusCode := http.StatusOK
	if !healthy {
		status = StatusUnhealthy
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, dto.HealthResponse{
		Status:     status,
		Database:   database,
		Components: components,
	})
}

// Ready handles the /ready endpoint. It connects if needed and pings.
// @Summary Readiness check
// @Description Returns 200 if the document database is reachable
// @Tags Health
// @Produce json
// @Success 200 {object} dto.StatusResponse "Service ready"
// @Failure 503 {object} dto.StatusResponse "Service not ready"
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.connection.EnsureConnected(ctx); err != nil {
		logger := middleware.GetRequestLogger(c)
		logger.Warn().Err(err).Msg("readiness connect failed")
		c.JSON(http.StatusServiceUnavailable, dto.StatusResponse{
			Status: "not ready",
			Reason: "docdb unavailable",
		})
		return
	}

	if err := h.connection.Verify(ctx); err != nil {
		logger := middleware.GetRequestLogger(c)
		logger.Warn().Err(err).Msg("readiness ping failed")
		c.JSON(http.StatusServiceUnavailable, dto.StatusResponse{
			Status: "not ready",
			Reason: "docdb unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{
		Status: "ready",
	})
}

// Live handles the /live endpoint.
// @Summary Liveness check
// @Description Returns 200 if the service is alive
// @Tags Health
// @Produce json
// @Success 200 {object} dto.StatusResponse "Service alive"
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StatusResponse{
		Status: "alive",
	})
}
