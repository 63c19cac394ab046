package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-admin-store/internal/service"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
	"github.com/noah-isme/course-admin-store/pkg/response"
)

type persistenceStatus interface {
	PersistenceErr() error
}

// OpsHandler exposes observability endpoints.
type OpsHandler struct {
	metrics *service.MetricsService
	status  persistenceStatus
}

// NewOpsHandler constructs an ops handler.
func NewOpsHandler(metrics *service.MetricsService, status persistenceStatus) *OpsHandler {
	return &OpsHandler{metrics: metrics, status: status}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *OpsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness usage.
func (h *OpsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 while the last snapshot could not be persisted.
func (h *OpsHandler) Ready(c *gin.Context) {
	if h.status != nil {
		if err := h.status.PersistenceErr(); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrPersistenceFailure.Code, http.StatusServiceUnavailable,
				"persistence degraded: "+err.Error()))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Summary returns aggregated counters.
func (h *OpsHandler) Summary(c *gin.Context) {
	response.OK(c, h.metrics.Snapshot())
}
