// Package handler provides HTTP handlers for the weather relay API.
package handler

import (
	"net/http"
	"time"

	"github.com/weatherbestie/weatherbestie/internal/api/models"
	"github.com/weatherbestie/weatherbestie/internal/api/response"
	"github.com/weatherbestie/weatherbestie/internal/provider"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *provider.Registry
	now       func() time.Time
}

// NewOpsHandler creates a new OpsHandler. A nil registry reports no providers.
func NewOpsHandler(version, buildTime string, registry *provider.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		now:       time.Now,
	}
}

// HealthCheck handles GET /api/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /api/ops/ready - readiness check.
// The relay holds no connections of its own, so a running process is ready.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
	})
}

// SystemStatus handles GET /api/ops/status - upstream provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(h.now()),
		Providers: []models.ProviderStatus{},
	}

	if h.registry != nil {
		for _, health := range h.registry.GetAllHealth() {
			ps := toProviderStatus(health)
			if ps.Status != models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
			status.Providers = append(status.Providers, ps)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func toProviderStatus(health *provider.Health) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider: health.Name,
		Status:   models.HealthStatusOK,
	}
	if health.LastSuccessAt != nil {
		ts := models.Timestamp(*health.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if health.LastFailureAt != nil {
		ts := models.Timestamp(*health.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	if !health.IsHealthy() {
		ps.Status = models.HealthStatusDegraded
		msg := health.LastError
		ps.Message = &msg
	}
	return ps
}
