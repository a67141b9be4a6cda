package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"argus-dashboard-go/internal/services/connection"
)

type HealthHandler struct {
	DashboardID string
	Version     string
	probe       *connection.HealthProbe
}

func NewHealthHandler(dashboardID, version string, probe *connection.HealthProbe) *HealthHandler {
	return &HealthHandler{DashboardID: dashboardID, Version: version, probe: probe}
}

type HealthResponse struct {
	Status      string `json:"status" example:"healthy"`
	DashboardID string `json:"dashboard_id" example:"dashboard-1"`
	Backend     string `json:"backend" example:"healthy"`
}

type DashboardInfoResponse struct {
	DashboardID  string   `json:"dashboard_id" example:"dashboard-1"`
	Status       string   `json:"status" example:"running"`
	Version      string   `json:"version" example:"1.0.0"`
	Capabilities []string `json:"capabilities"`
}

// @Summary Health check
// @Description Check if the dashboard core is healthy; includes the last known backend liveness
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	backend := "unknown"
	if last, ok := h.probe.Last(); ok {
		backend = last.Status
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		DashboardID: h.DashboardID,
		Backend:     backend,
	})
}

// @Summary Dashboard information
// @Description Get basic dashboard core information and capabilities
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} DashboardInfoResponse
// @Router / [get]
func (h *HealthHandler) DashboardInfo(c *gin.Context) {
	c.JSON(http.StatusOK, DashboardInfoResponse{
		DashboardID: h.DashboardID,
		Status:      "running",
		Version:     h.Version,
		Capabilities: []string{
			"tracking_ingest",
			"trajectory_history",
			"frame_summaries",
		},
	})
}
