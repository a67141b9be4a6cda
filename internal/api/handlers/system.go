package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"argus-dashboard-go/internal/services/connection"
)

// SystemHandler handles system-related endpoints
type SystemHandler struct {
	DashboardID string
	svc         *connection.Service
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(dashboardID string, svc *connection.Service) *SystemHandler {
	return &SystemHandler{
		DashboardID: dashboardID,
		svc:         svc,
	}
}

// @Summary Get system stats
// @Description Pipeline counters (frames processed/dropped, reconnects) and runtime metrics
// @Tags system
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/stats [get]
func (h *SystemHandler) GetStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": h.svc.Snapshot(),
		"runtime": gin.H{
			"dashboard_id": h.DashboardID,
			"memory_mb":    m.Alloc / 1024 / 1024,
			"cpu_cores":    runtime.NumCPU(),
			"goroutines":   runtime.NumGoroutine(),
			"go_version":   runtime.Version(),
		},
		"timestamp": time.Now().Unix(),
	})
}
