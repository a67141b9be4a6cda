package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"argus-dashboard-go/internal/services"
)

// TrajectoryHandler exposes read access to trajectory snapshots and the
// clear operations coupled with color release.
type TrajectoryHandler struct {
	container *services.ServiceContainer
}

func NewTrajectoryHandler(container *services.ServiceContainer) *TrajectoryHandler {
	return &TrajectoryHandler{container: container}
}

// @Summary List trajectories
// @Description Immutable snapshots of every live trajectory
// @Tags trajectories
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /trajectories [get]
func (h *TrajectoryHandler) List(c *gin.Context) {
	trajectories := h.container.Processor.Trajectories().All()
	c.JSON(http.StatusOK, gin.H{
		"count":        len(trajectories),
		"trajectories": trajectories,
	})
}

// @Summary Get one trajectory
// @Description Immutable snapshot of a single person's trajectory
// @Tags trajectories
// @Accept json
// @Produce json
// @Param id path string true "Global person id"
// @Success 200 {object} models.PersonTrajectoryData
// @Failure 404 {object} map[string]interface{}
// @Router /trajectories/{id} [get]
func (h *TrajectoryHandler) Get(c *gin.Context) {
	id := c.Param("id")
	traj, ok := h.container.Processor.Trajectories().Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "no trajectory for id " + id,
		})
		return
	}
	c.JSON(http.StatusOK, traj)
}

// @Summary Clear one trajectory
// @Description Drop a person's trajectory and release their color
// @Tags trajectories
// @Accept json
// @Produce json
// @Param id path string true "Global person id"
// @Success 200 {object} map[string]interface{}
// @Router /trajectories/{id} [delete]
func (h *TrajectoryHandler) Clear(c *gin.Context) {
	id := c.Param("id")
	h.container.Processor.Trajectories().Clear(id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Clear all trajectories
// @Description Drop all trajectory state and color assignments, e.g. when switching scenes
// @Tags trajectories
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /trajectories/clear [post]
func (h *TrajectoryHandler) ClearAll(c *gin.Context) {
	h.container.ClearAllTrajectories()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
