package handlers

import (
	"net/http"

	"student/models"

	"github.com/gin-gonic/gin"
)

// RunSource exposes tracked runs
type RunSource interface {
	Get(id string) (models.RunInfo, bool)
	List() []models.RunInfo
	Stats() map[string]int
}

// RunsHandler serves read-only views of background rounds
type RunsHandler struct {
	runs RunSource
}

func NewRunsHandler(runs RunSource) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// ListRuns handles GET /api/runs
func (h *RunsHandler) ListRuns(c *gin.Context) {
	runs := h.runs.List()
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Runs retrieved successfully",
		Data: gin.H{
			"runs":  runs,
			"total": len(runs),
		},
	})
}

// GetRun handles GET /api/runs/:id
func (h *RunsHandler) GetRun(c *gin.Context) {
	id := c.Param("id")
	info, ok := h.runs.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.APIResponse{
			Success: false,
			Message: "Run not found",
			Error:   "no run with id " + id,
		})
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Run retrieved successfully",
		Data:    info,
	})
}

// Health handles GET /health
func (h *RunsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "student-agent",
		"runs":    h.runs.Stats(),
	})
}
