package delivery

import (
	"net/http"

	"eshop-backend/internal/scheduler"

	"github.com/gin-gonic/gin"
)

// SchedulerHandler is the operator control surface over the job scheduler
type SchedulerHandler struct {
	scheduler *scheduler.Scheduler
}

// NewSchedulerHandler creates a new SchedulerHandler
func NewSchedulerHandler(s *scheduler.Scheduler) *SchedulerHandler {
	return &SchedulerHandler{scheduler: s}
}

// GetStatus reports scheduler liveness and job summaries
// GET /api/scheduler/status
func (h *SchedulerHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.GetStatus())
}

// Start arms all scheduled jobs (idempotent)
// POST /api/scheduler/start
func (h *SchedulerHandler) Start(c *gin.Context) {
	h.scheduler.Start()
	c.JSON(http.StatusOK, h.scheduler.GetStatus())
}

// Stop disarms all scheduled jobs (idempotent)
// POST /api/scheduler/stop
func (h *SchedulerHandler) Stop(c *gin.Context) {
	h.scheduler.Stop()
	c.JSON(http.StatusOK, h.scheduler.GetStatus())
}

// SendNowRequest is the request body for immediate promotional sends
type SendNowRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
	Tag   string `json:"tag"`
}

// SendNow broadcasts a promotional notification immediately
// POST /api/scheduler/send-now
func (h *SchedulerHandler) SendNow(c *gin.Context) {
	var req SendNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.scheduler.SendNow(req.Title, req.Body, req.Tag))
}

// SendRandom broadcasts a random promotional notification immediately
// POST /api/scheduler/send-random
func (h *SchedulerHandler) SendRandom(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.SendRandomNow())
}
