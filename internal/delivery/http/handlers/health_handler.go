package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"image-converter/internal/domain/dto"
	"image-converter/internal/usecases"
	"image-converter/pkg/constants"
)

type HealthHandler struct {
	processService usecases.ProcessService
	now            func() time.Time
}

func NewHealthHandler(processService usecases.ProcessService) *HealthHandler {
	return &HealthHandler{processService: processService, now: time.Now}
}

// Health
//
// @Summary      Health Check
// @Description  Reports degraded with 503 once the server holds too many jobs
// @Tags         Health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Failure      503  {object}  dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	st := h.processService.SystemStatus()
	active := st.ActiveJobs + st.QueuedJobs

	resp := dto.HealthResponse{
		Status:     constants.StatusHealthy,
		ActiveJobs: active,
		TotalJobs:  st.TotalJobs,
		Uptime:     int64(st.Uptime),
		Timestamp:  h.now(),
	}
	if active >= constants.MaxHealthyActiveJobs || st.TotalJobs >= constants.MaxHealthyTotalJobs {
		resp.Status = constants.StatusDegraded
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
