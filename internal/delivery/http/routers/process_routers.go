package routers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"image-converter/internal/delivery/http/handlers"
	"image-converter/internal/domain/dto"
	"image-converter/internal/pkg/config"
	"image-converter/pkg/errors/i18n"
)

func SetupProcessRoutes(api fiber.Router, processHandler *handlers.ProcessHandler, cfg *config.Config) {
	process := api.Group("/process")
	process.Post("/batch", perMinute(cfg.RateLimit.Process), processHandler.CreateBatch)
	process.Get("/status/:jobId", perMinute(cfg.RateLimit.Status), processHandler.GetStatus)
	process.Delete("/cancel/:jobId", processHandler.CancelJob)
	process.Post("/retry/:jobId", processHandler.RetryJob)
	process.Get("/jobs", processHandler.ListJobs)
	process.Get("/system/status", processHandler.SystemStatus)
}

// perMinute limits each client IP to max requests per minute. Zero disables the limit.
func perMinute(max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error:   "rate_limited",
				Message: i18n.T("rate_limited", "Too many requests, please slow down"),
			})
		},
	})
}
