package routers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"image-converter/internal/delivery/http/handlers"
	"image-converter/internal/pkg/config"
	apperrors "image-converter/pkg/errors"
)

// multipart overhead on top of the raw file bytes of a full batch
const formOverhead = 1 << 20

func NewApp(cfg *config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "image-converter",
		BodyLimit: int(cfg.Limits.MaxFileSize)*cfg.Limits.MaxFiles + formOverhead,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return apperrors.HandleError(c, log, err)
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	return app
}

func SetupRoutes(
	app *fiber.App,
	cfg *config.Config,
	processHandler *handlers.ProcessHandler,
	uploadHandler *handlers.UploadHandler,
	downloadHandler *handlers.DownloadHandler,
	healthHandler *handlers.HealthHandler,
) {
	SetupSystemRoutes(app, healthHandler)

	api := app.Group("/api/v1")
	SetupProcessRoutes(api, processHandler, cfg)
	SetupUploadRoutes(api, uploadHandler)
	SetupDownloadRoutes(api, downloadHandler)
}
