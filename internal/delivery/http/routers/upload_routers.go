package routers

import (
	"github.com/gofiber/fiber/v2"

	"image-converter/internal/delivery/http/handlers"
)

func SetupUploadRoutes(api fiber.Router, uploadHandler *handlers.UploadHandler) {
	api.Post("/upload/watermark", uploadHandler.UploadWatermark)
}
