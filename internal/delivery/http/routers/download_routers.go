package routers

import (
	"github.com/gofiber/fiber/v2"

	"image-converter/internal/delivery/http/handlers"
)

func SetupDownloadRoutes(api fiber.Router, downloadHandler *handlers.DownloadHandler) {
	download := api.Group("/download")
	download.Get("/list", downloadHandler.ListDownloads)
	download.Get("/zip/:jobId", downloadHandler.DownloadZip)
	download.Delete("/zip/:jobId", downloadHandler.DeleteZip)
	download.Get("/info/:jobId", downloadHandler.DownloadInfo)
	download.Get("/file/:jobId/:filename", downloadHandler.DownloadFile)
}
