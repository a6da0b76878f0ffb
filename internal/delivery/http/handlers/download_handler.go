package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"image-converter/internal/domain/dto"
	"image-converter/internal/usecases"
	apperrors "image-converter/pkg/errors"
)

type DownloadHandler struct {
	downloadService usecases.DownloadService
	logger          *zap.Logger
}

func NewDownloadHandler(downloadService usecases.DownloadService, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		downloadService: downloadService,
		logger:          logger,
	}
}

// DownloadZip
//
// @Summary      Download Archive
// @Description  Streams the zip archive of a job, or redirects to the object storage URL
// @Tags         Download
// @Produce      application/zip
// @Param        jobId  path  string true "Job ID"
// @Success      200
// @Success      302
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /download/zip/{jobId} [get]
func (h *DownloadHandler) DownloadZip(c *fiber.Ctx) error {
	loc, err := h.downloadService.Archive(c.UserContext(), c.Params("jobId"))
	if err != nil {
		return apperrors.HandleError(c, h.logger, err)
	}
	if loc.RemoteURL != "" {
		return c.Redirect(loc.RemoteURL, fiber.StatusFound)
	}

	c.Attachment(loc.Filename)
	return c.SendFile(loc.LocalPath)
}

// DownloadInfo
//
// @Summary      Archive Info
// @Description  Size, creation time and download count of a job archive
// @Tags         Download
// @Produce      json
// @Param        jobId  path      string true "Job ID"
// @Success      200    {object}  dto.DownloadInfo
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /download/info/{jobId} [get]
func (h *DownloadHandler) DownloadInfo(c *fiber.Ctx) error {
	info, err := h.downloadService.Info(c.Params("jobId"))
	if err != nil {
		return apperrors.HandleError(c, h.logger, err)
	}
	return c.JSON(info)
}

// ListDownloads
//
// @Summary      List Archives
// @Description  Every archive still available for download, newest first
// @Tags         Download
// @Produce      json
// @Success      200  {object}  dto.DownloadListResponse
// @Router       /download/list [get]
func (h *DownloadHandler) ListDownloads(c *fiber.Ctx) error {
	resp, err := h.downloadService.List()
	if err != nil {
		return apperrors.HandleError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// DeleteZip
//
// @Summary      Delete Archive
// @Description  Removes a job archive before its scheduled cleanup
// @Tags         Download
// @Produce      json
// @Param        jobId  path      string true "Job ID"
// @Success      200    {object}  dto.MessageResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /download/zip/{jobId} [delete]
func (h *DownloadHandler) DeleteZip(c *fiber.Ctx) error {
	if err := h.downloadService.Delete(c.UserContext(), c.Params("jobId")); err != nil {
		return apperrors.HandleError(c, h.logger, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Download deleted successfully"})
}

// DownloadFile
//
// @Summary      Download Single File
// @Description  Streams one processed output of a job
// @Tags         Download
// @Produce      application/octet-stream
// @Param        jobId     path  string true "Job ID"
// @Param        filename  path  string true "Output file name"
// @Success      200
// @Failure      400       {object}  dto.ErrorResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /download/file/{jobId}/{filename} [get]
func (h *DownloadHandler) DownloadFile(c *fiber.Ctx) error {
	filename := c.Params("filename")
	path, err := h.downloadService.OutputFile(c.Params("jobId"), filename)
	if err != nil {
		return apperrors.HandleError(c, h.logger, err)
	}

	c.Attachment(filename)
	return c.SendFile(path)
}
