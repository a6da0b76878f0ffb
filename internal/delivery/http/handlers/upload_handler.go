package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"image-converter/internal/usecases"
	apperrors "image-converter/pkg/errors"
)

type UploadHandler struct {
	uploadService usecases.UploadService
	logger        *zap.Logger
}

func NewUploadHandler(uploadService usecases.UploadService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		logger:        logger,
	}
}

// UploadWatermark
//
// @Summary      Upload Watermark
// @Description  Stores a watermark image and returns the id to reference from batch settings
// @Tags         Upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        watermark  formData  file true "Watermark image"
// @Success      200        {object}  dto.WatermarkUploadResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      500        {object}  dto.ErrorResponse
// @Router       /upload/watermark [post]
func (h *UploadHandler) UploadWatermark(c *fiber.Ctx) error {
	header, err := c.FormFile("watermark")
	if err != nil {
		return apperrors.HandleError(c, h.logger, apperrors.ErrValidation(err))
	}

	resp, err := h.uploadService.SaveWatermark(header)
	if err != nil {
		return apperrors.HandleError(c, h.logger, err)
	}
	return c.JSON(resp)
}
