package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"image-converter/internal/domain/dto"
	"image-converter/internal/usecases"
	apperrors "image-converter/pkg/errors"
	"image-converter/pkg/helper"
)

type ProcessHandler struct {
	processService usecases.ProcessService
	uploadService  usecases.UploadService
	logger         *zap.Logger
}

func NewProcessHandler(processService usecases.ProcessService, uploadService usecases.UploadService, logger *zap.Logger) *ProcessHandler {
	return &ProcessHandler{
		processService: processService,
		uploadService:  uploadService,
		logger:         logger,
	}
}

// CreateBatch
//
// @Summary      Start Batch Processing
// @Description  Uploads images with shared settings and queues a conversion job. Processing is asynchronous; poll the status endpoint.
// @Tags         Process
// @Accept       multipart/form-data
// @Produce      json
// @Param        images    formData  file   true  "Image files"
// @Param        settings  formData  string false "Settings JSON"
// @Success      200       {object}  dto.CreateJobResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Failure      429       {object}  dto.ErrorResponse
// @Failure      500       {object}  dto.ErrorResponse
// @Router       /process/batch [post]
func (h *ProcessHandler) CreateBatch(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.HandleError(c, h.logger, apperrors.ErrValidation(err))
	}

	settings, err := helper.ParseSettings(firstValue(form, "settings"), h.uploadService.ResolveWatermark)
	if err != nil {
		return apperrors.HandleError(c, h.logger, err)
	}

	files, err := h.uploadService.SaveImages(imageHeaders(form))
	if err != nil {
		return apperrors.HandleError(c, h.logger, err)
	}

	job, err := h.processService.CreateJob(files, settings)
	if err != nil {
		h.uploadService.Discard(files)
		return apperrors.HandleError(c, h.logger, err)
	}

	return c.JSON(dto.CreateJobResponse{
		Success:    true,
		JobID:      job.ID,
		Status:     job.Status,
		TotalFiles: len(job.Files),
		Message:    "Batch processing started",
	})
}

// GetStatus
//
// @Summary      Get Job Status
// @Description  Returns progress, per-file results and the download link of a job
// @Tags         Process
// @Produce      json
// @Param        jobId  path      string true "Job ID"
// @Success      200    {object}  dto.JobView
// @Failure      404    {object}  dto.ErrorResponse
// @Failure      429    {object}  dto.ErrorResponse
// @Router       /process/status/{jobId} [get]
func (h *ProcessHandler) GetStatus(c *fiber.Ctx) error {
	view, err := h.processService.GetJobStatus(c.Params("jobId"))
	if err != nil {
		return apperrors.HandleError(c, h.logger, err)
	}
	return c.JSON(view)
}

// CancelJob
//
// @Summary      Cancel Job
// @Description  Cancels a queued or processing job
// @Tags         Process
// @Produce      json
// @Param        jobId  path      string true "Job ID"
// @Success      200    {object}  dto.MessageResponse
// @Failure      400    {object}  dto.ErrorResponse "Job already finished"
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /process/cancel/{jobId} [delete]
func (h *ProcessHandler) CancelJob(c *fiber.Ctx) error {
	if err := h.processService.CancelJob(c.Params("jobId")); err != nil {
		return apperrors.HandleError(c, h.logger, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Job cancelled successfully"})
}

// RetryJob
//
// @Summary      Retry Job
// @Description  Runs the files and settings of a finished job again under a new job id
// @Tags         Process
// @Produce      json
// @Param        jobId  path      string true "Job ID"
// @Success      200    {object}  dto.RetryJobResponse
// @Failure      400    {object}  dto.ErrorResponse "Job is still processing"
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /process/retry/{jobId} [post]
func (h *ProcessHandler) RetryJob(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	newID, err := h.processService.RetryJob(jobID)
	if err != nil {
		return apperrors.HandleError(c, h.logger, err)
	}
	return c.JSON(dto.RetryJobResponse{
		Success:       true,
		JobID:         newID,
		OriginalJobID: jobID,
		Message:       "Job retry started",
	})
}

// ListJobs
//
// @Summary      List Jobs
// @Description  Lists jobs newest first, optionally filtered by status
// @Tags         Process
// @Produce      json
// @Param        status  query     string false "queued, processing, completed, failed or cancelled"
// @Param        limit   query     int    false "Maximum number of jobs" default(50)
// @Success      200     {object}  dto.JobListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /process/jobs [get]
func (h *ProcessHandler) ListJobs(c *fiber.Ctx) error {
	resp, err := h.processService.ListJobs(c.Query("status"), c.QueryInt("limit", 0))
	if err != nil {
		return apperrors.HandleError(c, h.logger, err)
	}
	return c.JSON(resp)
}

// SystemStatus
//
// @Summary      System Status
// @Description  Job counters and runtime statistics of the server
// @Tags         Process
// @Produce      json
// @Success      200  {object}  dto.SystemStatus
// @Router       /process/system/status [get]
func (h *ProcessHandler) SystemStatus(c *fiber.Ctx) error {
	return c.JSON(h.processService.SystemStatus())
}

func imageHeaders(form *multipart.Form) []*multipart.FileHeader {
	headers := append([]*multipart.FileHeader{}, form.File["images"]...)
	return append(headers, form.File["images[]"]...)
}

func firstValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
