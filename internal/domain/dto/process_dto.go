package dto

import (
	"time"

	"image-converter/internal/domain/entities"
)

// SettingsRequest is the raw settings JSON sent with a batch. Every field is optional;
// helper.SanitizeSettings fills defaults and clamps ranges.
type SettingsRequest struct {
	Format    string            `json:"format"`
	Quality   int               `json:"quality"`
	Resize    *ResizeRequest    `json:"resize"`
	Watermark *WatermarkRequest `json:"watermark"`
	Naming    *NamingRequest    `json:"naming"`
}

type ResizeRequest struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Fit    string `json:"fit"`
}

type WatermarkRequest struct {
	Type        string  `json:"type"`
	Text        string  `json:"text"`
	Font        string  `json:"font"`
	Position    string  `json:"position"`
	Opacity     float64 `json:"opacity"`
	WatermarkID string  `json:"watermarkId"`
}

type NamingRequest struct {
	Type   string  `json:"type"`
	Prefix *string `json:"prefix"`
	Start  *int    `json:"start"`
}

type CreateJobResponse struct {
	Success    bool               `json:"success"`
	JobID      string             `json:"jobId"`
	Status     entities.JobStatus `json:"status"`
	TotalFiles int                `json:"totalFiles"`
	Message    string             `json:"message"`
}

type RetryJobResponse struct {
	Success       bool   `json:"success"`
	JobID         string `json:"jobId"`
	OriginalJobID string `json:"originalJobId"`
	Message       string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JobSummary is only attached to completed jobs.
type JobSummary struct {
	TotalSize        int64 `json:"totalSize"`
	ProcessedSize    int64 `json:"processedSize"`
	CompressionRatio int   `json:"compressionRatio"`
}

// JobView is the read-only projection of a job returned to API clients. It never
// carries file system paths.
type JobView struct {
	JobID        string             `json:"jobId"`
	Status       entities.JobStatus `json:"status"`
	TotalFiles   int                `json:"totalFiles"`
	Progress     entities.Progress  `json:"progress"`
	StartTime    time.Time          `json:"startTime"`
	EndTime      *time.Time         `json:"endTime,omitempty"`
	Duration     int64              `json:"duration,omitempty"` // milliseconds
	SuccessCount int                `json:"successCount"`
	FailedCount  int                `json:"failedCount"`
	DownloadURL  string             `json:"downloadUrl,omitempty"`
	Errors       []string           `json:"errors"`
	Error        string             `json:"error,omitempty"`
	RetryOf      string             `json:"retryOf,omitempty"`
	Results      []entities.Result  `json:"results,omitempty"`
	Summary      *JobSummary        `json:"summary,omitempty"`
}

type JobListResponse struct {
	Success bool      `json:"success"`
	Jobs    []JobView `json:"jobs"`
	Total   int       `json:"total"`
}

type SystemStatus struct {
	ActiveJobs int     `json:"activeJobs"`
	QueuedJobs int     `json:"queuedJobs"`
	TotalJobs  int     `json:"totalJobs"`
	Uptime     float64 `json:"uptime"` // seconds
	Goroutines int     `json:"goroutines"`
	MemoryMB   uint64  `json:"memoryMb"`
}

type HealthResponse struct {
	Status     string    `json:"status"`
	ActiveJobs int       `json:"activeJobs"`
	TotalJobs  int       `json:"totalJobs"`
	Uptime     int64     `json:"uptime"`
	Timestamp  time.Time `json:"timestamp"`
}
