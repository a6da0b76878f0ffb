package dto

import "time"

type WatermarkUploadResponse struct {
	Success      bool   `json:"success"`
	WatermarkID  string `json:"watermarkId"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
}

type DownloadInfo struct {
	Success       bool      `json:"success"`
	JobID         string    `json:"jobId"`
	Filename      string    `json:"filename"`
	Size          int64     `json:"size"`
	DownloadCount int64     `json:"downloadCount"`
	CreatedAt     time.Time `json:"createdAt"`
	DownloadURL   string    `json:"downloadUrl"`
}

type DownloadListResponse struct {
	Success   bool           `json:"success"`
	Downloads []DownloadInfo `json:"downloads"`
}
