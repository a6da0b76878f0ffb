package constants

const (
	StatusOK       = "ok"
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	DownloadZipRoute  = "/api/v1/download/zip/"
	ArchiveNamePrefix = "converted-images-"

	// Health turns degraded past these thresholds.
	MaxHealthyActiveJobs = 50
	MaxHealthyTotalJobs  = 1000
)
