package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Limits    LimitsConfig
	Workers   WorkersConfig
	Cleanup   CleanupConfig
	RateLimit RateLimitConfig
	S3        S3Config
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
	// Locale picks the catalog for API error messages ("en" or "tr").
	Locale string
}

type StorageConfig struct {
	UploadDir    string
	ProcessedDir string
	DownloadDir  string
	WatermarkDir string
	// Archive selects where finished archives are published: "local" or "s3".
	Archive string
}

type LimitsConfig struct {
	MaxFileSize      int64 // bytes
	MaxFiles         int
	MaxWatermarkSize int64 // bytes
}

type WorkersConfig struct {
	JobWorkers       int
	QueueSize        int
	BatchConcurrency int
}

type CleanupConfig struct {
	Delay     time.Duration
	SweepCron string
	MaxAge    time.Duration
}

// RateLimitConfig values are requests per minute per client.
type RateLimitConfig struct {
	Status  int
	Process int
}

type S3Config struct {
	Bucket string
	Region string
	Prefix string
}

func LoadConfig() *Config {
	config := &Config{
		Server: ServerConfig{
			Port:   getEnv("SERVER_PORT", "3000"),
			Host:   getEnv("SERVER_HOST", "0.0.0.0"),
			Env:    getEnv("APP_ENV", "production"),
			Locale: getEnv("APP_LOCALE", "en"),
		},
		Storage: StorageConfig{
			UploadDir:    getEnv("UPLOAD_DIR", "temp/uploads"),
			ProcessedDir: getEnv("PROCESSED_DIR", "temp/processed"),
			DownloadDir:  getEnv("DOWNLOAD_DIR", "temp/downloads"),
			WatermarkDir: getEnv("WATERMARK_DIR", "temp/watermarks"),
			Archive:      getEnv("ARCHIVE_STORAGE", "local"),
		},
		Limits: LimitsConfig{
			MaxFileSize:      getEnvAsInt64("MAX_FILE_SIZE", 10<<20),
			MaxFiles:         getEnvAsInt("MAX_FILES", 100),
			MaxWatermarkSize: getEnvAsInt64("MAX_WATERMARK_SIZE", 5<<20),
		},
		Workers: WorkersConfig{
			JobWorkers:       getEnvAsInt("JOB_WORKERS", 4),
			QueueSize:        getEnvAsInt("JOB_QUEUE_SIZE", 100),
			BatchConcurrency: getEnvAsInt("BATCH_CONCURRENCY", 1),
		},
		Cleanup: CleanupConfig{
			Delay:     getEnvAsDuration("CLEANUP_DELAY", 30*time.Minute),
			SweepCron: getEnv("CLEANUP_SWEEP_CRON", "0 */5 * * * *"),
			MaxAge:    getEnvAsDuration("CLEANUP_MAX_AGE", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Status:  getEnvAsInt("STATUS_RATE_LIMIT", 30),
			Process: getEnvAsInt("PROCESS_RATE_LIMIT", 10),
		},
		S3: S3Config{
			Bucket: getEnv("S3_BUCKET", ""),
			Region: getEnv("S3_REGION", "eu-central-1"),
			Prefix: getEnv("S3_PREFIX", "archives"),
		},
	}

	if config.Workers.JobWorkers < 1 {
		config.Workers.JobWorkers = 1
	}
	if config.Workers.BatchConcurrency < 1 {
		config.Workers.BatchConcurrency = 1
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		panic(err)
	}
	for _, dir := range []*string{
		&config.Storage.UploadDir,
		&config.Storage.ProcessedDir,
		&config.Storage.DownloadDir,
		&config.Storage.WatermarkDir,
	} {
		if !filepath.IsAbs(*dir) {
			*dir = filepath.Join(projectRoot, *dir)
		}
	}

	if err := config.EnsureDirs(); err != nil {
		panic(err)
	}

	return config
}

// EnsureDirs creates every working directory the service writes to.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{
		c.Storage.UploadDir,
		c.Storage.ProcessedDir,
		c.Storage.DownloadDir,
		c.Storage.WatermarkDir,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

func findProjectRoot() (string, error) {
	current, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			// no go.mod above us, fall back to the working directory
			return os.Getwd()
		}
		current = parent
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	return int(getEnvAsInt64(key, int64(defaultValue)))
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
