package usecases

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"image-converter/internal/domain/entities"
	"image-converter/internal/domain/repositories"
	"image-converter/internal/pkg/fileutils"
)

type CleanupService interface {
	// Schedule removes the job's files and record after delay, replacing any pending run.
	Schedule(jobID string, delay time.Duration)
	// CleanupFiles deletes the job's inputs, outputs and archive right away but keeps the record.
	CleanupFiles(job *entities.Job) error
	CleanupJob(jobID string)
	CleanupOldTempFiles(maxAge time.Duration) error
	Start() error
	Stop()
}

type CleanupDirs struct {
	UploadDir    string
	ProcessedDir string
	DownloadDir  string
	WatermarkDir string
}

type cleanupService struct {
	repo      repositories.JobRepository
	archives  repositories.ArchiveStorage
	dirs      CleanupDirs
	sweepSpec string
	maxAge    time.Duration
	logger    *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	cron   *cron.Cron
}

var _ CleanupService = (*cleanupService)(nil)

func NewCleanupService(repo repositories.JobRepository, archives repositories.ArchiveStorage, dirs CleanupDirs, sweepSpec string, maxAge time.Duration, logger *zap.Logger) CleanupService {
	return &cleanupService{
		repo:      repo,
		archives:  archives,
		dirs:      dirs,
		sweepSpec: sweepSpec,
		maxAge:    maxAge,
		logger:    logger,
		timers:    make(map[string]*time.Timer),
	}
}

func (s *cleanupService) Schedule(jobID string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[jobID]; ok {
		t.Stop()
	}
	s.timers[jobID] = time.AfterFunc(delay, func() {
		s.CleanupJob(jobID)
	})
	s.logger.Debug("Cleanup scheduled", zap.String("job_id", jobID), zap.Duration("delay", delay))
}

func (s *cleanupService) CleanupJob(jobID string) {
	s.mu.Lock()
	if t, ok := s.timers[jobID]; ok {
		t.Stop()
		delete(s.timers, jobID)
	}
	s.mu.Unlock()

	job, err := s.repo.Get(jobID)
	if err != nil {
		return
	}

	_ = s.CleanupFiles(job)
	if job.ArchiveKey != "" {
		if err := s.archives.Unpublish(context.Background(), job.ArchiveKey); err != nil {
			s.logger.Warn("Failed to remove published archive", zap.String("job_id", jobID), zap.Error(err))
		}
	}
	if err := s.repo.Delete(jobID); err != nil {
		s.logger.Debug("Job record already gone", zap.String("job_id", jobID))
	}
	s.logger.Info("Job cleaned up", zap.String("job_id", jobID))
}

// CleanupFiles never stops at the first failure; every path is attempted and the
// failures are reported together. Inputs still referenced by another job are kept.
func (s *cleanupService) CleanupFiles(job *entities.Job) error {
	shared := s.inputsInUseElsewhere(job.ID)

	var errs error
	dirs := map[string]bool{}
	for _, f := range job.Files {
		if f.Path == "" || shared[f.Path] {
			continue
		}
		errs = multierr.Append(errs, fileutils.RemoveIfExists(f.Path))
		dirs[filepath.Dir(f.Path)] = true
	}
	for _, r := range job.Results {
		if r.OutputPath == "" {
			continue
		}
		errs = multierr.Append(errs, fileutils.RemoveIfExists(r.OutputPath))
		dirs[filepath.Dir(r.OutputPath)] = true
	}
	if job.ArchivePath != "" {
		errs = multierr.Append(errs, fileutils.RemoveIfExists(job.ArchivePath))
	}
	if s.dirs.ProcessedDir != "" && job.ID != "" {
		// outputs are job scoped, so anything left here belongs to this job
		errs = multierr.Append(errs, os.RemoveAll(filepath.Join(s.dirs.ProcessedDir, job.ID)))
	}
	for dir := range dirs {
		if s.isManaged(dir) {
			fileutils.RemoveDirIfEmpty(dir)
		}
	}

	if errs != nil {
		s.logger.Warn("Cleanup finished with errors",
			zap.String("job_id", job.ID),
			zap.Errors("errors", multierr.Errors(errs)),
		)
	}
	return errs
}

func (s *cleanupService) inputsInUseElsewhere(jobID string) map[string]bool {
	inUse := map[string]bool{}
	jobs, err := s.repo.List(repositories.JobFilter{})
	if err != nil {
		return inUse
	}
	for _, other := range jobs {
		if other.ID == jobID {
			continue
		}
		for _, f := range other.Files {
			inUse[f.Path] = true
		}
	}
	return inUse
}

// isManaged keeps directory removal inside the service's own working directories.
func (s *cleanupService) isManaged(dir string) bool {
	for _, root := range []string{s.dirs.UploadDir, s.dirs.ProcessedDir} {
		if root == "" {
			continue
		}
		if strings.HasPrefix(filepath.Clean(dir), filepath.Clean(root)+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// CleanupOldTempFiles removes entries of the working directories that are older than
// maxAge and belong to no job in the repository.
func (s *cleanupService) CleanupOldTempFiles(maxAge time.Duration) error {
	known := s.knownEntries()
	now := time.Now()

	var errs error
	for _, root := range []string{s.dirs.UploadDir, s.dirs.ProcessedDir, s.dirs.DownloadDir, s.dirs.WatermarkDir} {
		if root == "" {
			continue
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			if !os.IsNotExist(err) {
				errs = multierr.Append(errs, err)
			}
			continue
		}
		for _, entry := range entries {
			path := filepath.Join(root, entry.Name())
			if known[path] {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			if now.Sub(info.ModTime()) <= maxAge {
				continue
			}
			if err := os.RemoveAll(path); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			s.logger.Info("Removed orphaned temp entry", zap.String("path", path))
		}
	}
	return errs
}

func (s *cleanupService) knownEntries() map[string]bool {
	known := map[string]bool{}
	jobs, err := s.repo.List(repositories.JobFilter{})
	if err != nil {
		return known
	}
	for _, job := range jobs {
		known[filepath.Join(s.dirs.ProcessedDir, job.ID)] = true
		known[filepath.Join(s.dirs.DownloadDir, job.ID+".zip")] = true
		if job.ArchivePath != "" {
			known[job.ArchivePath] = true
		}
		if job.Settings.Watermark.ImagePath != "" {
			known[job.Settings.Watermark.ImagePath] = true
		}
		for _, f := range job.Files {
			known[f.Path] = true
			known[filepath.Dir(f.Path)] = true
		}
	}
	return known
}

// Start registers the periodic orphan sweep.
func (s *cleanupService) Start() error {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(s.sweepSpec, func() {
		if err := s.CleanupOldTempFiles(s.maxAge); err != nil {
			s.logger.Error("Error cleaning up old temp files", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	c.Start()

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	s.logger.Info("Cleanup sweep started", zap.String("spec", s.sweepSpec), zap.Duration("max_age", s.maxAge))
	return nil
}

// Stop halts the sweep and drops pending deferred cleanups.
func (s *cleanupService) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}
