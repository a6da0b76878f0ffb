package usecases

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"image-converter/internal/domain/dto"
	"image-converter/internal/domain/entities"
	"image-converter/internal/domain/repositories"
	"image-converter/internal/infrastructure/queue"
	"image-converter/internal/pkg/fileutils"
	"image-converter/internal/pkg/metrics"
	"image-converter/pkg/constants"
	apperrors "image-converter/pkg/errors"
)

const defaultListLimit = 50

type ProcessService interface {
	CreateJob(files []entities.FileDescriptor, settings entities.Settings) (*entities.Job, error)
	GetJob(jobID string) (*entities.Job, error)
	GetJobStatus(jobID string) (*dto.JobView, error)
	CancelJob(jobID string) error
	RetryJob(jobID string) (string, error)
	ListJobs(status string, limit int) (*dto.JobListResponse, error)
	SystemStatus() dto.SystemStatus
	// HandleJob executes a queued job on behalf of the worker pool.
	HandleJob(ctx context.Context, job queue.Job) error
}

// Archiver packages the successful outputs of a job.
type Archiver interface {
	Archive(results []entities.Result, jobID string) (*entities.Archive, error)
}

// JobQueue accepts jobs for asynchronous execution.
type JobQueue interface {
	AddJob(job queue.Job) error
}

type ProcessOptions struct {
	ProcessedDir string
	CleanupDelay time.Duration
}

// processService owns the job state machine. Every mutation of a job goes through
// the repository's Update so progress writes and status changes never race.
type processService struct {
	repo     repositories.JobRepository
	runner   *BatchRunner
	archiver Archiver
	archives repositories.ArchiveStorage
	cleanup  CleanupService
	queue    JobQueue
	opts     ProcessOptions
	logger   *zap.Logger

	newID   func() string
	now     func() time.Time
	started time.Time

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

var _ ProcessService = (*processService)(nil)

var errStale = errors.New("job is no longer processing")

func NewProcessService(
	repo repositories.JobRepository,
	runner *BatchRunner,
	archiver Archiver,
	archives repositories.ArchiveStorage,
	cleanup CleanupService,
	jobQueue JobQueue,
	opts ProcessOptions,
	logger *zap.Logger,
) ProcessService {
	return &processService{
		repo:     repo,
		runner:   runner,
		archiver: archiver,
		archives: archives,
		cleanup:  cleanup,
		queue:    jobQueue,
		opts:     opts,
		logger:   logger,
		newID:    uuid.NewString,
		now:      time.Now,
		started:  time.Now(),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// CreateJob stores a queued job and hands it to the queue. It never waits for processing.
func (s *processService) CreateJob(files []entities.FileDescriptor, settings entities.Settings) (*entities.Job, error) {
	if len(files) == 0 {
		return nil, apperrors.ErrValidation(errors.New("no files to process"))
	}

	job := entities.NewJob(s.newID(), files, settings, s.now())
	if err := s.enqueue(job); err != nil {
		return nil, err
	}

	s.logger.Info("Job created",
		zap.String("job_id", job.ID),
		zap.Int("files", len(files)),
		zap.String("format", string(settings.Format)),
	)
	return job, nil
}

func (s *processService) enqueue(job *entities.Job) error {
	if err := s.repo.Create(job); err != nil {
		return err
	}
	if err := s.queue.AddJob(queue.Job{JobID: job.ID, Type: queue.JobProcessBatch}); err != nil {
		_ = s.repo.Delete(job.ID)
		return apperrors.ErrInternal(fmt.Errorf("enqueue job: %w", err))
	}
	return nil
}

func (s *processService) GetJob(jobID string) (*entities.Job, error) {
	return s.repo.Get(jobID)
}

func (s *processService) GetJobStatus(jobID string) (*dto.JobView, error) {
	job, err := s.repo.Get(jobID)
	if err != nil {
		return nil, err
	}
	view := toJobView(job, true)
	return &view, nil
}

// CancelJob marks a queued or processing job cancelled, stops the batch before its next
// file and removes the job's files right away. The record stays until the deferred cleanup.
func (s *processService) CancelJob(jobID string) error {
	job, err := s.repo.Update(jobID, func(j *entities.Job) error {
		if j.Status.IsTerminal() {
			return apperrors.ErrInvalidState(fmt.Errorf("job is already %s", j.Status))
		}
		if err := j.Transition(entities.JobCancelled); err != nil {
			return apperrors.ErrInvalidState(err)
		}
		j.EndTime = s.now()
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if cancel, ok := s.cancels[jobID]; ok {
		cancel()
	}
	s.mu.Unlock()

	_ = s.cleanup.CleanupFiles(job)
	s.cleanup.Schedule(jobID, s.opts.CleanupDelay)
	metrics.RecordJobFinished(string(entities.JobCancelled))

	s.logger.Info("Job cancelled", zap.String("job_id", jobID))
	return nil
}

// RetryJob runs the original file set and settings again under a fresh id.
// The original record is left as it is.
func (s *processService) RetryJob(jobID string) (string, error) {
	orig, err := s.repo.Get(jobID)
	if err != nil {
		return "", err
	}
	if orig.Status == entities.JobProcessing {
		return "", apperrors.ErrInvalidState(errors.New("cannot retry a job that is currently processing"))
	}

	job := entities.NewJob(s.newID(), orig.Files, orig.Settings, s.now())
	job.RetryOf = orig.ID
	if err := s.enqueue(job); err != nil {
		return "", err
	}

	s.logger.Info("Job retried", zap.String("job_id", job.ID), zap.String("original_job_id", jobID))
	return job.ID, nil
}

func (s *processService) ListJobs(status string, limit int) (*dto.JobListResponse, error) {
	st := entities.JobStatus(status)
	if status != "" && !st.Valid() {
		return nil, apperrors.ErrValidation(fmt.Errorf("unknown status %q", status))
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	jobs, err := s.repo.List(repositories.JobFilter{Status: st, Limit: limit})
	if err != nil {
		return nil, err
	}
	total, _ := s.repo.Count()

	views := make([]dto.JobView, 0, len(jobs))
	for _, j := range jobs {
		views = append(views, toJobView(j, false))
	}
	return &dto.JobListResponse{Success: true, Jobs: views, Total: total}, nil
}

func (s *processService) SystemStatus() dto.SystemStatus {
	total, active := s.repo.Count()
	queued, _ := s.repo.List(repositories.JobFilter{Status: entities.JobQueued})

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return dto.SystemStatus{
		ActiveJobs: active - len(queued),
		QueuedJobs: len(queued),
		TotalJobs:  total,
		Uptime:     s.now().Sub(s.started).Seconds(),
		Goroutines: runtime.NumGoroutine(),
		MemoryMB:   mem.HeapAlloc / 1024 / 1024,
	}
}

// HandleJob adapts ExecuteJob to the worker pool.
func (s *processService) HandleJob(ctx context.Context, job queue.Job) error {
	return s.ExecuteJob(ctx, job.JobID)
}

// ExecuteJob runs the batch of a queued job. Only the caller that wins the
// queued -> processing transition does any work; everyone else returns nil.
func (s *processService) ExecuteJob(ctx context.Context, jobID string) (err error) {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// registered before the transition so a cancel racing the start still reaches the runner
	s.mu.Lock()
	if _, running := s.cancels[jobID]; running {
		s.mu.Unlock()
		return nil
	}
	s.cancels[jobID] = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.cancels, jobID)
		s.mu.Unlock()
	}()

	job, err := s.repo.Update(jobID, func(j *entities.Job) error {
		if j.Status != entities.JobQueued {
			return errStale
		}
		if err := j.Transition(entities.JobProcessing); err != nil {
			return err
		}
		j.StartTime = s.now()
		return nil
	})
	if err != nil {
		if errors.Is(err, errStale) {
			s.logger.Debug("Job already started or finished, skipping", zap.String("job_id", jobID))
			return nil
		}
		return err
	}

	metrics.JobStarted()
	defer metrics.JobStopped()

	var results []entities.Result
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("Job crashed", zap.String("job_id", jobID), zap.Any("panic", p))
			s.fail(jobID, results, apperrors.ErrCrash(fmt.Errorf("%v", p)))
			err = nil
		}
	}()

	s.logger.Info("Job started", zap.String("job_id", jobID), zap.Int("files", len(job.Files)))

	outputDir := filepath.Join(s.opts.ProcessedDir, jobID)
	results, runErr := s.runner.Run(jobCtx, job.Files, job.Settings, outputDir, func(p entities.Progress) {
		s.reportProgress(jobID, p)
	})

	switch {
	case apperrors.HasCode(runErr, apperrors.CodeCrash):
		s.fail(jobID, results, runErr)
		return nil
	case runErr != nil && ctx.Err() != nil && !s.isCancelled(jobID):
		s.fail(jobID, results, apperrors.ErrInternal(errors.New("processing interrupted by shutdown")))
		return nil
	}

	s.finish(jobID, results)
	return nil
}

func (s *processService) reportProgress(jobID string, p entities.Progress) {
	_, err := s.repo.Update(jobID, func(j *entities.Job) error {
		if j.Status != entities.JobProcessing || p.Processed < j.Progress.Processed {
			return errStale
		}
		j.Progress = p
		return nil
	})
	if err != nil && !errors.Is(err, errStale) {
		s.logger.Warn("Progress update failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *processService) isCancelled(jobID string) bool {
	job, err := s.repo.Get(jobID)
	return err == nil && job.Status == entities.JobCancelled
}

// finish archives the successful outputs and moves the job to its terminal status.
func (s *processService) finish(jobID string, results []entities.Result) {
	if s.isCancelled(jobID) {
		s.settleCancelled(jobID, results)
		return
	}

	successes := make([]entities.Result, 0, len(results))
	for _, r := range results {
		if r.Success {
			successes = append(successes, r)
		}
	}

	var (
		archive  *entities.Archive
		warnings []string
	)
	if len(successes) > 0 {
		var err error
		archive, err = s.buildArchive(jobID, successes)
		if err != nil {
			s.logger.Error("Archive creation failed", zap.String("job_id", jobID), zap.Error(err))
			warnings = append(warnings, apperrors.ErrArchive(nil).Message)
		}
	}

	job, err := s.repo.Update(jobID, func(j *entities.Job) error {
		if j.Status != entities.JobProcessing {
			return errStale
		}
		j.Results = results
		j.SuccessCount = len(successes)
		j.FailedCount = len(results) - len(successes)
		j.Progress.Processed = len(results)
		j.Progress.Percentage = 100
		j.Progress.ETA = 0
		j.Errors = append(j.Errors, warnings...)
		if archive != nil {
			j.ArchivePath = archive.Path
			j.ArchiveSize = archive.Size
			j.ArchiveKey = archive.Key
			j.DownloadURL = archive.URL
		}

		to := entities.JobCompleted
		if len(successes) == 0 {
			to = entities.JobFailed
			j.Error = allFailedMessage(len(results))
		}
		if err := j.Transition(to); err != nil {
			return err
		}
		j.EndTime = s.now()
		return nil
	})
	if errors.Is(err, errStale) {
		// cancelled while the archive was being built; the record never saw it
		s.discardArchive(jobID, archive)
		s.settleCancelled(jobID, results)
		return
	}
	if err != nil {
		s.logger.Error("Failed to finalize job", zap.String("job_id", jobID), zap.Error(err))
		s.discardArchive(jobID, archive)
		return
	}

	metrics.RecordJobFinished(string(job.Status))
	s.logger.Info("Job finished",
		zap.String("job_id", jobID),
		zap.String("status", string(job.Status)),
		zap.Int("succeeded", job.SuccessCount),
		zap.Int("failed", job.FailedCount),
		zap.Duration("duration", job.Duration()),
	)
	s.cleanup.Schedule(jobID, s.opts.CleanupDelay)
}

func (s *processService) buildArchive(jobID string, successes []entities.Result) (*entities.Archive, error) {
	archive, err := s.archiver.Archive(successes, jobID)
	if err != nil {
		return nil, err
	}
	key, err := s.archives.Publish(context.Background(), jobID, archive.Path)
	if err != nil {
		_ = fileutils.RemoveIfExists(archive.Path)
		return nil, apperrors.ErrArchive(err)
	}
	archive.Key = key
	archive.URL = constants.DownloadZipRoute + jobID
	return archive, nil
}

func (s *processService) discardArchive(jobID string, archive *entities.Archive) {
	if archive == nil {
		return
	}
	errs := multierr.Combine(
		s.archives.Unpublish(context.Background(), archive.Key),
		fileutils.RemoveIfExists(archive.Path),
	)
	if errs != nil {
		s.logger.Warn("Failed to discard archive", zap.String("job_id", jobID), zap.Error(errs))
	}
}

// settleCancelled records what the runner produced before it noticed the cancel and
// removes those outputs; the job stays cancelled.
func (s *processService) settleCancelled(jobID string, results []entities.Result) {
	job, err := s.repo.Update(jobID, func(j *entities.Job) error {
		j.Results = results
		j.Progress.Processed = len(results)
		return nil
	})
	if err != nil {
		return
	}
	_ = s.cleanup.CleanupFiles(job)
	s.cleanup.Schedule(jobID, s.opts.CleanupDelay)
}

func (s *processService) fail(jobID string, results []entities.Result, cause error) {
	job, err := s.repo.Update(jobID, func(j *entities.Job) error {
		if j.Status != entities.JobProcessing {
			return errStale
		}
		j.Results = results
		j.Progress.Processed = len(results)
		for _, r := range results {
			if r.Success {
				j.SuccessCount++
			} else {
				j.FailedCount++
			}
		}
		j.Error = apperrors.Describe(cause)
		if err := j.Transition(entities.JobFailed); err != nil {
			return err
		}
		j.EndTime = s.now()
		return nil
	})
	if errors.Is(err, errStale) {
		s.settleCancelled(jobID, results)
		return
	}
	if err != nil {
		s.logger.Error("Failed to mark job failed", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	metrics.RecordJobFinished(string(job.Status))
	s.logger.Warn("Job failed", zap.String("job_id", jobID), zap.String("error", job.Error))
	s.cleanup.Schedule(jobID, s.opts.CleanupDelay)
}

func allFailedMessage(n int) string {
	if n == 0 {
		return "No files were processed"
	}
	return fmt.Sprintf("All %d files failed to process", n)
}

// CompressionRatio returns the saved share of bytes as a rounded percentage.
func CompressionRatio(totalOriginal, totalProcessed int64) int {
	if totalOriginal == 0 {
		return 0
	}
	ratio := float64(totalOriginal-totalProcessed) / float64(totalOriginal) * 100
	return int(math.Floor(ratio + 0.5))
}

func toJobView(job *entities.Job, withResults bool) dto.JobView {
	view := dto.JobView{
		JobID:        job.ID,
		Status:       job.Status,
		TotalFiles:   len(job.Files),
		Progress:     job.Progress,
		StartTime:    job.StartTime,
		SuccessCount: job.SuccessCount,
		FailedCount:  job.FailedCount,
		DownloadURL:  job.DownloadURL,
		Errors:       append([]string{}, job.Errors...),
		Error:        job.Error,
		RetryOf:      job.RetryOf,
	}
	if !job.EndTime.IsZero() {
		end := job.EndTime
		view.EndTime = &end
		view.Duration = job.Duration().Milliseconds()
	}
	if withResults && job.Status.IsTerminal() {
		view.Results = append([]entities.Result{}, job.Results...)
	}
	if job.Status == entities.JobCompleted {
		var orig, processed int64
		for _, r := range job.Results {
			orig += r.OriginalSize
			processed += r.ProcessedSize
		}
		view.Summary = &dto.JobSummary{
			TotalSize:        orig,
			ProcessedSize:    processed,
			CompressionRatio: CompressionRatio(orig, processed),
		}
	}
	return view
}
