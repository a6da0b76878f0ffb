package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"image-converter/internal/domain/dto"
	"image-converter/internal/domain/entities"
	"image-converter/internal/domain/repositories"
	"image-converter/internal/pkg/fileutils"
	"image-converter/pkg/constants"
	apperrors "image-converter/pkg/errors"
	"image-converter/pkg/file"
)

// ArchiveLocation tells the delivery layer where to fetch an archive from.
// Exactly one of LocalPath and RemoteURL is set.
type ArchiveLocation struct {
	Filename  string
	LocalPath string
	RemoteURL string
	Size      int64
}

type DownloadService interface {
	Archive(ctx context.Context, jobID string) (*ArchiveLocation, error)
	Info(jobID string) (*dto.DownloadInfo, error)
	List() (*dto.DownloadListResponse, error)
	Delete(ctx context.Context, jobID string) error
	OutputFile(jobID, filename string) (string, error)
}

type downloadService struct {
	repo        repositories.JobRepository
	archives    repositories.ArchiveStorage
	downloadDir string
	logger      *zap.Logger

	mu     sync.Mutex
	counts map[string]int64
}

var _ DownloadService = (*downloadService)(nil)

func NewDownloadService(repo repositories.JobRepository, archives repositories.ArchiveStorage, downloadDir string, logger *zap.Logger) DownloadService {
	return &downloadService{
		repo:        repo,
		archives:    archives,
		downloadDir: downloadDir,
		logger:      logger,
		counts:      make(map[string]int64),
	}
}

var errDownloadGone = errors.New("the requested download is no longer available")

// Archive resolves the archive of a job and counts the download.
func (s *downloadService) Archive(ctx context.Context, jobID string) (*ArchiveLocation, error) {
	path, key, err := s.locate(jobID)
	if err != nil {
		return nil, err
	}

	loc := &ArchiveLocation{Filename: archiveName(jobID)}
	if key != "" {
		url, err := s.archives.Resolve(ctx, key)
		if err != nil {
			return nil, apperrors.ErrArchive(err)
		}
		loc.RemoteURL = url
	}
	if loc.RemoteURL == "" {
		size, err := fileutils.FileSize(path)
		if err != nil {
			return nil, apperrors.ErrNotFound(errDownloadGone)
		}
		loc.LocalPath = path
		loc.Size = size
	}

	s.mu.Lock()
	s.counts[jobID]++
	s.mu.Unlock()

	s.logger.Info("Archive download", zap.String("job_id", jobID), zap.Bool("remote", loc.RemoteURL != ""))
	return loc, nil
}

func (s *downloadService) Info(jobID string) (*dto.DownloadInfo, error) {
	path, _, err := s.locate(jobID)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.ErrNotFound(errDownloadGone)
	}
	return s.infoFor(jobID, info), nil
}

func (s *downloadService) infoFor(jobID string, info os.FileInfo) *dto.DownloadInfo {
	s.mu.Lock()
	count := s.counts[jobID]
	s.mu.Unlock()
	return &dto.DownloadInfo{
		Success:       true,
		JobID:         jobID,
		Filename:      archiveName(jobID),
		Size:          info.Size(),
		DownloadCount: count,
		CreatedAt:     info.ModTime(),
		DownloadURL:   constants.DownloadZipRoute + jobID,
	}
}

// List returns every archive in the download directory, newest first.
func (s *downloadService) List() (*dto.DownloadListResponse, error) {
	entries, err := os.ReadDir(s.downloadDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, apperrors.ErrInternal(err)
	}

	downloads := make([]dto.DownloadInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".zip" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		downloads = append(downloads, *s.infoFor(strings.TrimSuffix(e.Name(), ".zip"), info))
	}
	sort.Slice(downloads, func(i, j int) bool {
		return downloads[i].CreatedAt.After(downloads[j].CreatedAt)
	})
	return &dto.DownloadListResponse{Success: true, Downloads: downloads}, nil
}

// Delete removes a job's archive ahead of the scheduled cleanup.
func (s *downloadService) Delete(ctx context.Context, jobID string) error {
	path, key, err := s.locate(jobID)
	if err != nil {
		return err
	}
	if err := fileutils.RemoveIfExists(path); err != nil {
		return apperrors.ErrInternal(err)
	}
	if key != "" {
		if err := s.archives.Unpublish(ctx, key); err != nil {
			return apperrors.ErrArchive(err)
		}
	}
	// the job keeps its record but no longer offers a download
	_, _ = s.repo.Update(jobID, func(j *entities.Job) error {
		j.DownloadURL = ""
		j.ArchivePath = ""
		j.ArchiveKey = ""
		return nil
	})

	s.mu.Lock()
	delete(s.counts, jobID)
	s.mu.Unlock()
	return nil
}

// OutputFile returns the path of one processed output of a job.
func (s *downloadService) OutputFile(jobID, filename string) (string, error) {
	if !file.IsSafeName(filename) {
		return "", apperrors.ErrValidation(errors.New("filename contains invalid characters"))
	}
	job, err := s.repo.Get(jobID)
	if err != nil {
		return "", err
	}
	for _, r := range job.Results {
		if r.Success && r.OutputName == filename {
			if _, err := os.Stat(r.OutputPath); err != nil {
				break
			}
			return r.OutputPath, nil
		}
	}
	return "", apperrors.ErrNotFound(fmt.Errorf("file %s is no longer available", filename))
}

// locate finds the archive of a job from its record, falling back to the download
// directory for archives whose record is already gone.
func (s *downloadService) locate(jobID string) (string, string, error) {
	if !file.IsSafeName(jobID) {
		return "", "", apperrors.ErrValidation(errors.New("invalid job id"))
	}
	job, err := s.repo.Get(jobID)
	if err == nil && job.ArchivePath != "" {
		return job.ArchivePath, job.ArchiveKey, nil
	}

	path := filepath.Join(s.downloadDir, jobID+".zip")
	if _, statErr := os.Stat(path); statErr != nil {
		return "", "", apperrors.ErrNotFound(errDownloadGone)
	}
	return path, "", nil
}

func archiveName(jobID string) string {
	return constants.ArchiveNamePrefix + jobID + ".zip"
}
