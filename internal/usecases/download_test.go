package usecases

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"image-converter/internal/domain/entities"
	"image-converter/internal/infrastructure/repositories"
	"image-converter/internal/infrastructure/storage"
	apperrors "image-converter/pkg/errors"
)

// remoteArchives pretends every archive was published to object storage.
type remoteArchives struct {
	unpublished []string
	resolveErr  error
}

func (r *remoteArchives) Publish(_ context.Context, jobID, _ string) (string, error) {
	return "archives/" + jobID + ".zip", nil
}

func (r *remoteArchives) Resolve(_ context.Context, key string) (string, error) {
	if r.resolveErr != nil {
		return "", r.resolveErr
	}
	return "https://bucket.example/" + key + "?signed", nil
}

func (r *remoteArchives) Unpublish(_ context.Context, key string) error {
	r.unpublished = append(r.unpublished, key)
	return nil
}

func seedArchivedJob(t *testing.T, repo *repositories.InMemoryJobRepository, downloadDir, id, key string) *entities.Job {
	t.Helper()
	job := entities.NewJob(id, nil, entities.Settings{}, time.Now())
	job.Status = entities.JobCompleted
	job.ArchivePath = touch(t, filepath.Join(downloadDir, id+".zip"))
	job.ArchiveKey = key
	job.DownloadURL = "/api/v1/download/zip/" + id
	out := touch(t, filepath.Join(downloadDir, "..", "processed", id, "img001.webp"))
	job.Results = []entities.Result{
		{Success: true, OutputName: "img001.webp", OutputPath: out},
		{Success: false, OutputName: "img002.webp", Error: "corrupt"},
	}
	require.NoError(t, repo.Create(job))
	return job
}

func TestDownloadService_LocalArchive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	repo := repositories.NewInMemoryJobRepository()
	m := NewDownloadService(repo, storage.NewLocalStorage(dir), dir, zaptest.NewLogger(t))
	job := seedArchivedJob(t, repo, dir, "job-1", "job-1.zip")

	loc, err := m.Archive(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ArchivePath, loc.LocalPath)
	assert.Empty(t, loc.RemoteURL)
	assert.Equal(t, "converted-images-job-1.zip", loc.Filename)
	assert.EqualValues(t, 1, loc.Size)

	info, err := m.Info(job.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, info.DownloadCount)
	assert.Equal(t, "/api/v1/download/zip/job-1", info.DownloadURL)

	list, err := m.List()
	require.NoError(t, err)
	require.Len(t, list.Downloads, 1)
	assert.Equal(t, job.ID, list.Downloads[0].JobID)

	require.NoError(t, m.Delete(context.Background(), job.ID))
	assert.NoFileExists(t, job.ArchivePath)
	updated, err := repo.Get(job.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.DownloadURL)

	_, err = m.Archive(context.Background(), job.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestDownloadService_OrphanArchiveWithoutRecord(t *testing.T) {
	dir := t.TempDir()
	m := NewDownloadService(repositories.NewInMemoryJobRepository(), storage.NewLocalStorage(dir), dir, zaptest.NewLogger(t))
	path := touch(t, filepath.Join(dir, "gone-job.zip"))

	loc, err := m.Archive(context.Background(), "gone-job")
	require.NoError(t, err)
	assert.Equal(t, path, loc.LocalPath)

	_, err = m.Archive(context.Background(), "../etc/passwd")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	_, err = m.Archive(context.Background(), "unknown")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestDownloadService_RemoteArchive(t *testing.T) {
	dir := t.TempDir()
	repo := repositories.NewInMemoryJobRepository()
	remote := &remoteArchives{}
	m := NewDownloadService(repo, remote, dir, zaptest.NewLogger(t))
	job := seedArchivedJob(t, repo, dir, "job-2", "archives/job-2.zip")

	loc, err := m.Archive(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/archives/job-2.zip?signed", loc.RemoteURL)
	assert.Empty(t, loc.LocalPath)

	require.NoError(t, m.Delete(context.Background(), job.ID))
	assert.Equal(t, []string{"archives/job-2.zip"}, remote.unpublished)

	remote.resolveErr = errors.New("expired credentials")
	other := seedArchivedJob(t, repo, dir, "job-3", "archives/job-3.zip")
	_, err = m.Archive(context.Background(), other.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeArchive))
}

func TestDownloadService_OutputFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	repo := repositories.NewInMemoryJobRepository()
	m := NewDownloadService(repo, storage.NewLocalStorage(dir), dir, zaptest.NewLogger(t))
	job := seedArchivedJob(t, repo, dir, "job-4", "job-4.zip")

	path, err := m.OutputFile(job.ID, "img001.webp")
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = m.OutputFile(job.ID, "img002.webp")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "failed outputs are not served")
	_, err = m.OutputFile(job.ID, "../job-4.zip")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	_, err = m.OutputFile("missing", "img001.webp")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
