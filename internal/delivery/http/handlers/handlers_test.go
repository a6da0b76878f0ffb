package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"image-converter/internal/domain/dto"
	"image-converter/internal/domain/entities"
	"image-converter/internal/infrastructure/queue"
	"image-converter/internal/usecases"
	apperrors "image-converter/pkg/errors"
)

type fakeProcessService struct {
	created   []entities.FileDescriptor
	settings  entities.Settings
	createErr error
	statusErr error
	cancelErr error
	retryID   string
	status    dto.SystemStatus
}

func (f *fakeProcessService) CreateJob(files []entities.FileDescriptor, settings entities.Settings) (*entities.Job, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created, f.settings = files, settings
	return entities.NewJob("job-1", files, settings, time.Now()), nil
}

func (f *fakeProcessService) GetJob(string) (*entities.Job, error) { return nil, nil }

func (f *fakeProcessService) GetJobStatus(jobID string) (*dto.JobView, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &dto.JobView{JobID: jobID, Status: entities.JobProcessing, Errors: []string{}}, nil
}

func (f *fakeProcessService) CancelJob(string) error { return f.cancelErr }

func (f *fakeProcessService) RetryJob(string) (string, error) { return f.retryID, nil }

func (f *fakeProcessService) ListJobs(status string, limit int) (*dto.JobListResponse, error) {
	if status == "bogus" {
		return nil, apperrors.ErrValidation(errors.New("unknown status"))
	}
	return &dto.JobListResponse{Success: true, Jobs: []dto.JobView{}, Total: limit}, nil
}

func (f *fakeProcessService) SystemStatus() dto.SystemStatus { return f.status }

func (f *fakeProcessService) HandleJob(context.Context, queue.Job) error { return nil }

type fakeUploadService struct {
	saved     int
	discarded int
}

func (f *fakeUploadService) SaveImages(headers []*multipart.FileHeader) ([]entities.FileDescriptor, error) {
	if len(headers) == 0 {
		return nil, apperrors.ErrValidation(errors.New("no files"))
	}
	f.saved += len(headers)
	out := make([]entities.FileDescriptor, len(headers))
	for i, h := range headers {
		out[i] = entities.FileDescriptor{Path: "/tmp/" + h.Filename, OriginalName: h.Filename, Size: h.Size}
	}
	return out, nil
}

func (f *fakeUploadService) SaveWatermark(h *multipart.FileHeader) (*dto.WatermarkUploadResponse, error) {
	return &dto.WatermarkUploadResponse{Success: true, WatermarkID: "wm-1", OriginalName: h.Filename}, nil
}

func (f *fakeUploadService) ResolveWatermark(id string) (string, error) {
	if id != "wm-1" {
		return "", errors.New("unknown watermark")
	}
	return "/watermarks/wm-1.png", nil
}

func (f *fakeUploadService) Discard(files []entities.FileDescriptor) { f.discarded += len(files) }

type fakeDownloadService struct {
	loc *usecases.ArchiveLocation
}

func (f *fakeDownloadService) Archive(context.Context, string) (*usecases.ArchiveLocation, error) {
	if f.loc == nil {
		return nil, apperrors.ErrNotFound(errors.New("gone"))
	}
	return f.loc, nil
}

func (f *fakeDownloadService) Info(jobID string) (*dto.DownloadInfo, error) {
	return &dto.DownloadInfo{Success: true, JobID: jobID}, nil
}

func (f *fakeDownloadService) List() (*dto.DownloadListResponse, error) {
	return &dto.DownloadListResponse{Success: true}, nil
}

func (f *fakeDownloadService) Delete(context.Context, string) error { return nil }

func (f *fakeDownloadService) OutputFile(_ string, filename string) (string, error) {
	if filename == "bad" {
		return "", apperrors.ErrValidation(errors.New("invalid"))
	}
	return f.loc.LocalPath, nil
}

func newTestApp(t *testing.T, ps *fakeProcessService, us *fakeUploadService, ds *fakeDownloadService) *fiber.App {
	t.Helper()
	logger := zaptest.NewLogger(t)
	ph := NewProcessHandler(ps, us, logger)
	uh := NewUploadHandler(us, logger)
	dh := NewDownloadHandler(ds, logger)
	hh := NewHealthHandler(ps)

	app := fiber.New()
	app.Get("/health", hh.Health)
	app.Post("/process/batch", ph.CreateBatch)
	app.Get("/process/status/:jobId", ph.GetStatus)
	app.Delete("/process/cancel/:jobId", ph.CancelJob)
	app.Post("/process/retry/:jobId", ph.RetryJob)
	app.Get("/process/jobs", ph.ListJobs)
	app.Post("/upload/watermark", uh.UploadWatermark)
	app.Get("/download/zip/:jobId", dh.DownloadZip)
	app.Get("/download/file/:jobId/:filename", dh.DownloadFile)
	return app
}

func multipartRequest(t *testing.T, url, fileField string, filenames []string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range filenames {
		part, err := w.CreateFormFile(fileField, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestProcessHandler_CreateBatch(t *testing.T) {
	ps, us := &fakeProcessService{}, &fakeUploadService{}
	app := newTestApp(t, ps, us, &fakeDownloadService{})

	req := multipartRequest(t, "/process/batch", "images", []string{"a.png", "b.jpg"}, map[string]string{
		"settings": `{"format":"png","quality":70,"watermark":{"type":"image","watermarkId":"wm-1"}}`,
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode[dto.CreateJobResponse](t, resp)
	assert.True(t, body.Success)
	assert.Equal(t, "job-1", body.JobID)
	assert.Equal(t, entities.JobQueued, body.Status)
	assert.Equal(t, 2, body.TotalFiles)

	assert.Len(t, ps.created, 2)
	assert.Equal(t, entities.FormatPNG, ps.settings.Format)
	assert.Equal(t, 70, ps.settings.Quality)
	assert.Equal(t, "/watermarks/wm-1.png", ps.settings.Watermark.ImagePath)
}

func TestProcessHandler_CreateBatchRejects(t *testing.T) {
	t.Run("malformed settings store nothing", func(t *testing.T) {
		us := &fakeUploadService{}
		app := newTestApp(t, &fakeProcessService{}, us, &fakeDownloadService{})
		resp, err := app.Test(multipartRequest(t, "/process/batch", "images", []string{"a.png"}, map[string]string{"settings": "{nope"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Zero(t, us.saved)
	})

	t.Run("no files", func(t *testing.T) {
		app := newTestApp(t, &fakeProcessService{}, &fakeUploadService{}, &fakeDownloadService{})
		resp, err := app.Test(multipartRequest(t, "/process/batch", "images", nil, map[string]string{"settings": "{}"}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("uploads discarded when the job cannot be created", func(t *testing.T) {
		us := &fakeUploadService{}
		ps := &fakeProcessService{createErr: apperrors.ErrInternal(errors.New("queue closed"))}
		app := newTestApp(t, ps, us, &fakeDownloadService{})
		resp, err := app.Test(multipartRequest(t, "/process/batch", "images[]", []string{"a.png"}, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, 1, us.discarded)
	})
}

func TestProcessHandler_ErrorMapping(t *testing.T) {
	ps := &fakeProcessService{
		statusErr: apperrors.ErrNotFound(errors.New("job-9")),
		cancelErr: apperrors.ErrInvalidState(errors.New("job is already completed")),
		retryID:   "job-2",
	}
	app := newTestApp(t, ps, &fakeUploadService{}, &fakeDownloadService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/process/status/job-9", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, string(apperrors.CodeNotFound), errBody.Error)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/process/cancel/job-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/process/retry/job-1", nil))
	require.NoError(t, err)
	retry := decode[dto.RetryJobResponse](t, resp)
	assert.Equal(t, "job-2", retry.JobID)
	assert.Equal(t, "job-1", retry.OriginalJobID)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/process/jobs?limit=7", nil))
	require.NoError(t, err)
	assert.Equal(t, 7, decode[dto.JobListResponse](t, resp).Total)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/process/jobs?status=bogus", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHealthHandler(t *testing.T) {
	ps := &fakeProcessService{status: dto.SystemStatus{ActiveJobs: 2, QueuedJobs: 1, TotalJobs: 10}}
	app := newTestApp(t, ps, &fakeUploadService{}, &fakeDownloadService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	health := decode[dto.HealthResponse](t, resp)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 3, health.ActiveJobs)

	ps.status = dto.SystemStatus{ActiveJobs: 50, TotalJobs: 50}
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", decode[dto.HealthResponse](t, resp).Status)

	ps.status = dto.SystemStatus{TotalJobs: 1000}
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestUploadHandler_Watermark(t *testing.T) {
	app := newTestApp(t, &fakeProcessService{}, &fakeUploadService{}, &fakeDownloadService{})

	resp, err := app.Test(multipartRequest(t, "/upload/watermark", "watermark", []string{"logo.png"}, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "wm-1", decode[dto.WatermarkUploadResponse](t, resp).WatermarkID)

	resp, err = app.Test(multipartRequest(t, "/upload/watermark", "other", []string{"logo.png"}, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDownloadHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job-1.zip")
	require.NoError(t, os.WriteFile(path, []byte("PK-zip-bytes"), 0o644))

	ds := &fakeDownloadService{loc: &usecases.ArchiveLocation{
		Filename:  "converted-images-job-1.zip",
		LocalPath: path,
		Size:      12,
	}}
	app := newTestApp(t, &fakeProcessService{}, &fakeUploadService{}, ds)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/download/zip/job-1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `attachment; filename="converted-images-job-1.zip"`)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "PK-zip-bytes", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/download/file/job-1/bad", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	ds.loc = &usecases.ArchiveLocation{Filename: "converted-images-job-1.zip", RemoteURL: "https://bucket.example/a.zip?sig"}
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/download/zip/job-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://bucket.example/a.zip?sig", resp.Header.Get("Location"))

	ds.loc = nil
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/download/zip/job-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
