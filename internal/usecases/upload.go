package usecases

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"image-converter/internal/domain/dto"
	"image-converter/internal/domain/entities"
	"image-converter/internal/domain/repositories"
	"image-converter/internal/pkg/fileutils"
	apperrors "image-converter/pkg/errors"
	"image-converter/pkg/file"
)

const watermarkIDPrefix = "wm-"

type UploadService interface {
	SaveImages(headers []*multipart.FileHeader) ([]entities.FileDescriptor, error)
	SaveWatermark(header *multipart.FileHeader) (*dto.WatermarkUploadResponse, error)
	ResolveWatermark(id string) (string, error)
	Discard(files []entities.FileDescriptor)
}

type UploadLimits struct {
	MaxFileSize      int64
	MaxFiles         int
	MaxWatermarkSize int64
}

type uploadService struct {
	images       repositories.FileStorage
	watermarks   repositories.FileStorage
	watermarkDir string
	limits       UploadLimits
	logger       *zap.Logger
}

var _ UploadService = (*uploadService)(nil)

func NewUploadService(images, watermarks repositories.FileStorage, watermarkDir string, limits UploadLimits, logger *zap.Logger) UploadService {
	return &uploadService{
		images:       images,
		watermarks:   watermarks,
		watermarkDir: watermarkDir,
		limits:       limits,
		logger:       logger,
	}
}

// SaveImages validates and stores a batch of uploaded images under one batch folder.
// Either every file is stored or none is.
func (s *uploadService) SaveImages(headers []*multipart.FileHeader) ([]entities.FileDescriptor, error) {
	if len(headers) == 0 {
		return nil, apperrors.ErrValidation(errors.New("please select at least one image file"))
	}
	if s.limits.MaxFiles > 0 && len(headers) > s.limits.MaxFiles {
		return nil, apperrors.ErrValidation(fmt.Errorf("at most %d files per batch", s.limits.MaxFiles))
	}
	for _, h := range headers {
		if err := validateImage(h, s.limits.MaxFileSize); err != nil {
			return nil, err
		}
	}

	batch := uuid.NewString()
	saved := make([]entities.FileDescriptor, 0, len(headers))
	for _, h := range headers {
		fd, err := s.store(h, batch)
		if err != nil {
			s.Discard(saved)
			return nil, apperrors.ErrInternal(fmt.Errorf("store %s: %w", h.Filename, err))
		}
		saved = append(saved, fd)
	}

	s.logger.Info("Images uploaded", zap.String("batch", batch), zap.Int("files", len(saved)))
	return saved, nil
}

func (s *uploadService) store(h *multipart.FileHeader, folder string) (entities.FileDescriptor, error) {
	src, err := h.Open()
	if err != nil {
		return entities.FileDescriptor{}, err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(h.Filename))
	path, err := s.images.Upload(src, map[string]string{
		"folder":   folder,
		"filename": uuid.NewString() + ext,
	})
	if err != nil {
		return entities.FileDescriptor{}, err
	}
	return entities.FileDescriptor{
		Path:         path,
		OriginalName: filepath.Base(h.Filename),
		Size:         h.Size,
		MimeType:     mimeOf(h),
	}, nil
}

func (s *uploadService) SaveWatermark(header *multipart.FileHeader) (*dto.WatermarkUploadResponse, error) {
	if header == nil {
		return nil, apperrors.ErrValidation(errors.New("please select a watermark image"))
	}
	if err := validateImage(header, s.limits.MaxWatermarkSize); err != nil {
		return nil, err
	}

	src, err := header.Open()
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	defer src.Close()

	id := watermarkIDPrefix + uuid.NewString()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, err := s.watermarks.Upload(src, map[string]string{"filename": id + ext}); err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	s.logger.Info("Watermark uploaded", zap.String("watermark_id", id))
	return &dto.WatermarkUploadResponse{
		Success:      true,
		WatermarkID:  id,
		OriginalName: filepath.Base(header.Filename),
		Size:         header.Size,
		MimeType:     mimeOf(header),
	}, nil
}

// ResolveWatermark maps a watermark id to the stored file inside the watermark directory.
func (s *uploadService) ResolveWatermark(id string) (string, error) {
	if !strings.HasPrefix(id, watermarkIDPrefix) || !file.IsSafeName(id) || strings.ContainsAny(id, "*?[") {
		return "", fmt.Errorf("invalid watermark id %q", id)
	}
	matches, err := filepath.Glob(filepath.Join(s.watermarkDir, id+".*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("watermark %s not found", id)
	}
	return matches[0], nil
}

// Discard removes stored uploads, used when a batch is rejected after saving.
func (s *uploadService) Discard(files []entities.FileDescriptor) {
	for _, f := range files {
		if err := fileutils.RemoveIfExists(f.Path); err != nil {
			s.logger.Warn("Failed to discard upload", zap.String("path", f.Path), zap.Error(err))
		}
		fileutils.RemoveDirIfEmpty(filepath.Dir(f.Path))
	}
}

func validateImage(h *multipart.FileHeader, maxSize int64) error {
	if !file.IsImageFile(h.Filename) && !file.IsImageMimeType(h.Header.Get("Content-Type")) {
		return apperrors.ErrValidation(fmt.Errorf("file %s is not a supported image", h.Filename))
	}
	if maxSize > 0 && h.Size > maxSize {
		return apperrors.ErrValidation(fmt.Errorf("file %s exceeds size limit", h.Filename))
	}
	return nil
}

func mimeOf(h *multipart.FileHeader) string {
	if ct := h.Header.Get("Content-Type"); file.IsImageMimeType(ct) {
		return ct
	}
	return file.GetMimeTypeFromExtension(h.Filename)
}
