package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"image-converter/internal/domain/repositories"
	"image-converter/internal/pkg/fileutils"
	"image-converter/pkg/file"
)

// LocalStorage keeps files under BasePath. It stores uploads and, for the download
// directory, serves as the archive storage that leaves archives where they were built.
type LocalStorage struct {
	BasePath string
}

var (
	_ repositories.FileStorage    = (*LocalStorage)(nil)
	_ repositories.ArchiveStorage = (*LocalStorage)(nil)
)

func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{BasePath: basePath}
}

// Upload copies file to BasePath/<folder>/<filename> and returns the full path.
func (l *LocalStorage) Upload(file io.Reader, metadata map[string]string) (string, error) {
	filename := metadata["filename"]
	folder := metadata["folder"]
	if !isSafeSegment(filename) || (folder != "" && !isSafeSegment(folder)) {
		return "", fmt.Errorf("invalid storage path %q/%q", folder, filename)
	}
	fullPath := filepath.Join(l.BasePath, folder, filename)

	if err := fileutils.WriteAtomic(fullPath, func(w io.Writer) error {
		_, err := io.Copy(w, file)
		return err
	}); err != nil {
		return "", fmt.Errorf("write %s: %w", fullPath, err)
	}

	return fullPath, nil
}

func (l *LocalStorage) Delete(fileID string) error {
	full := filepath.Join(l.BasePath, fileID)
	base := filepath.Clean(l.BasePath) + string(filepath.Separator)
	if !strings.HasPrefix(full, base) {
		return fmt.Errorf("invalid file id %q", fileID)
	}
	return fileutils.RemoveIfExists(full)
}

// Publish leaves the archive in place; its key is the file name under BasePath.
func (l *LocalStorage) Publish(_ context.Context, _ string, localPath string) (string, error) {
	if _, err := os.Stat(localPath); err != nil {
		return "", err
	}
	return filepath.Base(localPath), nil
}

func (l *LocalStorage) Resolve(context.Context, string) (string, error) {
	return "", nil
}

func (l *LocalStorage) Unpublish(_ context.Context, key string) error {
	return l.Delete(key)
}

func isSafeSegment(name string) bool {
	return file.IsSafeName(name)
}
