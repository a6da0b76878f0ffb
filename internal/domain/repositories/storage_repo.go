package repositories

import (
	"context"
	"io"
)

// FileStorage stores uploaded bytes and returns the path they can be read back from.
type FileStorage interface {
	Upload(file io.Reader, metadata map[string]string) (string, error)
	Delete(fileID string) error
}

// ArchiveStorage publishes finished job archives.
type ArchiveStorage interface {
	// Publish makes the archive at localPath available and returns its storage key.
	Publish(ctx context.Context, jobID, localPath string) (string, error)
	// Resolve returns a remote URL for key, or "" when the archive is served from local disk.
	Resolve(ctx context.Context, key string) (string, error)
	Unpublish(ctx context.Context, key string) error
}
