package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"image-converter/internal/domain/entities"
	"image-converter/internal/pkg/fileutils"
	apperrors "image-converter/pkg/errors"
)

const compressionLevel = 6

var errNothingToArchive = errors.New("no successful files to archive")

// ZipArchiver packs job outputs into DOWNLOAD_DIR/<jobId>.zip.
type ZipArchiver struct {
	dir    string
	logger *zap.Logger
}

func NewZipArchiver(dir string, logger *zap.Logger) *ZipArchiver {
	return &ZipArchiver{dir: dir, logger: logger}
}

// PathFor returns where the archive of jobID is written.
func (a *ZipArchiver) PathFor(jobID string) string {
	return filepath.Join(a.dir, jobID+".zip")
}

// Archive streams every successful result into a single zip named after the job.
// Results whose output file has gone missing are skipped; if nothing is left the
// call fails with an archive error and no file is produced.
func (a *ZipArchiver) Archive(results []entities.Result, jobID string) (*entities.Archive, error) {
	if len(results) == 0 {
		return nil, apperrors.ErrArchive(errNothingToArchive)
	}

	path := a.PathFor(jobID)
	added := 0
	err := fileutils.WriteAtomic(path, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, compressionLevel)
		})

		seen := make(map[string]bool, len(results))
		for _, r := range results {
			if !r.Success || r.OutputPath == "" || seen[r.OutputName] {
				continue
			}
			ok, err := a.addFile(zw, r.OutputPath, r.OutputName)
			if err != nil {
				_ = zw.Close()
				return err
			}
			if ok {
				seen[r.OutputName] = true
				added++
			}
		}

		if added == 0 {
			_ = zw.Close()
			return errNothingToArchive
		}
		return zw.Close()
	})
	if err != nil {
		return nil, apperrors.ErrArchive(err)
	}

	size, err := fileutils.FileSize(path)
	if err != nil {
		return nil, apperrors.ErrArchive(err)
	}

	a.logger.Info("Archive created",
		zap.String("job_id", jobID),
		zap.Int("files", added),
		zap.Int64("size", size),
	)
	return &entities.Archive{Path: path, Size: size}, nil
}

func (a *ZipArchiver) addFile(zw *zip.Writer, path, name string) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		a.logger.Warn("Output missing, not archived", zap.String("path", path))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return false, err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(w, f); err != nil {
		return false, fmt.Errorf("add %s: %w", name, err)
	}
	return true, nil
}
