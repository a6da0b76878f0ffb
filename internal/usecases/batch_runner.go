package usecases

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"image-converter/internal/domain/entities"
	"image-converter/internal/infrastructure/processor"
	"image-converter/internal/pkg/metrics"
	apperrors "image-converter/pkg/errors"
)

// Transformer converts a single image.
type Transformer interface {
	Transform(inputPath, outputPath string, settings entities.Settings, index int) (*entities.TransformOutput, error)
}

// ProgressFunc receives a snapshot after every finished file. Calls are serialized and
// Processed never decreases between calls.
type ProgressFunc func(entities.Progress)

type BatchRunner struct {
	transformer Transformer
	concurrency int
	logger      *zap.Logger
	now         func() time.Time
}

func NewBatchRunner(transformer Transformer, concurrency int, logger *zap.Logger) *BatchRunner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchRunner{
		transformer: transformer,
		concurrency: concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// Run transforms files into outputDir. A failing file becomes a failed Result and the
// batch keeps going. Cancellation is checked before each file starts; in that case the
// results gathered so far are returned with ctx.Err(). A panic in the pipeline stops
// the batch and comes back as a crash error alongside the partial results.
func (r *BatchRunner) Run(ctx context.Context, files []entities.FileDescriptor, settings entities.Settings, outputDir string, onProgress ProgressFunc) ([]entities.Result, error) {
	total := len(files)
	results := make([]entities.Result, total)
	finished := make([]bool, total)

	var (
		mu        sync.Mutex
		processed int
		crashErr  error
		start     = r.now()
	)

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, file := range files {
		mu.Lock()
		crashed := crashErr != nil
		mu.Unlock()
		if crashed || ctx.Err() != nil {
			break
		}

		g.Go(func() (err error) {
			mu.Lock()
			stop := crashErr != nil
			mu.Unlock()
			if stop || ctx.Err() != nil {
				return nil
			}
			defer func() {
				if p := recover(); p != nil {
					r.logger.Error("Pipeline panicked",
						zap.String("file", file.OriginalName),
						zap.Any("panic", p),
					)
					mu.Lock()
					if crashErr == nil {
						crashErr = apperrors.ErrCrash(fmt.Errorf("%v", p))
					}
					mu.Unlock()
					err = crashErr
				}
			}()

			res := r.processOne(file, settings, outputDir, i)

			mu.Lock()
			defer mu.Unlock()
			results[i] = res
			finished[i] = true
			processed++
			if onProgress != nil {
				onProgress(snapshot(processed, total, r.now().Sub(start)))
			}
			return nil
		})
	}

	_ = g.Wait()

	out := make([]entities.Result, 0, processed)
	for i, ok := range finished {
		if ok {
			out = append(out, results[i])
		}
	}

	if crashErr != nil {
		return out, crashErr
	}
	if err := ctx.Err(); err != nil && len(out) < total {
		return out, err
	}
	return out, nil
}

func (r *BatchRunner) processOne(file entities.FileDescriptor, settings entities.Settings, outputDir string, index int) entities.Result {
	outputName := processor.GenerateOutputFilename(file.OriginalName, settings.Format, settings.Naming, index)
	outputPath := filepath.Join(outputDir, outputName)

	began := time.Now()
	out, err := r.transformer.Transform(file.Path, outputPath, settings, index)
	metrics.RecordImage(err == nil, time.Since(began))

	if err != nil {
		r.logger.Warn("Image failed",
			zap.String("file", file.OriginalName),
			zap.Error(err),
		)
		return entities.Result{
			Success:      false,
			OriginalName: file.OriginalName,
			OutputName:   outputName,
			Error:        apperrors.Describe(err),
		}
	}

	return entities.Result{
		Success:        true,
		OriginalName:   file.OriginalName,
		OutputName:     outputName,
		OutputPath:     outputPath,
		OriginalSize:   out.OriginalSize,
		ProcessedSize:  out.ProcessedSize,
		Width:          out.Width,
		Height:         out.Height,
		OriginalWidth:  out.OriginalWidth,
		OriginalHeight: out.OriginalHeight,
	}
}

// snapshot computes cumulative throughput since the batch started.
func snapshot(processed, total int, elapsed time.Duration) entities.Progress {
	p := entities.Progress{Processed: processed, Total: total}
	if total > 0 {
		p.Percentage = int(math.Round(float64(processed) / float64(total) * 100))
	}
	if processed < 1 {
		return p
	}
	secs := math.Max(elapsed.Seconds(), 1e-3)
	p.Speed = float64(processed) / secs
	p.ETA = float64(total-processed) / p.Speed
	return p
}
