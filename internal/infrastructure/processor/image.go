package processor

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"image-converter/internal/domain/entities"
	"image-converter/internal/pkg/fileutils"
	apperrors "image-converter/pkg/errors"
)

// Pipeline runs resize, watermark and encode for one image at a time.
// It holds no per-image state and is safe for concurrent use.
type Pipeline struct {
	logger *zap.Logger
}

func NewPipeline(logger *zap.Logger) *Pipeline {
	return &Pipeline{logger: logger}
}

// Transform reads inputPath, applies settings and writes the encoded result to outputPath.
// The output only appears once encoding has fully succeeded.
func (p *Pipeline) Transform(inputPath, outputPath string, settings entities.Settings, index int) (*entities.TransformOutput, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, apperrors.ErrProcessing(fmt.Errorf("read input: %w", err))
	}

	src, err := imaging.Open(inputPath, imaging.AutoOrientation(true))
	if err != nil {
		p.logger.Error("Failed to open image",
			zap.String("path", inputPath),
			zap.Error(err),
		)
		return nil, apperrors.ErrProcessing(fmt.Errorf("decode image: %w", err))
	}
	ob := src.Bounds()

	var img image.Image = Resize(src, settings.Resize)

	img, err = p.applyWatermark(img, settings.Watermark)
	if err != nil {
		return nil, apperrors.ErrProcessing(fmt.Errorf("watermark: %w", err))
	}

	err = fileutils.WriteAtomic(outputPath, func(w io.Writer) error {
		return Encode(w, img, settings.Format, settings.Quality)
	})
	if err != nil {
		p.logger.Error("Failed to save image",
			zap.String("path", outputPath),
			zap.String("format", string(settings.Format)),
			zap.Error(err),
		)
		return nil, apperrors.ErrProcessing(fmt.Errorf("encode %s: %w", settings.Format, err))
	}

	size, err := fileutils.FileSize(outputPath)
	if err != nil {
		return nil, apperrors.ErrProcessing(err)
	}

	b := img.Bounds()
	p.logger.Debug("Image processed",
		zap.Int("index", index),
		zap.String("output", outputPath),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
	)

	return &entities.TransformOutput{
		OriginalSize:   info.Size(),
		ProcessedSize:  size,
		Width:          b.Dx(),
		Height:         b.Dy(),
		OriginalWidth:  ob.Dx(),
		OriginalHeight: ob.Dy(),
	}, nil
}
