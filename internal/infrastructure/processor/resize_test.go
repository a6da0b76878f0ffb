package processor

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"image-converter/internal/domain/entities"
)

func TestResize(t *testing.T) {
	tests := []struct {
		name         string
		srcW, srcH   int
		opts         entities.ResizeSettings
		wantW, wantH int
	}{
		{"inside already fits", 80, 60, entities.ResizeSettings{Width: 100, Height: 100, Fit: entities.FitInside}, 80, 60},
		{"inside shrinks", 400, 200, entities.ResizeSettings{Width: 100, Height: 100, Fit: entities.FitInside}, 100, 50},
		{"inside never enlarges with one side", 80, 60, entities.ResizeSettings{Width: 1000, Height: 50, Fit: entities.FitInside}, 67, 50},
		{"cover crops to box", 400, 200, entities.ResizeSettings{Width: 100, Height: 100, Fit: entities.FitCover}, 100, 100},
		{"contain pads to box", 400, 200, entities.ResizeSettings{Width: 100, Height: 100, Fit: entities.FitContain}, 100, 100},
		{"fill stretches", 400, 200, entities.ResizeSettings{Width: 50, Height: 120, Fit: entities.FitFill}, 50, 120},
		{"outside bounds from below", 400, 200, entities.ResizeSettings{Width: 100, Height: 100, Fit: entities.FitOutside}, 200, 100},
		{"width only keeps aspect", 400, 200, entities.ResizeSettings{Width: 200, Fit: entities.FitFill}, 200, 100},
		{"no box is a no-op", 400, 200, entities.ResizeSettings{Fit: entities.FitCover}, 400, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resize(newTestImage(tt.srcW, tt.srcH), tt.opts)
			assert.Equal(t, tt.wantW, out.Bounds().Dx())
			assert.Equal(t, tt.wantH, out.Bounds().Dy())
		})
	}
}

func TestResize_InsideReturnsSameImage(t *testing.T) {
	src := newTestImage(10, 10)
	out := Resize(src, entities.ResizeSettings{Width: 20, Height: 20, Fit: entities.FitInside})
	assert.Same(t, src, out.(*image.NRGBA))
}
