package processor

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"image-converter/internal/domain/entities"
)

// Resize scales img according to the fit policy. A zero width or height is derived from
// the aspect ratio; both zero leaves the image untouched.
func Resize(img image.Image, opts entities.ResizeSettings) image.Image {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return img
	}

	w, h, ok := targetBox(srcW, srcH, opts.Width, opts.Height)
	if !ok {
		return img
	}

	switch opts.Fit {
	case entities.FitCover:
		return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
	case entities.FitFill:
		return imaging.Resize(img, w, h, imaging.Lanczos)
	case entities.FitContain:
		scale := math.Min(float64(w)/float64(srcW), float64(h)/float64(srcH))
		scaled := imaging.Resize(img, scaledDim(srcW, scale), scaledDim(srcH, scale), imaging.Lanczos)
		canvas := imaging.New(w, h, color.NRGBA{A: 255})
		return imaging.PasteCenter(canvas, scaled)
	case entities.FitOutside:
		scale := math.Max(float64(w)/float64(srcW), float64(h)/float64(srcH))
		return imaging.Resize(img, scaledDim(srcW, scale), scaledDim(srcH, scale), imaging.Lanczos)
	default:
		// inside: already fitting images are kept as is, never enlarged
		if srcW <= w && srcH <= h {
			return img
		}
		scale := math.Min(float64(w)/float64(srcW), float64(h)/float64(srcH))
		return imaging.Resize(img, scaledDim(srcW, scale), scaledDim(srcH, scale), imaging.Lanczos)
	}
}

func targetBox(srcW, srcH, w, h int) (int, int, bool) {
	switch {
	case w <= 0 && h <= 0:
		return 0, 0, false
	case w <= 0:
		w = scaledDim(srcW, float64(h)/float64(srcH))
	case h <= 0:
		h = scaledDim(srcH, float64(w)/float64(srcW))
	}
	return w, h, true
}

func scaledDim(v int, scale float64) int {
	d := int(math.Round(float64(v) * scale))
	if d < 1 {
		return 1
	}
	return d
}
