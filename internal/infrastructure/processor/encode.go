package processor

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"

	"image-converter/internal/domain/entities"
)

const (
	webpMethod = 4
	avifSpeed  = 6
)

// Encode writes img to w in the requested format. Quality is mapped to each codec's own
// knob; for png it becomes a compression level and for tiff it is ignored.
func Encode(w io.Writer, img image.Image, format entities.ImageFormat, quality int) error {
	quality = clampQuality(quality)

	switch format {
	case entities.FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case entities.FormatPNG:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(PNGCompression(quality)))
	case entities.FormatTIFF:
		return imaging.Encode(w, img, imaging.TIFF)
	case entities.FormatAVIF:
		return avif.Encode(w, img, avif.Options{
			Quality:           quality,
			QualityAlpha:      quality,
			Speed:             avifSpeed,
			ChromaSubsampling: image.YCbCrSubsampleRatio420,
		})
	case entities.FormatWebP, "":
		return webp.Encode(w, img, webp.Options{Quality: quality, Method: webpMethod})
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// PNGCompression maps quality 1-100 onto a zlib level 0-9 (higher quality, less effort)
// and buckets it into the levels image/png exposes.
func PNGCompression(quality int) png.CompressionLevel {
	level := int(math.Floor(float64(100-quality)/10 + 0.5))
	switch {
	case level <= 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}

func clampQuality(q int) int {
	switch {
	case q <= 0:
		return 85
	case q > 100:
		return 100
	}
	return q
}
