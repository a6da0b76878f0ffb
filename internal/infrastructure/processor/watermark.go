package processor

import (
	"image"
	"image/color"
	"math"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"image-converter/internal/domain/entities"
)

const (
	baseFontSize     = 24.0
	minFontSize      = 5.0
	maxWatermarkText = 100
	// watermark images are kept within this share of the base image
	maxWatermarkShare = 0.5
)

var (
	fontsMu sync.Mutex
	fonts   = map[string]*opentype.Font{}
)

func (p *Pipeline) applyWatermark(img image.Image, wm entities.WatermarkSettings) (image.Image, error) {
	switch wm.Type {
	case entities.WatermarkText:
		text := sanitizeWatermarkText(wm.Text)
		if text == "" {
			return img, nil
		}
		return textWatermark(img, text, wm.Font, wm.Position, wm.Opacity)
	case entities.WatermarkImage:
		if wm.ImagePath == "" {
			return img, nil
		}
		if _, err := os.Stat(wm.ImagePath); err != nil {
			p.logger.Warn("Watermark image not found, skipping", zap.String("path", wm.ImagePath))
			return img, nil
		}
		mark, err := imaging.Open(wm.ImagePath)
		if err != nil {
			return nil, err
		}
		return imageWatermark(img, mark, wm.Position, wm.Opacity), nil
	default:
		return img, nil
	}
}

// FontSize scales the label with the shorter side of the image so it reads the same at any resolution.
func FontSize(width, height int) float64 {
	short := math.Min(float64(width), float64(height))
	return math.Max(baseFontSize*short/1000, minFontSize)
}

func textWatermark(img image.Image, text, fontName string, pos entities.Position, opacity float64) (image.Image, error) {
	b := img.Bounds()
	f, err := loadFont(fontName)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    FontSize(b.Dx(), b.Dy()),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	defer face.Close()

	metrics := face.Metrics()
	pad := 2
	textW := font.MeasureString(face, text).Ceil()
	textH := (metrics.Ascent + metrics.Descent).Ceil()

	label := image.NewNRGBA(image.Rect(0, 0, textW+2*pad, textH+2*pad))
	baseline := fixed.I(pad) + metrics.Ascent

	// thin dark outline keeps white text legible on light backgrounds
	outline := &font.Drawer{Dst: label, Src: image.NewUniform(color.NRGBA{A: 77}), Face: face}
	for _, d := range []image.Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		outline.Dot = fixed.Point26_6{X: fixed.I(pad + d.X), Y: baseline + fixed.I(d.Y)}
		outline.DrawString(text)
	}
	fill := &font.Drawer{Dst: label, Src: image.White, Face: face, Dot: fixed.Point26_6{X: fixed.I(pad), Y: baseline}}
	fill.DrawString(text)

	var mark image.Image = label
	if label.Bounds().Dx() > b.Dx() || label.Bounds().Dy() > b.Dy() {
		mark = imaging.Fit(label, b.Dx(), b.Dy(), imaging.Lanczos)
	}
	return imaging.Overlay(img, mark, anchorPoint(b, mark.Bounds(), pos), opacity), nil
}

func imageWatermark(img, mark image.Image, pos entities.Position, opacity float64) image.Image {
	b := img.Bounds()
	maxW := int(math.Floor(float64(b.Dx()) * maxWatermarkShare))
	maxH := int(math.Floor(float64(b.Dy()) * maxWatermarkShare))
	mb := mark.Bounds()
	if mb.Dx() > maxW || mb.Dy() > maxH {
		// imaging.Fit only ever shrinks
		mark = imaging.Fit(mark, max(maxW, 1), max(maxH, 1), imaging.Lanczos)
	}
	return imaging.Overlay(img, mark, anchorPoint(b, mark.Bounds(), pos), opacity)
}

// anchorPoint returns the top-left corner that places overlay at pos inside base.
// Unknown positions fall back to southeast.
func anchorPoint(base, overlay image.Rectangle, pos entities.Position) image.Point {
	freeX := base.Dx() - overlay.Dx()
	freeY := base.Dy() - overlay.Dy()

	x, y := freeX, freeY
	switch pos {
	case entities.PositionCenter:
		x, y = freeX/2, freeY/2
	case entities.PositionNorth:
		x, y = freeX/2, 0
	case entities.PositionNorthEast:
		x, y = freeX, 0
	case entities.PositionEast:
		x, y = freeX, freeY/2
	case entities.PositionSouth:
		x, y = freeX/2, freeY
	case entities.PositionSouthWest:
		x, y = 0, freeY
	case entities.PositionWest:
		x, y = 0, freeY/2
	case entities.PositionNorthWest:
		x, y = 0, 0
	}
	return image.Pt(base.Min.X+x, base.Min.Y+y)
}

// sanitizeWatermarkText drops control characters and caps the label length.
// The label is rasterized directly, there is no markup to escape.
func sanitizeWatermarkText(text string) string {
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(text))
	if runes := []rune(text); len(runes) > maxWatermarkText {
		text = string(runes[:maxWatermarkText])
	}
	return text
}

func loadFont(name string) (*opentype.Font, error) {
	key, ttf := fontFor(name)

	fontsMu.Lock()
	defer fontsMu.Unlock()
	if f, ok := fonts[key]; ok {
		return f, nil
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	fonts[key] = f
	return f, nil
}

func fontFor(name string) (string, []byte) {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "mono"), strings.Contains(n, "courier"):
		return "mono", gomonobold.TTF
	case strings.Contains(n, "italic"):
		return "italic", gobolditalic.TTF
	case strings.Contains(n, "regular"), strings.Contains(n, "light"):
		return "regular", goregular.TTF
	default:
		return "bold", gobold.TTF
	}
}
