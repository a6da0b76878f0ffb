package processor

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"

	"image-converter/internal/domain/entities"
)

func TestFontSize(t *testing.T) {
	assert.InDelta(t, 24.0, FontSize(1000, 2000), 0.001)
	assert.InDelta(t, 48.0, FontSize(4000, 2000), 0.001)
	assert.InDelta(t, 5.0, FontSize(100, 100), 0.001, "small images get the minimum size")
}

func TestAnchorPoint(t *testing.T) {
	base := image.Rect(0, 0, 100, 80)
	overlay := image.Rect(0, 0, 20, 10)

	tests := map[entities.Position]image.Point{
		entities.PositionCenter:    {40, 35},
		entities.PositionNorth:     {40, 0},
		entities.PositionNorthEast: {80, 0},
		entities.PositionEast:      {80, 35},
		entities.PositionSouthEast: {80, 70},
		entities.PositionSouth:     {40, 70},
		entities.PositionSouthWest: {0, 70},
		entities.PositionWest:      {0, 35},
		entities.PositionNorthWest: {0, 0},
		"bogus":                    {80, 70},
	}
	for pos, want := range tests {
		assert.Equal(t, want, anchorPoint(base, overlay, pos), string(pos))
	}
}

func TestImageWatermark_ShrinksLargeMarkOnly(t *testing.T) {
	base := newTestImage(200, 100)

	out := imageWatermark(base, newTestImage(150, 150), entities.PositionCenter, 0.5)
	assert.Equal(t, base.Bounds(), out.Bounds())

	red := color.NRGBA{R: 255, A: 255}
	out = imageWatermark(base, imaging.New(10, 10, red), entities.PositionNorthWest, 1)
	// a fully opaque mark replaces the base pixels it covers
	assert.Equal(t, red, out.(*image.NRGBA).NRGBAAt(0, 0))
	assert.Equal(t, base.NRGBAAt(50, 50), out.(*image.NRGBA).NRGBAAt(50, 50))
}

func TestSanitizeWatermarkText(t *testing.T) {
	assert.Equal(t, "hello", sanitizeWatermarkText("  hel\x00lo\n "))
	assert.Len(t, []rune(sanitizeWatermarkText(strings.Repeat("ß", 150))), maxWatermarkText)
}

func TestFontFor(t *testing.T) {
	key, _ := fontFor("Courier New")
	assert.Equal(t, "mono", key)
	key, _ = fontFor("Arial")
	assert.Equal(t, "bold", key)
}
