package helper

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-converter/internal/domain/entities"
	apperrors "image-converter/pkg/errors"
)

func TestParseSettings_Defaults(t *testing.T) {
	s, err := ParseSettings("", nil)
	require.NoError(t, err)

	assert.Equal(t, entities.FormatWebP, s.Format)
	assert.Equal(t, DefaultQuality, s.Quality)
	assert.Equal(t, entities.ResizeSettings{Width: 1920, Height: 1080, Fit: entities.FitInside}, s.Resize)
	assert.Equal(t, entities.WatermarkNone, s.Watermark.Type)
	assert.Equal(t, entities.NamingSettings{Type: entities.NamingOriginal, Prefix: "image", Start: 1}, s.Naming)
}

func TestParseSettings_ClampsAndFallsBack(t *testing.T) {
	raw := `{
		"format": "gif",
		"quality": 150,
		"resize": {"width": 20000, "height": -4, "fit": "stretch"},
		"watermark": {"type": "text", "text": "` + strings.Repeat("x", 120) + `", "position": "top", "opacity": 3},
		"naming": {"type": "numbered", "prefix": "my photo/../", "start": -2}
	}`
	s, err := ParseSettings(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, entities.FormatWebP, s.Format)
	assert.Equal(t, DefaultQuality, s.Quality)
	assert.Equal(t, MaxDimension, s.Resize.Width)
	assert.Equal(t, 1, s.Resize.Height)
	assert.Equal(t, entities.FitInside, s.Resize.Fit)

	assert.Equal(t, entities.WatermarkText, s.Watermark.Type)
	assert.Len(t, s.Watermark.Text, MaxTextLength)
	assert.Equal(t, entities.PositionSouthEast, s.Watermark.Position)
	assert.Equal(t, 1.0, s.Watermark.Opacity)
	assert.Equal(t, DefaultFont, s.Watermark.Font)

	assert.Equal(t, entities.NamingNumbered, s.Naming.Type)
	assert.Equal(t, "myphoto", s.Naming.Prefix)
	assert.Equal(t, 0, s.Naming.Start)
}

func TestParseSettings_KeepsValidValues(t *testing.T) {
	raw := `{"format":"jpg","quality":40,"resize":{"width":100,"height":50,"fit":"cover"},
		"watermark":{"type":"none"},"naming":{"type":"custom","prefix":"x","start":0}}`
	s, err := ParseSettings(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, entities.FormatJPEG, s.Format)
	assert.Equal(t, 40, s.Quality)
	assert.Equal(t, entities.ResizeSettings{Width: 100, Height: 50, Fit: entities.FitCover}, s.Resize)
	assert.Equal(t, entities.NamingSettings{Type: entities.NamingCustom, Prefix: "x", Start: 0}, s.Naming)
}

func TestParseSettings_MalformedJSON(t *testing.T) {
	_, err := ParseSettings("{not json", nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestParseSettings_ImageWatermark(t *testing.T) {
	resolve := func(id string) (string, error) {
		if id == "wm-1" {
			return "/data/wm-1.png", nil
		}
		return "", errors.New("unknown watermark")
	}

	s, err := ParseSettings(`{"watermark":{"type":"image","watermarkId":"wm-1","opacity":0.05}}`, resolve)
	require.NoError(t, err)
	assert.Equal(t, "/data/wm-1.png", s.Watermark.ImagePath)
	assert.Equal(t, MinOpacity, s.Watermark.Opacity)

	_, err = ParseSettings(`{"watermark":{"type":"image","watermarkId":"nope"}}`, resolve)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = ParseSettings(`{"watermark":{"type":"image"}}`, resolve)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestSanitizePrefix(t *testing.T) {
	assert.Equal(t, "abc-_1", SanitizePrefix("a b<c>-_1!"))
	assert.Len(t, SanitizePrefix(strings.Repeat("a", 80)), MaxPrefixLength)
}
