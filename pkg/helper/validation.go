package helper

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"image-converter/internal/domain/dto"
	"image-converter/internal/domain/entities"
	apperrors "image-converter/pkg/errors"
)

const (
	DefaultQuality   = 85
	DefaultWidth     = 1920
	DefaultHeight    = 1080
	MaxDimension     = 10000
	DefaultOpacity   = 0.7
	MinOpacity       = 0.1
	MaxOpacity       = 1.0
	MaxTextLength    = 100
	MaxPrefixLength  = 50
	DefaultPrefix    = "image"
	DefaultFont      = "Arial"
	DefaultNameStart = 1
)

var prefixDisallowed = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// WatermarkResolver maps an uploaded watermark id to its path on disk.
type WatermarkResolver func(id string) (string, error)

// ParseSettings decodes the settings JSON of a batch request and sanitizes it.
// An empty string yields the defaults.
func ParseSettings(raw string, resolve WatermarkResolver) (entities.Settings, error) {
	var req dto.SettingsRequest
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return entities.Settings{}, apperrors.ErrValidation(fmt.Errorf("processing settings are invalid: %w", err))
		}
	}
	return SanitizeSettings(req, resolve)
}

// SanitizeSettings turns a request into settings that are safe to hand to the pipeline.
// Unknown enum values fall back to defaults and numbers are clamped into range.
func SanitizeSettings(req dto.SettingsRequest, resolve WatermarkResolver) (entities.Settings, error) {
	wm, err := sanitizeWatermark(req.Watermark, resolve)
	if err != nil {
		return entities.Settings{}, err
	}
	return entities.Settings{
		Format:    sanitizeFormat(req.Format),
		Quality:   sanitizeQuality(req.Quality),
		Resize:    sanitizeResize(req.Resize),
		Watermark: wm,
		Naming:    sanitizeNaming(req.Naming),
	}, nil
}

func sanitizeFormat(format string) entities.ImageFormat {
	f := entities.ImageFormat(strings.ToLower(format))
	if f == "jpg" {
		return entities.FormatJPEG
	}
	for _, known := range entities.ImageFormats {
		if f == known {
			return f
		}
	}
	return entities.FormatWebP
}

func sanitizeQuality(q int) int {
	if q >= 1 && q <= 100 {
		return q
	}
	return DefaultQuality
}

func sanitizeResize(r *dto.ResizeRequest) entities.ResizeSettings {
	if r == nil {
		return entities.ResizeSettings{Width: DefaultWidth, Height: DefaultHeight, Fit: entities.FitInside}
	}
	fit := entities.FitInside
	for _, known := range entities.FitModes {
		if entities.FitMode(r.Fit) == known {
			fit = known
		}
	}
	return entities.ResizeSettings{
		Width:  clampDimension(r.Width, DefaultWidth),
		Height: clampDimension(r.Height, DefaultHeight),
		Fit:    fit,
	}
}

func clampDimension(v, def int) int {
	if v == 0 {
		v = def
	}
	return max(1, min(MaxDimension, v))
}

func sanitizeWatermark(w *dto.WatermarkRequest, resolve WatermarkResolver) (entities.WatermarkSettings, error) {
	if w == nil {
		return entities.WatermarkSettings{Type: entities.WatermarkNone}, nil
	}

	out := entities.WatermarkSettings{
		Type:     entities.WatermarkNone,
		Text:     truncateRunes(w.Text, MaxTextLength),
		Font:     w.Font,
		Position: entities.PositionSouthEast,
		Opacity:  clampOpacity(w.Opacity),
	}
	switch entities.WatermarkType(w.Type) {
	case entities.WatermarkText, entities.WatermarkImage:
		out.Type = entities.WatermarkType(w.Type)
	}
	if out.Font == "" {
		out.Font = DefaultFont
	}
	for _, p := range entities.Positions {
		if entities.Position(w.Position) == p {
			out.Position = p
		}
	}

	if out.Type == entities.WatermarkImage {
		if w.WatermarkID == "" {
			return out, apperrors.ErrValidation(errors.New("image watermark requires a watermarkId"))
		}
		if resolve == nil {
			return out, apperrors.ErrValidation(errors.New("image watermarks are not supported"))
		}
		path, err := resolve(w.WatermarkID)
		if err != nil {
			return out, apperrors.ErrValidation(err)
		}
		out.ImagePath = path
	}
	return out, nil
}

func clampOpacity(o float64) float64 {
	if o == 0 || math.IsNaN(o) {
		return DefaultOpacity
	}
	return math.Max(MinOpacity, math.Min(MaxOpacity, o))
}

func sanitizeNaming(n *dto.NamingRequest) entities.NamingSettings {
	out := entities.NamingSettings{Type: entities.NamingOriginal, Prefix: DefaultPrefix, Start: DefaultNameStart}
	if n == nil {
		return out
	}
	switch entities.NamingType(n.Type) {
	case entities.NamingCustom, entities.NamingNumbered:
		out.Type = entities.NamingType(n.Type)
	}
	if n.Prefix != nil {
		out.Prefix = SanitizePrefix(*n.Prefix)
	}
	if n.Start != nil {
		out.Start = max(0, *n.Start)
	}
	return out
}

// SanitizePrefix keeps only [A-Za-z0-9_-] and at most 50 characters.
func SanitizePrefix(prefix string) string {
	p := prefixDisallowed.ReplaceAllString(prefix, "")
	if len(p) > MaxPrefixLength {
		p = p[:MaxPrefixLength]
	}
	return p
}

func truncateRunes(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
