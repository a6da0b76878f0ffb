package entities

type ImageFormat string

const (
	FormatWebP ImageFormat = "webp"
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
	FormatAVIF ImageFormat = "avif"
	FormatTIFF ImageFormat = "tiff"
)

var ImageFormats = []ImageFormat{FormatWebP, FormatJPEG, FormatPNG, FormatAVIF, FormatTIFF}

// Extension returns the file extension (without dot) written for the format.
func (f ImageFormat) Extension() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatPNG:
		return "png"
	case FormatAVIF:
		return "avif"
	case FormatTIFF:
		return "tiff"
	default:
		return "webp"
	}
}

type FitMode string

const (
	FitCover   FitMode = "cover"
	FitContain FitMode = "contain"
	FitFill    FitMode = "fill"
	FitInside  FitMode = "inside"
	FitOutside FitMode = "outside"
)

var FitModes = []FitMode{FitCover, FitContain, FitFill, FitInside, FitOutside}

type WatermarkType string

const (
	WatermarkNone  WatermarkType = "none"
	WatermarkText  WatermarkType = "text"
	WatermarkImage WatermarkType = "image"
)

// Position is a compositing anchor: center or one of the eight compass points.
type Position string

const (
	PositionCenter    Position = "center"
	PositionNorth     Position = "north"
	PositionNorthEast Position = "northeast"
	PositionEast      Position = "east"
	PositionSouthEast Position = "southeast"
	PositionSouth     Position = "south"
	PositionSouthWest Position = "southwest"
	PositionWest      Position = "west"
	PositionNorthWest Position = "northwest"
)

var Positions = []Position{
	PositionCenter, PositionNorth, PositionNorthEast, PositionEast, PositionSouthEast,
	PositionSouth, PositionSouthWest, PositionWest, PositionNorthWest,
}

type NamingType string

const (
	NamingOriginal NamingType = "original"
	NamingCustom   NamingType = "custom"
	NamingNumbered NamingType = "numbered"
)

type ResizeSettings struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Fit    FitMode `json:"fit"`
}

type WatermarkSettings struct {
	Type     WatermarkType `json:"type"`
	Text     string        `json:"text,omitempty"`
	Font     string        `json:"font,omitempty"`
	Position Position      `json:"position,omitempty"`
	Opacity  float64       `json:"opacity,omitempty"`
	// ImagePath is resolved server side from an uploaded watermark id.
	ImagePath string `json:"-"`
}

type NamingSettings struct {
	Type   NamingType `json:"type"`
	Prefix string     `json:"prefix,omitempty"`
	Start  int        `json:"start"`
}

// Settings is the shared, read-only transformation configuration of a batch.
type Settings struct {
	Format    ImageFormat       `json:"format"`
	Quality   int               `json:"quality"`
	Resize    ResizeSettings    `json:"resize"`
	Watermark WatermarkSettings `json:"watermark"`
	Naming    NamingSettings    `json:"naming"`
}
