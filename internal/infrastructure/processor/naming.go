package processor

import (
	"fmt"
	"path/filepath"
	"strings"

	"image-converter/internal/domain/entities"
)

const defaultPrefix = "image"

// GenerateOutputFilename names the output for the file at position index of a batch.
// Original mode keeps the base name; custom and numbered produce prefix + zero padded counter.
func GenerateOutputFilename(originalName string, format entities.ImageFormat, naming entities.NamingSettings, index int) string {
	ext := "." + format.Extension()

	switch naming.Type {
	case entities.NamingCustom, entities.NamingNumbered:
		prefix := naming.Prefix
		if prefix == "" {
			prefix = defaultPrefix
		}
		return fmt.Sprintf("%s%03d%s", prefix, naming.Start+index, ext)
	default:
		base := filepath.Base(originalName)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		if base == "" || base == "." {
			base = fmt.Sprintf("%s%03d", defaultPrefix, index+1)
		}
		return base + ext
	}
}
