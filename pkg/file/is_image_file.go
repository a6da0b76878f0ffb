package file

import (
	"path/filepath"
	"strings"
)

var imageMimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".avif": "image/avif",
}

func IsImageFile(filename string) bool {
	_, ok := imageMimeTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

func IsImageMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	for _, m := range imageMimeTypes {
		if m == mimeType {
			return true
		}
	}
	return false
}

func GetMimeTypeFromExtension(filename string) string {
	if m, ok := imageMimeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return m
	}
	return "application/octet-stream"
}

// IsSafeName rejects names that could escape their directory.
func IsSafeName(name string) bool {
	return name != "" && !strings.Contains(name, "..") &&
		!strings.ContainsAny(name, `/\`)
}
