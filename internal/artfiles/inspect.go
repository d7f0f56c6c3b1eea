package artfiles

import (
	"bytes"
	"fmt"
	"image"
	"path"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// minPrintPixels is the smallest dimension we accept without warning.
// A 5"x5" insert at 300 DPI needs 1500px on each side; smaller raster art
// usually means someone exported for screen, not press.
const minPrintPixels = 1500

// Inspect decodes raster art and returns human-readable print warnings.
// Warnings are advisory only: PDFs and anything undecodable pass through
// silently, since the press vendor does its own preflight.
func Inspect(filename string, data []byte) []string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".tif", ".tiff", ".png", ".jpg", ".jpeg":
	default:
		return nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return []string{"File could not be decoded as " + path.Ext(filename) + " image data"}
	}

	var warnings []string
	if cfg.Width < minPrintPixels || cfg.Height < minPrintPixels {
		warnings = append(warnings, fmt.Sprintf(
			"Image is %dx%d px (%s); below %d px per side it may print blurry at insert size",
			cfg.Width, cfg.Height, format, minPrintPixels))
	}
	return warnings
}
