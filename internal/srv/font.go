package srv

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const defaultFontSize = 12

// loadFace opens a TrueType font file for the clock line.
func loadFace(filename string, size float64) (font.Face, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("unable to parse font %s: %w", filename, err)
	}
	if size <= 0 {
		size = defaultFontSize
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
