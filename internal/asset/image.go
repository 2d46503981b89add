// Package asset maps symbolic image names to packed bitmaps kept in
// nonvolatile storage.
package asset

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Bpp is the only pixel depth the panel handles.
const Bpp = 1

// Errors
var (
	ErrUnknownAsset = errors.New("asset: unknown asset")
	ErrShortPayload = errors.New("asset: payload shorter than bitmap")
	ErrBadName      = errors.New("asset: invalid asset name")
)

// Image is a packed bitmap, MSB first, row major, each row starting on a
// byte boundary.
type Image struct {
	Width       int
	Height      int
	Bpp         int
	Transparent *uint8
	Buffer      []byte
}

// Stride is the number of bytes of one bitmap row.
func (i *Image) Stride() int {
	return (i.Width*i.Bpp + 7) / 8
}

// PackedLen is the minimum buffer length for the bitmap dimensions.
func (i *Image) PackedLen() int {
	return i.Stride() * i.Height
}

// Validate checks the buffer holds every pixel.
func (i *Image) Validate() error {
	if len(i.Buffer) < i.PackedLen() {
		return fmt.Errorf("%w: %d bytes for %dx%d@%dbpp", ErrShortPayload, len(i.Buffer), i.Width, i.Height, i.Bpp)
	}
	return nil
}

// Value returns the raw color index of the pixel at (x, y).
func (i *Image) Value(x, y int) uint8 {
	bit := y*i.Stride()*8 + x*i.Bpp
	var v uint8
	for n := 0; n < i.Bpp; n++ {
		b := bit + n
		v <<= 1
		if i.Buffer[b/8]&(0x80>>uint(b%8)) != 0 {
			v |= 1
		}
	}
	return v
}

// IsTransparent reports whether v is the transparent color index.
func (i *Image) IsTransparent(v uint8) bool {
	return i.Transparent != nil && *i.Transparent == v
}

func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.Width, i.Height)
}

func (i *Image) ColorModel() color.Model {
	return image1bit.BitModel
}

func (i *Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(i.Bounds()) {
		return image1bit.Off
	}
	return image1bit.Bit(i.Value(x, y) != 0)
}

// Pack thresholds src into a 1bpp bitmap.
func Pack(src image.Image) *Image {
	b := src.Bounds()
	img := &Image{
		Width:  b.Dx(),
		Height: b.Dy(),
		Bpp:    Bpp,
	}
	stride := img.Stride()
	img.Buffer = make([]byte, img.PackedLen())
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if image1bit.BitModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(image1bit.Bit) {
				img.Buffer[y*stride+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return img
}
