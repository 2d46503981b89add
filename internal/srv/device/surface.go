package device

import (
	"image"

	"github.com/hajimehoshi/bitmapfont/v2"
	"github.com/jypelle/oledclock/internal/asset"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Drawing colors.
const (
	ColorClear = image1bit.Off
	ColorSet   = image1bit.On
)

// Surface is the in-memory frame buffer mirroring the panel.
type Surface struct {
	frame *image1bit.VerticalLSB
	color image1bit.Bit
	face  font.Face
}

func NewSurface(bounds image.Rectangle, face font.Face) *Surface {
	if face == nil {
		face = bitmapfont.Face
	}
	return &Surface{
		frame: image1bit.NewVerticalLSB(bounds),
		color: ColorSet,
		face:  face,
	}
}

func (s *Surface) Frame() *image1bit.VerticalLSB {
	return s.frame
}

func (s *Surface) Width() int {
	return s.frame.Bounds().Dx()
}

func (s *Surface) Clear() {
	for i := range s.frame.Pix {
		s.frame.Pix[i] = 0
	}
}

func (s *Surface) SetColor(c image1bit.Bit) {
	s.color = c
}

// FillRect paints r, clipped to the frame, with the current color.
func (s *Surface) FillRect(r image.Rectangle) {
	r = r.Intersect(s.frame.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s.frame.SetBit(x, y, s.color)
		}
	}
}

// DrawBitmap blits img with its top left corner at (x, y). Transparent
// pixels are skipped, 1bpp pixels use the current color as foreground and
// its inverse as background.
func (s *Surface) DrawBitmap(img *asset.Image, x, y int) {
	bounds := s.frame.Bounds()
	for py := 0; py < img.Height; py++ {
		for px := 0; px < img.Width; px++ {
			pt := image.Pt(x+px, y+py)
			if !pt.In(bounds) {
				continue
			}
			v := img.Value(px, py)
			if img.IsTransparent(v) {
				continue
			}
			if img.Bpp == 1 {
				if v != 0 {
					s.frame.SetBit(pt.X, pt.Y, s.color)
				} else {
					s.frame.SetBit(pt.X, pt.Y, !s.color)
				}
			} else {
				s.frame.SetBit(pt.X, pt.Y, image1bit.Bit(v != 0))
			}
		}
	}
}

// LineHeight is the pixel height of one line of text.
func (s *Surface) LineHeight() int {
	m := s.face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

func (s *Surface) StringWidth(text string) int {
	return font.MeasureString(s.face, text).Ceil()
}

// DrawString draws text with the top of the line at y.
func (s *Surface) DrawString(text string, x, y int) {
	d := &font.Drawer{
		Dst:  s.frame,
		Src:  image.NewUniform(s.color),
		Face: s.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + s.face.Metrics().Ascent},
	}
	d.DrawString(text)
}
