package device

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"sync"
	"time"

	"github.com/jypelle/oledclock/internal/asset"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	WifiAsset    = "wifi"
	DefaultTimeY = 50
)

// options are the Display settings fixed at Connect time.
type options struct {
	now   func() time.Time
	face  font.Face
	timeY int
}

// Option customizes a Display built by Connect.
type Option func(*options)

// WithClock replaces time.Now as the source of the displayed time.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithFace replaces the default bitmap font of the time line.
func WithFace(face font.Face) Option {
	return func(o *options) { o.face = face }
}

// WithTimeY sets the top of the time line.
func WithTimeY(y int) Option {
	return func(o *options) { o.timeY = y }
}

// Pending is a display whose controller handshake is in flight. It resolves
// once, to a ready Display or to the handshake error.
type Pending struct {
	done    chan struct{}
	display *Display
	err     error
}

// Connect starts the controller handshake and returns immediately.
func Connect(ctx context.Context, open Opener, assets asset.Store, opts ...Option) *Pending {
	o := options{now: time.Now, timeY: DefaultTimeY}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)

		logrus.Debugf("Display handshake ...")
		controller, err := open(ctx)
		if err != nil {
			p.err = err
			return
		}

		d := &Display{
			controller: controller,
			surface:    NewSurface(controller.Bounds(), o.face),
			assets:     assets,
			now:        o.now,
			timeY:      o.timeY,
		}
		d.surface.Clear()
		if err = d.flip(); err != nil {
			p.err = fmt.Errorf("device: unable to clear display: %w", err)
			return
		}
		logrus.Debugf("Display ready")
		p.display = d
	}()
	return p
}

// Done is closed once the handshake has completed or failed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the handshake resolves or ctx is done.
func (p *Pending) Wait(ctx context.Context) (*Display, error) {
	select {
	case <-p.done:
		return p.display, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Display owns the controller and the frame buffer once the handshake is done.
type Display struct {
	lock       sync.Mutex
	controller Controller
	surface    *Surface
	assets     asset.Store
	now        func() time.Time
	timeY      int
}

// Update redraws the whole screen with a single commit.
func (d *Display) Update() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.surface.Clear()
	if err := d.drawWifi(); err != nil {
		return err
	}
	d.drawTime()
	return d.flip()
}

// DrawWifi blits the wifi icon at the top left corner without committing.
func (d *Display) DrawWifi() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.drawWifi()
}

func (d *Display) drawWifi() error {
	img, err := d.assets.Image(WifiAsset)
	if err != nil {
		return err
	}
	return d.blit(img, 0, 0, false)
}

// DrawTime redraws the centered clock line and commits it.
func (d *Display) DrawTime() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.drawTime()
	return d.flip()
}

func (d *Display) drawTime() {
	t := d.now()
	text := FormatTime(t.Hour(), t.Minute(), t.Second())
	width := d.surface.StringWidth(text)

	d.surface.SetColor(ColorClear)
	d.surface.FillRect(image.Rect(0, d.timeY, d.surface.Width(), d.timeY+d.surface.LineHeight()))
	d.surface.SetColor(ColorSet)
	d.surface.DrawString(text, CenterX(d.surface.Width(), width), d.timeY)
}

// Image blits img at (x, y) and commits.
func (d *Display) Image(img *asset.Image, x, y int) error {
	return d.Blit(img, x, y, true)
}

// Blit erases the destination rectangle, draws img there and commits when
// asked to. A nil img does nothing, an img whose buffer misses pixels is
// refused with asset.ErrShortPayload.
func (d *Display) Blit(img *asset.Image, x, y int, commit bool) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.blit(img, x, y, commit)
}

func (d *Display) blit(img *asset.Image, x, y int, commit bool) error {
	if img == nil {
		return nil
	}
	if err := img.Validate(); err != nil {
		return err
	}
	d.surface.SetColor(ColorClear)
	d.surface.FillRect(image.Rect(x, y, x+img.Width, y+img.Height))
	d.surface.SetColor(ColorSet)
	d.surface.DrawBitmap(img, x, y)
	if commit {
		return d.flip()
	}
	return nil
}

func (d *Display) flip() error {
	frame := d.surface.Frame()
	return d.controller.Draw(d.controller.Bounds(), frame, image.Point{})
}

// Snapshot returns a copy of the frame buffer.
func (d *Display) Snapshot() image.Image {
	d.lock.Lock()
	defer d.lock.Unlock()

	frame := d.surface.Frame()
	img := image1bit.NewVerticalLSB(frame.Bounds())
	draw.Draw(img, img.Bounds(), frame, frame.Bounds().Min, draw.Src)
	return img
}

func (d *Display) SetContrast(level byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.controller.SetContrast(level)
}

// Halt blanks the panel.
func (d *Display) Halt() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.controller.Halt()
}

// Close halts the panel and releases the controller.
func (d *Display) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	err := d.controller.Halt()
	if closer, ok := d.controller.(io.Closer); ok {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Show wakes the panel up and pushes the frame buffer again.
func (d *Display) Show(contrast byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if err := d.controller.SetContrast(contrast); err != nil {
		return err
	}
	return d.flip()
}

// FormatTime formats a time of day as H:MM:SS.
func FormatTime(hour, minute, second int) string {
	return fmt.Sprintf("%d:%02d:%02d", hour, minute, second)
}

// CenterX is the left offset centering width pixels on a panelWidth line.
func CenterX(panelWidth, width int) int {
	return (panelWidth - width) / 2
}
