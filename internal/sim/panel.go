// Package sim provides an in-process panel standing in for the OLED
// controller in simulation mode.
package sim

import (
	"context"
	"image"
	"image/draw"
	"sync"

	"github.com/jypelle/oledclock/internal/srv/device"
	"github.com/sirupsen/logrus"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

type Panel struct {
	lock     sync.RWMutex
	img      *image1bit.VerticalLSB
	contrast byte
	halted   bool
	draws    int

	window *window
}

func NewPanel(width, height int) *Panel {
	return &Panel{img: image1bit.NewVerticalLSB(image.Rect(0, 0, width, height))}
}

// Opener completes the handshake immediately and opens the window.
func (p *Panel) Opener() device.Opener {
	return func(ctx context.Context) (device.Controller, error) {
		logrus.Infof("Start simulated %dx%d panel", p.img.Bounds().Dx(), p.img.Bounds().Dy())
		p.window = openWindow(p)
		return p, nil
	}
}

func (p *Panel) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	p.lock.Lock()
	draw.Draw(p.img, r, src, sp, draw.Src)
	p.draws++
	p.lock.Unlock()

	p.window.invalidate()
	return nil
}

func (p *Panel) Bounds() image.Rectangle {
	return p.img.Bounds()
}

func (p *Panel) SetContrast(level byte) error {
	p.lock.Lock()
	p.contrast = level
	p.halted = false
	p.lock.Unlock()

	p.window.invalidate()
	return nil
}

func (p *Panel) Halt() error {
	p.lock.Lock()
	p.halted = true
	p.lock.Unlock()

	p.window.invalidate()
	return nil
}

// Close shuts the window down.
func (p *Panel) Close() error {
	p.window.close()
	return nil
}

// Image returns what the panel currently shows, blank when halted.
func (p *Panel) Image() image.Image {
	p.lock.RLock()
	defer p.lock.RUnlock()

	img := image1bit.NewVerticalLSB(p.img.Bounds())
	if !p.halted {
		copy(img.Pix, p.img.Pix)
	}
	return img
}

// Draws counts the frames pushed to the panel.
func (p *Panel) Draws() int {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.draws
}
