package sim

import (
	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"github.com/sirupsen/logrus"
)

type window struct {
	w *app.Window
}

func openWindow(p *Panel) *window {
	bounds := p.Bounds()
	win := &window{
		w: app.NewWindow(
			app.Title("oledclock"),
			app.Size(unit.Px(float32(2*bounds.Dx())), unit.Px(float32(2*bounds.Dy()))),
			app.MinSize(unit.Px(float32(bounds.Dx())), unit.Px(float32(bounds.Dy()))),
		),
	}
	go func() {
		if err := win.loop(p); err != nil {
			logrus.Errorf("Simulation window: %v", err)
		}
	}()
	go app.Main()
	return win
}

func (win *window) invalidate() {
	if win != nil {
		win.w.Invalidate()
	}
}

func (win *window) close() {
	if win != nil {
		win.w.Close()
	}
}

func (win *window) loop(p *Panel) error {
	var ops op.Ops
	for {
		e := <-win.w.Events()
		switch e := e.(type) {
		case system.DestroyEvent:
			return e.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)

			img := widget.Image{Src: paint.NewImageOp(p.Image()), Fit: widget.Contain}
			img.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}
