//go:build !amd64

package sim

type window struct{}

func openWindow(p *Panel) *window {
	return nil
}

func (win *window) invalidate() {
}

func (win *window) close() {
}
