package placement

import (
	"github.com/GriffinCanCode/webtop/internal/domain/windows"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
)

// WindowOpener is the subset of the window registry the placer drives
type WindowOpener interface {
	OpenOrFocus(sourceIconID, title, image string) string
	SetPosition(windowID string, x, y float64)
	Options() windows.Options
}

// Placer opens windows centered in the current viewport
type Placer struct {
	windows  WindowOpener
	reserved float64
}

// NewPlacer creates a placer. A reserved fraction outside [0,1) falls back
// to DefaultReserved.
func NewPlacer(w WindowOpener, reserved float64) *Placer {
	if reserved < 0 || reserved >= 1 {
		reserved = DefaultReserved
	}
	return &Placer{windows: w, reserved: reserved}
}

// Reserved returns the fraction of viewport height kept free
func (p *Placer) Reserved() float64 {
	return p.reserved
}

// OpenCentered opens or focuses the icon's window and moves it to the center
// of the viewport. An existing window is recentered too.
func (p *Placer) OpenCentered(iconID, title, image string, vp types.Viewport) string {
	windowID := p.windows.OpenOrFocus(iconID, title, image)
	pos := Center(p.windows.Options().DefaultSize, vp, p.reserved)
	p.windows.SetPosition(windowID, pos.X, pos.Y)
	return windowID
}
