// Package placement positions new windows inside the renderer's viewport.
package placement

import "github.com/GriffinCanCode/webtop/internal/shared/types"

// DefaultReserved is the fraction of viewport height kept free for the taskbar
const DefaultReserved = 0.10

// Center returns the position that centers a window of the given size.
// Only the height is limited by the reserved fraction; a window wider than
// the viewport gets a negative x.
func Center(size types.Size, vp types.Viewport, reserved float64) types.Point {
	h := size.Height
	if limit := vp.Height * (1 - reserved); h > limit {
		h = limit
	}
	return types.Point{
		X: vp.Width/2 - size.Width/2,
		Y: vp.Height/2 - h/2,
	}
}

// UsableSize returns the area available to a maximized window
func UsableSize(vp types.Viewport, reserved float64) types.Size {
	return types.Size{
		Width:  vp.Width,
		Height: vp.Height * (1 - reserved),
	}
}

// Clamp keeps a window's top-left corner inside the viewport
func Clamp(pos types.Point, size types.Size, vp types.Viewport) types.Point {
	return types.Point{
		X: clamp(pos.X, 0, max(0, vp.Width-size.Width)),
		Y: clamp(pos.Y, 0, max(0, vp.Height-size.Height)),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
