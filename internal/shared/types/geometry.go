package types

// Point represents a window position on screen
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size represents window or icon dimensions
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Viewport represents the renderer's visible area
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsZero reports whether the viewport has not been measured yet
func (v Viewport) IsZero() bool {
	return v.Width <= 0 || v.Height <= 0
}
