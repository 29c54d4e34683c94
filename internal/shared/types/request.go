package types

// PositionRequest commits a window position (drag end)
type PositionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SizeRequest commits a window size (resize end)
type SizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ViewportRequest reports the renderer's viewport
type ViewportRequest struct {
	Width  float64 `json:"width" binding:"required"`
	Height float64 `json:"height" binding:"required"`
}

// VisibilityRequest toggles icon visibility
type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

// ThemeRequest selects an explicit theme
type ThemeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

// SystemThemeRequest enables or disables following the system theme
type SystemThemeRequest struct {
	Enabled     bool   `json:"enabled"`
	SystemTheme string `json:"systemTheme,omitempty"`
}

// IconRequest adds an icon to the desktop
type IconRequest struct {
	ID    string `json:"id" binding:"required"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
	Size  Size   `json:"size"`
}

// WSMessage represents a WebSocket command from the renderer.
// Payload fields are optional and interpreted per Type.
type WSMessage struct {
	Type      string  `json:"type"`
	ID        string  `json:"id,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	Theme     string  `json:"theme,omitempty"`
	Enabled   bool    `json:"enabled,omitempty"`
	Visible   bool    `json:"visible,omitempty"`
	RequestID string  `json:"requestId,omitempty"`
}
