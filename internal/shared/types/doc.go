// Package types provides shared data structures for the desktop backend.
//
// These types cross package boundaries: geometry is used by the window
// registry, the placement service and the transport layer, and the request
// types describe the JSON bodies accepted over HTTP and WebSocket.
//
// Geometry:
//   - Point: window position in pixels
//   - Size: window or icon dimensions in pixels
//   - Viewport: the browser's inner size as last reported by the renderer
//
// Request Types:
//   - PositionRequest, SizeRequest, ViewportRequest: geometry commits
//   - VisibilityRequest, ThemeRequest, SystemThemeRequest: flag updates
//   - WSMessage: WebSocket command envelope
//
// Example Usage:
//
//	pos := types.Point{X: 240, Y: 100}
//	vp := types.Viewport{Width: 1280, Height: 800}
package types
