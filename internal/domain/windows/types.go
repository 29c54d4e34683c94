package windows

import (
	"github.com/GriffinCanCode/webtop/internal/shared/id"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
)

// BaseZIndex is the stacking counter's floor
const BaseZIndex = 10

// Window is an open desktop window
type Window struct {
	ID           string `json:"id"`
	SourceIconID string `json:"iconId"`
	Title        string `json:"title"`
	Image        string `json:"icon"`
	IsActive     bool   `json:"isActive"`
	IsMinimized  bool   `json:"isMinimized"`
	IsMaximized  bool   `json:"isMaximized"`

	Position types.Point `json:"position"`
	Size     types.Size  `json:"size"`
	ZIndex   int         `json:"zIndex"`

	// Geometry captured on maximize, cleared on restore
	RestorePosition *types.Point `json:"restorePosition,omitempty"`
	RestoreSize     *types.Size  `json:"restoreSize,omitempty"`
}

// State is an immutable registry snapshot. Do not modify the slice.
type State struct {
	Windows        []Window `json:"windows"`
	ActiveWindowID string   `json:"activeWindowId,omitempty"`
	HighestZIndex  int      `json:"highestZIndex"`
}

// Stats contains registry statistics
type Stats struct {
	Open           int    `json:"open"`
	Minimized      int    `json:"minimized"`
	Maximized      int    `json:"maximized"`
	ActiveWindowID string `json:"activeWindowId,omitempty"`
	HighestZIndex  int    `json:"highestZIndex"`
}

// Options configures a registry
type Options struct {
	BaseZIndex      int
	DefaultPosition types.Point
	DefaultSize     types.Size
	Clock           id.Clock
}

// DefaultOptions returns the stock window defaults
func DefaultOptions() Options {
	return Options{
		BaseZIndex:      BaseZIndex,
		DefaultPosition: types.Point{X: 100, Y: 100},
		DefaultSize:     types.Size{Width: 800, Height: 600},
		Clock:           id.SystemClock,
	}
}

// Listener receives the new state after each effective mutation
type Listener func(*State)
