package desktop

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webtop/internal/domain/icons"
	"github.com/GriffinCanCode/webtop/internal/domain/placement"
	"github.com/GriffinCanCode/webtop/internal/domain/theme"
	"github.com/GriffinCanCode/webtop/internal/domain/windows"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
)

var (
	ErrIconNotFound    = errors.New("icon not found")
	ErrWindowNotFound  = errors.New("window not found")
	ErrInvalidViewport = errors.New("invalid viewport")
)

// Snapshot is the full render state of the desktop. Seq increases with
// every change so renderers can discard stale frames.
type Snapshot struct {
	Seq                uint64           `json:"seq"`
	Icons              []icons.Icon     `json:"icons"`
	Windows            []windows.Window `json:"windows"`
	ActiveWindowID     string           `json:"activeWindowId,omitempty"`
	HighestZIndex      int              `json:"highestZIndex"`
	Theme              theme.Theme      `json:"theme"`
	SystemThemeEnabled bool             `json:"systemThemeEnabled"`
	Viewport           types.Viewport   `json:"viewport"`
}

// Listener receives the snapshot after each event that changed state
type Listener func(Snapshot)

// Observer is notified after every dispatched event
type Observer interface {
	ObserveEvent(event string, changed bool, err error, elapsed time.Duration)
}

// Options configures a desktop
type Options struct {
	Windows       windows.Options
	Reserved      float64
	Viewport      types.Viewport
	MinWindowSize types.Size
	Logger        *zap.Logger
	Observer      Observer
}

// DefaultOptions returns the stock desktop configuration
func DefaultOptions() Options {
	return Options{
		Windows:       windows.DefaultOptions(),
		Reserved:      placement.DefaultReserved,
		Viewport:      types.Viewport{Width: 1280, Height: 800},
		MinWindowSize: types.Size{Width: 200, Height: 120},
	}
}

// fingerprint identifies a desktop state by snapshot pointers
type fingerprint struct {
	icons    *icons.State
	windows  *windows.State
	theme    *theme.State
	viewport types.Viewport
}
