package desktop

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webtop/internal/domain/icons"
	"github.com/GriffinCanCode/webtop/internal/domain/placement"
	"github.com/GriffinCanCode/webtop/internal/domain/theme"
	"github.com/GriffinCanCode/webtop/internal/domain/windows"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
)

// Desktop composes the icon registry, the window registry and the theme
// store. Every operation runs under one dispatch lock so composed steps are
// never interleaved with another event.
type Desktop struct {
	mu       sync.Mutex
	viewport types.Viewport // Protected by mu
	seq      uint64         // Protected by mu

	icons   *icons.Registry
	windows *windows.Registry
	theme   *theme.Store
	placer  *placement.Placer

	minSize  types.Size
	logger   *zap.Logger
	observer Observer

	lmu       sync.Mutex
	listeners map[int]Listener
	nextSub   int

	// nmu orders deliveries; delivered is the last Seq handed to listeners
	nmu       sync.Mutex
	delivered uint64
}

// New creates an empty desktop
func New(opts Options) *Desktop {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	wins := windows.NewRegistry(opts.Windows)
	return &Desktop{
		viewport:  opts.Viewport,
		icons:     icons.NewRegistry(logger.Named("icons")),
		windows:   wins,
		theme:     theme.NewStore(),
		placer:    placement.NewPlacer(wins, opts.Reserved),
		minSize:   opts.MinWindowSize,
		logger:    logger,
		observer:  opts.Observer,
		listeners: make(map[int]Listener),
	}
}

// Icons returns the icon registry
func (d *Desktop) Icons() *icons.Registry { return d.icons }

// Windows returns the window registry
func (d *Desktop) Windows() *windows.Registry { return d.windows }

// Theme returns the theme store
func (d *Desktop) Theme() *theme.Store { return d.theme }

// Snapshot returns the current render state
func (d *Desktop) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Viewport returns the last reported viewport
func (d *Desktop) Viewport() types.Viewport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewport
}

// Subscribe registers a listener and returns a function that removes it.
// Listeners see snapshots in increasing Seq order and must not dispatch
// desktop events themselves.
func (d *Desktop) Subscribe(fn Listener) func() {
	d.lmu.Lock()
	defer d.lmu.Unlock()

	key := d.nextSub
	d.nextSub++
	d.listeners[key] = fn

	return func() {
		d.lmu.Lock()
		delete(d.listeners, key)
		d.lmu.Unlock()
	}
}

// Seed installs the initial icons when the registry is empty. It reports
// whether seeding happened.
func (d *Desktop) Seed(list []icons.Icon) bool {
	seeded := false
	_ = d.dispatch("seed", func() error {
		if d.icons.Len() > 0 {
			return nil
		}
		d.icons.SetAll(list)
		seeded = true
		return nil
	})
	if seeded {
		d.logger.Info("Seeded desktop icons", zap.Int("count", len(list)))
	}
	return seeded
}

// AddIcon adds an icon; a duplicate id is logged and ignored
func (d *Desktop) AddIcon(icon icons.Icon) {
	_ = d.dispatch("icon.add", func() error {
		d.icons.Add(icon)
		return nil
	})
}

// RemoveIcon removes an icon
func (d *Desktop) RemoveIcon(iconID string) error {
	return d.dispatch("icon.remove", func() error {
		if _, err := d.icon(iconID); err != nil {
			return err
		}
		d.icons.Remove(iconID)
		return nil
	})
}

// SetIconVisible shows or hides an icon
func (d *Desktop) SetIconVisible(iconID string, visible bool) error {
	return d.dispatch("icon.visible", func() error {
		if _, err := d.icon(iconID); err != nil {
			return err
		}
		d.icons.SetVisible(iconID, visible)
		return nil
	})
}

// SetAllIconsVisible shows or hides every icon
func (d *Desktop) SetAllIconsVisible(visible bool) {
	_ = d.dispatch("icon.visible_all", func() error {
		d.icons.SetAllVisible(visible)
		return nil
	})
}

// ClickIcon selects a single icon. Clicking the highlighted icon does nothing.
func (d *Desktop) ClickIcon(iconID string) error {
	return d.dispatch("icon.click", func() error {
		icon, err := d.icon(iconID)
		if err != nil {
			return err
		}
		if icon.IsHighlighted {
			return nil
		}
		d.icons.UnhighlightAll()
		d.icons.Highlight(iconID)
		return nil
	})
}

// ClickDesktop clears the icon selection
func (d *Desktop) ClickDesktop() {
	_ = d.dispatch("desktop.click", func() error {
		if d.icons.AnyHighlighted() {
			d.icons.UnhighlightAll()
		}
		return nil
	})
}

// OpenIcon opens the icon's window centered in the viewport, or focuses the
// one already open. It returns the window ID.
func (d *Desktop) OpenIcon(iconID string) (string, error) {
	var windowID string
	err := d.dispatch("icon.open", func() error {
		icon, err := d.icon(iconID)
		if err != nil {
			return err
		}
		windowID = d.placer.OpenCentered(icon.ID, icon.Title, icon.Image, d.viewport)
		return nil
	})
	return windowID, err
}

// SetViewport records the renderer's viewport size
func (d *Desktop) SetViewport(width, height float64) error {
	return d.dispatch("viewport", func() error {
		vp := types.Viewport{Width: width, Height: height}
		if vp.IsZero() {
			return fmt.Errorf("%w: %vx%v", ErrInvalidViewport, width, height)
		}
		d.viewport = vp
		return nil
	})
}

// Focus gives a window exclusive focus and raises it
func (d *Desktop) Focus(windowID string) error {
	return d.windowOp("window.focus", windowID, d.windows.SetActive)
}

// Minimize hides a window
func (d *Desktop) Minimize(windowID string) error {
	return d.windowOp("window.minimize", windowID, d.windows.Minimize)
}

// ToggleMinimize minimizes a window or brings it back focused
func (d *Desktop) ToggleMinimize(windowID string) error {
	return d.windowOp("window.toggle_minimize", windowID, d.windows.ToggleMinimize)
}

// ToggleMaximize maximizes a window to the usable viewport, or restores it
func (d *Desktop) ToggleMaximize(windowID string) error {
	return d.dispatch("window.toggle_maximize", func() error {
		w, err := d.window(windowID)
		if err != nil {
			return err
		}
		if w.IsMaximized {
			d.windows.Restore(windowID)
			return nil
		}
		d.windows.Maximize(windowID)
		if !d.viewport.IsZero() {
			size := placement.UsableSize(d.viewport, d.placer.Reserved())
			d.windows.SetSize(windowID, size.Width, size.Height)
		}
		return nil
	})
}

// Restore leaves the minimized and maximized states
func (d *Desktop) Restore(windowID string) error {
	return d.windowOp("window.restore", windowID, d.windows.Restore)
}

// Close closes a window
func (d *Desktop) Close(windowID string) error {
	return d.windowOp("window.close", windowID, d.windows.Close)
}

// CloseAll closes every window
func (d *Desktop) CloseAll() {
	_ = d.dispatch("window.close_all", func() error {
		d.windows.CloseAll()
		return nil
	})
}

// DeactivateAll clears window focus
func (d *Desktop) DeactivateAll() {
	_ = d.dispatch("window.deactivate_all", func() error {
		d.windows.DeactivateAll()
		return nil
	})
}

// BringToFront raises a window
func (d *Desktop) BringToFront(windowID string) error {
	return d.windowOp("window.front", windowID, d.windows.BringToFront)
}

// MoveEnd commits the position at the end of a drag, kept inside the viewport
func (d *Desktop) MoveEnd(windowID string, x, y float64) error {
	return d.dispatch("window.move", func() error {
		w, err := d.window(windowID)
		if err != nil {
			return err
		}
		pos := types.Point{X: x, Y: y}
		if !d.viewport.IsZero() {
			pos = placement.Clamp(pos, w.Size, d.viewport)
		}
		d.windows.SetPosition(windowID, pos.X, pos.Y)
		return nil
	})
}

// ResizeEnd commits the size at the end of a resize, no smaller than the
// minimum window size
func (d *Desktop) ResizeEnd(windowID string, width, height float64) error {
	return d.dispatch("window.resize", func() error {
		if _, err := d.window(windowID); err != nil {
			return err
		}
		d.windows.SetSize(windowID, max(width, d.minSize.Width), max(height, d.minSize.Height))
		return nil
	})
}

// SetTheme selects a theme explicitly
func (d *Desktop) SetTheme(name string) error {
	return d.dispatch("theme.set", func() error {
		return d.theme.SetTheme(name)
	})
}

// ToggleTheme flips between light and dark
func (d *Desktop) ToggleTheme() theme.Theme {
	var t theme.Theme
	_ = d.dispatch("theme.toggle", func() error {
		t = d.theme.Toggle()
		return nil
	})
	return t
}

// SetSystemThemeEnabled turns OS theme following on or off
func (d *Desktop) SetSystemThemeEnabled(enabled bool, systemTheme string) error {
	return d.dispatch("theme.system", func() error {
		return d.theme.SetSystemThemeEnabled(enabled, systemTheme)
	})
}

// SystemThemeChanged reports an OS theme change
func (d *Desktop) SystemThemeChanged(name string) error {
	return d.dispatch("theme.system_changed", func() error {
		return d.theme.SystemThemeChanged(name)
	})
}

func (d *Desktop) windowOp(event, windowID string, op func(string)) error {
	return d.dispatch(event, func() error {
		if _, err := d.window(windowID); err != nil {
			return err
		}
		op(windowID)
		return nil
	})
}

func (d *Desktop) icon(iconID string) (icons.Icon, error) {
	icon, ok := d.icons.Get(iconID)
	if !ok {
		return icons.Icon{}, fmt.Errorf("%w: %s", ErrIconNotFound, iconID)
	}
	return icon, nil
}

func (d *Desktop) window(windowID string) (windows.Window, error) {
	w, ok := d.windows.Get(windowID)
	if !ok {
		return windows.Window{}, fmt.Errorf("%w: %s", ErrWindowNotFound, windowID)
	}
	return w, nil
}

// dispatch runs one event under the dispatch lock and notifies listeners
// outside it when the event changed anything
func (d *Desktop) dispatch(event string, fn func() error) error {
	start := time.Now()

	d.mu.Lock()
	before := d.fingerprintLocked()
	err := fn()
	changed := d.fingerprintLocked() != before
	var snap Snapshot
	if changed {
		d.seq++
		snap = d.snapshotLocked()
	}
	d.mu.Unlock()

	if err != nil {
		d.logger.Debug("Desktop event rejected", zap.String("event", event), zap.Error(err))
	}
	if d.observer != nil {
		d.observer.ObserveEvent(event, changed, err, time.Since(start))
	}
	if changed {
		d.notify(snap)
	}
	return err
}

// notify drops a snapshot that lost the race to a newer one
func (d *Desktop) notify(snap Snapshot) {
	d.nmu.Lock()
	defer d.nmu.Unlock()
	if snap.Seq <= d.delivered {
		return
	}
	d.delivered = snap.Seq

	d.lmu.Lock()
	listeners := make([]Listener, 0, len(d.listeners))
	for _, fn := range d.listeners {
		listeners = append(listeners, fn)
	}
	d.lmu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (d *Desktop) fingerprintLocked() fingerprint {
	return fingerprint{
		icons:    d.icons.State(),
		windows:  d.windows.State(),
		theme:    d.theme.State(),
		viewport: d.viewport,
	}
}

func (d *Desktop) snapshotLocked() Snapshot {
	ws := d.windows.State()
	ts := d.theme.State()
	return Snapshot{
		Seq:                d.seq,
		Icons:              d.icons.Icons(),
		Windows:            ws.Windows,
		ActiveWindowID:     ws.ActiveWindowID,
		HighestZIndex:      ws.HighestZIndex,
		Theme:              ts.Theme,
		SystemThemeEnabled: ts.SystemThemeEnabled,
		Viewport:           d.viewport,
	}
}
