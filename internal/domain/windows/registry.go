package windows

import (
	"sync"

	"github.com/GriffinCanCode/webtop/internal/shared/id"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
)

// Registry owns every open window
type Registry struct {
	mu        sync.RWMutex
	state     *State // Protected by mu
	opts      Options
	listeners map[int]Listener
	nextSub   int
}

// NewRegistry creates an empty registry
func NewRegistry(opts Options) *Registry {
	if opts.Clock == nil {
		opts.Clock = id.SystemClock
	}
	return &Registry{
		state: &State{
			Windows:       []Window{},
			HighestZIndex: opts.BaseZIndex,
		},
		opts:      opts,
		listeners: make(map[int]Listener),
	}
}

// Options returns the registry configuration
func (r *Registry) Options() Options {
	return r.opts
}

// State returns the current snapshot
func (r *Registry) State() *State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Windows returns the current window slice (shared, read-only)
func (r *Registry) Windows() []Window {
	return r.State().Windows
}

// ActiveWindowID returns the focused window ID, or "" when nothing has focus
func (r *Registry) ActiveWindowID() string {
	return r.State().ActiveWindowID
}

// HighestZIndex returns the stacking counter
func (r *Registry) HighestZIndex() int {
	return r.State().HighestZIndex
}

// Get retrieves a window by ID
func (r *Registry) Get(windowID string) (Window, bool) {
	s := r.State()
	if i := indexOf(s.Windows, windowID); i >= 0 {
		return s.Windows[i], true
	}
	return Window{}, false
}

// FindBySource returns the window opened from the given icon
func (r *Registry) FindBySource(iconID string) (Window, bool) {
	s := r.State()
	if i := indexBySource(s.Windows, iconID); i >= 0 {
		return s.Windows[i], true
	}
	return Window{}, false
}

// Stats returns registry statistics
func (r *Registry) Stats() Stats {
	s := r.State()
	stats := Stats{
		Open:           len(s.Windows),
		ActiveWindowID: s.ActiveWindowID,
		HighestZIndex:  s.HighestZIndex,
	}
	for _, w := range s.Windows {
		if w.IsMinimized {
			stats.Minimized++
		}
		if w.IsMaximized {
			stats.Maximized++
		}
	}
	return stats
}

// Subscribe registers a listener and returns a function that removes it
func (r *Registry) Subscribe(fn Listener) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.nextSub
	r.nextSub++
	r.listeners[key] = fn

	return func() {
		r.mu.Lock()
		delete(r.listeners, key)
		r.mu.Unlock()
	}
}

// OpenOrFocus opens a window for the icon, or restores and focuses the one
// already open for it. It returns the window ID either way.
func (r *Registry) OpenOrFocus(sourceIconID, title, image string) string {
	var windowID string
	r.commit(func(cur *State) (*State, bool) {
		d := newDraft(cur)
		if i := indexBySource(d.windows, sourceIconID); i >= 0 {
			windowID = d.windows[i].ID
			d.restore(i)
			d.setActive(i)
			return d.state(), true
		}

		for i := range d.windows {
			d.windows[i].IsActive = false
		}
		d.highest++
		w := Window{
			ID:           id.NewWindowID(sourceIconID, r.opts.Clock()).String(),
			SourceIconID: sourceIconID,
			Title:        title,
			Image:        image,
			IsActive:     true,
			Position:     r.opts.DefaultPosition,
			Size:         r.opts.DefaultSize,
			ZIndex:       d.highest,
		}
		d.windows = append(d.windows, w)
		d.active = w.ID
		windowID = w.ID
		return d.state(), true
	})
	return windowID
}

// Close removes a window. If it had focus, the remaining window with the
// greatest zIndex takes focus.
func (r *Registry) Close(windowID string) {
	r.commit(func(cur *State) (*State, bool) {
		i := indexOf(cur.Windows, windowID)
		if i < 0 {
			return cur, false
		}

		d := newDraft(cur)
		d.windows = append(d.windows[:i], d.windows[i+1:]...)

		top := -1
		for j, w := range d.windows {
			if top < 0 || w.ZIndex > d.windows[top].ZIndex {
				top = j
			}
		}

		if d.active == windowID {
			d.active = ""
			if top >= 0 {
				d.windows[top].IsActive = true
				d.active = d.windows[top].ID
			}
		}

		d.highest = r.opts.BaseZIndex
		if top >= 0 && d.windows[top].ZIndex > d.highest {
			d.highest = d.windows[top].ZIndex
		}
		return d.state(), true
	})
}

// CloseAll removes every window and resets the stacking counter
func (r *Registry) CloseAll() {
	r.commit(func(cur *State) (*State, bool) {
		if len(cur.Windows) == 0 && cur.ActiveWindowID == "" && cur.HighestZIndex == r.opts.BaseZIndex {
			return cur, false
		}
		return &State{Windows: []Window{}, HighestZIndex: r.opts.BaseZIndex}, true
	})
}

// SetActive gives the window exclusive focus and brings it to front
func (r *Registry) SetActive(windowID string) {
	r.mutate(windowID, func(d *draft, i int) { d.setActive(i) })
}

// DeactivateAll clears focus from every window
func (r *Registry) DeactivateAll() {
	r.commit(func(cur *State) (*State, bool) {
		if cur.ActiveWindowID == "" {
			return cur, false
		}
		d := newDraft(cur)
		for i := range d.windows {
			d.windows[i].IsActive = false
		}
		d.active = ""
		return d.state(), true
	})
}

// Minimize hides the window and drops its focus. Maximized state and
// geometry are kept.
func (r *Registry) Minimize(windowID string) {
	r.mutate(windowID, func(d *draft, i int) { d.minimize(i) })
}

// Maximize snapshots the current geometry and moves the window to the
// origin. The caller sizes it to the viewport with SetSize.
func (r *Registry) Maximize(windowID string) {
	r.mutate(windowID, func(d *draft, i int) { d.maximize(i) })
}

// Restore leaves the minimized and maximized states, reinstating the
// pre-maximize geometry when a snapshot exists
func (r *Registry) Restore(windowID string) {
	r.mutate(windowID, func(d *draft, i int) { d.restore(i) })
}

// ToggleMinimize restores and focuses a minimized window, or minimizes it
func (r *Registry) ToggleMinimize(windowID string) {
	r.mutate(windowID, func(d *draft, i int) {
		if d.windows[i].IsMinimized {
			d.restore(i)
			d.setActive(i)
			return
		}
		d.minimize(i)
	})
}

// ToggleMaximize restores a maximized window, or maximizes it
func (r *Registry) ToggleMaximize(windowID string) {
	r.mutate(windowID, func(d *draft, i int) {
		if d.windows[i].IsMaximized {
			d.restore(i)
			return
		}
		d.maximize(i)
	})
}

// SetPosition moves a window. No bounds checking is performed.
func (r *Registry) SetPosition(windowID string, x, y float64) {
	r.mutate(windowID, func(d *draft, i int) {
		d.windows[i].Position = types.Point{X: x, Y: y}
	})
}

// SetSize resizes a window. No bounds checking is performed.
func (r *Registry) SetSize(windowID string, width, height float64) {
	r.mutate(windowID, func(d *draft, i int) {
		d.windows[i].Size = types.Size{Width: width, Height: height}
	})
}

// BringToFront raises the window above every other and moves focus to it
func (r *Registry) BringToFront(windowID string) {
	r.mutate(windowID, func(d *draft, i int) { d.bringToFront(i) })
}

// Load installs a rehydrated snapshot, normalizing it so the registry
// invariants hold: one window per icon, one focused window, and a stacking
// counter no lower than any zIndex. Windows whose ID does not name their
// source icon are dropped.
func (r *Registry) Load(s *State) {
	if s == nil {
		return
	}
	r.commit(func(*State) (*State, bool) {
		d := &draft{
			windows: make([]Window, 0, len(s.Windows)),
			highest: r.opts.BaseZIndex,
		}
		seenID := make(map[string]bool, len(s.Windows))
		seenIcon := make(map[string]bool, len(s.Windows))
		for _, w := range s.Windows {
			if seenID[w.ID] || seenIcon[w.SourceIconID] {
				continue
			}
			if iconID, _, err := id.ParseWindowID(w.ID); err != nil || iconID != w.SourceIconID {
				continue
			}
			seenID[w.ID] = true
			seenIcon[w.SourceIconID] = true

			w.IsActive = w.ID == s.ActiveWindowID
			if w.IsActive {
				d.active = w.ID
			}
			if !w.IsMaximized {
				w.RestorePosition = nil
				w.RestoreSize = nil
			}
			if w.ZIndex > d.highest {
				d.highest = w.ZIndex
			}
			d.windows = append(d.windows, w)
		}
		if s.HighestZIndex > d.highest {
			d.highest = s.HighestZIndex
		}
		return d.state(), true
	})
}

// mutate applies fn to the window with the given ID; unknown IDs are a no-op
func (r *Registry) mutate(windowID string, fn func(d *draft, i int)) {
	r.commit(func(cur *State) (*State, bool) {
		i := indexOf(cur.Windows, windowID)
		if i < 0 {
			return cur, false
		}
		d := newDraft(cur)
		fn(d, i)
		return d.state(), true
	})
}

// commit applies a transition under the lock and notifies listeners outside it
func (r *Registry) commit(transition func(*State) (*State, bool)) {
	r.mu.Lock()
	next, changed := transition(r.state)
	if !changed {
		r.mu.Unlock()
		return
	}
	r.state = next
	listeners := make([]Listener, 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
}

func indexOf(ws []Window, windowID string) int {
	for i := range ws {
		if ws[i].ID == windowID {
			return i
		}
	}
	return -1
}

func indexBySource(ws []Window, iconID string) int {
	for i := range ws {
		if ws[i].SourceIconID == iconID {
			return i
		}
	}
	return -1
}
