package icons

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webtop/internal/shared/types"
)

// Icon is a desktop launcher entry
type Icon struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Image         string     `json:"icon"`
	IsHighlighted bool       `json:"isHighlighted"`
	Show          bool       `json:"show"`
	Size          types.Size `json:"size"`
}

// State is an immutable snapshot of the registry. Do not modify the slice.
type State struct {
	Icons []Icon `json:"icons"`
}

// Listener receives the new state after each effective mutation
type Listener func(*State)

// Registry owns the desktop icons
type Registry struct {
	mu        sync.RWMutex
	state     *State // Protected by mu
	listeners map[int]Listener
	nextSub   int
	logger    *zap.Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		state:     &State{Icons: []Icon{}},
		listeners: make(map[int]Listener),
		logger:    logger,
	}
}

// State returns the current snapshot
func (r *Registry) State() *State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Icons returns the current icon slice (shared, read-only)
func (r *Registry) Icons() []Icon {
	return r.State().Icons
}

// Len returns the number of icons
func (r *Registry) Len() int {
	return len(r.State().Icons)
}

// Get retrieves an icon by ID
func (r *Registry) Get(id string) (Icon, bool) {
	for _, icon := range r.State().Icons {
		if icon.ID == id {
			return icon, true
		}
	}
	return Icon{}, false
}

// AnyHighlighted reports whether at least one icon is highlighted
func (r *Registry) AnyHighlighted() bool {
	for _, icon := range r.State().Icons {
		if icon.IsHighlighted {
			return true
		}
	}
	return false
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

// SetAll replaces the entire icon set
func (r *Registry) SetAll(icons []Icon) {
	next := make([]Icon, len(icons))
	copy(next, icons)
	r.commit(func(*State) (*State, bool) {
		return &State{Icons: next}, true
	})
}

// Restore installs a rehydrated snapshot
func (r *Registry) Restore(s *State) {
	if s == nil {
		return
	}
	r.SetAll(s.Icons)
}

// Add inserts an icon. Duplicate IDs are logged and ignored.
func (r *Registry) Add(icon Icon) {
	r.commit(func(cur *State) (*State, bool) {
		for _, existing := range cur.Icons {
			if existing.ID == icon.ID {
				r.logger.Warn("Icon already exists", zap.String("icon_id", icon.ID))
				return cur, false
			}
		}
		next := make([]Icon, len(cur.Icons), len(cur.Icons)+1)
		copy(next, cur.Icons)
		return &State{Icons: append(next, icon)}, true
	})
}

// Remove deletes the icon with the given ID
func (r *Registry) Remove(id string) {
	r.commit(func(cur *State) (*State, bool) {
		next := make([]Icon, 0, len(cur.Icons))
		for _, icon := range cur.Icons {
			if icon.ID != id {
				next = append(next, icon)
			}
		}
		if len(next) == len(cur.Icons) {
			return cur, false
		}
		return &State{Icons: next}, true
	})
}

// SetVisible toggles the show flag on one icon
func (r *Registry) SetVisible(id string, visible bool) {
	r.updateOne(id, func(icon *Icon) { icon.Show = visible })
}

// SetAllVisible toggles the show flag on every icon
func (r *Registry) SetAllVisible(visible bool) {
	r.updateAll(func(icon *Icon) { icon.Show = visible })
}

// Highlight marks one icon highlighted without touching the others
func (r *Registry) Highlight(id string) {
	r.updateOne(id, func(icon *Icon) { icon.IsHighlighted = true })
}

// Unhighlight clears the highlight on one icon
func (r *Registry) Unhighlight(id string) {
	r.updateOne(id, func(icon *Icon) { icon.IsHighlighted = false })
}

// HighlightAll highlights every icon
func (r *Registry) HighlightAll() {
	r.updateAll(func(icon *Icon) { icon.IsHighlighted = true })
}

// UnhighlightAll clears every highlight
func (r *Registry) UnhighlightAll() {
	r.updateAll(func(icon *Icon) { icon.IsHighlighted = false })
}

// updateOne maps the icon with the given id; unknown ids are a no-op
func (r *Registry) updateOne(id string, apply func(*Icon)) {
	r.commit(func(cur *State) (*State, bool) {
		for i := range cur.Icons {
			if cur.Icons[i].ID != id {
				continue
			}
			next := make([]Icon, len(cur.Icons))
			copy(next, cur.Icons)
			apply(&next[i])
			return &State{Icons: next}, true
		}
		return cur, false
	})
}

func (r *Registry) updateAll(apply func(*Icon)) {
	r.commit(func(cur *State) (*State, bool) {
		next := make([]Icon, len(cur.Icons))
		copy(next, cur.Icons)
		for i := range next {
			apply(&next[i])
		}
		return &State{Icons: next}, true
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
