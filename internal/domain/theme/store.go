// Package theme tracks the desktop color scheme and whether it follows the
// operating system preference.
package theme

import (
	"errors"
	"fmt"
	"sync"
)

// Theme is a color scheme name
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Default is the theme used before any preference is known
const Default = Dark

// ErrInvalidTheme is returned for names other than light and dark
var ErrInvalidTheme = errors.New("invalid theme")

// Parse validates a theme name
func Parse(name string) (Theme, error) {
	switch t := Theme(name); t {
	case Light, Dark:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, name)
	}
}

// Opposite returns the other theme
func (t Theme) Opposite() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// State is an immutable theme snapshot
type State struct {
	Theme              Theme `json:"theme"`
	SystemThemeEnabled bool  `json:"systemThemeEnabled"`
}

// Listener receives the new state after each effective change
type Listener func(*State)

// Store holds the current theme
type Store struct {
	mu        sync.RWMutex
	state     *State
	listeners map[int]Listener
	nextSub   int
}

// NewStore creates a store in the default theme, following the system
func NewStore() *Store {
	return &Store{
		state:     &State{Theme: Default, SystemThemeEnabled: true},
		listeners: make(map[int]Listener),
	}
}

// State returns the current snapshot
func (s *Store) State() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Theme returns the current theme
func (s *Store) Theme() Theme {
	return s.State().Theme
}

// Subscribe registers a listener and returns a function that removes it
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.nextSub
	s.nextSub++
	s.listeners[key] = fn

	return func() {
		s.mu.Lock()
		delete(s.listeners, key)
		s.mu.Unlock()
	}
}

// SetTheme selects a theme explicitly and stops following the system
func (s *Store) SetTheme(name string) error {
	t, err := Parse(name)
	if err != nil {
		return err
	}
	s.set(State{Theme: t, SystemThemeEnabled: false})
	return nil
}

// Toggle flips between light and dark and stops following the system
func (s *Store) Toggle() Theme {
	next := s.State().Theme.Opposite()
	s.set(State{Theme: next, SystemThemeEnabled: false})
	return next
}

// SetSystemThemeEnabled turns system following on or off. When enabling, a
// non-empty systemTheme is adopted immediately.
func (s *Store) SetSystemThemeEnabled(enabled bool, systemTheme string) error {
	cur := *s.State()
	if !enabled {
		cur.SystemThemeEnabled = false
		s.set(cur)
		return nil
	}

	if systemTheme != "" {
		t, err := Parse(systemTheme)
		if err != nil {
			return err
		}
		cur.Theme = t
	}
	cur.SystemThemeEnabled = true
	s.set(cur)
	return nil
}

// SystemThemeChanged applies an OS preference change while following it
func (s *Store) SystemThemeChanged(name string) error {
	t, err := Parse(name)
	if err != nil {
		return err
	}
	cur := *s.State()
	if !cur.SystemThemeEnabled {
		return nil
	}
	cur.Theme = t
	s.set(cur)
	return nil
}

// Restore installs a rehydrated snapshot; an invalid theme falls back to
// the default
func (s *Store) Restore(st *State) {
	if st == nil {
		return
	}
	next := *st
	if _, err := Parse(string(next.Theme)); err != nil {
		next.Theme = Default
	}
	s.set(next)
}

func (s *Store) set(next State) {
	s.mu.Lock()
	if *s.state == next {
		s.mu.Unlock()
		return
	}
	st := &next
	s.state = st
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}
