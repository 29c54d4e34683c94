package windows

import "github.com/GriffinCanCode/webtop/internal/shared/types"

// draft is a private working copy of a State. Transitions edit the draft and
// then publish it as a new State, so a published snapshot is never mutated.
type draft struct {
	windows []Window
	active  string
	highest int
}

func newDraft(s *State) *draft {
	ws := make([]Window, len(s.Windows))
	copy(ws, s.Windows)
	return &draft{
		windows: ws,
		active:  s.ActiveWindowID,
		highest: s.HighestZIndex,
	}
}

func (d *draft) state() *State {
	return &State{
		Windows:        d.windows,
		ActiveWindowID: d.active,
		HighestZIndex:  d.highest,
	}
}

// bringToFront assigns the next zIndex and moves focus to window i
func (d *draft) bringToFront(i int) {
	d.highest++
	w := &d.windows[i]
	w.ZIndex = d.highest

	if d.active != w.ID {
		if prev := indexOf(d.windows, d.active); prev >= 0 {
			d.windows[prev].IsActive = false
		}
	}
	w.IsActive = true
	d.active = w.ID
}

func (d *draft) setActive(i int) {
	for j := range d.windows {
		d.windows[j].IsActive = j == i
	}
	d.active = d.windows[i].ID
	d.bringToFront(i)
}

func (d *draft) minimize(i int) {
	w := &d.windows[i]
	w.IsMinimized = true
	w.IsActive = false
	if d.active == w.ID {
		d.active = ""
	}
}

// maximize is a no-op on an already maximized window so the first snapshot
// survives
func (d *draft) maximize(i int) {
	w := &d.windows[i]
	if w.IsMaximized {
		return
	}
	pos, size := w.Position, w.Size
	w.RestorePosition = &pos
	w.RestoreSize = &size
	w.Position = types.Point{}
	w.IsMaximized = true
}

func (d *draft) restore(i int) {
	w := &d.windows[i]
	if w.IsMaximized && w.RestorePosition != nil && w.RestoreSize != nil {
		w.Position = *w.RestorePosition
		w.Size = *w.RestoreSize
		w.RestorePosition = nil
		w.RestoreSize = nil
	}
	w.IsMinimized = false
	w.IsMaximized = false
}
