// Package windows provides the window registry: the state machine behind
// every open desktop window.
//
// The registry owns all Window records. It creates them (OpenOrFocus),
// focuses and stacks them (SetActive, BringToFront), drives the
// minimized/maximized lifecycle (Minimize, Maximize, Restore and the
// toggles), commits geometry (SetPosition, SetSize) and destroys them
// (Close, CloseAll).
//
// Invariants held after every operation:
//   - at most one window has IsActive, and ActiveWindowID names it or is empty
//   - at most one window exists per source icon
//   - HighestZIndex >= BaseZIndex and the most recently raised window holds it
//   - RestorePosition/RestoreSize are set only while maximized
//
// Operations that reference an unknown window ID are no-ops. The registry
// performs no bounds checking; clamping against the viewport belongs to the
// caller.
//
// State is copy-on-write, like the icon registry: compare *State pointers to
// detect change.
//
// Example Usage:
//
//	reg := windows.NewRegistry(windows.DefaultOptions())
//	id := reg.OpenOrFocus("icon-home", "Home", "/assets/icons/home.svg")
//	reg.Maximize(id)
//	reg.SetSize(id, 1280, 720)
//	reg.Restore(id)
package windows
