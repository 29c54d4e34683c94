// Package icons provides the desktop icon registry.
//
// The registry holds the ordered set of desktop icons together with their
// visibility and highlight flags. It is a leaf component: it knows nothing
// about windows and does not enforce single selection. Callers that want
// one highlighted icon at a time call UnhighlightAll before Highlight.
//
// State is copy-on-write. Every effective mutation installs a new *State
// value, so consumers can detect change by comparing pointers. Operations
// that turn out to be no-ops (unknown id, duplicate insert) keep the current
// pointer.
//
// Example Usage:
//
//	reg := icons.NewRegistry(logger)
//	reg.SetAll(catalog.Default().Icons())
//	reg.UnhighlightAll()
//	reg.Highlight("icon-home")
package icons
