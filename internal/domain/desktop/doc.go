// Package desktop is the single entry point for renderer events.
//
// A Desktop owns the icon registry, the window registry and the theme store
// and exposes the interactions the renderer produces: clicking and opening
// icons, window chrome buttons, drag and resize commits, viewport reports
// and theme changes. Events are serialized so composed steps such as
// "unhighlight all, then highlight one" or "maximize, then size to the
// viewport" are observed atomically.
//
// Subscribers receive a Snapshot after every event that changed state,
// which the transport layer pushes to connected clients.
package desktop
