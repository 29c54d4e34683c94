// Package server assembles the desktop backend: the desktop state machine,
// its persisted stores, the weather proxy and the HTTP/WebSocket surface.
package server
