// Package main is the entry point for the webtop desktop backend.
//
// The server owns the desktop state (icons, windows, theme) and exposes it
// to the browser renderer over REST and WebSocket.
//
// The server provides:
//   - REST API for icons, windows and theme
//   - WebSocket state streaming at /stream
//   - Icon asset serving and a weather proxy
//   - Persisted desktop state
//   - Prometheus metrics at /metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -state-dir /var/lib/webtop
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
