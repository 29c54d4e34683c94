// Package utils holds input validation limits and content hashing shared by
// the HTTP and WebSocket layers.
package utils
