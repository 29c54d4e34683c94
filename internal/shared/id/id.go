// Package id provides centralized ID generation for the backend.
//
// Two families of identifiers live here:
//   - Window IDs: deterministic "window-<iconId>-<unix millis>" strings, derived
//     from the source icon and the creation time so the renderer can read them.
//   - Opaque IDs: prefixed ULIDs for requests and UUIDs for WebSocket clients.
//
// ULIDs are lexicographically sortable, which keeps request logs in order.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// WindowID identifies an open window
type WindowID string

// RequestID identifies an API request
type RequestID string

// ClientID identifies a WebSocket connection
type ClientID string

const (
	WindowPrefix  = "window"
	RequestPrefix = "req"
	ClientPrefix  = "client"
)

// Clock returns the current time. Registries take one so tests can pin it.
type Clock func() time.Time

// SystemClock is the wall clock
func SystemClock() time.Time {
	return time.Now()
}

// NewWindowID derives a window ID from its source icon and creation time
func NewWindowID(iconID string, at time.Time) WindowID {
	return WindowID(WindowPrefix + "-" + iconID + "-" + strconv.FormatInt(at.UnixMilli(), 10))
}

// ParseWindowID splits a window ID into source icon and creation time.
// Icon IDs may themselves contain dashes, so the timestamp is taken from the end.
func ParseWindowID(s string) (iconID string, at time.Time, err error) {
	rest, ok := strings.CutPrefix(s, WindowPrefix+"-")
	if !ok {
		return "", time.Time{}, fmt.Errorf("window id %q: missing %q prefix", s, WindowPrefix)
	}
	idx := strings.LastIndexByte(rest, '-')
	if idx <= 0 {
		return "", time.Time{}, fmt.Errorf("window id %q: missing timestamp", s)
	}
	millis, err := strconv.ParseInt(rest[idx+1:], 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("window id %q: %w", s, err)
	}
	return rest[:idx], time.UnixMilli(millis), nil
}

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewClientID generates a new WebSocket client ID
func NewClientID() ClientID {
	return ClientID(ClientPrefix + "_" + uuid.NewString())
}

func (id WindowID) String() string  { return string(id) }
func (id RequestID) String() string { return string(id) }
func (id ClientID) String() string  { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// IsValidRequestID checks for a prefixed ULID as made by NewRequestID
func IsValidRequestID(id string) bool {
	rest, ok := strings.CutPrefix(id, RequestPrefix+"_")
	return ok && IsValid(rest)
}
