package ws

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webtop/internal/domain/desktop"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webtop/internal/shared/id"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/GriffinCanCode/webtop/internal/shared/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = utils.MaxMessageSize
	sendBuffer     = 32
)

// ErrUnknownMessage is reported for unsupported message types
var ErrUnknownMessage = errors.New("unknown message type")

// Outbound is a server to client frame
type Outbound struct {
	Type      string            `json:"type"`
	ClientID  string            `json:"clientId,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
	WindowID  string            `json:"windowId,omitempty"`
	Message   string            `json:"message,omitempty"`
	State     *desktop.Snapshot `json:"state,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

type client struct {
	id   id.ClientID
	conn *websocket.Conn
	send chan []byte

	mu      sync.Mutex
	closed  bool
	lastSeq uint64 // Seq of the newest state frame queued
}

type offerResult int

const (
	offerQueued offerResult = iota
	offerStale
	offerFull
	offerClosed
)

// offer queues data without blocking. A state frame (ordered) older than
// one already queued is skipped.
func (c *client) offer(data []byte, ordered bool, seq uint64) offerResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return offerClosed
	}
	if ordered && seq < c.lastSeq {
		return offerStale
	}
	select {
	case c.send <- data:
		if ordered {
			c.lastSeq = seq
		}
		return offerQueued
	default:
		return offerFull
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub fans desktop snapshots out to connected renderers and applies the
// commands they send back.
type Hub struct {
	desktop  *desktop.Desktop
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	clients     map[id.ClientID]*client
	closed      bool
	unsubscribe func()
}

// NewHub subscribes to d. Empty origins, or "*", accepts any Origin.
func NewHub(d *desktop.Desktop, m *monitoring.Metrics, logger *zap.Logger, origins []string) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		desktop: d,
		metrics: m,
		logger:  logger.Named("ws"),
		clients: make(map[id.ClientID]*client),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(origins),
	}
	h.unsubscribe = d.Subscribe(h.broadcast)
	return h
}

func originChecker(origins []string) func(*http.Request) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}

// Len returns the number of connected clients
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close detaches from the desktop and disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = make(map[id.ClientID]*client)
	h.mu.Unlock()

	h.unsubscribe()
	for _, c := range clients {
		c.close()
		if h.metrics != nil {
			h.metrics.DecWSConnections()
		}
	}
}

// HandleConnection upgrades the request and serves the connection until it closes
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{id: id.NewClientID(), conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.register(cl) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	go h.writePump(cl)
	h.readPump(cl)
}

func (h *Hub) register(cl *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[cl.id] = cl

	snap := h.desktop.Snapshot()
	h.enqueue(cl, Outbound{Type: "system", ClientID: cl.id.String(), Message: "connected"})
	h.enqueue(cl, Outbound{Type: "state", State: &snap})

	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
	h.logger.Debug("Client connected", zap.String("client_id", cl.id.String()))
	return true
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	_, ok := h.clients[cl.id]
	delete(h.clients, cl.id)
	h.mu.Unlock()

	cl.close()
	if ok && h.metrics != nil {
		h.metrics.DecWSConnections()
	}
	h.logger.Debug("Client disconnected", zap.String("client_id", cl.id.String()))
}

func (h *Hub) broadcast(snap desktop.Snapshot) {
	data, err := encode(Outbound{Type: "state", State: &snap})
	if err != nil {
		h.logger.Error("Failed to encode state", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, cl := range h.clients {
		h.push(cl, data, "state", &snap)
	}
}

// enqueue must not block; a client that cannot keep up is dropped
func (h *Hub) enqueue(cl *client, msg Outbound) {
	data, err := encode(msg)
	if err != nil {
		h.logger.Error("Failed to encode message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	h.push(cl, data, msg.Type, msg.State)
}

func (h *Hub) push(cl *client, data []byte, msgType string, state *desktop.Snapshot) {
	var seq uint64
	if state != nil {
		seq = state.Seq
	}
	switch cl.offer(data, state != nil, seq) {
	case offerQueued:
		if h.metrics != nil {
			h.metrics.RecordWSMessage("out", msgType)
		}
	case offerStale:
		h.logger.Debug("Skipped stale state", zap.String("client_id", cl.id.String()), zap.Uint64("seq", seq))
	case offerFull:
		h.logger.Warn("Client send buffer full, disconnecting", zap.String("client_id", cl.id.String()))
		cl.close()
	}
}

func encode(msg Outbound) ([]byte, error) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	return sonic.Marshal(msg)
}

func (h *Hub) readPump(cl *client) {
	defer func() {
		h.unregister(cl)
		cl.conn.Close()
	}()

	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", zap.String("client_id", cl.id.String()), zap.Error(err))
			}
			return
		}

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.enqueue(cl, Outbound{Type: "error", Message: "malformed message"})
			continue
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", metricLabel(msg.Type))
		}

		reply := h.handle(msg)
		reply.RequestID = msg.RequestID
		h.enqueue(cl, reply)
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case data, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var commands = map[string]struct{}{
	"ping": {}, "state": {},
	"icon.click": {}, "icon.open": {}, "icon.visible": {}, "desktop.click": {}, "viewport": {},
	"window.focus": {}, "window.minimize": {}, "window.toggleMinimize": {}, "window.toggleMaximize": {},
	"window.restore": {}, "window.close": {}, "window.closeAll": {}, "window.deactivateAll": {},
	"window.front": {}, "window.move": {}, "window.resize": {},
	"theme.set": {}, "theme.toggle": {}, "theme.system": {}, "theme.systemChanged": {},
}

// metricLabel keeps label cardinality bounded against arbitrary client input
func metricLabel(msgType string) string {
	if _, ok := commands[msgType]; ok {
		return msgType
	}
	return "unknown"
}

// handle applies one command. State changes reach the client through the
// broadcast; the reply only acknowledges.
func (h *Hub) handle(msg types.WSMessage) Outbound {
	d := h.desktop
	var (
		windowID string
		err      error
	)

	switch msg.Type {
	case "ping":
		return Outbound{Type: "pong"}
	case "state":
		snap := d.Snapshot()
		return Outbound{Type: "state", State: &snap}

	case "icon.click":
		err = d.ClickIcon(msg.ID)
	case "icon.open":
		windowID, err = d.OpenIcon(msg.ID)
	case "icon.visible":
		err = d.SetIconVisible(msg.ID, msg.Visible)
	case "desktop.click":
		d.ClickDesktop()
	case "viewport":
		err = d.SetViewport(msg.Width, msg.Height)

	case "window.focus":
		err = d.Focus(msg.ID)
	case "window.minimize":
		err = d.Minimize(msg.ID)
	case "window.toggleMinimize":
		err = d.ToggleMinimize(msg.ID)
	case "window.toggleMaximize":
		err = d.ToggleMaximize(msg.ID)
	case "window.restore":
		err = d.Restore(msg.ID)
	case "window.close":
		err = d.Close(msg.ID)
	case "window.closeAll":
		d.CloseAll()
	case "window.deactivateAll":
		d.DeactivateAll()
	case "window.front":
		err = d.BringToFront(msg.ID)
	case "window.move":
		err = d.MoveEnd(msg.ID, msg.X, msg.Y)
	case "window.resize":
		err = d.ResizeEnd(msg.ID, msg.Width, msg.Height)

	case "theme.set":
		err = d.SetTheme(msg.Theme)
	case "theme.toggle":
		d.ToggleTheme()
	case "theme.system":
		err = d.SetSystemThemeEnabled(msg.Enabled, msg.Theme)
	case "theme.systemChanged":
		err = d.SystemThemeChanged(msg.Theme)

	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}

	if err != nil {
		return Outbound{Type: "error", Message: err.Error()}
	}
	return Outbound{Type: "ack", WindowID: windowID}
}
