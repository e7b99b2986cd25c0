package devtools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/faultline/pkg/host"
)

// MessageType is the type of an overlay message.
type MessageType string

const (
	MessageError MessageType = "error"
	MessageClear MessageType = "clear"
)

// Message is sent to overlay clients via WebSocket.
type Message struct {
	Type   MessageType  `json:"type"`
	Report *host.Report `json:"report,omitempty"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Overlay manages WebSocket connections for the error overlay.
// It implements host.Channel.
type Overlay struct {
	clients  map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	history  *host.Recorder
	logger   *slog.Logger
}

// NewOverlay creates an overlay. When history is non-nil, every report
// written to the overlay is recorded there, and newly connected clients
// first receive the reports it retains.
func NewOverlay(history *host.Recorder) *Overlay {
	return &Overlay{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev
			},
		},
		history: history,
		logger:  slog.Default().With("component", "devtools.overlay"),
	}
}

// WithLogger sets the logger and returns the overlay.
func (o *Overlay) WithLogger(logger *slog.Logger) *Overlay {
	o.logger = logger
	return o
}

// HandleWebSocket handles WebSocket upgrade and connection.
//
// The client is registered and the history snapshot is taken under o.mu,
// and the replay is written while holding the client's write lock. Every
// report therefore reaches a new client exactly once, and no live report
// overtakes the replay.
func (o *Overlay) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := o.upgrader.Upgrade(w, req, nil)
	if err != nil {
		o.logger.Warn("overlay upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}

	c.mu.Lock()
	o.mu.Lock()
	var replay []host.Report
	if o.history != nil {
		replay = o.history.Reports()
	}
	o.clients[c] = true
	o.mu.Unlock()

	var writeErr error
	for _, r := range replay {
		rep := r
		data, err := json.Marshal(Message{Type: MessageError, Report: &rep})
		if err != nil {
			continue
		}
		if writeErr = conn.WriteMessage(websocket.TextMessage, data); writeErr != nil {
			break
		}
	}
	c.mu.Unlock()

	// Keep connection alive until client disconnects
	if writeErr == nil {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}

	o.mu.Lock()
	delete(o.clients, c)
	o.mu.Unlock()
	conn.Close()
}

// WriteError implements host.Channel. The report is recorded in the
// history and the set of receiving clients is fixed in one critical
// section, so a client connecting concurrently sees it either in its
// replay or live.
func (o *Overlay) WriteError(r host.Report) {
	data, err := json.Marshal(Message{Type: MessageError, Report: &r})
	if err != nil {
		o.logger.Error("overlay encode failed", "error", err)
		return
	}

	o.mu.Lock()
	if o.history != nil {
		o.history.WriteError(r)
	}
	clients := o.clientsLocked()
	o.mu.Unlock()

	o.send(clients, data)
}

// Clear clears the error overlay on all clients.
func (o *Overlay) Clear() {
	o.broadcast(Message{Type: MessageClear})
}

// broadcast sends a message to all connected clients.
func (o *Overlay) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		o.logger.Error("overlay encode failed", "error", err)
		return
	}

	o.mu.RLock()
	clients := o.clientsLocked()
	o.mu.RUnlock()

	o.send(clients, data)
}

func (o *Overlay) clientsLocked() []*client {
	clients := make([]*client, 0, len(o.clients))
	for c := range o.clients {
		clients = append(clients, c)
	}
	return clients
}

func (o *Overlay) send(clients []*client, data []byte) {
	for _, c := range clients {
		if err := c.write(data); err != nil {
			o.mu.Lock()
			delete(o.clients, c)
			o.mu.Unlock()
			c.conn.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (o *Overlay) ClientCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.clients)
}

// Close closes all client connections.
func (o *Overlay) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for c := range o.clients {
		c.conn.Close()
		delete(o.clients, c)
	}
}
