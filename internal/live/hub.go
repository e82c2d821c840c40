package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rickgao/rail-data/internal/model"
)

const writeWait = 10 * time.Second

// SnapshotMessage is the JSON form of a snapshot sent to clients.
type SnapshotMessage struct {
	ID       uuid.UUID       `json:"id"`
	PolledAt time.Time       `json:"polled_at"`
	Records  []RecordMessage `json:"records"`
}

// RecordMessage is the JSON form of one position record.
type RecordMessage struct {
	TrainCode string `json:"train_code"`
	Status    string `json:"train_status"`
	Latitude  string `json:"train_latitude"`
	Longitude string `json:"train_longitude"`
	Direction string `json:"train_direction"`
}

func newSnapshotMessage(snap model.Snapshot) SnapshotMessage {
	msg := SnapshotMessage{
		ID:       snap.ID,
		PolledAt: snap.PolledAt,
		Records:  make([]RecordMessage, len(snap.Records)),
	}
	for i, r := range snap.Records {
		msg.Records[i] = RecordMessage{
			TrainCode: r.TrainCode,
			Status:    r.Status,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Direction: r.Direction,
		}
	}
	return msg
}

// sendBuffer is how many payloads may queue for a slow client before it is dropped.
const sendBuffer = 4

// client is one WebSocket connection with its own writer goroutine.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the latest snapshot and fans it out to WebSocket clients.
// Broadcasts never block on the network: each client has a buffered queue
// drained by its own writer, and a client whose queue is full is dropped.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	latest  *model.Snapshot
	payload []byte
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// HandleSnapshot stores snap as the latest and queues it for every client.
func (h *Hub) HandleSnapshot(_ context.Context, snap model.Snapshot) error {
	data, err := json.Marshal(newSnapshotMessage(snap))
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = &snap
	h.payload = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("dropping slow websocket client")
			h.drop(c)
		}
	}
	return nil
}

// Latest returns the most recent snapshot, if any.
func (h *Hub) Latest() (model.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return model.Snapshot{}, false
	}
	return *h.latest, true
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the client. The latest
// snapshot, if any, is queued straight away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	if h.payload != nil {
		c.send <- h.payload
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("websocket client connected", "remote", conn.RemoteAddr())
	go h.writePump(c)
	go h.readPump(c)
}

// writePump is the only writer on c.conn. It exits when c.send is closed or a
// write fails.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("websocket write failed", "remote", c.conn.RemoteAddr(), "error", err)
			h.remove(c)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}

// readPump discards client messages and unregisters the client on error.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.drop(c)
	h.mu.Unlock()
}

// drop must be called with h.mu held. Closing send stops the writer, which
// closes the connection.
func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.drop(c)
	}
}
