// Package gateway fans engine events out to websocket watchers as binary
// codec frames.
package gateway

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"wordduel/internal/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SnapshotFunc produces the payload sent to a watcher right after it
// connects.
type SnapshotFunc func() (*structpb.Struct, error)

// Connection is one watcher.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Gateway *Gateway
}

// Gateway manages watcher connections.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	nextConnID  uint64
	seq         atomic.Uint64
	snapshot    SnapshotFunc
	closed      bool
	wg          sync.WaitGroup
	logger      *zap.Logger
}

func New(snapshot SnapshotFunc, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		connections: make(map[string]*Connection),
		snapshot:    snapshot,
		logger:      logger.Named("gateway"),
	}
}

// HandleWebSocket upgrades the request and starts the connection pumps.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("upgrade failed", zap.Error(err))
		return
	}

	send := make(chan []byte, sendBuffer)
	if g.snapshot != nil {
		if payload, err := g.snapshot(); err != nil {
			g.logger.Warn("snapshot failed", zap.Error(err))
		} else if frame, err := g.frame(codec.TypeSnapshot, payload); err == nil {
			send <- frame
		}
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	g.nextConnID++
	c := &Connection{
		ID:      fmt.Sprintf("conn_%d", g.nextConnID),
		Conn:    conn,
		Send:    send,
		Gateway: g,
	}
	g.connections[c.ID] = c
	total := len(g.connections)
	g.wg.Add(2)
	g.mu.Unlock()

	g.logger.Info("watcher connected", zap.String("conn", c.ID), zap.Int("total", total))

	go c.readPump()
	go c.writePump()
}

// readPump only drains control frames; watchers never send commands.
func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		_ = c.Conn.Close()
		c.Gateway.wg.Done()
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.Gateway.logger.Debug("read error", zap.String("conn", c.ID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		c.Gateway.wg.Done()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// removeConnection unregisters c and closes its send queue exactly once.
func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.connections[c.ID]; !ok {
		return
	}
	delete(g.connections, c.ID)
	close(c.Send)
	g.logger.Info("watcher disconnected", zap.String("conn", c.ID), zap.Int("total", len(g.connections)))
}

func (g *Gateway) frame(typ string, payload *structpb.Struct) ([]byte, error) {
	data, err := codec.Encode(codec.Wrap(typ, g.seq.Add(1), payload))
	if err != nil {
		g.logger.Warn("encode frame failed", zap.String("type", typ), zap.Error(err))
		return nil, err
	}
	return data, nil
}

// Publish encodes payload and sends it to every watcher.
func (g *Gateway) Publish(typ string, payload *structpb.Struct) {
	data, err := g.frame(typ, payload)
	if err != nil {
		return
	}
	g.Broadcast(data)
}

// Broadcast sends a frame to all connections. Slow watchers drop frames.
func (g *Gateway) Broadcast(message []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.connections {
		select {
		case c.Send <- message:
		default:
			g.logger.Debug("dropping frame for slow watcher", zap.String("conn", c.ID))
		}
	}
}

func (g *Gateway) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}

// Close disconnects every watcher and waits for their pumps to exit.
func (g *Gateway) Close() {
	g.mu.Lock()
	g.closed = true
	conns := make([]*Connection, 0, len(g.connections))
	for _, c := range g.connections {
		conns = append(conns, c)
	}
	g.mu.Unlock()

	for _, c := range conns {
		g.removeConnection(c)
	}
	g.wg.Wait()
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.HandleWebSocket(w, r)
}
