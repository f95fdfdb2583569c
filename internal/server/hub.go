// Package server streams simulation telemetry to websocket clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/conga/internal/core/events/bus"
	"github.com/zeusync/conga/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// Message kinds on the wire.
const (
	KindSnapshot = "snapshot"
	KindEvent    = "event"
)

// Message is the envelope of everything sent to clients.
type Message struct {
	Kind     string    `json:"kind"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Event    *Event    `json:"event,omitempty"`
}

type Event struct {
	Type   string `json:"type"`
	Source string `json:"source"`
	Data   any    `json:"data,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to every connected client. A client that cannot keep
// up loses messages instead of stalling the frame loop.
type Hub struct {
	logger     log.Log
	maxClients int

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  []byte
	dropped uint64
}

// NewHub builds a hub accepting at most maxClients connections; zero means
// no limit.
func NewHub(logger log.Log, maxClients int) *Hub {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Hub{
		logger:     logger,
		maxClients: maxClients,
		clients:    make(map[*client]struct{}),
	}
}

// Handler serves /ws for the stream and /snapshot for the latest frame.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("/snapshot", h.handleSnapshot)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// Serve listens on addr until ctx is done, then shuts down and disconnects
// every client.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("telemetry listening", log.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	h.closeAll()
	return err
}

// Publish sends a snapshot to every client.
func (h *Hub) Publish(s Snapshot) {
	data, err := json.Marshal(Message{Kind: KindSnapshot, Snapshot: &s})
	if err != nil {
		h.logger.Error("encode snapshot", log.Error(err))
		return
	}
	h.mu.Lock()
	h.latest = data
	h.mu.Unlock()
	h.broadcast(data)
}

// Forward relays every bus event to clients. Cancel the returned subscription
// to stop.
func (h *Hub) Forward(events bus.EventBus) (bus.Subscription, error) {
	return events.SubscribeAll(func(ev bus.Event) error {
		data, err := json.Marshal(Message{Kind: KindEvent, Event: &Event{
			Type:   ev.Type(),
			Source: ev.Source(),
			Data:   ev.Data(),
		}})
		if err != nil {
			return err
		}
		h.broadcast(data)
		return nil
	})
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped counts messages skipped for slow clients.
func (h *Hub) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped++
		}
	}
}

func (h *Hub) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	data := h.latest
	h.mu.RUnlock()
	if data == nil {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.maxClients > 0 && h.Clients() >= h.maxClients {
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c := h.register(conn)
	h.logger.Debug("telemetry client connected", log.String("remote", conn.RemoteAddr().String()))

	go h.writePump(c)
	h.readPump(c)
}

// register adds a client and queues the latest snapshot for it. The send
// happens under the lock: the buffer is empty, and remove cannot close the
// channel in between.
func (h *Hub) register(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	if h.latest != nil {
		c.send <- h.latest
	}
	return c
}

// readPump discards client input and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer func() { _ = c.conn.Close() }()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.logger.Debug("telemetry client disconnected")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.remove(c)
	}
}
