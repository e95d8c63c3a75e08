package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"mktrend/internal/config"
	"mktrend/internal/infrastructure"
	"mktrend/pkg/contracts/events"
)

const broadcastBuffer = 256

// Hub maintains the set of active clients and broadcasts messages to them.
// Run owns the client set; other goroutines talk to it through channels.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	clientCount  atomic.Int64
	messagesSent atomic.Int64
	dropped      atomic.Int64

	cfg    config.WebSocketConfig
	logger *slog.Logger
}

// NewHub creates a new Hub. Zero fields in cfg fall back to the package
// defaults; a ping period not shorter than the pong wait becomes 9/10 of it.
func NewHub(cfg config.WebSocketConfig, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		cfg:        normalize(cfg),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

func normalize(cfg config.WebSocketConfig) config.WebSocketConfig {
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = config.WebSocketBufferSize
	}
	if cfg.WriteBufferSize <= 0 {
		cfg.WriteBufferSize = config.WebSocketBufferSize
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = config.WebSocketPongWait
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = cfg.PongWait * 9 / 10
	}
	return cfg
}

// Config returns the connection settings clients of this hub use
func (h *Hub) Config() config.WebSocketConfig {
	return h.cfg
}

// Start runs the hub loop in a new goroutine
func (h *Hub) Start() {
	if h.running.CompareAndSwap(false, true) {
		go h.Run()
	}
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.clientCount.Store(0)
			h.logger.Info("Hub shut down", slog.Int64("messages_sent", h.messagesSent.Load()))
			return

		case client := <-h.register:
			h.clients[client] = true
			h.clientCount.Store(int64(len(h.clients)))

			ctx := infrastructure.WithTraceID(context.Background(), client.traceID)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", len(h.clients)),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			if msg, err := encode(events.MessageTypeConnection, events.Connection{
				Status:   "connected",
				ClientID: client.id,
			}, client.traceID); err == nil {
				select {
				case client.send <- msg:
				default:
					h.logger.WarnContext(ctx, "Client buffer full, connection message dropped",
						slog.String("client_id", client.id))
				}
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.clientCount.Store(int64(len(h.clients)))

				h.logger.Info("Client unregistered",
					slog.Int("total_clients", len(h.clients)),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
					h.messagesSent.Add(1)
				default:
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("Client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}
			h.clientCount.Store(int64(len(h.clients)))
		}
	}
}

// Stop shuts the hub down and closes every client
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.quit)
		if h.running.Load() {
			<-h.done
		}
	})
}

// Broadcast queues a message for all clients. Messages are dropped when the
// queue is full or the hub has stopped, so callers never block on slow peers.
func (h *Hub) Broadcast(messageType events.MessageType, data interface{}) {
	h.BroadcastWithTrace(messageType, data, "")
}

// BroadcastWithTrace is Broadcast with a trace id attached to the message
func (h *Hub) BroadcastWithTrace(messageType events.MessageType, data interface{}, traceID string) {
	msg, err := encode(messageType, data, traceID)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(messageType)))
		return
	}

	select {
	case <-h.quit:
		return
	default:
	}

	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
		h.logger.Warn("Broadcast queue full, message dropped",
			slog.String("message_type", string(messageType)))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

// Stats returns counters for the health endpoint
func (h *Hub) Stats() map[string]interface{} {
	return map[string]interface{}{
		"active_clients":   h.ClientCount(),
		"messages_sent":    h.messagesSent.Load(),
		"messages_dropped": h.dropped.Load(),
	}
}

// Register adds a client to the hub; it reports false once the hub has stopped
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

func encode(messageType events.MessageType, data interface{}, traceID string) ([]byte, error) {
	return json.Marshal(events.Message{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC(),
		TraceID:   traceID,
	})
}
