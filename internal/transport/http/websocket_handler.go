package http

import (
	"log/slog"
	"net/http"

	gorilla "github.com/gorilla/websocket"

	"mktrend/internal/infrastructure"
	ws "mktrend/internal/websocket"
)

// WebSocketHandler upgrades /ws requests and attaches them to the progress hub
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader *gorilla.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a handler accepting same-origin and the listed origins
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:      hub,
		upgrader: ws.NewUpgrader(allowedOrigins, hub.Config()),
		logger:   logger.With(slog.String("handler", "websocket")),
	}
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := infrastructure.EnsureTraceID(r.Context())
	h.logger.InfoContext(ctx, "WebSocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")),
		slog.String("user_agent", r.UserAgent()))

	ws.ServeWS(h.hub, h.upgrader, w, r.WithContext(ctx))
}
