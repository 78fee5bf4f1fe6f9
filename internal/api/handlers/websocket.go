package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sentrywaf/waf/internal/logger"
	"github.com/sentrywaf/waf/internal/realtime"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub *realtime.Hub
}

func NewWebSocketHandler(hub *realtime.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// Logs upgrades the connection and attaches it to the realtime hub,
// blocking for the lifetime of the connection.
func (h *WebSocketHandler) Logs(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithFields(map[string]interface{}{"error": err.Error()}).Warn("websocket: upgrade failed")
		return
	}
	h.hub.Attach(conn)
}
