package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"classroom-energy-api/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin enforcement happens in the CORS layer; the token check below
	// gates the socket itself.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	authService *services.AuthService
	cache       *services.CacheService
}

func NewWebSocketHandler(authService *services.AuthService, cache *services.CacheService) *WebSocketHandler {
	return &WebSocketHandler{authService: authService, cache: cache}
}

// LiveDecisions streams energy decisions to the dashboard as they are
// published. Browsers cannot set headers on a websocket handshake, so the
// token rides in the query string.
func (h *WebSocketHandler) LiveDecisions(c *gin.Context) {
	token := c.Query("token")
	if _, err := h.authService.ValidateToken(token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub, messages := h.cache.Subscribe(ctx, services.DecisionsChannel)
	if pubsub == nil {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"live feed unavailable"}`))
		return
	}
	defer pubsub.Close()

	// Drain client frames so pings and close frames get processed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		}
	}
}
