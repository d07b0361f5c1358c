package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/owlcart/owlcart-go/internal/infrastructure/messaging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/presentation/http/middleware"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = 54 * time.Second
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origin is already constrained by the CORS layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandlers contains the websocket price stream handlers
type StreamHandlers struct {
	broadcaster *messaging.PriceBroadcaster
	logger      *logging.ChanneledLogger
}

// NewStreamHandlers creates stream handlers with injected dependencies
func NewStreamHandlers(broadcaster *messaging.PriceBroadcaster, logger *logging.ChanneledLogger) *StreamHandlers {
	return &StreamHandlers{broadcaster: broadcaster, logger: logger}
}

// GetPriceStream handles GET /api/v1/cart/price/stream - upgrades to a
// websocket that receives every applied breakdown for the session.
func (h *StreamHandlers) GetPriceStream(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	conn, err := streamUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Stream().Warn("Websocket upgrade failed", "sessionId", sessionID, "error", err.Error())
		return
	}

	client := &messaging.PriceClient{
		Conn:      conn,
		SessionID: sessionID,
		Send:      make(chan []byte, 16),
	}
	h.broadcaster.Register(client)

	go h.writePump(client)
	go h.readPump(client)
}

func (h *StreamHandlers) writePump(client *messaging.PriceClient) {
	ticker := time.NewTicker(streamPingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandlers) readPump(client *messaging.PriceClient) {
	defer func() {
		h.broadcaster.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(512)
	client.Conn.SetReadDeadline(time.Now().Add(streamPongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(streamPongWait))
		return nil
	})

	// The stream is server-to-client only; inbound frames are drained and dropped.
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
