// Package messaging pushes price breakdowns to connected storefront clients
// over websockets, so a shopper sees the reconciled total without polling.
package messaging

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/owlcart/owlcart-go/internal/domain/entities/pricing"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
)

// PriceClient represents a single connected storefront client, scoped to the
// session whose cart it watches.
type PriceClient struct {
	Conn      *websocket.Conn
	SessionID string
	Send      chan []byte
}

// PriceUpdate is the message pushed to the frontend whenever a reconciled
// breakdown is applied for the client's session.
type PriceUpdate struct {
	Type      string            `json:"type"` // always "priceUpdate"
	SessionID string            `json:"sessionId"`
	Seq       uint64            `json:"seq"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

// PriceBroadcaster fans applied breakdowns out to the clients watching each
// session. Registration and delivery run on the broadcaster's own goroutine.
type PriceBroadcaster struct {
	sessionClients map[string]map[*PriceClient]bool
	register       chan *PriceClient
	unregister     chan *PriceClient
	updates        chan PriceUpdate
	logger         *logging.ChanneledLogger
	mu             sync.RWMutex
}

// NewPriceBroadcaster creates a new broadcaster instance.
func NewPriceBroadcaster(logger *logging.ChanneledLogger) *PriceBroadcaster {
	return &PriceBroadcaster{
		sessionClients: make(map[string]map[*PriceClient]bool),
		register:       make(chan *PriceClient),
		unregister:     make(chan *PriceClient),
		updates:        make(chan PriceUpdate, 64),
		logger:         logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *PriceBroadcaster) Run() {
	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			if _, ok := b.sessionClients[client.SessionID]; !ok {
				b.sessionClients[client.SessionID] = make(map[*PriceClient]bool)
			}
			b.sessionClients[client.SessionID][client] = true
			b.mu.Unlock()
			b.logger.Stream().Debug("Price stream client registered", "sessionId", client.SessionID)

		case client := <-b.unregister:
			b.mu.Lock()
			if clients, ok := b.sessionClients[client.SessionID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(b.sessionClients, client.SessionID)
					}
				}
			}
			b.mu.Unlock()
			b.logger.Stream().Debug("Price stream client unregistered", "sessionId", client.SessionID)

		case update := <-b.updates:
			b.deliver(update)
		}
	}
}

// Register queues a client for registration.
func (b *PriceBroadcaster) Register(client *PriceClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *PriceBroadcaster) Unregister(client *PriceClient) {
	b.unregister <- client
}

// BroadcastPriceUpdate publishes an applied breakdown to the session's
// watchers. Non-blocking: if the update queue is full the update is dropped,
// the next reconciliation will supersede it anyway.
func (b *PriceBroadcaster) BroadcastPriceUpdate(sessionID string, seq uint64, breakdown pricing.Breakdown) {
	update := PriceUpdate{Type: "priceUpdate", SessionID: sessionID, Seq: seq, Breakdown: breakdown}
	select {
	case b.updates <- update:
	default:
		b.logger.Stream().Warn("Price update queue full, dropping update", "sessionId", sessionID, "seq", seq)
	}
}

// WatcherCount reports how many clients are watching a session.
func (b *PriceBroadcaster) WatcherCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessionClients[sessionID])
}

func (b *PriceBroadcaster) deliver(update PriceUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		b.logger.Stream().Error("Failed to encode price update", "error", err.Error())
		return
	}

	b.mu.RLock()
	clients := make([]*PriceClient, 0, len(b.sessionClients[update.SessionID]))
	for client := range b.sessionClients[update.SessionID] {
		clients = append(clients, client)
	}
	b.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- payload:
		default:
			// Slow consumer, drop the client.
			go b.Unregister(client)
		}
	}
}
