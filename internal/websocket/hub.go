package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"pin-support-be/internal/pkg/logger"
	"pin-support-be/pkg/events"

	"github.com/redis/go-redis/v9"
)

const (
	clusterChannel = "support_ticket_events"
	allOrgs        = "*"
)

// Hub fans ticket events out to helpdesk agents, grouped by organisation.
// With Redis configured every instance relays events published by the others.
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb    *redis.Client
	logger logger.ILogger
}

type clusterMessage struct {
	OrgID   string          `json:"org_id"`
	Message json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

// Run serves register/unregister requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.OrgID] = append(h.clients[client.OrgID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Agent registered", map[string]interface{}{"org_id": client.OrgID, "user_id": client.UserID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.OrgID]
	for i, c := range clients {
		if c == client {
			h.clients[client.OrgID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.OrgID]) == 0 {
		delete(h.clients, client.OrgID)
	}
}

// BroadcastTicket delivers a ticket event to the agents of its organisation
// (and to agents without an organisation claim).
func (h *Hub) BroadcastTicket(eventType string, payload events.TicketPayload) {
	data, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": payload,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode ticket event", map[string]interface{}{"error": err.Error()})
		return
	}

	if h.rdb == nil {
		h.deliverLocal(payload.OrgID, data)
		return
	}

	raw, _ := json.Marshal(clusterMessage{OrgID: payload.OrgID, Message: data})
	if err := h.rdb.Publish(context.Background(), clusterChannel, raw).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed, delivering locally", map[string]interface{}{"error": err.Error()})
		h.deliverLocal(payload.OrgID, data)
	}
}

func (h *Hub) deliverLocal(orgID string, data []byte) {
	h.mu.RLock()
	targets := append([]*Client{}, h.clients[orgID]...)
	if orgID != allOrgs {
		targets = append(targets, h.clients[allOrgs]...)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// subscribeToRedis delivers every clustered event, including this
// instance's own, to the local agents.
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			h.deliverLocal(payload.OrgID, payload.Message)
		}
	}
}

// connected reports the number of registered agents.
func (h *Hub) connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}
