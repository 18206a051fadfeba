package websocket

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"sync-notes-be/internal/pkg/logger"
)

const clusterChannel = "sync_events"

// Hub tracks every connected sync client per user, multi-device. It only
// pushes small "something changed, pull now" hints; the actual data always
// flows through the windowed HTTP listings.
type Hub struct {
	clients map[int64][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis fan-out so hints reach devices connected to other instances.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[int64][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserId] = append(h.clients[client.UserId], client)
			h.mu.Unlock()
			h.logger.Info("hub", "client registered", map[string]interface{}{"user_id": client.UserId})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserId]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserId] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserId]) == 0 {
					delete(h.clients, client.UserId)
					h.logger.Info("hub", "client fully unregistered", map[string]interface{}{"user_id": client.UserId})
				}
			}
			h.mu.Unlock()
		}
	}
}

// NotifySync tells every device of one user that a resource type changed.
func (h *Hub) NotifySync(userId int64, resource, action string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":     "sync_hint",
		"resource": resource,
		"action":   action,
		"at":       time.Now().UTC(),
	})

	h.deliverLocal(userId, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_user_id": strconv.FormatInt(userId, 10),
			"message":        json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

func (h *Hub) deliverLocal(userId int64, data []byte) {
	var dropped []*Client

	// Iterate under the read lock so Run cannot remove or close a client
	// mid-delivery. The unregister handler owns the single close of Send.
	h.mu.RLock()
	for _, client := range h.clients[userId] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("hub", "client send buffer full, dropping", map[string]interface{}{"user_id": userId})
			dropped = append(dropped, client)
		}
	}
	h.mu.RUnlock()

	// Unregister only after releasing the lock; Run needs the write lock
	// to remove the client. A client already gone is a no-op there.
	for _, client := range dropped {
		h.unregister <- client
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetUserId string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		userId, err := strconv.ParseInt(payload.TargetUserId, 10, 64)
		if err != nil {
			continue
		}

		h.deliverLocal(userId, payload.Message)
	}
}
