package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func (h *Hub) clientCount(userId int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userId])
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func runHub(t *testing.T) (*Hub, chan interface{}) {
	t.Helper()
	hub := NewHub(nil, nopLogger{})
	panicked := make(chan interface{}, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				panicked <- r
			}
		}()
		hub.Run()
	}()
	return hub, panicked
}

func TestSlowClientIsDroppedWithoutKillingHub(t *testing.T) {
	hub, panicked := runHub(t)

	// No pump drains Send, so every delivery takes the drop path.
	client := &Client{Hub: hub, UserId: 7, Send: make(chan []byte)}
	hub.register <- client
	waitFor(t, func() bool { return hub.clientCount(7) == 1 })

	hub.NotifySync(7, "notebooks", "updated")
	hub.NotifySync(7, "notebooks", "updated")
	waitFor(t, func() bool { return hub.clientCount(7) == 0 })

	// The unregister handler alone closes Send, exactly once.
	select {
	case _, open := <-client.Send:
		assert.False(t, open, "send channel should be closed after the drop")
	case <-time.After(2 * time.Second):
		t.Fatal("send channel was never closed")
	}

	select {
	case r := <-panicked:
		t.Fatalf("hub goroutine panicked: %v", r)
	default:
	}
}

func TestDeliveryDuringChurnReachesHealthyClients(t *testing.T) {
	hub, panicked := runHub(t)

	slow := &Client{Hub: hub, UserId: 9, Send: make(chan []byte)}
	healthy := &Client{Hub: hub, UserId: 9, Send: make(chan []byte, 64)}
	hub.register <- slow
	hub.register <- healthy
	waitFor(t, func() bool { return hub.clientCount(9) == 2 })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			hub.NotifySync(9, "tasks", "updated")
		}
		close(done)
	}()

	// Drain the healthy client concurrently so deliveries keep landing
	// while the slow one is being evicted.
	received := 0
	for {
		select {
		case <-healthy.Send:
			received++
		case <-done:
			waitFor(t, func() bool { return hub.clientCount(9) == 1 })
			assert.Greater(t, received, 0)
			select {
			case r := <-panicked:
				t.Fatalf("hub goroutine panicked: %v", r)
			default:
			}
			return
		}
	}
}
