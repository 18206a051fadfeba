package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sync-notes-be/internal/dto"
	"sync-notes-be/internal/engine"
)

type stubLogger struct{}

func (stubLogger) Debug(module, message string, details map[string]interface{}) {}
func (stubLogger) Info(module, message string, details map[string]interface{})  {}
func (stubLogger) Warn(module, message string, details map[string]interface{})  {}
func (stubLogger) Error(module, message string, details map[string]interface{}) {}
func (stubLogger) Sync() error                                                  { return nil }

func TestSweeperStartPublishesInitialRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	tombstones := engine.NewTombstoneManager(nil, stubLogger{})
	sweeper := NewSweeperService(nil, pubSub, "TEST_SWEEP", time.Hour, tombstones, stubLogger{})

	// Observe the topic alongside the sweeper's own consumer.
	messages, err := pubSub.Subscribe(ctx, "TEST_SWEEP")
	require.NoError(t, err)

	require.NoError(t, sweeper.Start(ctx))

	select {
	case msg := <-messages:
		var payload dto.SweepRequestedMessage
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.False(t, payload.RequestedAt.IsZero())
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("no sweep request published at startup")
	}
}

func TestSweepNowNoopWhenRetentionDisabled(t *testing.T) {
	tombstones := engine.NewTombstoneManager(nil, stubLogger{})
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	sweeper := NewSweeperService(nil, pubSub, "TEST_SWEEP", time.Hour, tombstones, stubLogger{})

	counts := sweeper.SweepNow(context.Background())
	assert.Empty(t, counts)
}
