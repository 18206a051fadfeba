package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"sync-notes-be/internal/dto"
	"sync-notes-be/internal/websocket"
	"sync-notes-be/pkg/events"
	pktNats "sync-notes-be/pkg/nats"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains resource-change messages off the in-process bus
// and fans them out: a sync hint to the owner's connected websockets, and a
// durable event on NATS for external consumers. Both sinks are optional.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	hub            *websocket.Hub
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		hub:            hub,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ResourceChangedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal change message: %v", err)
		msg.Ack()
		return
	}

	if cs.hub != nil {
		cs.hub.NotifySync(payload.UserId, payload.Resource, payload.Action)
	}

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "RESOURCE_CHANGED",
			Data: map[string]interface{}{
				"user_id":  payload.UserId,
				"resource": payload.Resource,
				"ext_id":   payload.ExtId,
				"action":   payload.Action,
			},
			OccurredAt: time.Now().UTC(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish RESOURCE_CHANGED event: %v", err)
		}
	}

	msg.Ack()
}
