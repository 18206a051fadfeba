package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"sync-notes-be/internal/dto"
	"sync-notes-be/internal/engine"
	"sync-notes-be/internal/pkg/logger"
)

type ISweeperService interface {
	Start(ctx context.Context) error
	RequestSweep(ctx context.Context) error
	SweepNow(ctx context.Context) map[string]int64
}

// sweeperService drives the retention sweep. It runs on a fixed interval
// and additionally on demand when a sweep-request message arrives; a
// request is published once at startup so a restart clears any backlog
// without waiting for the first tick.
type sweeperService struct {
	db         *gorm.DB
	pubSub     *gochannel.GoChannel
	topicName  string
	interval   time.Duration
	tombstones *engine.TombstoneManager
	log        logger.ILogger
}

func NewSweeperService(
	db *gorm.DB,
	pubSub *gochannel.GoChannel,
	topicName string,
	interval time.Duration,
	tombstones *engine.TombstoneManager,
	log logger.ILogger,
) ISweeperService {
	return &sweeperService{
		db:         db,
		pubSub:     pubSub,
		topicName:  topicName,
		interval:   interval,
		tombstones: tombstones,
		log:        log,
	}
}

func (s *sweeperService) Start(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SweepNow(ctx)
			}
		}
	}()

	return s.RequestSweep(ctx)
}

// RequestSweep asks for an out-of-band sweep through the bus instead of
// calling SweepNow directly, so the work always lands on the consumer
// goroutine.
func (s *sweeperService) RequestSweep(ctx context.Context) error {
	payload, err := json.Marshal(dto.SweepRequestedMessage{RequestedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return s.pubSub.Publish(s.topicName, message.NewMessage(watermill.NewUUID(), payload))
}

func (s *sweeperService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.SweepRequestedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal sweep request: %v", err)
		msg.Ack()
		return
	}

	s.SweepNow(ctx)
	msg.Ack()
}

func (s *sweeperService) SweepNow(ctx context.Context) map[string]int64 {
	if !s.tombstones.RetentionEnabled() {
		return map[string]int64{}
	}

	counts := s.tombstones.Sweep(ctx, s.db, engine.SweptResources, time.Now().UTC())

	details := make(map[string]interface{}, len(counts))
	for name, count := range counts {
		details[name] = count
	}
	s.log.Info("sweeper", "tombstone sweep finished", details)

	return counts
}
