package service

import (
	"context"
	"encoding/json"
	"log"

	"pos-billing-be/internal/dto"
	"pos-billing-be/internal/entity"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains completed order events and counts them against the
// store's annual transaction quota.
type consumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	usageService IUsageService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	usageService IUsageService,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		usageService: usageService,
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
	var payload dto.OrderCompletedRequest
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal order event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	result, err := cs.usageService.IncrementUsage(ctx, payload.StoreId, entity.FeatureTypeTransactions, 1)
	if err != nil {
		log.Printf("[ERROR] Failed to count order %s for store %s: %v", payload.OrderId, payload.StoreId, err)
		msg.Nack()
		return
	}

	if !result.Applied {
		log.Printf("[INFO] Order %s not counted for store %s: %s", payload.OrderId, payload.StoreId, result.SkipReason)
	} else if result.SoftCapTriggered {
		log.Printf("[INFO] Store %s crossed its annual transaction quota (usage %d)", payload.StoreId, result.CurrentUsage)
	}

	msg.Ack()
}
