package service

import (
	"context"
	"encoding/json"
	"errors"

	"pos-billing-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// OrderCompletedTopic is the in-process topic between the order intake
// endpoint and the usage counter consumer.
const OrderCompletedTopic = "ORDER_COMPLETED"

type IOrderEventService interface {
	PublishOrderCompleted(ctx context.Context, req *dto.OrderCompletedRequest) error
}

type orderEventService struct {
	pubSub *gochannel.GoChannel
}

func NewOrderEventService(pubSub *gochannel.GoChannel) IOrderEventService {
	return &orderEventService{pubSub: pubSub}
}

func (s *orderEventService) PublishOrderCompleted(ctx context.Context, req *dto.OrderCompletedRequest) error {
	// Only the genuine transition into completed counts against the quota.
	// Replays of an already completed order are dropped at the door.
	if req.NewStatus != "completed" {
		return errors.New("only transitions into completed are accepted")
	}
	if req.PreviousStatus == "completed" {
		return errors.New("order was already completed")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return s.pubSub.Publish(OrderCompletedTopic, msg)
}
