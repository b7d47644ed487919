package service

import (
	"context"
	"encoding/json"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/logger"
	pkgEvents "ai-chatbot-be/pkg/events"
	pkgNats "ai-chatbot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IAnalyticsService interface {
	Consume(ctx context.Context) error
}

// analyticsService drains turn-completion messages off the in-process
// bus, logs the measured latency, and relays the event to NATS when a
// broker is connected.
type analyticsService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	log            logger.ILogger
	eventPublisher *pkgNats.Publisher
}

func NewAnalyticsService(
	pubSub *gochannel.GoChannel,
	topicName string,
	log logger.ILogger,
	eventPublisher *pkgNats.Publisher,
) IAnalyticsService {
	return &analyticsService{
		pubSub:         pubSub,
		topicName:      topicName,
		log:            log,
		eventPublisher: eventPublisher,
	}
}

func (as *analyticsService) Consume(ctx context.Context) error {
	messages, err := as.pubSub.Subscribe(ctx, as.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			as.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (as *analyticsService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.QueryCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		as.log.Error("analytics", "Failed to unmarshal turn message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	as.log.Info("analytics", "Turn completed", map[string]interface{}{
		"chat_session_id":  payload.ChatSessionId,
		"chat_message_id":  payload.ChatMessageId,
		"query_type":       payload.QueryType,
		"response_time_ms": payload.ResponseTimeMs,
		"provider":         payload.Provider,
		"model":            payload.Model,
	})

	evt := pkgEvents.NewTurnCompletedEvent(
		payload.ChatSessionId.String(),
		payload.ChatMessageId.String(),
		payload.QueryType,
		payload.ResponseTimeMs,
	)
	if err := as.eventPublisher.Publish(ctx, evt); err != nil {
		as.log.Warn("analytics", "Failed to relay turn event to NATS", map[string]interface{}{
			"error": err.Error(),
		})
	}

	msg.Ack()
}
