package mail

import (
	"context"
	"encoding/json"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
)

// OutboxSender queues mail as an outbox row. The worker publishes it to Kafka
// and the consumer performs the SMTP delivery.
type OutboxSender struct {
	repo  kafka.OutboxRepository
	topic string
}

func NewOutboxSender(repo kafka.OutboxRepository, topic string) *OutboxSender {
	if topic == "" {
		topic = events.MailRequestedTopic
	}
	return &OutboxSender{repo: repo, topic: topic}
}

func (s *OutboxSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.MailRequestedEvent{
		EventType:   events.MailRequestedEventType,
		MessageID:   uuid.NewString(),
		From:        msg.From,
		To:          msg.To,
		Subject:     msg.Subject,
		Text:        msg.Text,
		HTML:        msg.HTML,
		RequestID:   rid,
		RequestedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.repo.Create(ctx, kafka.OutboxEvent{
		ID:            event.MessageID,
		RequestID:     rid,
		AggregateType: "mail",
		AggregateID:   msg.To,
		EventType:     event.EventType,
		Topic:         s.topic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// FromEvent rebuilds a Message from a queued event.
func FromEvent(e events.MailRequestedEvent) Message {
	return Message{From: e.From, To: e.To, Subject: e.Subject, Text: e.Text, HTML: e.HTML}
}
