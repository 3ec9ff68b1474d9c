package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"user-deletion-service/internal/usecase"
)

const TopicAccountEvents = "auth.events.account"

// DeletionEventProducer publishes cascade lifecycle events to the account
// events topic the audit pipeline consumes.
type DeletionEventProducer struct {
	producer sarama.SyncProducer
}

func NewDeletionEventProducer(brokers []string) (*DeletionEventProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	return &DeletionEventProducer{producer: producer}, nil
}

// PublishDeletionEvent sends one lifecycle event, keyed by subject user id so
// all events for one user land on the same partition in order.
func (p *DeletionEventProducer) PublishDeletionEvent(ctx context.Context, msg *usecase.AccountDeletionMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	kafkaMsg := &sarama.ProducerMessage{
		Topic: TopicAccountEvents,
		Key:   sarama.StringEncoder(msg.UserID),
		Value: sarama.ByteEncoder(data),
	}

	if _, _, err := p.producer.SendMessage(kafkaMsg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (p *DeletionEventProducer) Close() error {
	return p.producer.Close()
}
