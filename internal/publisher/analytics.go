package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Fadil369/brainsait-healthcare-platform/internal/domain"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	log "github.com/sirupsen/logrus"
)

type AnalyticsPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewAnalyticsPublisher(bootstrapServers, topic string) (*AnalyticsPublisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": bootstrapServers})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("Analytics Kafka producer created successfully for store-service")

	return &AnalyticsPublisher{producer: p, topic: topic}, nil
}

func (p *AnalyticsPublisher) Publish(ctx context.Context, event domain.AnalyticsEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal analytics event: %w", err)
	}

	// Buffered so librdkafka can deliver even after a timeout abandons the wait.
	deliveryChan := make(chan kafka.Event, 1)

	if err := p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.EntityID),
		Value:          payload,
	}, deliveryChan); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case e := <-deliveryChan:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected event type: %T", e)
		}
		if msg.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", msg.TopicPartition.Error)
		}
		return nil
	case <-time.After(10 * time.Second):
		return fmt.Errorf("delivery timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *AnalyticsPublisher) Close() {
	log.Info("Closing analytics Kafka producer for store-service...")
	p.producer.Flush(15 * 1000)
	p.producer.Close()
}
