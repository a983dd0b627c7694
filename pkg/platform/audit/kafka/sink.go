// Package kafka publishes audit events to a Kafka topic for downstream
// consumers (compliance archive, activity feeds). The topic is the durable
// trail; the in-process store only serves local inspection.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "tagdex/pkg/platform/audit"
)

// Sink implements audit.Store against a Kafka topic.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New connects a producer to the given seed brokers.
func New(seeds []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(seeds...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// payload is the JSON structure written to the topic. Field names are part
// of the consumer contract.
type payload struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	OwnerID   string `json:"owner_id"`
	Action    string `json:"action"`
	Subject   string `json:"subject,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Append produces the event, keyed by owner so one owner's events stay
// ordered within a partition.
func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	body, err := json.Marshal(payload{
		ID:        uuid.NewString(),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		OwnerID:   event.OwnerID.String(),
		Action:    event.Action,
		Subject:   event.Subject,
		RequestID: event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.OwnerID.String()),
		Value: body,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes pending records and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}
