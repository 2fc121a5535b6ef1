// Package kafka publishes telemetry events to a Kafka-compatible broker
// (Kafka, Redpanda) as JSON records keyed by visitor.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"agency/pkg/platform/telemetry"
)

const defaultClientID = "agency-telemetry"

// Publisher produces events synchronously. Wrap it in a dispatcher for
// fire-and-forget delivery.
type Publisher struct {
	client *kgo.Client
	topic  string
}

type config struct {
	clientID string
	extra    []kgo.Opt
}

type Option func(*config)

func WithClientID(id string) Option {
	return func(c *config) {
		if id != "" {
			c.clientID = id
		}
	}
}

// WithClientOpts passes raw franz-go options through to the client.
func WithClientOpts(opts ...kgo.Opt) Option {
	return func(c *config) {
		c.extra = append(c.extra, opts...)
	}
}

// New connects a producer for topic.
func New(brokers []string, topic string, opts ...Option) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no seed brokers")
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	cfg := config{clientID: defaultClientID}
	for _, opt := range opts {
		opt(&cfg)
	}

	kopts := append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID(cfg.clientID),
	}, cfg.extra...)
	client, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("kafka: create client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// EnsureTopic creates the topic if it does not exist.
func (p *Publisher) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	admin := kadm.NewClient(p.client)
	resp, err := admin.CreateTopics(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil {
		return fmt.Errorf("kafka: create topic: %w", err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("kafka: create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (p *Publisher) Publish(ctx context.Context, events ...telemetry.Event) error {
	if len(events) == 0 {
		return nil
	}
	records := make([]*kgo.Record, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("kafka: encode %s: %w", e.Name, err)
		}
		rec := &kgo.Record{
			Value: value,
			Headers: []kgo.RecordHeader{
				{Key: "event", Value: []byte(e.Name)},
			},
		}
		if e.VisitorID != "" {
			rec.Key = []byte(e.VisitorID)
		}
		records = append(records, rec)
	}
	if err := p.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce: %w", err)
	}
	return nil
}

// Ping checks broker connectivity.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func (p *Publisher) Close() {
	p.client.Close()
}
