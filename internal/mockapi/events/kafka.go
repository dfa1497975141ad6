package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"neoquiz/internal/mockapi/models"
	"neoquiz/internal/platform/logger"
	"neoquiz/internal/platform/metrics"
	"neoquiz/pkg/platform/circuit"
)

const HeaderEventType = "event_type"

// Producer is the part of *kgo.Client the publisher uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Fallback receives events while Kafka is unavailable.
type Fallback interface {
	Publish(ctx context.Context, e models.Event) error
}

// KafkaPublisher produces events keyed by user id, so one user's events
// stay ordered within a partition.
type KafkaPublisher struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	fallback Fallback
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*KafkaPublisher)

func WithLogger(l *slog.Logger) Option {
	return func(p *KafkaPublisher) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *KafkaPublisher) {
		p.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(p *KafkaPublisher) {
		if b != nil {
			p.breaker = b
		}
	}
}

func NewKafkaPublisher(producer Producer, topic string, fallback Fallback, opts ...Option) (*KafkaPublisher, error) {
	if producer == nil {
		return nil, errors.New("producer is required")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}
	if fallback == nil {
		return nil, errors.New("fallback is required")
	}
	p := &KafkaPublisher{
		producer: producer,
		topic:    topic,
		breaker:  circuit.New(SinkKafka),
		fallback: fallback,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewClient connects to brokers with topic as the default produce topic.
func NewClient(brokers []string, topic string) (*kgo.Client, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ClientID("neoquiz-mockapi"),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return cl, nil
}

// EnsureTopic creates topic unless it already exists.
func EnsureTopic(ctx context.Context, cl *kgo.Client, topic string, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(cl)
	resp, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Publish produces e synchronously. When Kafka fails, or the breaker is
// open, e goes to the fallback instead and Publish succeeds if it does.
func (p *KafkaPublisher) Publish(ctx context.Context, e models.Event) error {
	if !p.breaker.Allow() {
		return p.fallback.Publish(ctx, e)
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.UserID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: HeaderEventType, Value: []byte(e.Type)},
		},
	}

	if err := p.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		_, change := p.breaker.RecordFailure()
		if change.Opened {
			p.logger.WarnContext(ctx, "kafka circuit opened, events go to the log",
				"topic", p.topic,
				"error", err,
			)
		} else {
			p.logger.DebugContext(ctx, "kafka produce failed", "topic", p.topic, "error", err)
		}
		return p.fallback.Publish(ctx, e)
	}

	if _, change := p.breaker.RecordSuccess(); change.Closed {
		p.logger.InfoContext(ctx, "kafka circuit closed", "topic", p.topic)
	}
	p.metrics.IncEventsPublished(string(e.Type), SinkKafka)
	return nil
}

// Close releases the Kafka client.
func (p *KafkaPublisher) Close() {
	p.producer.Close()
}
