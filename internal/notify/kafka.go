package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig locates the change topic.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// messageReader is the subset of *kafka.Reader the subscriber uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSubscriber consumes change notifications from a Kafka topic.
type KafkaSubscriber struct {
	cfg    KafkaConfig
	logger *slog.Logger
	// retryDelay throttles reconnect attempts after read failures.
	retryDelay time.Duration
	newReader  func(KafkaConfig) messageReader
}

// NewKafkaSubscriber constructs a subscriber.
func NewKafkaSubscriber(cfg KafkaConfig, logger *slog.Logger) *KafkaSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaSubscriber{cfg: cfg, logger: logger, retryDelay: time.Second, newReader: newKafkaReader}
}

func newKafkaReader(cfg KafkaConfig) messageReader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})
}

// Subscribe implements Subscriber.
func (s *KafkaSubscriber) Subscribe(ctx context.Context) (<-chan Event, error) {
	if len(s.cfg.Brokers) == 0 || s.cfg.Topic == "" {
		return nil, errors.New("notify: kafka brokers and topic required")
	}
	out := make(chan Event)
	go s.pump(ctx, s.newReader(s.cfg), out)
	return out, nil
}

// pump forwards decoded messages until ctx ends. Malformed messages are
// skipped and read failures are retried after retryDelay.
func (s *KafkaSubscriber) pump(ctx context.Context, reader messageReader, out chan<- Event) {
	defer close(out)
	defer func() { _ = reader.Close() }()
	s.logger.Info("kafka notifications listening", slog.String("topic", s.cfg.Topic))
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("read kafka message", slog.Any("error", err))
			select {
			case <-time.After(s.retryDelay):
				continue
			case <-ctx.Done():
				return
			}
		}
		evt, err := Decode(msg.Value)
		if err != nil {
			s.logger.Warn("skip notification", slog.String("topic", msg.Topic), slog.Int64("offset", msg.Offset), slog.Any("error", err))
			continue
		}
		select {
		case out <- evt:
		case <-ctx.Done():
			return
		}
	}
}

// KafkaPublisher writes change notifications to a Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher constructs a publisher keyed by entity id.
func NewKafkaPublisher(cfg KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	}}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := Encode(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(evt.EntityID), Value: payload})
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
