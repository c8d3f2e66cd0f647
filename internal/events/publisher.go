package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"custody-tracker/config"
	"custody-tracker/internal/model"
)

const writeTimeout = 10 * time.Second

// Publisher emits fired-alert records
type Publisher interface {
	PublishFired(ctx context.Context, fired []model.Event, firedAt time.Time) error
	Close() error
}

// messageWriter the part of kafka.Writer used by KafkaPublisher
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per fired event, keyed by event id
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewPublisher returns a Kafka publisher, or a no-op one when no brokers are configured
func NewPublisher(cfg *config.KafkaConfig, logger *zap.Logger) Publisher {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		logger.Info("kafka brokers not configured, fired alerts will not be published")
		return NoopPublisher{}
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	logger.Info("kafka publisher configured",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)
	return &KafkaPublisher{writer: w, topic: cfg.Topic, logger: logger}
}

func (p *KafkaPublisher) PublishFired(ctx context.Context, fired []model.Event, firedAt time.Time) error {
	if len(fired) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(fired))
	for i := range fired {
		payload, err := json.Marshal(NewAlertFired(&fired[i], firedAt))
		if err != nil {
			return fmt.Errorf("encode alert %s: %w", fired[i].EventID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(fired[i].EventID),
			Value: payload,
			Time:  firedAt,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d fired alerts to %s: %w", len(msgs), p.topic, err)
	}
	p.logger.Debug("fired alerts published", zap.Int("count", len(msgs)), zap.String("topic", p.topic))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher discards everything
type NoopPublisher struct{}

func (NoopPublisher) PublishFired(context.Context, []model.Event, time.Time) error { return nil }
func (NoopPublisher) Close() error                                                 { return nil }
