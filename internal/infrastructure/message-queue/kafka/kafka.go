package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/alimikegami/astromart/config"
	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/internal/infrastructure/metrics"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const writeTimeout = 10 * time.Second

func CreateKafkaReader(conf config.KafkaConfig, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:          []string{conf.BrokerAddress},
		Topic:            conf.BrokerTopic,
		MinBytes:         1e3, // 1KB
		MaxBytes:         1e6, // 1MB
		MaxWait:          100 * time.Millisecond,
		ReadLagInterval:  -1,
		StartOffset:      kafka.LastOffset,
		GroupID:          groupID,
		QueueCapacity:    1000,
		ReadBatchTimeout: 10 * time.Millisecond,
	})
}

func CreateKafkaProducer(ctx context.Context, conf config.KafkaConfig) (*kafka.Conn, error) {
	return kafka.DialLeader(ctx, "tcp", conf.BrokerAddress, conf.BrokerTopic, conf.BrokerPartition)
}

// Publisher writes each event once. A failed write is returned to the caller
// and not retried.
type Publisher struct {
	mu   sync.Mutex
	conn *kafka.Conn
}

func CreatePublisher(conn *kafka.Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) Publish(ctx context.Context, eventType string, key string, data interface{}) error {
	jsonMsg, err := json.Marshal(dto.KafkaMessage{
		EventType: eventType,
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal Kafka message: %w", err)
	}

	deadline := time.Now().Add(writeTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}

	_, err = p.conn.WriteMessages(kafka.Message{
		Key:   []byte(key),
		Value: jsonMsg,
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues(eventType, "failed").Inc()
		log.Ctx(ctx).Error().Err(err).Str("component", "Publish").Str("event_type", eventType).Msg("")
		return err
	}

	metrics.EventsPublished.WithLabelValues(eventType, "ok").Inc()

	return nil
}

func (p *Publisher) Close() error {
	return p.conn.Close()
}

// DiscardPublisher is used when no broker is configured.
type DiscardPublisher struct{}

func (DiscardPublisher) Publish(ctx context.Context, eventType string, key string, data interface{}) error {
	log.Ctx(ctx).Debug().Str("component", "Publish").Str("event_type", eventType).Msg("no broker configured, event dropped")
	return nil
}
