package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domoutbox "github.com/Zhima-Mochi/petstore-core/internal/domain/outbox"
	"github.com/Zhima-Mochi/petstore-core/internal/observability"
	"github.com/Zhima-Mochi/petstore-core/internal/observability/logctx"

	"github.com/segmentio/kafka-go"
)

const relayPeer = "kafka"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Relay forwards bus events to a Kafka topic as JSON envelopes keyed by event name.
type Relay struct {
	w     messageWriter
	topic string
	log   observability.Logger
	tel   observability.Observability
}

func NewRelay(brokers []string, topic string, logger observability.Logger, tel observability.Observability) *Relay {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newRelay(w, topic, logger, tel)
}

func newRelay(w messageWriter, topic string, logger observability.Logger, tel observability.Observability) *Relay {
	tel = observability.OrNop(tel)
	if logger == nil {
		logger = tel.Logger()
	}
	return &Relay{
		w:     w,
		topic: topic,
		log:   logger.With(observability.F("component", "kafka_relay"), observability.F("topic", topic)),
		tel:   tel,
	}
}

// Register subscribes the relay to every event on sub.
func (r *Relay) Register(sub domoutbox.Subscriber) {
	sub.Subscribe(domoutbox.AllEvents, r.Handle)
}

func (r *Relay) Handle(ctx context.Context, e domoutbox.Event) error {
	env := domoutbox.NewEnvelope(e)
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("kafka relay: marshal %s: %w", env.Name, err)
	}

	start := time.Now()
	err = r.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.Name),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(env.ID)},
			{Key: "event_name", Value: []byte(env.Name)},
		},
	})
	r.record(env.Name, start, err)
	if err != nil {
		return fmt.Errorf("kafka relay: write %s: %w", env.Name, err)
	}

	logctx.FromOr(ctx, r.log).Debug("event_relayed", observability.F("event_id", env.ID))
	return nil
}

func (r *Relay) Close() error {
	return r.w.Close()
}

func (r *Relay) record(endpoint string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m := r.tel.Metrics()
	m.Counter(observability.MExternalRequests).Add(1,
		observability.L("peer", relayPeer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	m.Histogram(observability.MExternalRequestDuration).Observe(time.Since(start).Seconds(),
		observability.L("peer", relayPeer),
		observability.L("endpoint", endpoint),
	)
}
