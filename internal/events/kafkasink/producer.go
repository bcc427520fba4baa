// Package kafkasink publishes charge point lifecycle events to a Kafka
// topic so an operator's back-office systems can consume the same
// connect/disconnect/transaction/meter-value history the device itself
// tracks, independent of the OCPP session with its central system.
package kafkasink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/go-ocpp/chargepoint/internal/events"
	"github.com/go-ocpp/chargepoint/internal/logger"
	"github.com/go-ocpp/chargepoint/internal/metrics"
)

// envelope is the wire format published to the topic: the charge point's
// own event plus routing fields a consumer needs without unmarshalling
// the payload.
type envelope struct {
	EventID       string      `json:"eventId"`
	EventType     string      `json:"eventType"`
	ChargePointID string      `json:"chargePointId"`
	Timestamp     string      `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// asyncProducer is the subset of sarama.AsyncProducer the sink depends
// on, narrowed so tests can substitute a fake without satisfying
// sarama's full (and version-fragile) interface.
type asyncProducer interface {
	Input() chan<- *sarama.ProducerMessage
	Successes() <-chan *sarama.ProducerMessage
	Errors() <-chan *sarama.ProducerError
	Close() error
}

// Producer publishes events.Event values to Kafka via an async producer,
// keyed by charge point id so a single device's events stay ordered
// within one partition.
type Producer struct {
	producer asyncProducer
	topic    string
}

// New builds a Producer connected to brokers, publishing to topic.
func New(brokers []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Flush.Frequency = 500 * time.Millisecond
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafkasink: create async producer: %w", err)
	}
	return newWithProducer(producer, topic), nil
}

// newWithProducer builds a Producer around an already-constructed
// asyncProducer, letting tests inject a fake.
func newWithProducer(producer asyncProducer, topic string) *Producer {
	p := &Producer{producer: producer, topic: topic}
	go p.drainSuccesses()
	go p.drainErrors()
	return p
}

// Publish implements events.Sink.
func (p *Producer) Publish(ctx context.Context, event events.Event) error {
	env := envelope{
		EventID:       event.GetID(),
		EventType:     string(event.GetType()),
		ChargePointID: event.GetChargePointID(),
		Timestamp:     fmt.Sprintf("%d", event.GetTimestamp().UnixMilli()),
		Payload:       event.GetPayload(),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("kafkasink: marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.GetChargePointID()),
		Value: sarama.ByteEncoder(data),
	}

	select {
	case p.producer.Input() <- msg:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Close stops accepting new messages and drains the producer.
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("kafkasink: close producer: %w", err)
	}
	return nil
}

// drainSuccesses and drainErrors keep the async producer's channels from
// filling up; Return.Successes/Errors being enabled makes draining them
// mandatory.
func (p *Producer) drainSuccesses() {
	for range p.producer.Successes() {
	}
}

func (p *Producer) drainErrors() {
	for err := range p.producer.Errors() {
		metrics.EventsPublishFailed.WithLabelValues("kafka_delivery").Inc()
		logger.ErrorWithErr(err, "kafkasink: delivery failed")
	}
}
