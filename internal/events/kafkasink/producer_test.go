package kafkasink

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ocpp/chargepoint/internal/events"
)

type fakeAsyncProducer struct {
	input     chan *sarama.ProducerMessage
	successes chan *sarama.ProducerMessage
	errors    chan *sarama.ProducerError
	closed    bool
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:     make(chan *sarama.ProducerMessage, 4),
		successes: make(chan *sarama.ProducerMessage, 4),
		errors:    make(chan *sarama.ProducerError, 4),
	}
}

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage        { return f.input }
func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage    { return f.successes }
func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError         { return f.errors }
func (f *fakeAsyncProducer) Close() error {
	f.closed = true
	close(f.successes)
	close(f.errors)
	return nil
}

func TestPublish_SendsEnvelopeKeyedByChargePointID(t *testing.T) {
	fake := newFakeAsyncProducer()
	p := newWithProducer(fake, "chargepoint-events")

	event := events.NewChargePointConnected("CP001", "Acme", "X1", events.Metadata{Source: "test", ProtocolVersion: "1.6"})
	err := p.Publish(context.Background(), event)
	require.NoError(t, err)

	select {
	case msg := <-fake.input:
		assert.Equal(t, "chargepoint-events", msg.Topic)
		assert.Equal(t, sarama.StringEncoder("CP001"), msg.Key)

		data, err := msg.Value.Encode()
		require.NoError(t, err)
		var env envelope
		require.NoError(t, json.Unmarshal(data, &env))
		assert.Equal(t, string(events.TypeChargePointConnected), env.EventType)
		assert.Equal(t, "CP001", env.ChargePointID)
	case <-time.After(time.Second):
		t.Fatal("no message sent")
	}
}

func TestPublish_RespectsContextCancellation(t *testing.T) {
	fake := newFakeAsyncProducer()
	fake.input = make(chan *sarama.ProducerMessage) // unbuffered, nobody reads
	p := &Producer{producer: fake, topic: "chargepoint-events"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	event := events.NewChargePointDisconnected("CP001", "closed", events.Metadata{})
	err := p.Publish(ctx, event)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClose_ClosesUnderlyingProducer(t *testing.T) {
	fake := newFakeAsyncProducer()
	p := newWithProducer(fake, "chargepoint-events")

	require.NoError(t, p.Close())
	assert.True(t, fake.closed)
}
