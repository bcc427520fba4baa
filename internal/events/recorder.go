package events

import (
	"context"

	"github.com/go-ocpp/chargepoint/internal/logger"
	"github.com/go-ocpp/chargepoint/internal/metrics"
)

// Sink delivers an Event to an external system (a message broker, a log
// exporter, a test spy). Publish should not block the caller for long;
// slow sinks are expected to buffer/queue internally the way
// sarama.AsyncProducer does.
type Sink interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Recorder is the single point every component goes through to emit a
// lifecycle event. With a nil sink Emit does nothing at all (no delivery,
// no metrics), so components never need to nil-check whether a broker is
// configured.
type Recorder struct {
	sink   Sink
	source string
}

// NewRecorder builds a Recorder. sink may be nil if no external delivery
// is configured.
func NewRecorder(sink Sink, source string) *Recorder {
	return &Recorder{sink: sink, source: source}
}

// Metadata returns envelope metadata stamped with this recorder's source.
func (r *Recorder) Metadata() Metadata {
	return Metadata{Source: r.source, ProtocolVersion: "1.6"}
}

// Emit hands event to the configured sink, if any, recording the outcome
// in the chargepoint_events_published_total/chargepoint_events_publish_failed_total
// counters either way.
func (r *Recorder) Emit(ctx context.Context, event Event) {
	if r.sink == nil {
		return
	}
	if err := r.sink.Publish(ctx, event); err != nil {
		metrics.EventsPublishFailed.WithLabelValues(string(event.GetType())).Inc()
		logger.ErrorWithErr(err, "events: publish")
		return
	}
	metrics.EventsPublished.WithLabelValues(string(event.GetType())).Inc()
}

// Close releases the underlying sink, if any.
func (r *Recorder) Close() error {
	if r.sink == nil {
		return nil
	}
	return r.sink.Close()
}
