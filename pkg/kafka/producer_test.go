package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestNewEvent_Fields(t *testing.T) {
	data := map[string]any{"sale_id": "s-1", "total": 98}
	event, err := NewEvent("sale.completed", "s-1", "posterminal", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "sale.completed", event.Type)
	assert.Equal(t, "s-1", event.Key)
	assert.Equal(t, "posterminal", event.Source)
	assert.Empty(t, event.CorrelationID)
	assert.Nil(t, event.Attributes)
	assert.WithinDuration(t, time.Now().UTC(), event.OccurredAt, 2*time.Second)
	assert.JSONEq(t, `{"sale_id":"s-1","total":98}`, string(event.Payload))
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("test.event", "k-1", "svc", make(chan int))
	require.Error(t, err)
}

func TestNewEvent_Options(t *testing.T) {
	event, err := NewEvent("sale.completed", "s-2", "posterminal", nil,
		WithCorrelationID("corr-abc"),
		WithAttribute("terminal_id", "till-1"),
		WithAttribute("cashier_id", ""),
	)
	require.NoError(t, err)

	assert.Equal(t, "corr-abc", event.CorrelationID)
	assert.Equal(t, map[string]string{"terminal_id": "till-1"}, event.Attributes)
}

func TestEvent_Headers(t *testing.T) {
	event, err := NewEvent("sale.completed", "s-2", "posterminal", nil)
	require.NoError(t, err)
	assert.Len(t, event.headers(), 2)

	WithCorrelationID("corr-1")(event)
	h := event.headers()
	require.Len(t, h, 3)
	assert.Equal(t, "correlation_id", h[2].Key)
	assert.Equal(t, "corr-1", string(h[2].Value))
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "posterminal.sale.completed", Topic("sale", "completed"))
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"broker1:9092"})

	assert.Equal(t, []string{"broker1:9092"}, cfg.Brokers)
	assert.Equal(t, 1, cfg.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.False(t, cfg.Async)
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, quietLogger())
	event, err := NewEvent("sale.completed", "s-3", "posterminal", map[string]int{"n": 1}, WithCorrelationID("corr-1"))
	require.NoError(t, err)

	topic := Topic("sale", "publish-test")
	require.NoError(t, p.Publish(context.Background(), topic, event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, topic, msg.Topic)
	assert.Equal(t, "s-3", string(msg.Key))
	assert.Equal(t, "sale.completed", header(msg, "event_type"))
	assert.Equal(t, "posterminal", header(msg, "source"))
	assert.Equal(t, "corr-1", header(msg, "correlation_id"))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.JSONEq(t, `{"n":1}`, string(decoded.Payload))
	assert.Equal(t, float64(1), testutil.ToFloat64(ProducerMessagesPublished.WithLabelValues(topic)))
}

func TestProducer_Publish_InjectsTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	w := &fakeWriter{}
	event, err := NewEvent("sale.completed", "s-4", "posterminal", nil)
	require.NoError(t, err)
	require.NoError(t, NewProducerWithWriter(w, nil, quietLogger()).Publish(ctx, Topic("sale", "trace-test"), event))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", header(w.msgs[0], "traceparent"))
}

func TestProducer_Publish_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := NewProducerWithWriter(w, nil, quietLogger())
	event, err := NewEvent("sale.completed", "s-5", "posterminal", nil)
	require.NoError(t, err)

	topic := Topic("sale", "error-test")
	err = p.Publish(context.Background(), topic, event)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	assert.Equal(t, float64(1), testutil.ToFloat64(ProducerPublishErrors.WithLabelValues(topic)))
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewProducerWithWriter(w, nil, nil).Close())
	assert.True(t, w.closed)
}

func TestNewProducer_DoesNotConnect(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)
	assert.NoError(t, p.Close())
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(t.Context(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}
