package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// TopicPrefix is the prefix of every topic the terminal publishes to.
const TopicPrefix = "posterminal"

// Topic builds a fully-qualified topic name, e.g. posterminal.sale.completed.
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}

// Event is the envelope of a published message. Key is also the Kafka
// message key, so events for one sale land on one partition.
type Event struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	Key           string            `json:"key"`
	Source        string            `json:"source"`
	OccurredAt    time.Time         `json:"occurred_at"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
}

// EventOption sets an optional envelope field.
type EventOption func(*Event)

// WithCorrelationID tags the event with the request that caused it. An empty
// id leaves the field unset.
func WithCorrelationID(id string) EventOption {
	return func(e *Event) { e.CorrelationID = id }
}

// WithAttribute adds a string attribute. Empty values are skipped.
func WithAttribute(key, value string) EventOption {
	return func(e *Event) {
		if value == "" {
			return
		}
		if e.Attributes == nil {
			e.Attributes = make(map[string]string)
		}
		e.Attributes[key] = value
	}
}

// NewEvent encodes payload into an envelope stamped with a fresh id and the
// current UTC time.
func NewEvent(eventType, key, source string, payload any, opts ...EventOption) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	e := &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		Source:     source,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// headers returns the routing headers consumers can filter on without
// decoding the value.
func (e *Event) headers() []kafka.Header {
	h := []kafka.Header{
		{Key: "event_type", Value: []byte(e.Type)},
		{Key: "source", Value: []byte(e.Source)},
	}
	if e.CorrelationID != "" {
		h = append(h, kafka.Header{Key: "correlation_id", Value: []byte(e.CorrelationID)})
	}
	return h
}
