// Package event publishes terminal domain events.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/posterminal/pkg/kafka"
	"github.com/utafrali/posterminal/pkg/logger"
)

// Source identifies the terminal as the event producer.
const Source = "posterminal"

// Event types.
const (
	TypeSaleCompleted = "sale.completed"
)

// SaleCompletedTopic is where completed sales are published.
var SaleCompletedTopic = kafka.Topic("sale", "completed")

// SaleCompleted is published after the backend has recorded a sale.
type SaleCompleted struct {
	SaleID        string          `json:"sale_id"`
	Reference     string          `json:"reference"`
	TerminalID    string          `json:"terminal_id"`
	CashierID     string          `json:"cashier_id,omitempty"`
	ItemCount     int             `json:"item_count"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency,omitempty"`
	PaymentMethod string          `json:"payment_method"`
	CompletedAt   time.Time       `json:"completed_at"`
}

// Publisher emits sale events.
type Publisher interface {
	SaleCompleted(ctx context.Context, e SaleCompleted) error
}

// producer is the part of *kafka.Producer the publisher uses.
type producer interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// KafkaPublisher publishes events through a Kafka producer.
type KafkaPublisher struct {
	producer producer
}

// NewKafkaPublisher creates a publisher on top of p.
func NewKafkaPublisher(p producer) *KafkaPublisher {
	return &KafkaPublisher{producer: p}
}

// SaleCompleted publishes e keyed by the sale reference.
func (k *KafkaPublisher) SaleCompleted(ctx context.Context, e SaleCompleted) error {
	key := e.Reference
	if key == "" {
		key = e.SaleID
	}
	env, err := kafka.NewEvent(TypeSaleCompleted, key, Source, e,
		kafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx)),
		kafka.WithAttribute("terminal_id", e.TerminalID),
		kafka.WithAttribute("cashier_id", e.CashierID),
	)
	if err != nil {
		return err
	}
	if err := k.producer.Publish(ctx, SaleCompletedTopic, env); err != nil {
		return fmt.Errorf("publish %s: %w", TypeSaleCompleted, err)
	}
	return nil
}

// Nop discards events. It is used when no brokers are configured.
type Nop struct{}

// SaleCompleted does nothing.
func (Nop) SaleCompleted(context.Context, SaleCompleted) error { return nil }
