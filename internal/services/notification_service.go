package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"counter_pos/internal/models"

	"github.com/google/uuid"
)

type OrderEvent string

const (
	EventOrderFinalized OrderEvent = "order.finalized"
	EventOrderPaid      OrderEvent = "order.paid"
	EventOrderUnpaid    OrderEvent = "order.unpaid"
	EventOrderCancelled OrderEvent = "order.cancelled"
)

// OrderNotifier is told about every persisted ledger change.
type OrderNotifier interface {
	Notify(event OrderEvent, order models.Order) error
}

// Publisher is the subset of the kitchen client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, routingKey, messageID, correlationID string, body []byte) error
}

type OrderMessage struct {
	Event       OrderEvent         `json:"event"`
	OrderNumber int                `json:"order_number"`
	Items       []models.OrderLine `json:"items"`
	Total       int                `json:"total"`
	Staff       string             `json:"staff"`
	Paid        bool               `json:"paid"`
	Date        models.Timestamp   `json:"date"`
}

type kitchenNotifier struct {
	publisher Publisher
	timeout   time.Duration
}

func NewKitchenNotifier(publisher Publisher) OrderNotifier {
	return &kitchenNotifier{publisher: publisher, timeout: 5 * time.Second}
}

func (n *kitchenNotifier) Notify(event OrderEvent, order models.Order) error {
	body, err := json.Marshal(OrderMessage{
		Event:       event,
		OrderNumber: order.OrderNumber,
		Items:       order.Items,
		Total:       order.Total,
		Staff:       order.Staff,
		Paid:        order.Paid,
		Date:        order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	correlationID := fmt.Sprintf("order-%d", order.OrderNumber)
	if err := n.publisher.Publish(ctx, string(event), uuid.NewString(), correlationID, body); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event, err)
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(OrderEvent, models.Order) error { return nil }

// NoopNotifier discards events.
func NoopNotifier() OrderNotifier { return noopNotifier{} }
