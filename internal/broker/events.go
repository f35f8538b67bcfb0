package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"griffe-orders/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing order lifecycle events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderCreated publishes an OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, "order-"+event.OrderID, event)
}

// PublishOrderStatusChanged publishes an OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return ep.producer.PublishEvent(ctx, "order-"+event.OrderID, event)
}

// PublishOrderSentToSupplier publishes an OrderSentToSupplier event carrying
// the rendered notification message
func (ep *EventPublisher) PublishOrderSentToSupplier(ctx context.Context, event *models.OrderSentToSupplierEvent) error {
	return ep.producer.PublishEvent(ctx, "order-"+event.OrderID, event)
}

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	onOrderSentToSupplier func(context.Context, *models.OrderSentToSupplierEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderSentToSupplier registers a handler for OrderSentToSupplier events
func (eh *EventHandler) OnOrderSentToSupplier(handler func(context.Context, *models.OrderSentToSupplierEvent) error) {
	eh.onOrderSentToSupplier = handler
}

// HandleMessage routes messages to the appropriate handler
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrderSentToSupplier:
		if eh.onOrderSentToSupplier != nil {
			var event models.OrderSentToSupplierEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderSentToSupplier event: %w", err)
			}
			return eh.onOrderSentToSupplier(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
