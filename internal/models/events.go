package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated        = "ORDER_CREATED"
	EventTypeOrderStatusChanged  = "ORDER_STATUS_CHANGED"
	EventTypeOrderSentToSupplier = "ORDER_SENT_TO_SUPPLIER"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when an order is created
type OrderCreatedEvent struct {
	BaseEvent
	OrderID        string          `json:"order_id"`
	CustomerName   string          `json:"customer_name"`
	TotalWholesale decimal.Decimal `json:"total_wholesale"`
	TotalRetail    decimal.Decimal `json:"total_retail"`
	Profit         decimal.Decimal `json:"profit"`
	Lines          []OrderLineData `json:"lines"`
}

// OrderStatusChangedEvent published on every status transition
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// OrderSentToSupplierEvent published when an order enters sent_to_supplier.
// It carries the rendered notification so the delivery collaborator does not
// need to re-read the order.
type OrderSentToSupplierEvent struct {
	BaseEvent
	OrderID     string `json:"order_id"`
	Destination string `json:"destination"`
	Message     string `json:"message"`
}

// OrderLineData represents line data in events
type OrderLineData struct {
	ProductCode        string          `json:"product_code"`
	Quantity           int             `json:"quantity"`
	UnitWholesalePrice decimal.Decimal `json:"unit_wholesale_price"`
	UnitRetailPrice    decimal.Decimal `json:"unit_retail_price"`
}
