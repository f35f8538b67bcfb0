package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog entry. The catalog is read-mostly: the order
// engine only reads it, writes belong to the import tooling.
type Product struct {
	Code           string          `db:"code" json:"code"`
	Title          string          `db:"title" json:"title"`
	Category       string          `db:"category" json:"category"`
	WholesalePrice decimal.Decimal `db:"wholesale_price" json:"wholesale_price"`
	RetailPrice    decimal.Decimal `db:"retail_price" json:"retail_price"`
	Weight         string          `db:"weight" json:"weight,omitempty"`
	Image          string          `db:"image" json:"image,omitempty"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// Order represents a customer order. Totals are computed once at creation
// and cached on the row; only Status and SentToSupplierAt change afterwards.
type Order struct {
	ID               string          `db:"id" json:"id"`
	CustomerName     string          `db:"customer_name" json:"customer_name"`
	CustomerContact  string          `db:"customer_contact" json:"customer_contact"`
	TotalWholesale   decimal.Decimal `db:"total_wholesale" json:"total_wholesale"`
	TotalRetail      decimal.Decimal `db:"total_retail" json:"total_retail"`
	Profit           decimal.Decimal `db:"profit" json:"profit"`
	Status           string          `db:"status" json:"status"`
	SentToSupplierAt *time.Time      `db:"sent_to_supplier_at" json:"sent_to_supplier_at,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`

	Lines []OrderLine `db:"-" json:"lines,omitempty"`
}

// OrderLine is a line item. Product title and both unit prices are
// snapshotted from the catalog at creation time, so later catalog changes
// never retroactively alter a placed order.
type OrderLine struct {
	ID                 int64           `db:"id" json:"id"`
	OrderID            string          `db:"order_id" json:"order_id"`
	ProductCode        string          `db:"product_code" json:"product_code"`
	ProductTitle       string          `db:"product_title" json:"product_title"`
	Quantity           int             `db:"quantity" json:"quantity"`
	UnitWholesalePrice decimal.Decimal `db:"unit_wholesale_price" json:"unit_wholesale_price"`
	UnitRetailPrice    decimal.Decimal `db:"unit_retail_price" json:"unit_retail_price"`
	SubtotalWholesale  decimal.Decimal `db:"subtotal_wholesale" json:"subtotal_wholesale"`
	SubtotalRetail     decimal.Decimal `db:"subtotal_retail" json:"subtotal_retail"`
}

// Order statuses
const (
	OrderStatusPending        = "pending"
	OrderStatusSentToSupplier = "sent_to_supplier"
	OrderStatusCompleted      = "completed"
)

// validTransitions is the forward-only state machine:
// pending -> sent_to_supplier -> completed. No cancellation path exists.
var validTransitions = map[string][]string{
	OrderStatusPending:        {OrderStatusSentToSupplier},
	OrderStatusSentToSupplier: {OrderStatusCompleted},
	OrderStatusCompleted:      {},
}

// IsValidStatus reports whether s is one of the defined order statuses.
func IsValidStatus(s string) bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransition reports whether the state machine allows moving from one
// status to another.
func CanTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderStatistics aggregates over all persisted orders.
type OrderStatistics struct {
	Total                  int             `db:"total" json:"total"`
	PendingCount           int             `db:"pending_count" json:"pending_count"`
	SentCount              int             `db:"sent_count" json:"sent_count"`
	CompletedCount         int             `db:"completed_count" json:"completed_count"`
	TotalProfitOfCompleted decimal.Decimal `db:"total_profit_of_completed" json:"total_profit_of_completed"`
}
