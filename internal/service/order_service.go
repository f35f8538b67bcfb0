package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"griffe-orders/internal/models"
	"griffe-orders/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Catalog is the read-only product source the engine resolves codes against.
type Catalog interface {
	GetProduct(ctx context.Context, code string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// OrderStore is the persistence surface the engine needs. CreateOrder must
// write the header and all lines atomically.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, status string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string, sentAt *time.Time) error
	Statistics(ctx context.Context) (*models.OrderStatistics, error)
}

// Publisher emits order lifecycle events. Publishing is best-effort: a
// publish failure never fails the business operation.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishOrderSentToSupplier(ctx context.Context, event *models.OrderSentToSupplierEvent) error
}

// OrderService implements order creation, the status state machine, supplier
// notification rendering, listing and statistics.
type OrderService struct {
	store           OrderStore
	catalog         Catalog
	publisher       Publisher
	supplierContact string
	logger          *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, catalog Catalog, publisher Publisher, supplierContact string) *OrderService {
	return &OrderService{
		store:           store,
		catalog:         catalog,
		publisher:       publisher,
		supplierContact: supplierContact,
		logger:          util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	CustomerName    string             `json:"customer_name" binding:"required"`
	CustomerContact string             `json:"customer_contact" binding:"required"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1"`
}

// OrderItemRequest represents an item in an order
type OrderItemRequest struct {
	ProductCode string `json:"product_code" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
}

// CreateOrder resolves every item against the catalog, snapshots prices,
// computes totals and persists the order atomically. Any unresolvable code
// fails the whole operation; no partial order is ever written.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderCreateLatency.Observe(time.Since(start).Seconds())
	}()

	if err := validateCreateRequest(req); err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	lines := make([]models.OrderLine, 0, len(req.Items))
	totalWholesale := decimal.Zero
	totalRetail := decimal.Zero

	for _, item := range req.Items {
		// One catalog read per line; both unit prices and both subtotals
		// come from this single snapshot.
		product, err := s.catalog.GetProduct(ctx, item.ProductCode)
		if err != nil {
			util.OrdersFailedTotal.WithLabelValues("product_not_found").Inc()
			return nil, err
		}

		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotalWholesale := product.WholesalePrice.Mul(qty)
		subtotalRetail := product.RetailPrice.Mul(qty)

		lines = append(lines, models.OrderLine{
			ProductCode:        product.Code,
			ProductTitle:       product.Title,
			Quantity:           item.Quantity,
			UnitWholesalePrice: product.WholesalePrice,
			UnitRetailPrice:    product.RetailPrice,
			SubtotalWholesale:  subtotalWholesale,
			SubtotalRetail:     subtotalRetail,
		})

		totalWholesale = totalWholesale.Add(subtotalWholesale)
		totalRetail = totalRetail.Add(subtotalRetail)
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		TotalWholesale:  totalWholesale,
		TotalRetail:     totalRetail,
		// Profit is informational: catalog data violating the markup
		// convention makes it negative, never an error.
		Profit:    totalRetail.Sub(totalWholesale),
		Status:    models.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
		Lines:     lines,
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("customer", order.CustomerName),
		zap.Int("lines", len(order.Lines)))

	if s.publisher != nil {
		event := &models.OrderCreatedEvent{
			BaseEvent:      newBaseEvent(models.EventTypeOrderCreated),
			OrderID:        order.ID,
			CustomerName:   order.CustomerName,
			TotalWholesale: order.TotalWholesale,
			TotalRetail:    order.TotalRetail,
			Profit:         order.Profit,
			Lines:          toLineData(order.Lines),
		}
		if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
		}
	}

	return order, nil
}

// UpdateStatus applies a forward-only status transition. Entering
// sent_to_supplier stamps sent_to_supplier_at and emits the supplier
// notification event with the rendered message.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, newStatus string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !models.IsValidStatus(newStatus) {
		util.StatusTransitionsRejected.WithLabelValues("invalid_status").Inc()
		return nil, &models.InvalidStatusError{Status: newStatus}
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(order.Status, newStatus) {
		util.StatusTransitionsRejected.WithLabelValues("invalid_transition").Inc()
		return nil, &models.InvalidTransitionError{From: order.Status, To: newStatus}
	}

	var sentAt *time.Time
	if newStatus == models.OrderStatusSentToSupplier {
		now := time.Now().UTC()
		sentAt = &now
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, newStatus, sentAt); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	from := order.Status
	order.Status = newStatus
	if sentAt != nil {
		order.SentToSupplierAt = sentAt
	}

	util.StatusTransitionsTotal.WithLabelValues(from, newStatus).Inc()
	s.logger.Info("Order status updated",
		zap.String("order_id", orderID),
		zap.String("from", from),
		zap.String("to", newStatus))

	if s.publisher != nil {
		event := &models.OrderStatusChangedEvent{
			BaseEvent: newBaseEvent(models.EventTypeOrderStatusChanged),
			OrderID:   orderID,
			From:      from,
			To:        newStatus,
		}
		if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
		}

		if newStatus == models.OrderStatusSentToSupplier {
			notify := &models.OrderSentToSupplierEvent{
				BaseEvent:   newBaseEvent(models.EventTypeOrderSentToSupplier),
				OrderID:     orderID,
				Destination: s.supplierContact,
				Message:     renderSupplierMessage(order),
			}
			if err := s.publisher.PublishOrderSentToSupplier(ctx, notify); err != nil {
				s.logger.Error("Failed to publish OrderSentToSupplier event", zap.Error(err))
			}
		}
	}

	return order, nil
}

// RenderSupplierMessage renders the supplier notification for an order.
// Deterministic: two calls on an unchanged order produce identical bytes.
func (s *OrderService) RenderSupplierMessage(ctx context.Context, orderID string) (string, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return "", err
	}

	util.SupplierMessagesRenderedTotal.Inc()
	return renderSupplierMessage(order), nil
}

// GetOrder retrieves an order with its lines
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.store.GetOrderByID(ctx, orderID)
}

// ListOrders returns all orders, most recent first, optionally filtered to
// one status.
func (s *OrderService) ListOrders(ctx context.Context, status string) ([]models.Order, error) {
	if status != "" && !models.IsValidStatus(status) {
		return nil, &models.InvalidStatusError{Status: status}
	}
	return s.store.ListOrders(ctx, status)
}

// ListCatalog returns the full product catalog
func (s *OrderService) ListCatalog(ctx context.Context) ([]models.Product, error) {
	return s.catalog.ListProducts(ctx)
}

// ComputeStatistics aggregates over all persisted orders
func (s *OrderService) ComputeStatistics(ctx context.Context) (*models.OrderStatistics, error) {
	return s.store.Statistics(ctx)
}

func validateCreateRequest(req *CreateOrderRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return &models.ValidationError{Field: "customer_name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(req.CustomerContact) == "" {
		return &models.ValidationError{Field: "customer_contact", Reason: "must not be empty"}
	}
	if len(req.Items) == 0 {
		return &models.ValidationError{Field: "items", Reason: "must not be empty"}
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.ProductCode) == "" {
			return &models.ValidationError{
				Field:  fmt.Sprintf("items[%d].product_code", i),
				Reason: "must not be empty",
			}
		}
		if item.Quantity <= 0 {
			return &models.ValidationError{
				Field:  fmt.Sprintf("items[%d].quantity", i),
				Reason: "must be a positive integer",
			}
		}
	}
	return nil
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

func toLineData(lines []models.OrderLine) []models.OrderLineData {
	data := make([]models.OrderLineData, 0, len(lines))
	for _, line := range lines {
		data = append(data, models.OrderLineData{
			ProductCode:        line.ProductCode,
			Quantity:           line.Quantity,
			UnitWholesalePrice: line.UnitWholesalePrice,
			UnitRetailPrice:    line.UnitRetailPrice,
		})
	}
	return data
}
