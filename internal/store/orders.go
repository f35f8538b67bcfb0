package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"griffe-orders/internal/models"
)

// CreateOrder persists the order header and all its lines in one
// transaction: either every row is written or none.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (id, customer_name, customer_contact, total_wholesale, total_retail, profit, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := tx.ExecContext(ctx, query,
		order.ID, order.CustomerName, order.CustomerContact,
		order.TotalWholesale, order.TotalRetail, order.Profit,
		order.Status, order.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	lineQuery := `
		INSERT INTO order_lines (order_id, product_code, product_title, quantity,
			unit_wholesale_price, unit_retail_price, subtotal_wholesale, subtotal_retail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	for i := range order.Lines {
		line := &order.Lines[i]
		line.OrderID = order.ID
		if err := tx.GetContext(ctx, &line.ID, lineQuery,
			line.OrderID, line.ProductCode, line.ProductTitle, line.Quantity,
			line.UnitWholesalePrice, line.UnitRetailPrice,
			line.SubtotalWholesale, line.SubtotalRetail); err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order with its lines
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, &models.OrderNotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.SelectContext(ctx, &order.Lines,
		"SELECT * FROM order_lines WHERE order_id = $1 ORDER BY id", id); err != nil {
		return nil, err
	}

	return &order, nil
}

// ListOrders retrieves all orders, most recent first, optionally filtered to
// one status. Pass an empty status for no filter.
func (s *Store) ListOrders(ctx context.Context, status string) ([]models.Order, error) {
	var orders []models.Order
	var err error
	if status == "" {
		err = s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders ORDER BY created_at DESC")
	} else {
		err = s.db.SelectContext(ctx, &orders,
			"SELECT * FROM orders WHERE status = $1 ORDER BY created_at DESC", status)
	}
	return orders, err
}

// UpdateOrderStatus updates an order's status, stamping sent_to_supplier_at
// when sentAt is non-nil.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string, sentAt *time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, sent_to_supplier_at = COALESCE($2, sent_to_supplier_at) WHERE id = $3",
		status, sentAt, orderID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &models.OrderNotFoundError{ID: orderID}
	}
	return nil
}

// Statistics aggregates over all persisted orders in one query. Returns
// zero-valued fields on an empty store.
func (s *Store) Statistics(ctx context.Context) (*models.OrderStatistics, error) {
	var stats models.OrderStatistics
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_count,
			COUNT(*) FILTER (WHERE status = 'sent_to_supplier') AS sent_count,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed_count,
			COALESCE(SUM(profit) FILTER (WHERE status = 'completed'), 0) AS total_profit_of_completed
		FROM orders`

	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		return nil, err
	}
	return &stats, nil
}
