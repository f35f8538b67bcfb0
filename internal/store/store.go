package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"griffe-orders/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// schema is applied once on startup. Idempotent due to IF NOT EXISTS.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	code            TEXT PRIMARY KEY,
	title           TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL DEFAULT 'OUTROS',
	wholesale_price NUMERIC(12,2) NOT NULL DEFAULT 0,
	retail_price    NUMERIC(12,2) NOT NULL DEFAULT 0,
	weight          TEXT NOT NULL DEFAULT '',
	image           TEXT NOT NULL DEFAULT '',
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
	id                  TEXT PRIMARY KEY,
	customer_name       TEXT NOT NULL,
	customer_contact    TEXT NOT NULL,
	total_wholesale     NUMERIC(12,2) NOT NULL,
	total_retail        NUMERIC(12,2) NOT NULL,
	profit              NUMERIC(12,2) NOT NULL,
	status              TEXT NOT NULL DEFAULT 'pending',
	sent_to_supplier_at TIMESTAMPTZ,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS order_lines (
	id                   BIGSERIAL PRIMARY KEY,
	order_id             TEXT NOT NULL REFERENCES orders (id),
	product_code         TEXT NOT NULL,
	product_title        TEXT NOT NULL DEFAULT '',
	quantity             INTEGER NOT NULL CHECK (quantity > 0),
	unit_wholesale_price NUMERIC(12,2) NOT NULL,
	unit_retail_price    NUMERIC(12,2) NOT NULL,
	subtotal_wholesale   NUMERIC(12,2) NOT NULL,
	subtotal_retail      NUMERIC(12,2) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_order_lines_order_id ON order_lines (order_id);
`

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store and applies the schema.
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetProductByCode retrieves a catalog product by its code
func (s *Store) GetProductByCode(ctx context.Context, code string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE code = $1", code)
	if err == sql.ErrNoRows {
		return nil, &models.ProductNotFoundError{Code: code}
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts retrieves the full catalog
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY code")
	return products, err
}

// UpsertProduct inserts or replaces a catalog product. Only the import
// tooling writes the catalog; the order engine never calls this.
func (s *Store) UpsertProduct(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (code, title, category, wholesale_price, retail_price, weight, image, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (code) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			wholesale_price = EXCLUDED.wholesale_price,
			retail_price = EXCLUDED.retail_price,
			weight = EXCLUDED.weight,
			image = EXCLUDED.image,
			updated_at = NOW()`

	_, err := s.db.ExecContext(ctx, query,
		p.Code, p.Title, p.Category, p.WholesalePrice, p.RetailPrice, p.Weight, p.Image)
	return err
}
