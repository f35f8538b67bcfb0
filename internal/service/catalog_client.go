package service

import (
	"context"
	"fmt"

	"griffe-orders/internal/models"
	"griffe-orders/internal/redisclient"
	"griffe-orders/internal/store"
	"griffe-orders/internal/util"

	"go.uber.org/zap"
)

// CatalogClient is the catalog handle injected into the order engine. Reads
// go through a Redis cache and fall back to Postgres; the client never
// writes the catalog.
type CatalogClient struct {
	store  *store.Store
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogClient creates a new catalog client
func NewCatalogClient(store *store.Store, redis *redisclient.Client) *CatalogClient {
	return &CatalogClient{
		store:  store,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// GetProduct resolves a product code, Redis first with DB fallback
func (cc *CatalogClient) GetProduct(ctx context.Context, code string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogClient.GetProduct")
	defer span.End()

	if cc.redis != nil {
		product, err := cc.redis.GetProduct(ctx, code)
		if err == nil {
			util.CatalogCacheHits.Inc()
			return product, nil
		}
		if !redisclient.IsCacheMiss(err) {
			cc.logger.Warn("Catalog cache read failed, falling back to DB",
				zap.String("code", code),
				zap.Error(err))
		}
	}

	util.CatalogCacheMisses.Inc()

	product, err := cc.store.GetProductByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if cc.redis != nil {
		if err := cc.redis.SetProduct(ctx, product); err != nil {
			cc.logger.Warn("Failed to cache product",
				zap.String("code", code),
				zap.Error(err))
		}
	}

	return product, nil
}

// ListProducts retrieves the full catalog from the database
func (cc *CatalogClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	return cc.store.ListProducts(ctx)
}

// WarmCache loads the whole catalog into Redis at startup
func (cc *CatalogClient) WarmCache(ctx context.Context) error {
	if cc.redis == nil {
		return nil
	}

	products, err := cc.store.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	if err := cc.redis.SetProducts(ctx, products); err != nil {
		return fmt.Errorf("failed to warm catalog cache: %w", err)
	}

	cc.logger.Info("Catalog cache warmed", zap.Int("count", len(products)))
	return nil
}
