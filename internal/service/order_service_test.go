package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"griffe-orders/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// ---------- in-memory fakes ----------
//

type fakeStore struct {
	mu        sync.Mutex
	orders    map[string]*models.Order
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[string]*models.Order)}
}

func (f *fakeStore) CreateOrder(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *order
	cp.Lines = append([]models.OrderLine(nil), order.Lines...)
	f.orders[order.ID] = &cp
	return nil
}

func (f *fakeStore) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, &models.OrderNotFoundError{ID: id}
	}
	cp := *o
	cp.Lines = append([]models.OrderLine(nil), o.Lines...)
	return &cp, nil
}

func (f *fakeStore) ListOrders(_ context.Context, status string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) UpdateOrderStatus(_ context.Context, orderID, status string, sentAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return &models.OrderNotFoundError{ID: orderID}
	}
	o.Status = status
	if sentAt != nil {
		o.SentToSupplierAt = sentAt
	}
	return nil
}

func (f *fakeStore) Statistics(_ context.Context) (*models.OrderStatistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &models.OrderStatistics{TotalProfitOfCompleted: decimal.Zero}
	for _, o := range f.orders {
		stats.Total++
		switch o.Status {
		case models.OrderStatusPending:
			stats.PendingCount++
		case models.OrderStatusSentToSupplier:
			stats.SentCount++
		case models.OrderStatusCompleted:
			stats.CompletedCount++
			stats.TotalProfitOfCompleted = stats.TotalProfitOfCompleted.Add(o.Profit)
		}
	}
	return stats, nil
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]models.Product
}

func newFakeCatalog(products ...models.Product) *fakeCatalog {
	c := &fakeCatalog{products: make(map[string]models.Product)}
	for _, p := range products {
		c.products[p.Code] = p
	}
	return c
}

func (f *fakeCatalog) GetProduct(_ context.Context, code string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[code]
	if !ok {
		return nil, &models.ProductNotFoundError{Code: code}
	}
	cp := p
	return &cp, nil
}

func (f *fakeCatalog) ListProducts(_ context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) setRetailPrice(code string, price decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[code]
	p.RetailPrice = price
	f.products[code] = p
}

type recordingPublisher struct {
	mu      sync.Mutex
	created []*models.OrderCreatedEvent
	changed []*models.OrderStatusChangedEvent
	sent    []*models.OrderSentToSupplierEvent
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, e *models.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, e)
	return nil
}

func (p *recordingPublisher) PublishOrderStatusChanged(_ context.Context, e *models.OrderStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, e)
	return nil
}

func (p *recordingPublisher) PublishOrderSentToSupplier(_ context.Context, e *models.OrderSentToSupplierEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, e)
	return nil
}

func jewelryCatalog() *fakeCatalog {
	return newFakeCatalog(
		models.Product{
			Code:           "J2-54",
			Title:          "Anel Solitário Prata 925",
			Category:       "ANÉIS",
			WholesalePrice: decimal.RequireFromString("10.00"),
			RetailPrice:    decimal.RequireFromString("25.00"),
		},
		models.Product{
			Code:           "J1-61",
			Title:          "Brinco Argola Prata 925",
			Category:       "BRINCOS",
			WholesalePrice: decimal.RequireFromString("8.00"),
			RetailPrice:    decimal.RequireFromString("20.00"),
		},
	)
}

func newTestService(store *fakeStore, catalog *fakeCatalog) (*OrderService, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewOrderService(store, catalog, pub, "5511999999999"), pub
}

//
// ---------- order creation ----------
//

func TestCreateOrderComputesTotals(t *testing.T) {
	store := newFakeStore()
	svc, pub := newTestService(store, jewelryCatalog())

	order, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerName:    "Maria Oliveira",
		CustomerContact: "5511987654321",
		Items: []OrderItemRequest{
			{ProductCode: "J2-54", Quantity: 2},
			{ProductCode: "J1-61", Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "44.00", order.TotalWholesale.StringFixed(2))
	assert.Equal(t, "110.00", order.TotalRetail.StringFixed(2))
	assert.Equal(t, "66.00", order.Profit.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.NotEmpty(t, order.ID)
	assert.Nil(t, order.SentToSupplierAt)

	require.Len(t, order.Lines, 2)
	assert.Equal(t, "Anel Solitário Prata 925", order.Lines[0].ProductTitle)
	assert.Equal(t, "20.00", order.Lines[0].SubtotalWholesale.StringFixed(2))
	assert.Equal(t, "50.00", order.Lines[0].SubtotalRetail.StringFixed(2))
	assert.Equal(t, "24.00", order.Lines[1].SubtotalWholesale.StringFixed(2))
	assert.Equal(t, "60.00", order.Lines[1].SubtotalRetail.StringFixed(2))

	// Totals equal the sum of line subtotals, exactly.
	sumW := order.Lines[0].SubtotalWholesale.Add(order.Lines[1].SubtotalWholesale)
	sumR := order.Lines[0].SubtotalRetail.Add(order.Lines[1].SubtotalRetail)
	assert.True(t, order.TotalWholesale.Equal(sumW))
	assert.True(t, order.TotalRetail.Equal(sumR))
	assert.True(t, order.Profit.Equal(order.TotalRetail.Sub(order.TotalWholesale)))

	persisted, err := store.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, persisted.ID)
	require.Len(t, pub.created, 1)
	assert.Equal(t, order.ID, pub.created[0].OrderID)
}

func TestCreateOrderUnknownProductCreatesNothing(t *testing.T) {
	store := newFakeStore()
	svc, pub := newTestService(store, jewelryCatalog())

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerName:    "Maria Oliveira",
		CustomerContact: "5511987654321",
		Items: []OrderItemRequest{
			{ProductCode: "J2-54", Quantity: 1},
			{ProductCode: "ZZ-99", Quantity: 2},
		},
	})

	var notFound *models.ProductNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "ZZ-99", notFound.Code)

	// All-or-nothing: the resolvable first line must not leak into the store.
	orders, err := store.ListOrders(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, pub.created)
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _ := newTestService(newFakeStore(), jewelryCatalog())
	ctx := context.Background()

	cases := []struct {
		name string
		req  *CreateOrderRequest
	}{
		{"empty customer name", &CreateOrderRequest{
			CustomerContact: "5511987654321",
			Items:           []OrderItemRequest{{ProductCode: "J2-54", Quantity: 1}},
		}},
		{"blank customer contact", &CreateOrderRequest{
			CustomerName: "Maria Oliveira",
			Items:        []OrderItemRequest{{ProductCode: "J2-54", Quantity: 1}},
		}},
		{"no items", &CreateOrderRequest{
			CustomerName:    "Maria Oliveira",
			CustomerContact: "5511987654321",
		}},
		{"zero quantity", &CreateOrderRequest{
			CustomerName:    "Maria Oliveira",
			CustomerContact: "5511987654321",
			Items:           []OrderItemRequest{{ProductCode: "J2-54", Quantity: 0}},
		}},
		{"negative quantity", &CreateOrderRequest{
			CustomerName:    "Maria Oliveira",
			CustomerContact: "5511987654321",
			Items:           []OrderItemRequest{{ProductCode: "J2-54", Quantity: -1}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, tc.req)
			var validationErr *models.ValidationError
			assert.True(t, errors.As(err, &validationErr), "got %v", err)
		})
	}
}

func TestCreateOrderNegativeProfitAllowed(t *testing.T) {
	// Catalog data violating the markup convention is tolerated: profit is
	// informational, not validated.
	catalog := newFakeCatalog(models.Product{
		Code:           "X1-01",
		Title:          "Corrente Prata",
		WholesalePrice: decimal.RequireFromString("30.00"),
		RetailPrice:    decimal.RequireFromString("12.00"),
	})
	svc, _ := newTestService(newFakeStore(), catalog)

	order, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerName:    "Maria Oliveira",
		CustomerContact: "5511987654321",
		Items:           []OrderItemRequest{{ProductCode: "X1-01", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "-18.00", order.Profit.StringFixed(2))
}

func TestCreateOrderPersistenceFailureSurfaces(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("connection refused")
	svc, pub := newTestService(store, jewelryCatalog())

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerName:    "Maria Oliveira",
		CustomerContact: "5511987654321",
		Items:           []OrderItemRequest{{ProductCode: "J2-54", Quantity: 1}},
	})
	require.Error(t, err)
	assert.Empty(t, pub.created)
}

func TestPriceSnapshotImmutability(t *testing.T) {
	store := newFakeStore()
	catalog := jewelryCatalog()
	svc, _ := newTestService(store, catalog)

	order, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerName:    "Maria Oliveira",
		CustomerContact: "5511987654321",
		Items:           []OrderItemRequest{{ProductCode: "J2-54", Quantity: 2}},
	})
	require.NoError(t, err)

	// A later catalog price change must not touch the placed order.
	catalog.setRetailPrice("J2-54", decimal.RequireFromString("99.00"))

	reloaded, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", reloaded.Lines[0].UnitRetailPrice.StringFixed(2))
	assert.Equal(t, "50.00", reloaded.Lines[0].SubtotalRetail.StringFixed(2))
	assert.Equal(t, "50.00", reloaded.TotalRetail.StringFixed(2))
}

//
// ---------- status transitions ----------
//

func createTestOrder(t *testing.T, svc *OrderService) *models.Order {
	t.Helper()
	order, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerName:    "Maria Oliveira",
		CustomerContact: "5511987654321",
		Items:           []OrderItemRequest{{ProductCode: "J2-54", Quantity: 2}},
	})
	require.NoError(t, err)
	return order
}

func TestUpdateStatusSentToSupplier(t *testing.T) {
	svc, pub := newTestService(newFakeStore(), jewelryCatalog())
	order := createTestOrder(t, svc)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusSentToSupplier)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusSentToSupplier, updated.Status)
	require.NotNil(t, updated.SentToSupplierAt)
	assert.False(t, updated.SentToSupplierAt.Before(updated.CreatedAt))

	require.Len(t, pub.changed, 1)
	assert.Equal(t, models.OrderStatusPending, pub.changed[0].From)
	assert.Equal(t, models.OrderStatusSentToSupplier, pub.changed[0].To)

	// The notification event carries the rendered message and destination.
	require.Len(t, pub.sent, 1)
	assert.Equal(t, "5511999999999", pub.sent[0].Destination)
	assert.Contains(t, pub.sent[0].Message, order.ID)
	assert.Contains(t, pub.sent[0].Message, "R$ 20,00")
}

func TestUpdateStatusFullLifecycle(t *testing.T) {
	svc, _ := newTestService(newFakeStore(), jewelryCatalog())
	order := createTestOrder(t, svc)

	_, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusSentToSupplier)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, updated.Status)
}

func TestUpdateStatusRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(newFakeStore(), jewelryCatalog())
	order := createTestOrder(t, svc)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, order.ID, "canceled")
	var statusErr *models.InvalidStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "canceled", statusErr.Status)

	_, err = svc.UpdateStatus(ctx, "missing-id", models.OrderStatusSentToSupplier)
	var notFound *models.OrderNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "missing-id", notFound.ID)
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	svc, _ := newTestService(newFakeStore(), jewelryCatalog())
	order := createTestOrder(t, svc)
	ctx := context.Background()

	// Skipping a state is rejected.
	_, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusCompleted)
	var transitionErr *models.InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, models.OrderStatusPending, transitionErr.From)
	assert.Equal(t, models.OrderStatusCompleted, transitionErr.To)

	// Reversing is rejected.
	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderStatusSentToSupplier)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderStatusPending)
	assert.True(t, errors.As(err, &transitionErr))

	// The rejected transitions left the order untouched.
	reloaded, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusSentToSupplier, reloaded.Status)
}

//
// ---------- listing and statistics ----------
//

func TestListOrdersFilterAndOrdering(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store, jewelryCatalog())
	ctx := context.Background()

	first := createTestOrder(t, svc)
	second := createTestOrder(t, svc)
	third := createTestOrder(t, svc)

	// Spread creation times so the ordering is deterministic.
	store.orders[first.ID].CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	store.orders[second.ID].CreatedAt = time.Now().UTC().Add(-1 * time.Hour)
	store.orders[third.ID].CreatedAt = time.Now().UTC()

	_, err := svc.UpdateStatus(ctx, second.ID, models.OrderStatusSentToSupplier)
	require.NoError(t, err)

	all, err := svc.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, first.ID, all[2].ID)

	sent, err := svc.ListOrders(ctx, models.OrderStatusSentToSupplier)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, second.ID, sent[0].ID)

	pending, err := svc.ListOrders(ctx, models.OrderStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = svc.ListOrders(ctx, "shipped")
	var statusErr *models.InvalidStatusError
	assert.True(t, errors.As(err, &statusErr))
}

func TestComputeStatisticsEmptyStore(t *testing.T) {
	svc, _ := newTestService(newFakeStore(), jewelryCatalog())

	stats, err := svc.ComputeStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.PendingCount)
	assert.Equal(t, 0, stats.SentCount)
	assert.Equal(t, 0, stats.CompletedCount)
	assert.True(t, stats.TotalProfitOfCompleted.IsZero())
}

func TestComputeStatisticsCountsAndProfit(t *testing.T) {
	svc, _ := newTestService(newFakeStore(), jewelryCatalog())
	ctx := context.Background()

	createTestOrder(t, svc)
	second := createTestOrder(t, svc)
	third := createTestOrder(t, svc)

	_, err := svc.UpdateStatus(ctx, second.ID, models.OrderStatusSentToSupplier)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, third.ID, models.OrderStatusSentToSupplier)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, third.ID, models.OrderStatusCompleted)
	require.NoError(t, err)

	stats, err := svc.ComputeStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.PendingCount)
	assert.Equal(t, 1, stats.SentCount)
	assert.Equal(t, 1, stats.CompletedCount)
	// Only the completed order's profit counts: 2 × (25 − 10).
	assert.Equal(t, "30.00", stats.TotalProfitOfCompleted.StringFixed(2))
}
