package service

import (
	"testing"
	"time"

	"griffe-orders/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func supplierMessageOrder() *models.Order {
	created := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)
	return &models.Order{
		ID:             "a1b2c3d4-0000-0000-0000-000000000000",
		CustomerName:   "Maria Oliveira",
		TotalWholesale: decimal.RequireFromString("44.00"),
		TotalRetail:    decimal.RequireFromString("110.00"),
		Status:         models.OrderStatusPending,
		CreatedAt:      created,
		Lines: []models.OrderLine{
			{
				ProductCode:        "J2-54",
				ProductTitle:       "Anel Solitário Prata 925",
				Quantity:           2,
				UnitWholesalePrice: decimal.RequireFromString("10.00"),
				UnitRetailPrice:    decimal.RequireFromString("25.00"),
			},
			{
				ProductCode:        "J1-61",
				ProductTitle:       "Brinco Argola Prata 925",
				Quantity:           3,
				UnitWholesalePrice: decimal.RequireFromString("8.00"),
				UnitRetailPrice:    decimal.RequireFromString("20.00"),
			},
		},
	}
}

func TestRenderSupplierMessage(t *testing.T) {
	msg := renderSupplierMessage(supplierMessageOrder())

	want := "🛒 *NOVO PEDIDO - GRIFFE DA PRATA*\n\n" +
		"📋 Pedido: #a1b2c3d4-0000-0000-0000-000000000000\n" +
		"📅 Data: 15/01/2025 14:30\n\n" +
		"*PRODUTOS:*\n" +
		"• J2-54 - 2x - R$ 10,00\n" +
		"• J1-61 - 3x - R$ 8,00\n" +
		"\n💰 *Total: R$ 44,00*\n\n" +
		"Cliente: Maria Oliveira\n" +
		"Confirma disponibilidade? 🙏"

	assert.Equal(t, want, msg)
}

func TestRenderSupplierMessageIdempotent(t *testing.T) {
	order := supplierMessageOrder()
	assert.Equal(t, renderSupplierMessage(order), renderSupplierMessage(order))
}

func TestRenderSupplierMessageWholesaleOnly(t *testing.T) {
	msg := renderSupplierMessage(supplierMessageOrder())

	assert.Contains(t, msg, "R$ 44,00")
	// Retail amounts and margin never reach the supplier.
	assert.NotContains(t, msg, "110")
	assert.NotContains(t, msg, "25,00")
	assert.NotContains(t, msg, "20,00")
	assert.NotContains(t, msg, "66")
}
