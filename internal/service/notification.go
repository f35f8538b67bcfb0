package service

import (
	"fmt"
	"strings"

	"griffe-orders/internal/models"
	"griffe-orders/internal/money"
)

// renderSupplierMessage builds the supplier-facing notification text. Pure
// function of the order's snapshotted data. The supplier only sees wholesale
// prices, never retail.
func renderSupplierMessage(o *models.Order) string {
	var b strings.Builder

	b.WriteString("🛒 *NOVO PEDIDO - GRIFFE DA PRATA*\n\n")
	fmt.Fprintf(&b, "📋 Pedido: #%s\n", o.ID)
	fmt.Fprintf(&b, "📅 Data: %s\n\n", o.CreatedAt.Format("02/01/2006 15:04"))
	b.WriteString("*PRODUTOS:*\n")

	for _, line := range o.Lines {
		fmt.Fprintf(&b, "• %s - %dx - %s\n",
			line.ProductCode, line.Quantity, money.FormatBRL(line.UnitWholesalePrice))
	}

	fmt.Fprintf(&b, "\n💰 *Total: %s*\n\n", money.FormatBRL(o.TotalWholesale))
	fmt.Fprintf(&b, "Cliente: %s\n", o.CustomerName)
	b.WriteString("Confirma disponibilidade? 🙏")

	return b.String()
}
