package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de un tenant (tienda o bodega).
// SKU es único por tenant y es la clave natural para emparejar el mismo
// producto entre tenants; Stock se muta solo vía el libro de movimientos.
type Product struct {
	ID             string
	TenantID       string
	SKU            string // código único por tenant; clave de unión entre tenants
	Name           string
	Description    string
	CategoryID     string
	SupplierID     string
	Stock          decimal.Decimal
	PurchasePrice  decimal.Decimal // precio de compra
	SalePrice      decimal.Decimal // precio de venta al público
	WholesalePrice decimal.Decimal // precio mayorista
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
