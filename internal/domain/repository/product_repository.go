package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	GetByTenantAndSKU(tenantID, sku string) (*entity.Product, error)
	// InsertOrGet inserta el producto si (tenant, sku) no existe y devuelve la
	// fila destino. Idempotente: se apoya en el constraint único, nunca en
	// check-then-insert. Stock del insertado siempre arranca en 0.
	InsertOrGet(product *entity.Product) (*entity.Product, error)
	// UpdateDescriptive refresca campos descriptivos y de precios.
	// Nunca toca Stock: eso es exclusivo del libro de movimientos.
	UpdateDescriptive(product *entity.Product) error
	// IncrementStock suma quantity al stock de la fila (UPDATE atómico con
	// bloqueo de fila; serializa incrementos concurrentes del mismo producto).
	IncrementStock(productID string, quantity decimal.Decimal) error
}
