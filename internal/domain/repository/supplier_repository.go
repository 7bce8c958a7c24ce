package repository

import "github.com/jhoicas/distribucion-api/internal/domain/entity"

// SupplierRepository define el puerto de persistencia para Supplier (DIP).
type SupplierRepository interface {
	GetByID(id string) (*entity.Supplier, error)
	GetByTenantAndCode(tenantID, code string) (*entity.Supplier, error)
	// InsertOrGet inserta el proveedor si (tenant, code) no existe y devuelve la
	// fila destino (insert-or-get sobre el constraint único).
	InsertOrGet(supplier *entity.Supplier) (*entity.Supplier, error)
}
