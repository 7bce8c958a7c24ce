package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación del puerto SupplierRepository sobre PostgreSQL
// (usable con pool o tx).
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador de proveedores. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// GetByID obtiene un proveedor por ID.
func (r *SupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	query := `SELECT id, tenant_id, code, name, phone, address, created_at, updated_at FROM suppliers WHERE id = $1`
	var s entity.Supplier
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.TenantID, &s.Code, &s.Name, &s.Phone, &s.Address, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

// GetByTenantAndCode obtiene un proveedor por su clave natural (tenant, código).
func (r *SupplierRepo) GetByTenantAndCode(tenantID, code string) (*entity.Supplier, error) {
	query := `SELECT id, tenant_id, code, name, phone, address, created_at, updated_at FROM suppliers WHERE tenant_id = $1 AND code = $2`
	var s entity.Supplier
	err := r.q.QueryRow(context.Background(), query, tenantID, code).Scan(
		&s.ID, &s.TenantID, &s.Code, &s.Name, &s.Phone, &s.Address, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier by code: %w", err)
	}
	return &s, nil
}

// InsertOrGet inserta el proveedor salvo que (tenant_id, code) ya exista y
// devuelve la fila destino (insert-or-get sobre el constraint único).
func (r *SupplierRepo) InsertOrGet(supplier *entity.Supplier) (*entity.Supplier, error) {
	query := `
		INSERT INTO suppliers (id, tenant_id, code, name, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, code) DO NOTHING`
	cmd, err := r.q.Exec(context.Background(), query,
		supplier.ID, supplier.TenantID, supplier.Code, supplier.Name,
		supplier.Phone, supplier.Address, supplier.CreatedAt, supplier.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert supplier: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return supplier, nil
	}
	existing, err := r.GetByTenantAndCode(supplier.TenantID, supplier.Code)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("insert supplier %q: conflicto sin fila visible", supplier.Code)
	}
	return existing, nil
}
