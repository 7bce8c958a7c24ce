package distribution

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// EntityResolver copia bajo demanda categoría, proveedor y producto desde la
// bodega principal hacia el tenant destino, emparejando por clave natural
// (nombre de categoría, código de proveedor, SKU). Las copias quedan con ID
// propio del destino, sin referencia cruzada entre tenants: cada tienda sigue
// siendo mutable de forma independiente.
//
// Idempotente: cada paso es insert-or-get sobre el constraint único, nunca
// check-then-insert, así que dos resoluciones concurrentes convergen en la
// misma fila destino.
type EntityResolver struct{}

// ResolveProduct resuelve en orden de dependencia: categoría → proveedor →
// producto. Si el producto destino no existe lo crea con Stock 0 (la cantidad
// se aplica aparte, vía el libro); si ya existe, refresca solo los campos
// descriptivos y de precios.
func (EntityResolver) ResolveProduct(
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	source *entity.Product,
	destinationTenantID string,
	now time.Time,
) (*entity.Product, error) {
	if source == nil || destinationTenantID == "" {
		return nil, domain.ErrInvalidInput
	}

	destCategoryID, err := resolveCategory(categoryRepo, source.CategoryID, destinationTenantID, now)
	if err != nil {
		return nil, err
	}
	destSupplierID, err := resolveSupplier(supplierRepo, source.SupplierID, destinationTenantID, now)
	if err != nil {
		return nil, err
	}

	draft := &entity.Product{
		ID:             uuid.New().String(),
		TenantID:       destinationTenantID,
		SKU:            source.SKU,
		Name:           source.Name,
		Description:    source.Description,
		CategoryID:     destCategoryID,
		SupplierID:     destSupplierID,
		Stock:          decimal.Zero,
		PurchasePrice:  source.PurchasePrice,
		SalePrice:      source.SalePrice,
		WholesalePrice: source.WholesalePrice,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	dest, err := productRepo.InsertOrGet(draft)
	if err != nil {
		return nil, fmt.Errorf("resolver producto %s: %w", source.SKU, err)
	}
	if dest.ID != draft.ID {
		// Ya existía: refrescar descriptivos/precios; el stock no se toca aquí.
		dest.Name = source.Name
		dest.Description = source.Description
		dest.CategoryID = destCategoryID
		dest.SupplierID = destSupplierID
		dest.PurchasePrice = source.PurchasePrice
		dest.SalePrice = source.SalePrice
		dest.WholesalePrice = source.WholesalePrice
		dest.UpdatedAt = now
		if err := productRepo.UpdateDescriptive(dest); err != nil {
			return nil, fmt.Errorf("refrescar producto %s: %w", source.SKU, err)
		}
	}
	return dest, nil
}

// resolveCategory copia la categoría del producto origen al tenant destino por
// su nombre. Devuelve vacío si el producto origen no tiene categoría.
func resolveCategory(repo repository.CategoryRepository, sourceCategoryID, destinationTenantID string, now time.Time) (string, error) {
	if sourceCategoryID == "" {
		return "", nil
	}
	src, err := repo.GetByID(sourceCategoryID)
	if err != nil {
		return "", fmt.Errorf("cargar categoría origen: %w", err)
	}
	if src == nil {
		return "", nil
	}
	dest, err := repo.InsertOrGet(&entity.Category{
		ID:          uuid.New().String(),
		TenantID:    destinationTenantID,
		Name:        src.Name,
		Description: src.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return "", fmt.Errorf("resolver categoría %q: %w", src.Name, err)
	}
	return dest.ID, nil
}

// resolveSupplier copia el proveedor del producto origen al tenant destino por
// su código. Devuelve vacío si el producto origen no tiene proveedor.
func resolveSupplier(repo repository.SupplierRepository, sourceSupplierID, destinationTenantID string, now time.Time) (string, error) {
	if sourceSupplierID == "" {
		return "", nil
	}
	src, err := repo.GetByID(sourceSupplierID)
	if err != nil {
		return "", fmt.Errorf("cargar proveedor origen: %w", err)
	}
	if src == nil {
		return "", nil
	}
	dest, err := repo.InsertOrGet(&entity.Supplier{
		ID:        uuid.New().String(),
		TenantID:  destinationTenantID,
		Code:      src.Code,
		Name:      src.Name,
		Phone:     src.Phone,
		Address:   src.Address,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("resolver proveedor %q: %w", src.Code, err)
	}
	return dest.ID, nil
}
