package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, tenant_id, sku, name, description, category_id, supplier_id, stock, purchase_price, sale_price, wholesale_price, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL
// (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByTenantAndSKU obtiene un producto por tenant y SKU (clave natural).
func (r *ProductRepo) GetByTenantAndSKU(tenantID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND sku = $2`
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, tenantID, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// InsertOrGet inserta el producto salvo que (tenant_id, sku) ya exista y
// devuelve la fila destino. El ON CONFLICT DO NOTHING cierra la carrera
// check-then-insert: dos resoluciones concurrentes convergen en la misma fila.
func (r *ProductRepo) InsertOrGet(product *entity.Product) (*entity.Product, error) {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (tenant_id, sku) DO NOTHING`
	cmd, err := r.q.Exec(context.Background(), query,
		product.ID, product.TenantID, product.SKU, product.Name, product.Description,
		nullable(product.CategoryID), nullable(product.SupplierID), product.Stock,
		product.PurchasePrice, product.SalePrice, product.WholesalePrice,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return product, nil
	}
	existing, err := r.GetByTenantAndSKU(product.TenantID, product.SKU)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("insert product %s: conflicto sin fila visible", product.SKU)
	}
	return existing, nil
}

// UpdateDescriptive refresca campos descriptivos y de precios. Nunca toca
// stock: eso es exclusivo de IncrementStock y el libro de movimientos.
func (r *ProductRepo) UpdateDescriptive(product *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, category_id = $4, supplier_id = $5,
		    purchase_price = $6, sale_price = $7, wholesale_price = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.Name, product.Description,
		nullable(product.CategoryID), nullable(product.SupplierID),
		product.PurchasePrice, product.SalePrice, product.WholesalePrice, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// IncrementStock suma quantity al stock de la fila. El UPDATE toma el bloqueo
// de fila: incrementos concurrentes del mismo producto se serializan y no hay
// lost updates.
func (r *ProductRepo) IncrementStock(productID string, quantity decimal.Decimal) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("increment stock: producto %s no existe", productID)
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var categoryID, supplierID *string
	err := row.Scan(
		&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.Description,
		&categoryID, &supplierID, &p.Stock,
		&p.PurchasePrice, &p.SalePrice, &p.WholesalePrice,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID != nil {
		p.CategoryID = *categoryID
	}
	if supplierID != nil {
		p.SupplierID = *supplierID
	}
	return &p, nil
}

// nullable convierte cadena vacía en NULL (FKs opcionales).
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
