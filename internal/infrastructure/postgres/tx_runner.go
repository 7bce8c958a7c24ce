package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/distribucion-api/internal/application/distribution"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// Ensure TxRunner implements distribution.TxRunner.
var _ distribution.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Es la unidad atómica del motor de distribución: cada fase
// (resolución+stock por producto, transición de estado del lote) corre aquí.
func (r *TxRunner) Run(ctx context.Context, fn func(
	distRepo repository.DistributionRepository,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	distRepo := NewDistributionRepository(tx)
	productRepo := NewProductRepository(tx)
	categoryRepo := NewCategoryRepository(tx)
	supplierRepo := NewSupplierRepository(tx)
	movRepo := NewStockMovementRepository(tx)

	if err := fn(distRepo, productRepo, categoryRepo, supplierRepo, movRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
