package distribution

import (
	"context"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para cada fase del motor:
// la resolución+stock de un producto, o la transición de estado del lote entero.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		distRepo repository.DistributionRepository,
		productRepo repository.ProductRepository,
		categoryRepo repository.CategoryRepository,
		supplierRepo repository.SupplierRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// AuditSink publica el evento de auditoría hacia un destino externo (ej. Kafka).
// Es opcional y best-effort: un fallo aquí jamás revierte la operación de negocio.
type AuditSink interface {
	Publish(ctx context.Context, log *entity.AuditLog) error
}
