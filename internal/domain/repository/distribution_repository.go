package repository

import (
	"time"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
)

// DistributionRepository define el puerto de persistencia para Distribution (DIP).
// Las transiciones de estado usan compare-and-swap sobre status = pending para
// que una carrera concurrente pierda con "ya procesado" en lugar de doble aplicar.
type DistributionRepository interface {
	GetByID(id string) (*entity.Distribution, error)
	// ListPendingByInvoice devuelve las líneas pendientes que comparten número
	// de remisión y tienda destino. Vacío (no error) si no queda nada pendiente.
	ListPendingByInvoice(destinationTenantID, invoiceNumber string) ([]*entity.Distribution, error)
	// ListPendingByComposite es el agrupador legado: tienda destino, despachador
	// y día calendario de despacho.
	ListPendingByComposite(destinationTenantID, initiatorID string, day time.Time) ([]*entity.Distribution, error)
	// TransitionStatus pasa todas las líneas dadas de pending al estado terminal
	// indicado, anexando notes si no está vacío. Devuelve cuántas filas cambiaron:
	// si es menor que len(ids) el caller debe abortar la transacción (CAS perdido).
	TransitionStatus(ids []string, toStatus, appendNotes string, at time.Time) (int64, error)
	// DeletePending borra la línea solo si sigue pendiente. Devuelve true si borró.
	DeletePending(id string) (bool, error)
}
