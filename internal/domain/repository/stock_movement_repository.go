package repository

import "github.com/jhoicas/distribucion-api/internal/domain/entity"

// StockMovementRepository define el puerto de persistencia del libro de
// movimientos (append-only).
type StockMovementRepository interface {
	// CreateIfAbsent inserta el movimiento salvo que ya exista uno con la misma
	// clave (reference_id, product_id, direction). Devuelve true si insertó:
	// el caller solo debe aplicar el incremento de stock cuando insertó.
	CreateIfAbsent(movement *entity.StockMovement) (bool, error)
	ListByReference(referenceID string) ([]*entity.StockMovement, error)
}
