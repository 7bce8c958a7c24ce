package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Las filas son append-only: no hay Update ni Delete.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// CreateIfAbsent inserta el movimiento salvo que ya exista la clave
// (reference_id, product_id, direction). Devuelve true si insertó: solo
// entonces el caller debe aplicar el incremento de stock asociado.
func (r *StockMovementRepo) CreateIfAbsent(movement *entity.StockMovement) (bool, error) {
	query := `
		INSERT INTO stock_movements (id, tenant_id, product_id, direction, quantity, reason, reference_id, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (reference_id, product_id, direction) DO NOTHING`
	cmd, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.TenantID, movement.ProductID, movement.Direction,
		movement.Quantity, movement.Reason, movement.ReferenceID, movement.ActorID,
		movement.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("create stock movement: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// ListByReference lista los movimientos originados por una distribución.
func (r *StockMovementRepo) ListByReference(referenceID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, tenant_id, product_id, direction, quantity, reason, reference_id, actor_id, created_at
		FROM stock_movements WHERE reference_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.TenantID, &m.ProductID, &m.Direction,
			&m.Quantity, &m.Reason, &m.ReferenceID, &m.ActorID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
