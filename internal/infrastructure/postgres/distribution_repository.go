package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

var _ repository.DistributionRepository = (*DistributionRepo)(nil)

const distributionColumns = `id, product_id, source_tenant_id, destination_tenant_id, quantity, unit_price, total_amount, invoice_number, status, initiator_id, notes, distributed_at, created_at, updated_at`

// DistributionRepo implementación del puerto DistributionRepository sobre
// PostgreSQL (usable con pool o tx).
type DistributionRepo struct {
	q Querier
}

// NewDistributionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDistributionRepository(q Querier) *DistributionRepo {
	return &DistributionRepo{q: q}
}

// GetByID obtiene una distribución por ID.
func (r *DistributionRepo) GetByID(id string) (*entity.Distribution, error) {
	query := `SELECT ` + distributionColumns + ` FROM distributions WHERE id = $1`
	d, err := scanDistribution(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get distribution: %w", err)
	}
	return d, nil
}

// ListPendingByInvoice lista las líneas pendientes de un lote por número de
// remisión dentro de la tienda destino.
func (r *DistributionRepo) ListPendingByInvoice(destinationTenantID, invoiceNumber string) ([]*entity.Distribution, error) {
	query := `
		SELECT ` + distributionColumns + `
		FROM distributions
		WHERE destination_tenant_id = $1 AND invoice_number = $2 AND status = $3
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, destinationTenantID, invoiceNumber, entity.DistributionStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list distributions by invoice: %w", err)
	}
	return collectDistributions(rows)
}

// ListPendingByComposite lista las líneas pendientes por tienda destino,
// despachador y día calendario (agrupación legada sin número de remisión).
func (r *DistributionRepo) ListPendingByComposite(destinationTenantID, initiatorID string, day time.Time) ([]*entity.Distribution, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)
	query := `
		SELECT ` + distributionColumns + `
		FROM distributions
		WHERE destination_tenant_id = $1 AND initiator_id = $2
		  AND distributed_at >= $3 AND distributed_at < $4
		  AND status = $5
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, destinationTenantID, initiatorID, from, to, entity.DistributionStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list distributions by composite key: %w", err)
	}
	return collectDistributions(rows)
}

// TransitionStatus pasa las líneas dadas de pending al estado terminal con CAS
// sobre status. Devuelve cuántas filas cambiaron: si no coincide con len(ids),
// otra llamada ganó la carrera y el caller debe abortar la transacción.
func (r *DistributionRepo) TransitionStatus(ids []string, toStatus, appendNotes string, at time.Time) (int64, error) {
	query := `
		UPDATE distributions
		SET status = $2,
		    notes = CASE WHEN $3 = '' THEN notes ELSE ltrim(notes || E'\n' || $3, E'\n') END,
		    updated_at = $4
		WHERE id = ANY($1) AND status = $5`
	cmd, err := r.q.Exec(context.Background(), query, ids, toStatus, appendNotes, at, entity.DistributionStatusPending)
	if err != nil {
		return 0, fmt.Errorf("transition distribution status: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// DeletePending borra la línea solo si sigue pendiente (CAS del cancelado).
func (r *DistributionRepo) DeletePending(id string) (bool, error) {
	cmd, err := r.q.Exec(context.Background(),
		`DELETE FROM distributions WHERE id = $1 AND status = $2`,
		id, entity.DistributionStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("delete pending distribution: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func scanDistribution(row pgx.Row) (*entity.Distribution, error) {
	var d entity.Distribution
	err := row.Scan(
		&d.ID, &d.ProductID, &d.SourceTenantID, &d.DestinationTenantID,
		&d.Quantity, &d.UnitPrice, &d.TotalAmount, &d.InvoiceNumber,
		&d.Status, &d.InitiatorID, &d.Notes, &d.DistributedAt,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDistributions(rows pgx.Rows) ([]*entity.Distribution, error) {
	defer rows.Close()
	var list []*entity.Distribution
	for rows.Next() {
		d, err := scanDistribution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
