package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direcciones de un movimiento de stock.
const (
	MovementDirectionIn  = "in"
	MovementDirectionOut = "out"
)

// Razones estándar de movimiento usadas por el motor de distribución.
const (
	MovementReasonDistributionIn = "distribution_accepted"
	MovementReasonCancelRestore  = "distribution_cancelled"
)

// StockMovement es una entrada inmutable del libro de movimientos (append-only).
// (ReferenceID, ProductID, Direction) es único: reintentar la misma operación
// sobre el mismo producto no duplica la entrada ni el incremento de stock.
type StockMovement struct {
	ID          string
	TenantID    string
	ProductID   string
	Direction   string // in, out
	Quantity    decimal.Decimal
	Reason      string
	ReferenceID string // ID de la distribución que originó el movimiento
	ActorID     string
	CreatedAt   time.Time
}
