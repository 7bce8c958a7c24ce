package distribution

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// StockLedger aplica incrementos de stock con libro append-only. La entrada del
// libro lleva la clave (reference_id, product_id, direction): si ya existe, el
// incremento ya se aplicó en un intento anterior y la llamada es un no-op
// seguro. Eso hace los reintentos exactamente-una-vez sin coordinar con la
// transición de estado.
type StockLedger struct{}

// IncreaseInput parámetros de un incremento de stock con entrada de libro.
type IncreaseInput struct {
	TenantID    string
	ProductID   string
	Quantity    decimal.Decimal
	Reason      string
	ReferenceID string
	ActorID     string
}

// ApplyIncrease registra la entrada IN del libro y suma Quantity al stock del
// producto, dentro de la transacción de los repos recibidos. Quantity debe ser
// > 0. Devuelve true si aplicó; false si la entrada ya existía (reintento).
func (StockLedger) ApplyIncrease(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	in IncreaseInput,
	now time.Time,
) (bool, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return false, domain.ErrInvalidInput
	}
	if in.ProductID == "" || in.ReferenceID == "" {
		return false, domain.ErrInvalidInput
	}
	inserted, err := movRepo.CreateIfAbsent(&entity.StockMovement{
		ID:          uuid.New().String(),
		TenantID:    in.TenantID,
		ProductID:   in.ProductID,
		Direction:   entity.MovementDirectionIn,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		ReferenceID: in.ReferenceID,
		ActorID:     in.ActorID,
		CreatedAt:   now,
	})
	if err != nil {
		return false, err
	}
	if !inserted {
		// Reintento: el incremento ya quedó aplicado junto con la entrada original.
		return false, nil
	}
	if err := productRepo.IncrementStock(in.ProductID, in.Quantity); err != nil {
		return false, err
	}
	return true, nil
}
