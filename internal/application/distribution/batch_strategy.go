package distribution

import (
	"fmt"
	"time"

	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
)

// BatchRef referencia un lote de distribución: o un ID representativo de una
// línea, o la clave compuesta explícita {tienda destino, despachador, fecha}.
type BatchRef struct {
	DistributionID      string
	DestinationTenantID string
	InitiatorID         string
	Date                time.Time
}

// BatchStrategy agrupa las líneas hermanas de un lote. Hay dos implementaciones
// elegidas según los datos disponibles: número de remisión (autoritativa) o la
// clave compuesta legada (datos anteriores a la remisión).
type BatchStrategy interface {
	// Pending devuelve las líneas del lote que siguen pendientes.
	// Conjunto vacío (no error) cuando no queda nada pendiente.
	Pending(repo repository.DistributionRepository) ([]*entity.Distribution, error)
	// BatchID devuelve la clave legible del lote para resultados y auditoría.
	BatchID() string
}

// invoiceStrategy agrupa por número de remisión dentro de la tienda destino.
type invoiceStrategy struct {
	destinationTenantID string
	invoiceNumber       string
}

func (s invoiceStrategy) Pending(repo repository.DistributionRepository) ([]*entity.Distribution, error) {
	return repo.ListPendingByInvoice(s.destinationTenantID, s.invoiceNumber)
}

func (s invoiceStrategy) BatchID() string { return s.invoiceNumber }

// compositeStrategy agrupa por tienda destino, despachador y día calendario.
// Fallback para líneas legadas sin número de remisión.
type compositeStrategy struct {
	destinationTenantID string
	initiatorID         string
	day                 time.Time
}

func (s compositeStrategy) Pending(repo repository.DistributionRepository) ([]*entity.Distribution, error) {
	return repo.ListPendingByComposite(s.destinationTenantID, s.initiatorID, s.day)
}

func (s compositeStrategy) BatchID() string {
	return fmt.Sprintf("%s/%s/%s", s.destinationTenantID, s.initiatorID, s.day.Format("2006-01-02"))
}

// strategyFor elige la estrategia según la referencia: con ID representativo se
// carga la línea y se prefiere su número de remisión; sin ID se exige la clave
// compuesta completa.
func strategyFor(repo repository.DistributionRepository, ref BatchRef) (BatchStrategy, error) {
	if ref.DistributionID != "" {
		d, err := repo.GetByID(ref.DistributionID)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, domain.ErrNotFound
		}
		if d.InvoiceNumber != "" {
			return invoiceStrategy{
				destinationTenantID: d.DestinationTenantID,
				invoiceNumber:       d.InvoiceNumber,
			}, nil
		}
		return compositeStrategy{
			destinationTenantID: d.DestinationTenantID,
			initiatorID:         d.InitiatorID,
			day:                 d.DistributedAt,
		}, nil
	}
	if ref.DestinationTenantID == "" || ref.InitiatorID == "" || ref.Date.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	return compositeStrategy{
		destinationTenantID: ref.DestinationTenantID,
		initiatorID:         ref.InitiatorID,
		day:                 ref.Date,
	}, nil
}
