package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una distribución.
// pending_acceptance es el estado inicial; accepted y rejected son terminales.
const (
	DistributionStatusPending  = "pending_acceptance"
	DistributionStatusAccepted = "accepted"
	DistributionStatusRejected = "rejected"
)

// Distribution representa una línea de transferencia de stock desde la bodega
// principal hacia una tienda (tenant destino). La crea el flujo de despacho
// (fuera de este módulo) y muta de estado exactamente una vez: el admin de la
// tienda la acepta o la rechaza. Una vez terminal no se borra; solo una línea
// aún pendiente puede cancelarse (borrado compensatorio).
type Distribution struct {
	ID                  string
	ProductID           string // producto en el catálogo de la bodega principal
	SourceTenantID      string // bodega principal remitente
	DestinationTenantID string // tienda destino
	Quantity            decimal.Decimal
	UnitPrice           decimal.Decimal
	TotalAmount         decimal.Decimal
	InvoiceNumber       string // clave de agrupación del lote (vacío en datos legados)
	Status              string // pending_acceptance, accepted, rejected
	InitiatorID         string // usuario de bodega que despachó
	Notes               string
	DistributedAt       time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsPending indica si la línea todavía admite transición de estado.
func (d *Distribution) IsPending() bool {
	return d.Status == DistributionStatusPending
}
