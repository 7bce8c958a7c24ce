package entity

import (
	"encoding/json"
	"time"
)

// Acciones auditadas por el motor de distribución.
const (
	AuditActionAcceptBatch = "distribution.accept_batch"
	AuditActionRejectBatch = "distribution.reject_batch"
	AuditActionCancel      = "distribution.cancel_pending"
)

// AuditLog registra el resultado de una operación para trazabilidad.
// Escribirlo nunca revierte la operación de negocio: si falla, se loguea.
type AuditLog struct {
	ID        string
	TenantID  string
	ActorID   string
	Action    string
	Entity    string // nombre de la entidad afectada, ej. "distribution"
	RecordID  string // ID representativo del lote o registro
	Payload   json.RawMessage
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}
