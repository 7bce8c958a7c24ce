package distribution

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/distribucion-api/internal/domain/entity"
	"github.com/jhoicas/distribucion-api/internal/domain/repository"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

// RequestMeta metadatos de la petición que acompañan la entrada de auditoría.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// AuditEmitter escribe la entrada de auditoría en la BD y, si hay sink
// configurado, la publica también como evento. Todo es best-effort: un fallo
// se loguea y jamás se propaga como fallo de la operación de negocio.
type AuditEmitter struct {
	repo repository.AuditLogRepository
	sink AuditSink // opcional; nil = solo BD
	log  *logger.Logger
}

// NewAuditEmitter construye el emisor. sink puede ser nil.
func NewAuditEmitter(repo repository.AuditLogRepository, sink AuditSink, log *logger.Logger) *AuditEmitter {
	return &AuditEmitter{repo: repo, sink: sink, log: log}
}

// batchAuditPayload resumen serializado de la operación sobre un lote.
type batchAuditPayload struct {
	BatchID  string   `json:"batch_id"`
	Count    int      `json:"count"`
	Reason   string   `json:"reason,omitempty"`
	LineIDs  []string `json:"line_ids,omitempty"`
	Quantity string   `json:"quantity,omitempty"` // suma de cantidades del lote
	Amount   string   `json:"amount,omitempty"`   // suma de montos del lote
}

// Emit registra la entrada. Los errores se loguean con el ID del lote.
func (e *AuditEmitter) Emit(ctx context.Context, tenantID string, actor entity.Actor, action, recordID string, payload batchAuditPayload, meta RequestMeta) {
	raw, err := json.Marshal(payload)
	if err != nil {
		e.log.Error().Err(err).Str("record_id", recordID).Msg("auditoría: serializar payload")
		return
	}
	entry := &entity.AuditLog{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		ActorID:   actor.ID,
		Action:    action,
		Entity:    "distribution",
		RecordID:  recordID,
		Payload:   raw,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		CreatedAt: time.Now(),
	}
	if err := e.repo.Create(entry); err != nil {
		e.log.Error().Err(err).
			Str("action", action).
			Str("record_id", recordID).
			Msg("auditoría: escribir en BD")
	}
	if e.sink != nil {
		if err := e.sink.Publish(ctx, entry); err != nil {
			e.log.Error().Err(err).
				Str("action", action).
				Str("record_id", recordID).
				Msg("auditoría: publicar evento")
		}
	}
}
